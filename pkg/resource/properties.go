package resource

import (
	"log"
	"os"
	"regexp"
	"time"

	"github.com/spf13/viper"
)

var properties map[string]any

// envPattern matches ${ENV_NAME} and ${ENV_NAME:default} property values.
var envPattern = regexp.MustCompile(`\$\{([^:}]+)(?::([^}]+))?}`)

// placeholderPattern matches %ENV_NAME% values, the placeholder syntax
// binding declarations use for queue URLs and regions.
var placeholderPattern = regexp.MustCompile(`^%([A-Za-z_][A-Za-z0-9_]*)%$`)

// init loads application properties from YAML when a properties file is
// present. Libraries embedding this package call Init explicitly instead.
func init() {
	value, ok := os.LookupEnv("PROPERTIES_FILE_PATH")
	if !ok {
		value = "configs/application.yml"
	}
	if _, err := os.Stat(value); err != nil {
		return
	}
	Init(value)
}

func Init(filepath string) {
	viper.SetConfigFile(filepath)
	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Fail to read properties: %v", err)
	}

	if properties == nil {
		properties = make(map[string]any)
	}
	parsePropertiesMap("", viper.AllSettings(), properties)

	if err := viper.MergeConfigMap(properties); err != nil {
		log.Fatalf("Error to load application properties: %v", err)
	}
}

// parsePropertiesMap reads the YAML tree recursively, flattening keys and
// resolving environment references in string values.
func parsePropertiesMap(prefix string, data map[string]any, result map[string]any) {
	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			result[fullKey] = resolveEnvVariable(v)
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, bool:
			result[fullKey] = v
		case map[string]interface{}:
			parsePropertiesMap(fullKey, v, result)
		default:
			log.Printf("Ignoring key '%s' with unsupported type.", fullKey)
		}
	}
}

// resolveEnvVariable resolves ${ENV:default} references; other values pass
// through unchanged.
func resolveEnvVariable(value string) any {
	matches := envPattern.FindStringSubmatch(value)
	if len(matches) == 0 {
		return value
	}

	envName := matches[1]
	defaultValue := ""
	if len(matches) > 2 {
		defaultValue = matches[2]
	}

	if envValue, exists := os.LookupEnv(envName); exists {
		return envValue
	}
	return defaultValue
}

// ResolvePlaceholder resolves a %ENV_NAME% value against the environment.
// Non-placeholder values are returned unchanged, so queue URLs may be given
// either literally or by reference.
func ResolvePlaceholder(value string) string {
	matches := placeholderPattern.FindStringSubmatch(value)
	if len(matches) == 0 {
		return value
	}
	return os.Getenv(matches[1])
}

func Get(key string) any {
	return viper.Get(key)
}

func GetString(key string) string {
	return viper.GetString(key)
}

func GetBool(key string) bool {
	return viper.GetBool(key)
}

func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

func GetInt(key string) int {
	return viper.GetInt(key)
}

func GetInt32(key string) int32 {
	return viper.GetInt32(key)
}

func GetInt64(key string) int64 {
	return viper.GetInt64(key)
}

func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

func GetStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}
