package configs

import (
	"github.com/spf13/viper"
)

type EnvConfig struct {
	ApplicationName string
	DefaultRegion   string
}

var Env *EnvConfig

func init() {
	viper.AutomaticEnv()

	Env = &EnvConfig{
		ApplicationName: viper.GetString("APPLICATION_NAME"),
		DefaultRegion:   getStringOrDefault("AWS_REGION", "us-east-1"),
	}
}

func getStringOrDefault(key, defaultValue string) string {
	value := viper.GetString(key)
	if value == "" {
		return defaultValue
	}
	return value
}
