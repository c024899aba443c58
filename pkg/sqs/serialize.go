package sqs

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Serialize converts an arbitrary value into a message body. The second
// return value is false when the value is the "no message" sentinel (a nil
// value or nil pointer), which callers treat as "send nothing".
//
// Strings and []byte pass through unchanged. Maps, slices and arrays are
// JSON encoded with default rules. Everything else uses its default text
// representation, so serialization itself never fails.
func Serialize(value any) (string, bool) {
	if value == nil {
		return "", false
	}

	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		if v == nil {
			return "", false
		}
		return string(v), true
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return "", false
		}
		return encodeStructured(rv.Interface()), true
	case reflect.Array:
		return encodeStructured(rv.Interface()), true
	default:
		return fmt.Sprintf("%v", rv.Interface()), true
	}
}

func encodeStructured(value any) string {
	body, err := json.Marshal(value)
	if err != nil {
		// Unencodable collections (e.g. containing channels) still get a
		// text form; every value admits some representation.
		return fmt.Sprintf("%v", value)
	}
	return string(body)
}
