// Package env reads process configuration. Get* helpers fall back to the
// optional default when the variable is unset or malformed; MustGetString
// panics instead and is only meant for startup.
package env

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetString(name string, defaultValue ...string) string {
	value := os.Getenv(name)
	if value == "" && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func MustGetString(name string) string {
	value := os.Getenv(name)
	if value == "" {
		panic(fmt.Sprintf("%s can't be empty", name))
	}
	return value
}

func GetInt(name string, defaultValue ...int) int {
	return parse(name, strconv.Atoi, defaultValue)
}

// GetDuration accepts time.ParseDuration syntax, e.g. "30s" or "5m".
func GetDuration(name string, defaultValue ...time.Duration) time.Duration {
	return parse(name, time.ParseDuration, defaultValue)
}

func parse[T any](name string, convert func(string) (T, error), defaultValue []T) T {
	value, err := convert(os.Getenv(name))
	if err != nil && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
