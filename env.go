package bringup

import (
	"os"
	"strconv"
	"time"
)

// GetEnv returns the environment variable name, or defaultValue if not set
func GetEnv(name string, defaultValue string) string {
	value, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	return value
}

func getEnvBool(name string, defaultValue bool) bool {
	b, err := strconv.ParseBool(GetEnv(name, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(name string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(GetEnv(name, defaultValue.String()))
	if err != nil {
		return defaultValue
	}
	return d
}
