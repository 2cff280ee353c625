package main

import (
	"os"
	"strings"
)

const (
	envLogLevel = "IMPACTED_LOG_LEVEL"
	envNoColor  = "NO_COLOR"
)

func envFlagEnabled(name string) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func colorDisabled() bool {
	return envFlagEnabled(envNoColor)
}

func logLevelFromEnv() string {
	return strings.TrimSpace(os.Getenv(envLogLevel))
}
