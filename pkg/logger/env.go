package logger

import (
	"os"
	"strings"
)

type Env string

const (
	EnvDev   Env = "dev"
	EnvStage Env = "stage"
	EnvProd  Env = "prod"
)

// откуда берём среду, по приоритету
var envVars = []string{"NEWSCHAT_LOG_ENV", "APP_ENV"}

var envAliases = map[string]Env{
	"prod":           EnvProd,
	"production":     EnvProd,
	"stage":          EnvStage,
	"staging":        EnvStage,
	"preprod":        EnvStage,
	"pre-production": EnvStage,
}

func DetectEnv() Env {
	for _, k := range envVars {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return ParseEnv(v)
		}
	}

	return EnvDev
}

// ParseEnv считает всё незнакомое dev.
func ParseEnv(raw string) Env {
	if e, ok := envAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return e
	}

	return EnvDev
}
