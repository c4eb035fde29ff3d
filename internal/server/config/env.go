package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// parseEnv overlays values from the process environment:
//
//	PORT          HTTP port (":" is prepended when missing)
//	GRPC_ADDR     gRPC bind address
//	DATABASE_DSN  PostgreSQL DSN
//	JWT_SECRET    token signing secret
//	TOKEN_TTL     token lifetime, e.g. "1h"
//	CORS_ORIGIN   allowed front-end origin
//	LOG_LEVEL     debug, info, warn or error
//
// A TOKEN_TTL that does not parse as a positive duration panics.
func parseEnv(config *Config) {
	if v, ok := lookup("PORT"); ok {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		config.EndpointAddrHTTP = v
	}
	if v, ok := lookup("GRPC_ADDR"); ok {
		config.EndpointAddrGRPC = v
	}
	if v, ok := lookup("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := lookup("JWT_SECRET"); ok {
		config.SecretKey = v
	}
	if v, ok := lookup("TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			panic(fmt.Errorf("invalid TOKEN_TTL %q", v))
		}
		config.TokenValidityDuration = d
	}
	if v, ok := lookup("CORS_ORIGIN"); ok {
		config.AllowedOrigin = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
