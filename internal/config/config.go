// Package config handles process-level configuration for the server builder: which
// transports to start, the log level, and whether to suppress the default stdio
// transport. It is loaded once at builder construction time; the core pipeline (C1-C10)
// never reads the environment directly.
// file: internal/config/config.go
package config

import (
	"os"

	"log/slog"
)

// noDefaultTransportEnv is read by Load to decide DisableDefaultTransport. Per spec,
// only an exact lowercase "true" disables the default stdio transport; any other value
// (including "1", "yes", "TRUE", or " true ") is ignored.
const noDefaultTransportEnv = "MCPKIT_NO_DEFAULT_TRANSPORT"

// logLevelEnv optionally overrides the default log level for the reference binary.
const logLevelEnv = "MCPKIT_LOG_LEVEL"

// TransportConfig names one transport the builder should start and its options. The
// reference builder only recognizes Kind "stdio"; an embedding application can still
// register arbitrary transport.DispatchTransport values directly on the Builder without
// going through Config at all.
type TransportConfig struct {
	Kind string `yaml:"kind"`
}

// Settings is the application-level configuration consumed by the server Builder.
type Settings struct {
	Transports              []TransportConfig
	LogLevel                slog.Level
	DisableDefaultTransport bool
}

// Load reads process configuration, applying the defaults a bare `go run ./cmd/mcpserverd`
// gets with no environment or config file present: one stdio transport, Info level
// logging, default transport enabled. A YAML file at MCPKIT_CONFIG_FILE, or else the
// first of a short list of conventional locations (see findConfigFile), is merged in
// before the MCPKIT_NO_DEFAULT_TRANSPORT and MCPKIT_LOG_LEVEL environment variables are
// applied, so the environment always has the final say over the file.
func Load() *Settings {
	s := &Settings{
		Transports: []TransportConfig{{Kind: "stdio"}},
		LogLevel:   slog.LevelInfo,
	}

	if path := findConfigFile(); path != "" {
		if fs, err := loadFile(path); err == nil {
			s.applyFile(fs)
		}
	}

	s.DisableDefaultTransport = s.DisableDefaultTransport || os.Getenv(noDefaultTransportEnv) == "true"
	if lvl, ok := parseLevel(os.Getenv(logLevelEnv)); ok {
		s.LogLevel = lvl
	}
	return s
}

func parseLevel(raw string) (slog.Level, bool) {
	switch raw {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
