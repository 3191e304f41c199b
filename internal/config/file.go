// file: internal/config/file.go
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configFileEnv, if set, names the exact config file to load. Otherwise Load checks a
// short list of conventional locations and uses the first one that exists.
const configFileEnv = "MCPKIT_CONFIG_FILE"

// fileSettings is the YAML-decoded shape of an on-disk config file. Any field left at its
// zero value does not override what Load has already derived from its built-in defaults;
// the environment variables are applied after the file and override it.
type fileSettings struct {
	Transports              []TransportConfig `yaml:"transports"`
	LogLevel                string            `yaml:"logLevel"`
	DisableDefaultTransport bool              `yaml:"disableDefaultTransport"`
}

func defaultConfigPaths() []string {
	paths := []string{"./configs/mcpkit.yaml", "./configs/config.yaml"}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "mcpkit", "mcpkit.yaml"))
	}
	return paths
}

// findConfigFile returns the path Load should read, or "" if none of the conventional
// locations has a file.
func findConfigFile() string {
	if p := os.Getenv(configFileEnv); p != "" {
		return p
	}
	for _, p := range defaultConfigPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// loadFile decodes the YAML document at path into a fileSettings.
func loadFile(path string) (*fileSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fs fileSettings
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, err
	}
	return &fs, nil
}

// applyFile merges a successfully loaded fileSettings onto s. Transports and LogLevel are
// only overridden when the file actually sets them; DisableDefaultTransport is merged by
// OR, since either the file or the environment variable saying "true" should be enough to
// suppress the default transport.
func (s *Settings) applyFile(fs *fileSettings) {
	if len(fs.Transports) > 0 {
		s.Transports = fs.Transports
	}
	if lvl, ok := parseLevel(fs.LogLevel); ok {
		s.LogLevel = lvl
	}
	s.DisableDefaultTransport = s.DisableDefaultTransport || fs.DisableDefaultTransport
}
