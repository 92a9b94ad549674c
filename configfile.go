package dbconn

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of a connector config document.
//
// sql_server:
//   server: db.internal:5432
//   database: membership
//   user: app
//   version: 17
// sql_commands:
//   SELECT_PERSON_BY_ID: SELECT * FROM people WHERE id = ?
//   UPDATE_AGE_BY_ID: UPDATE people SET name = ?, age = ? WHERE id = ?
type fileConfig struct {
	Server   *serverSection    `yaml:"sql_server"`
	Commands map[string]string `yaml:"sql_commands"`
}

type serverSection struct {
	Server   string `yaml:"server"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Version  int    `yaml:"version"`
}

// LoadConfigFile parses a YAML config document into a Config and the command
// table it declares. The sql_server section is required; sql_commands may be
// empty. Any failure is a CodeConfigParse error and fatal to startup.
func LoadConfigFile(path string) (Config, map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, nil, configError(fmt.Sprintf("reading %s", path), err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, nil, configError(fmt.Sprintf("parsing %s", path), err)
	}

	if fc.Server == nil {
		return Config{}, nil, configError(fmt.Sprintf("%s: missing sql_server section", path), nil)
	}
	if fc.Server.Version < 0 {
		return Config{}, nil, configError(fmt.Sprintf("%s: version must not be negative", path), nil)
	}

	cfg := DefaultConfig(fc.Server.Server, fc.Server.Database)
	if fc.Server.User != "" {
		cfg.User = fc.Server.User
	}
	cfg.Password = fc.Server.Password
	cfg.DriverVersion = fc.Server.Version

	return cfg, fc.Commands, nil
}
