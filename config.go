package cyq

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the .cyq.yaml configuration file.
type Config struct {
	// Neo4j holds connection settings. Its presence selects the neo4j
	// database for `cyq run`.
	Neo4j *Neo4jConfig `yaml:"neo4j,omitempty"`

	// Runner holds defaults for `cyq run`.
	Runner RunnerConfig `yaml:"runner,omitempty"`

	// Models declares node schemas by name, for plans that run vector
	// searches.
	Models []NodeModel `yaml:"models,omitempty"`
}

// Neo4jConfig holds Neo4j connection settings.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// RunnerConfig holds runner defaults. CLI flags take precedence.
type RunnerConfig struct {
	// Format is one of dots, verbose or json.
	Format   string `yaml:"format,omitempty"`
	FailFast bool   `yaml:"fail_fast,omitempty"`
}

// DatabaseName returns the configured database name, or empty if none.
func (c *Config) DatabaseName() string {
	if c.Neo4j != nil {
		return DatabaseNeo4j
	}

	return ""
}

// Model looks up a declared model by name.
func (c *Config) Model(name string) (*NodeModel, bool) {
	for i := range c.Models {
		if c.Models[i].Name == name {
			return &c.Models[i], true
		}
	}

	return nil, false
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".cyq.yaml", ".cyq.yml", "cyq.yaml", "cyq.yml"}

// LoadConfig finds and loads the nearest .cyq.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
