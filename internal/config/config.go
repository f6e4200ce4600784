// Package config loads the srcview.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project file looked up in a project root.
const FileName = "srcview.yaml"

// Config is the project configuration. Zero values mean "use the default".
type Config struct {
	// Project names the project in the descriptor; defaults to the root
	// directory's base name.
	Project string `yaml:"project"`
	// Out is the output directory, relative to the project root.
	Out     string `yaml:"out"`
	Pretty  bool   `yaml:"pretty"`
	Workers int    `yaml:"workers"`
	Titles  bool   `yaml:"titles"`
	// LinkScript is a Risor anchor naming script, relative to the project root.
	LinkScript string `yaml:"link_script"`
	// DB keeps the declaration index at this path between runs.
	DB string `yaml:"db"`
	// Exclude lists gitignore-style patterns of sources to skip.
	Exclude []string `yaml:"exclude"`
}

// DefaultOut is the output directory used when none is configured.
const DefaultOut = "srcview-out"

// Load reads a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &c, nil
}

// Discover loads FileName from root, or returns an empty Config when the
// root has none.
func Discover(root string) (*Config, error) {
	c, err := Load(filepath.Join(root, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return c, err
}

func (c *Config) validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	for _, p := range c.Exclude {
		if p == "" {
			return errors.New("exclude patterns must not be empty")
		}
	}
	return nil
}

// ProjectName returns Project, or the base name of root.
func (c *Config) ProjectName(root string) string {
	if c.Project != "" {
		return c.Project
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}

// OutDir returns the output directory resolved against root.
func (c *Config) OutDir(root string) string {
	out := c.Out
	if out == "" {
		out = DefaultOut
	}
	return resolve(root, out)
}

// LinkScriptPath returns the link script resolved against root, or "".
func (c *Config) LinkScriptPath(root string) string {
	if c.LinkScript == "" {
		return ""
	}
	return resolve(root, c.LinkScript)
}

// DBPath returns the index path resolved against root, or "".
func (c *Config) DBPath(root string) string {
	if c.DB == "" {
		return ""
	}
	return resolve(root, c.DB)
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
