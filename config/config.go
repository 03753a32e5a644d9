// Package config holds run configuration for the pubmedkit tools, with
// optional overrides from a YAML file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/miku/pubmedkit"
	"github.com/miku/pubmedkit/ground"
	"gopkg.in/yaml.v3"
)

// Config for acquisition and processing.
type Config struct {
	// DataDir is the root for all downloaded and derived data; baseline
	// and update files live in subdirectories.
	DataDir string `yaml:"data_dir"`
	// CacheTTL controls how long a fetched file listing stays fresh.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// Workers bounds parallel file processing and downloads.
	Workers int `yaml:"workers"`
	// Mode is one of sequential, stream, batch.
	Mode string `yaml:"mode"`
	// Grounding index dumps, one "id<TAB>name" pair per line, optional.
	FunderIndex string `yaml:"funder_index"`
	MeshIndex   string `yaml:"mesh_index"`
	OrcidIndex  string `yaml:"orcid_index"`
}

// Default returns a config rooted at the user data dir.
func Default() *Config {
	return &Config{
		DataDir:  filepath.Join(xdg.DataHome, pubmedkit.AppName),
		CacheTTL: 24 * time.Hour,
		Workers:  4,
		Mode:     "sequential",
	}
}

// Load reads a YAML file over the defaults.
func Load(filename string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Grounders loads the configured grounding indices. Unset paths leave
// the corresponding service nil, extraction then proceeds without
// grounding.
func (c *Config) Grounders() (ground.Services, error) {
	var g ground.Services
	if c.FunderIndex != "" {
		ix, err := ground.LoadTSV("ror", c.FunderIndex)
		if err != nil {
			return g, err
		}
		g.Funder = ix
	}
	if c.MeshIndex != "" {
		ix, err := ground.LoadTSV("mesh", c.MeshIndex)
		if err != nil {
			return g, err
		}
		g.Mesh = ix
	}
	if c.OrcidIndex != "" {
		ix, err := ground.LoadTSV("orcid", c.OrcidIndex)
		if err != nil {
			return g, err
		}
		g.AuthorID = ix
	}
	return g, nil
}
