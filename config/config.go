// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// DefaultKmerLength is the k-mer length used when none is given
	DefaultKmerLength = 32

	// AllKmers is the sample count sentinel for keeping every unique k-mer
	AllKmers = -1

	// EnvPrefix prefixes environment variables that override settings,
	// ex: CELLBOUNCER_THREADS=4
	EnvPrefix = "CELLBOUNCER"
)

func init() {
	viper.SetDefault("k", DefaultKmerLength)
	viper.SetDefault("num", AllKmers)
	viper.SetDefault("threads", 1)
	viper.SetDefault("timeout", time.Duration(0))

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// ToolConfig holds paths that override the search for an external tool
// on $PATH. Empty fields mean "search $PATH"
type ToolConfig struct {
	// the annotation-based transcript extractor
	Gffread string `mapstructure:"gffread"`

	// the k-mer counter
	FastK string `mapstructure:"fastk"`

	// the species-unique k-mer extractor
	UniqueKmers string `mapstructure:"unique-kmers"`

	// the gzip decompressor
	Gunzip string `mapstructure:"gunzip"`
}

// Overrides returns the non-empty tool paths keyed by their flag name.
func (t ToolConfig) Overrides() map[string]string {
	overrides := make(map[string]string)
	for flag, path := range map[string]string{
		"gffread":      t.Gffread,
		"fastk":        t.FastK,
		"unique-kmers": t.UniqueKmers,
		"gunzip":       t.Gunzip,
	} {
		if path != "" {
			overrides[flag] = path
		}
	}
	return overrides
}

// Config is the root-level settings struct and is a mix
// of settings available in a settings file, the environment
// and the command line
type Config struct {
	// base name for every generated file. Also what demux_species takes with -k
	Out string `mapstructure:"out"`

	// length of the counted k-mers
	KmerLength int `mapstructure:"k"`

	// number of unique k-mers to sample per species, AllKmers for all of them
	SampleCount int `mapstructure:"num"`

	// number of species processed at once within a stage
	Threads int `mapstructure:"threads"`

	// upper bound on each external tool invocation, zero for none
	Timeout time.Duration `mapstructure:"timeout"`

	// whether to draw progress bars rather than log each step
	Progress bool `mapstructure:"progress"`

	// external tool overrides
	Tools ToolConfig `mapstructure:"tools"`
}

// New returns a new Config struct populated by Viper settings
// (defaults, settings file, environment and command line flags)
func New() (*Config, error) {
	c := &Config{}

	if err := viper.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "unable to decode settings")
	}

	return c, nil
}

// Load reads a settings file into Viper. The file's extension picks
// the format (yaml, toml, json)
func Load(settingsFile string) error {
	if settingsFile == "" {
		return nil
	}

	viper.SetConfigFile(settingsFile)
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read settings file %s", settingsFile)
	}

	return nil
}

// SamplesAll returns whether every unique k-mer is kept
func (c *Config) SamplesAll() bool {
	return c.SampleCount == AllKmers
}
