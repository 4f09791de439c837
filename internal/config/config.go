// Package config holds process-wide judge configuration.
//
// The config is loaded once at startup and threaded explicitly; nothing in
// this module reads it from ambient globals.
package config

import (
	"os"

	"github.com/TSOJO/isolate-wrapper/pkg/errors"
	"github.com/TSOJO/isolate-wrapper/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	defaultCppCompiler     = "g++"
	defaultCppCompileFlags = "-static -std=c++2a -s -O2"
	defaultIsolatePath     = "isolate"
	defaultBoxRoot         = "/var/local/lib/isolate"
	defaultMaxBox          = 1000
	defaultMetadataDir     = "metadata"
	defaultMLEThreshold    = 0.8
	devPythonPath          = "/usr/bin/python3"
)

// Config describes everything the judging core needs to run.
type Config struct {
	// PythonPath is the absolute path of the Python interpreter used for
	// PYTHON submissions. Overridden by the DEV/PYTHON_PATH environment.
	PythonPath string `yaml:"pythonPath"`

	// InterpreterPath is the path of the aqaasm binary that is copied into
	// each box for AQAASM submissions.
	InterpreterPath string `yaml:"interpreterPath"`

	CppCompiler     string `yaml:"cppCompiler"`
	CppCompileFlags string `yaml:"cppCompileFlags"`

	// IsolatePath is the sandbox tool binary.
	IsolatePath string `yaml:"isolatePath"`

	// BoxRoot is where the sandbox tool keeps its box directories.
	BoxRoot string `yaml:"boxRoot"`

	// MaxBox bounds the box id scan; ids live in [0, MaxBox).
	MaxBox int `yaml:"maxBox"`

	// MetadataDir receives one metadata file per live box.
	MetadataDir string `yaml:"metadataDir"`

	// MLEThreshold is the fraction of the memory limit above which a
	// signalled run is reported as MLE instead of RE.
	MLEThreshold float64 `yaml:"mleThreshold"`

	Log logger.Config `yaml:"log"`
}

// Default returns a config with all defaults applied, suitable for tests
// and for callers that configure programmatically.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	c.applyEnv()
	return c
}

// Load reads a YAML config file and applies defaults and env overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.NotFound, "read config file failed")
	}
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, errors.InvalidFormat, "parse config file failed")
	}
	c.applyDefaults()
	c.applyEnv()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.CppCompiler == "" {
		c.CppCompiler = defaultCppCompiler
	}
	if c.CppCompileFlags == "" {
		c.CppCompileFlags = defaultCppCompileFlags
	}
	if c.IsolatePath == "" {
		c.IsolatePath = defaultIsolatePath
	}
	if c.BoxRoot == "" {
		c.BoxRoot = defaultBoxRoot
	}
	if c.MaxBox <= 0 {
		c.MaxBox = defaultMaxBox
	}
	if c.MetadataDir == "" {
		c.MetadataDir = defaultMetadataDir
	}
	if c.MLEThreshold <= 0 {
		c.MLEThreshold = defaultMLEThreshold
	}
	if c.InterpreterPath == "" {
		c.InterpreterPath = "aqaasm"
	}
}

func (c *Config) applyEnv() {
	if os.Getenv("DEV") == "1" {
		c.PythonPath = devPythonPath
		return
	}
	if p := os.Getenv("PYTHON_PATH"); p != "" {
		c.PythonPath = p
	}
}

// Validate reports config problems that would make judging impossible.
func (c *Config) Validate() error {
	if c.PythonPath == "" {
		return errors.ValidationError("pythonPath", "required (set PYTHON_PATH or DEV=1)")
	}
	if c.MaxBox <= 0 {
		return errors.ValidationError("maxBox", "must be positive")
	}
	return nil
}
