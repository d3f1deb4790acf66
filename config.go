package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration of the rsql command. Command line flags
// override the values it sets.
type Config struct {
	LogLevel    string            `yaml:"log_level"`
	Concurrency int               `yaml:"concurrency"`
	Source      SourceConfig      `yaml:"source"`
	Filters     map[string]string `yaml:"filters"`
}

// SourceConfig says where records are read from. A database takes
// precedence over an input file.
type SourceConfig struct {
	// Input is a JSON file of documents. Empty or "-" reads stdin.
	Input string `yaml:"input"`
	// Database is the path of a SQLite database.
	Database string `yaml:"database"`
	// Query selects the rows to load from Database.
	Query string `yaml:"query"`
	// Table names a table to load when Query is empty.
	Table string `yaml:"table"`
}

// loadConfig reads a configuration file. Unknown keys are an error.
func loadConfig(file string) (*Config, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return cfg, nil
}

// resolveFilter expands a reference of the form @name to the saved filter of
// that name. Any other text is returned unchanged.
func (c *Config) resolveFilter(filter string) (string, error) {
	name, ok := strings.CutPrefix(filter, "@")
	if !ok {
		return filter, nil
	}
	saved, ok := c.Filters[name]
	if !ok {
		return "", fmt.Errorf("unknown saved filter %q", name)
	}
	return saved, nil
}

// newLogger builds a logger with the production encoder settings that writes
// to w at the given level.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	if level == "" {
		level = "warn"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}
