package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/kpalette"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type S3Config struct {
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

type MinIOConfig struct {
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Secure    bool   `yaml:"secure,omitempty"`
	Region    string `yaml:"region,omitempty"`
}

type StorageConfig struct {
	S3    S3Config    `yaml:"s3"`
	MinIO MinIOConfig `yaml:"minio"`
}

type Config struct {
	K             int           `yaml:"k"`
	MaxIterations int           `yaml:"max_iterations"`
	Epsilon       float64       `yaml:"epsilon"`
	Seed          *uint64       `yaml:"seed,omitempty"`
	EmptyCluster  string        `yaml:"empty_cluster"`
	Workers       int           `yaml:"workers"`
	Frames        string        `yaml:"frames,omitempty"`
	Report        string        `yaml:"report,omitempty"`
	Isolate       []int         `yaml:"isolate,omitempty"`
	Log           LogConfig     `yaml:"log"`
	Storage       StorageConfig `yaml:"storage"`
}

func DefaultConfig() *Config {
	return &Config{
		K:             kpalette.DefaultK,
		MaxIterations: kpalette.DefaultMaxIterations,
		Epsilon:       kpalette.DefaultEpsilon,
		EmptyCluster:  kpalette.HoldPrevious.String(),
		Workers:       1,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads a YAML config over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// applyEnv fills storage credentials that the file left empty.
func (c *Config) applyEnv() {
	if c.Storage.MinIO.AccessKey == "" {
		c.Storage.MinIO.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	}
	if c.Storage.MinIO.SecretKey == "" {
		c.Storage.MinIO.SecretKey = os.Getenv("MINIO_SECRET_KEY")
	}
	if c.Storage.S3.Endpoint == "" {
		c.Storage.S3.Endpoint = os.Getenv("KPALETTE_S3_ENDPOINT")
	}
}

// applyFlags overrides config values with flags the user set explicitly.
func (c *Config) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("max-iterations") {
		c.MaxIterations, err = flags.GetInt("max-iterations")
	}
	if err == nil && flags.Changed("epsilon") {
		c.Epsilon, err = flags.GetFloat64("epsilon")
	}
	if err == nil && flags.Changed("seed") {
		var seed uint64
		seed, err = flags.GetUint64("seed")
		c.Seed = &seed
	}
	if err == nil && flags.Changed("empty-cluster") {
		c.EmptyCluster, err = flags.GetString("empty-cluster")
	}
	if err == nil && flags.Changed("workers") {
		c.Workers, err = flags.GetInt("workers")
	}
	if err == nil && flags.Changed("frames") {
		c.Frames, err = flags.GetString("frames")
	}
	if err == nil && flags.Changed("report") {
		c.Report, err = flags.GetString("report")
	}
	if err == nil && flags.Changed("isolate") {
		c.Isolate, err = flags.GetIntSlice("isolate")
	}
	if err == nil && flags.Changed("log-level") {
		c.Log.Level, err = flags.GetString("log-level")
	}
	if err == nil && flags.Changed("log-format") {
		c.Log.Format, err = flags.GetString("log-format")
	}

	return err
}

// Options converts the config to clustering options.
func (c *Config) Options() ([]kpalette.Option, error) {
	policy, err := kpalette.ParseEmptyClusterPolicy(c.EmptyCluster)
	if err != nil {
		return nil, err
	}

	opts := []kpalette.Option{
		kpalette.WithMaxIterations(c.MaxIterations),
		kpalette.WithEpsilon(c.Epsilon),
		kpalette.WithEmptyClusterPolicy(policy),
		kpalette.WithWorkers(c.Workers),
	}
	if c.Seed != nil {
		opts = append(opts, kpalette.WithSeed(*c.Seed))
	}
	return opts, nil
}

// NewLogger builds the logger described by c.
func (c LogConfig) NewLogger(w io.Writer) (*kpalette.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.Format) {
	case "", "text":
		return kpalette.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return kpalette.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, errors.New("log format must be text or json")
	}
}
