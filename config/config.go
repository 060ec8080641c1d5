// Package config loads settings for the photos2kmz tool from defaults, an optional YAML file, PHOTOS_KMZ_ environment
// variables and explicit overrides, in that order of precedence (lowest first).
package config

import (
	"fmt"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/sfomuseum/go-photos-kmz/archive"
	"github.com/spf13/viper"
)

// The prefix for environment variables: PHOTOS_KMZ_CONVERT_WORKERS -> convert.workers
const EnvPrefix = "PHOTOS_KMZ"

// Config holds all application configuration.
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Output  OutputConfig  `mapstructure:"output"`
	Convert ConvertConfig `mapstructure:"convert"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// SourceConfig defines where images are read from: either every image in a gocloud.dev/blob bucket or
// explicit paths read from a whosonfirst/go-reader source.
type SourceConfig struct {
	BucketURI string `mapstructure:"bucket_uri"`
	ReaderURI string `mapstructure:"reader_uri"`
}

type OutputConfig struct {
	BucketURI         string `mapstructure:"bucket_uri"`
	ArchiveKey        string `mapstructure:"archive_key"`
	Public            bool   `mapstructure:"public"`
	FeaturesWriterURI string `mapstructure:"features_writer_uri"`
	FeaturesPath      string `mapstructure:"features_path"`
	ReportWriterURI   string `mapstructure:"report_writer_uri"`
	ReportPath        string `mapstructure:"report_path"`
}

type ConvertConfig struct {
	Workers     int    `mapstructure:"workers"`
	HashImages  bool   `mapstructure:"hash_images"`
	Compression string `mapstructure:"compression"`
	Level       int    `mapstructure:"level"`
}

// AssembleOptions returns the archive.AssembleOptions for the compression settings in 'c'.
func (c ConvertConfig) AssembleOptions() (*archive.AssembleOptions, error) {

	opts := &archive.AssembleOptions{
		Level: c.Level,
	}

	switch strings.ToLower(c.Compression) {
	case "store":
		opts.Method = archive.Store
	case "deflate", "":
		opts.Method = archive.Deflate
	default:
		return nil, fmt.Errorf("Unsupported compression '%s'", c.Compression)
	}

	return opts, nil
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	// If not empty, conversion metrics are written to this path in the Prometheus text format.
	Textfile string `mapstructure:"textfile"`
}

// Load reads configuration from defaults, the YAML file at 'path' (if not empty), environment variables and
// 'overrides', whose keys are dotted setting names such as "convert.workers".
func Load(path string, overrides map[string]interface{}) (*Config, error) {

	v := viper.New()

	v.SetDefault("source.bucket_uri", "")
	v.SetDefault("source.reader_uri", "")
	v.SetDefault("output.bucket_uri", "")
	v.SetDefault("output.archive_key", "photos.kmz")
	v.SetDefault("output.public", false)
	v.SetDefault("output.features_writer_uri", "")
	v.SetDefault("output.features_path", "photos.geojson")
	v.SetDefault("output.report_writer_uri", "")
	v.SetDefault("output.report_path", "report.json")
	v.SetDefault("convert.workers", 1)
	v.SetDefault("convert.hash_images", false)
	v.SetDefault("convert.compression", "deflate")
	v.SetDefault("convert.level", flate.DefaultCompression)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.textfile", "")

	if path != "" {

		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		err := v.ReadInConfig()

		if err != nil {
			return nil, fmt.Errorf("Failed to read config file %s, %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for k, value := range overrides {
		v.Set(k, value)
	}

	var cfg Config

	err := v.Unmarshal(&cfg)

	if err != nil {
		return nil, fmt.Errorf("Failed to unmarshal config, %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane, reporting every problem at once.
func (c *Config) Validate() error {

	var errs []string

	switch {
	case c.Source.BucketURI == "" && c.Source.ReaderURI == "":
		errs = append(errs, "one of source.bucket_uri or source.reader_uri is required")
	case c.Source.BucketURI != "" && c.Source.ReaderURI != "":
		errs = append(errs, "source.bucket_uri and source.reader_uri are mutually exclusive")
	}

	if c.Output.BucketURI == "" {
		errs = append(errs, "output.bucket_uri is required")
	}

	if strings.TrimSpace(c.Output.ArchiveKey) == "" {
		errs = append(errs, "output.archive_key is required")
	}

	if c.Output.FeaturesWriterURI != "" && c.Output.FeaturesPath == "" {
		errs = append(errs, "output.features_path is required when output.features_writer_uri is set")
	}

	if c.Output.ReportWriterURI != "" && c.Output.ReportPath == "" {
		errs = append(errs, "output.report_path is required when output.report_writer_uri is set")
	}

	if c.Convert.Workers < 1 {
		errs = append(errs, fmt.Sprintf("convert.workers must be positive, got %d", c.Convert.Workers))
	}

	_, err := c.Convert.AssembleOptions()

	if err != nil {
		errs = append(errs, fmt.Sprintf("convert.compression must be 'store' or 'deflate', got '%s'", c.Convert.Compression))
	}

	if c.Convert.Level < flate.HuffmanOnly || c.Convert.Level > flate.BestCompression {
		errs = append(errs, fmt.Sprintf("convert.level must be %d-%d, got %d", flate.HuffmanOnly, flate.BestCompression, c.Convert.Level))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
		// pass
	default:
		errs = append(errs, fmt.Sprintf("log.level must be one of debug, info, warn or error, got '%s'", c.Log.Level))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
		// pass
	default:
		errs = append(errs, fmt.Sprintf("log.format must be 'text' or 'json', got '%s'", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("Invalid config:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
