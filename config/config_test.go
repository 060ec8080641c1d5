package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/sfomuseum/go-photos-kmz/archive"
)

func TestLoadDefaults(t *testing.T) {

	cfg, err := Load("", nil)

	if err != nil {
		t.Fatalf("Failed to load config, %v", err)
	}

	if cfg.Output.ArchiveKey != "photos.kmz" || cfg.Convert.Workers != 1 || cfg.Convert.Level != flate.DefaultCompression {
		t.Fatalf("Unexpected defaults: %+v", cfg)
	}

	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("Unexpected log defaults: %+v", cfg.Log)
	}

	err = cfg.Validate()

	if err == nil {
		t.Fatalf("Expected defaults without a source or output to be invalid")
	}

	for _, m := range []string{"source.bucket_uri", "output.bucket_uri"} {

		if !strings.Contains(err.Error(), m) {
			t.Fatalf("Expected validation error to mention %s: %v", m, err)
		}
	}
}

func TestLoadPrecedence(t *testing.T) {

	path := filepath.Join(t.TempDir(), "photos-kmz.yaml")

	body := `
source:
  bucket_uri: file:///photos
output:
  bucket_uri: mem://
  archive_key: file.kmz
convert:
  workers: 2
  compression: store
log:
  format: json
`

	err := os.WriteFile(path, []byte(body), 0644)

	if err != nil {
		t.Fatalf("Failed to write config, %v", err)
	}

	t.Setenv("PHOTOS_KMZ_CONVERT_WORKERS", "3")
	t.Setenv("PHOTOS_KMZ_LOG_LEVEL", "debug")

	overrides := map[string]interface{}{
		"output.archive_key": "flag.kmz",
	}

	cfg, err := Load(path, overrides)

	if err != nil {
		t.Fatalf("Failed to load config, %v", err)
	}

	if cfg.Source.BucketURI != "file:///photos" || cfg.Output.BucketURI != "mem://" {
		t.Fatalf("Expected values from file: %+v", cfg)
	}

	if cfg.Convert.Workers != 3 || cfg.Log.Level != "debug" {
		t.Fatalf("Expected environment to override file: %+v", cfg)
	}

	if cfg.Output.ArchiveKey != "flag.kmz" {
		t.Fatalf("Expected override to win, got %s", cfg.Output.ArchiveKey)
	}

	if cfg.Log.Format != "json" || cfg.Output.ReportPath != "report.json" {
		t.Fatalf("Unexpected values: %+v", cfg)
	}

	err = cfg.Validate()

	if err != nil {
		t.Fatalf("Expected config to be valid, %v", err)
	}

	opts, err := cfg.Convert.AssembleOptions()

	if err != nil {
		t.Fatalf("Failed to derive assemble options, %v", err)
	}

	if opts.Method != archive.Store {
		t.Fatalf("Expected store method, got %d", opts.Method)
	}
}

func TestLoadMissingFile(t *testing.T) {

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)

	if err == nil {
		t.Fatalf("Expected an error for a missing config file")
	}
}

func TestValidate(t *testing.T) {

	valid := func() *Config {

		return &Config{
			Source:  SourceConfig{ReaderURI: "fs:///photos"},
			Output:  OutputConfig{BucketURI: "mem://", ArchiveKey: "photos.kmz"},
			Convert: ConvertConfig{Workers: 1, Compression: "deflate", Level: flate.DefaultCompression},
			Log:     LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := map[string]func(*Config){
		"both sources":     func(c *Config) { c.Source.BucketURI = "mem://" },
		"no workers":       func(c *Config) { c.Convert.Workers = 0 },
		"bad compression":  func(c *Config) { c.Convert.Compression = "bzip2" },
		"bad level":        func(c *Config) { c.Convert.Level = 12 },
		"bad log level":    func(c *Config) { c.Log.Level = "verbose" },
		"bad log format":   func(c *Config) { c.Log.Format = "xml" },
		"empty key":        func(c *Config) { c.Output.ArchiveKey = " " },
		"no features path": func(c *Config) { c.Output.FeaturesWriterURI = "stdout://" },
		"no report path":   func(c *Config) { c.Output.ReportWriterURI = "stdout://" },
	}

	err := valid().Validate()

	if err != nil {
		t.Fatalf("Expected config to be valid, %v", err)
	}

	for label, mutate := range tests {

		t.Run(label, func(t *testing.T) {

			cfg := valid()
			mutate(cfg)

			if cfg.Validate() == nil {
				t.Fatalf("Expected config to be invalid")
			}
		})
	}
}
