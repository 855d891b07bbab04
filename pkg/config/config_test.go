package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sampleConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type validatedConfig struct {
	Port int `yaml:"port"`
}

var errBadPort = errors.New("port out of range")

func (c *validatedConfig) Validate() error {
	if c.Port <= 0 {
		return errBadPort
	}
	return nil
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeYAML(t, "name: ansuz\nport: 8080\n")
	var cfg sampleConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "ansuz" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")
	path := writeYAML(t, "name: ${SAMPLE_NAME}\n")
	var cfg sampleConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("Name = %q", cfg.Name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg sampleConfig
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRunsValidator(t *testing.T) {
	path := writeYAML(t, "port: -1\n")
	var cfg validatedConfig
	err := Load(path, &cfg)
	if !errors.Is(err, errBadPort) {
		t.Fatalf("error = %v, want errBadPort", err)
	}
}

func TestLoadIfExists_MissingKeepsDefaults(t *testing.T) {
	cfg := sampleConfig{Name: "default", Port: 9090}
	if err := LoadIfExists(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err != nil {
		t.Fatalf("LoadIfExists: %v", err)
	}
	if cfg.Name != "default" || cfg.Port != 9090 {
		t.Errorf("defaults overwritten: %+v", cfg)
	}
}

func TestLoadIfExists_MissingStillValidates(t *testing.T) {
	cfg := validatedConfig{Port: 0}
	err := LoadIfExists(filepath.Join(t.TempDir(), "absent.yaml"), &cfg)
	if !errors.Is(err, errBadPort) {
		t.Fatalf("error = %v, want errBadPort", err)
	}
}

func TestLoadIfExists_Present(t *testing.T) {
	path := writeYAML(t, "name: found\n")
	cfg := sampleConfig{Name: "default"}
	if err := LoadIfExists(path, &cfg); err != nil {
		t.Fatalf("LoadIfExists: %v", err)
	}
	if cfg.Name != "found" {
		t.Errorf("Name = %q", cfg.Name)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeYAML(t, "name: [unclosed\n")
	var cfg sampleConfig
	if err := Load(path, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}
