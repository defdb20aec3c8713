package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	baseDir := t.TempDir()
	c, err := New(baseDir)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if c.File.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.File.Version)
	}
	if c.ServiceURL() != defaultServiceURL {
		t.Fatalf("expected default service url %q, got %q", defaultServiceURL, c.ServiceURL())
	}
	if c.ListenAddr() != defaultListenAddr {
		t.Fatalf("expected default listen addr %q, got %q", defaultListenAddr, c.ListenAddr())
	}
}

func TestLoadParsesYaml(t *testing.T) {
	baseDir := t.TempDir()
	configYAML := strings.TrimSpace(`
version: 1
client:
  service_url: http://farm.example.com:9000/
server:
  listen_addr: ":9000"
  redis_addr: "localhost:6379"
ai:
  endpoint: https://ai.example.com/v1
  model: custom-model
`)
	if err := os.WriteFile(filepath.Join(baseDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := New(baseDir)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if c.ServiceURL() != "http://farm.example.com:9000" {
		t.Fatalf("expected trailing slash stripped, got %q", c.ServiceURL())
	}
	if c.RedisAddr() != "localhost:6379" {
		t.Fatalf("wrong redis addr: %q", c.RedisAddr())
	}
	if c.AIModel() != "custom-model" {
		t.Fatalf("wrong model: %q", c.AIModel())
	}
}

func TestLoadValidation(t *testing.T) {
	baseDir := t.TempDir()
	configYAML := strings.TrimSpace(`
version: 1
client:
  service_url: "not a url"
`)
	if err := os.WriteFile(filepath.Join(baseDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(baseDir); err == nil {
		t.Fatalf("expected validation error but got none")
	}
}

func TestInitDirSeedsConfig(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "profile")
	if err := InitDir(baseDir); err != nil {
		t.Fatalf("InitDir returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(baseDir, "config.yaml")); err != nil {
		t.Fatalf("expected seeded config.yaml: %v", err)
	}
	if _, err := os.Stat(filepath.Join(baseDir, "logs")); err != nil {
		t.Fatalf("expected logs directory: %v", err)
	}
	c, err := New(baseDir)
	if err != nil {
		t.Fatalf("New after InitDir returned error: %v", err)
	}
	if c.ServiceURL() != defaultServiceURL {
		t.Fatalf("seeded config should carry defaults, got %q", c.ServiceURL())
	}
}

func TestSetServiceURLPersists(t *testing.T) {
	baseDir := t.TempDir()
	c, err := New(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetServiceURL("http://other.example.com:5004"); err != nil {
		t.Fatalf("SetServiceURL returned error: %v", err)
	}
	reloaded, err := New(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.ServiceURL() != "http://other.example.com:5004" {
		t.Fatalf("expected persisted url, got %q", reloaded.ServiceURL())
	}
}
