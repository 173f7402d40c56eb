package artifact

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestArchiveFiles(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"arelax.in", "relax.out", "RELAX.xml", "lambda", "QE.dyn0", "QE.dyn1", "QE333.fc", "phonon.dos", "QE.wfc1", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// директории не архивируются
	if err := os.MkdirAll(filepath.Join(dir, "QE.dyn.d"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ArchiveFiles(dir)
	if err != nil {
		t.Fatalf("ArchiveFiles() error = %v", err)
	}

	want := []string{"QE.dyn0", "QE.dyn1", "QE333.fc", "RELAX.xml", "arelax.in", "lambda", "phonon.dos", "relax.out"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ArchiveFiles() = %v, want %v", got, want)
	}
}

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("6f1c1f5e-8d43-4c5a-9a55-0e1f2b1d9a10")
	if got := ObjectKey(id, "lambda"); got != "runs/6f1c1f5e-8d43-4c5a-9a55-0e1f2b1d9a10/lambda" {
		t.Errorf("ObjectKey() = %s", got)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("S3_ENDPOINT", "")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() error = %v", err)
	}
	if cfg.Enabled() {
		t.Error("Enabled() = true without endpoint")
	}

	t.Setenv("S3_ENDPOINT", "localhost:9000")
	t.Setenv("S3_ACCESS_KEY", "supercon")
	t.Setenv("S3_SECRET_KEY", "superconminio")
	t.Setenv("S3_USE_SSL", "true")
	cfg, err = ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() error = %v", err)
	}
	if !cfg.UseSSL || cfg.Bucket != "supercon-runs" || cfg.Region != "us-east-1" {
		t.Errorf("cfg = %+v", cfg)
	}

	t.Setenv("S3_USE_SSL", "maybe")
	if _, err := ConfigFromEnv(); err == nil {
		t.Error("ConfigFromEnv() error = nil for invalid S3_USE_SSL")
	}
}

func TestConfig_Validate(t *testing.T) {
	base := Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"scheme", func(c *Config) { c.Endpoint = "http://localhost:9000" }, true},
		{"no access key", func(c *Config) { c.AccessKey = "" }, true},
		{"no secret", func(c *Config) { c.SecretKey = " " }, true},
		{"no bucket", func(c *Config) { c.Bucket = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
