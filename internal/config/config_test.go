package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// DatabaseConfig.DSN
// ---------------------------------------------------------------------------

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "standard config",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Name:     "cookbook",
				User:     "cookbook",
				Password: "secret",
				SSLMode:  "require",
			},
			want: "host=localhost port=5432 dbname=cookbook user=cookbook password=secret sslmode=require",
		},
		{
			name: "disable ssl mode",
			cfg: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				Name:     "mydb",
				User:     "admin",
				Password: "pass",
				SSLMode:  "disable",
			},
			want: "host=db.example.com port=5433 dbname=mydb user=admin password=pass sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.DSN()
			if got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// UploadsConfig.MaxImageBytes
// ---------------------------------------------------------------------------

func TestMaxImageBytes(t *testing.T) {
	u := UploadsConfig{MaxImageMB: 5}
	if got := u.MaxImageBytes(); got != 5*1024*1024 {
		t.Errorf("MaxImageBytes() = %d, want %d", got, 5*1024*1024)
	}
}

// ---------------------------------------------------------------------------
// Config.Validate
// ---------------------------------------------------------------------------

func minimalValidConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			TokenSecret: strings.Repeat("s", 32),
			SessionTTL:  240 * time.Hour,
		},
		Uploads: UploadsConfig{MaxImageMB: 5},
		Storage: StorageConfig{
			DefaultBackend: "local",
			Local:          LocalStorageConfig{BasePath: "./storage"},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid minimal config passes", func(t *testing.T) {
		if err := minimalValidConfig().Validate(); err != nil {
			t.Errorf("Validate() unexpected error: %v", err)
		}
	})

	t.Run("missing token secret", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Auth.TokenSecret = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for missing token secret, got nil")
		}
	})

	t.Run("short token secret", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Auth.TokenSecret = "too-short"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for short token secret, got nil")
		}
	})

	t.Run("non-positive session ttl", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Auth.SessionTTL = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for zero session ttl, got nil")
		}
	})

	t.Run("non-positive image ceiling", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Uploads.MaxImageMB = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for zero max_image_mb, got nil")
		}
	})

	t.Run("unknown storage backend", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Storage.DefaultBackend = "ftp"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for unknown storage backend, got nil")
		}
	})

	t.Run("local backend missing base_path", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Storage.Local = LocalStorageConfig{}
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for missing local base_path, got nil")
		}
	})

	t.Run("gcs backend missing bucket", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Storage.DefaultBackend = "gcs"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for missing gcs bucket, got nil")
		}
	})

	t.Run("s3 backend missing bucket", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Storage.DefaultBackend = "s3"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for missing s3 bucket, got nil")
		}
	})

	t.Run("valid s3 config passes", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Storage.DefaultBackend = "s3"
		cfg.Storage.S3 = S3StorageConfig{Bucket: "images", Region: "us-east-1"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() unexpected error for valid s3 config: %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// expandEnv
// ---------------------------------------------------------------------------

func TestExpandEnv(t *testing.T) {
	t.Run("expands ${VAR} syntax", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_SECRET", "super-secret")
		got := expandEnv("${CONFIG_TEST_SECRET}")
		if got != "super-secret" {
			t.Errorf("expandEnv() = %q, want %q", got, "super-secret")
		}
	})

	t.Run("plain string passthrough", func(t *testing.T) {
		got := expandEnv("no-vars-here")
		if got != "no-vars-here" {
			t.Errorf("expandEnv() = %q, want %q", got, "no-vars-here")
		}
	})

	t.Run("unset variable expands to empty string", func(t *testing.T) {
		os.Unsetenv("CONFIG_TEST_DEFINITELY_UNSET_12345")
		got := expandEnv("${CONFIG_TEST_DEFINITELY_UNSET_12345}")
		if got != "" {
			t.Errorf("expandEnv() = %q, want empty string", got)
		}
	})

	t.Run("empty string passthrough", func(t *testing.T) {
		got := expandEnv("")
		if got != "" {
			t.Errorf("expandEnv() = %q, want empty string", got)
		}
	})
}

// ---------------------------------------------------------------------------
// Load – with config file
// ---------------------------------------------------------------------------

// writeTempConfig creates a temp YAML file and registers a cleanup to remove it.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "config-test-*.yaml")
	if err != nil {
		t.Fatal("CreateTemp:", err)
	}
	t.Cleanup(func() { os.Remove(f.Name()) })
	if _, err := f.WriteString(content); err != nil {
		t.Fatal("WriteString:", err)
	}
	f.Close()
	return f.Name()
}

const validSecretLine = "  token_secret: \"0123456789abcdef0123456789abcdef\"\n"

func TestLoad_WithConfigFile(t *testing.T) {
	content := `
server:
  host: "testhost"
  port: 9999
  base_url: "http://testhost:9999"
database:
  host: "dbhost"
  name: "testdb"
  user: "testuser"
auth:
` + validSecretLine + `
logging:
  level: "debug"
`
	path := writeTempConfig(t, content)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Host != "testhost" {
		t.Errorf("Server.Host = %q, want testhost", cfg.Server.Host)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Database.Host != "dbhost" {
		t.Errorf("Database.Host = %q, want dbhost", cfg.Database.Host)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	content := `
auth:
` + validSecretLine
	path := writeTempConfig(t, content)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("default Database.Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Database.SSLMode != "require" {
		t.Errorf("default Database.SSLMode = %q, want require", cfg.Database.SSLMode)
	}
	if cfg.Auth.SessionTTL != 240*time.Hour {
		t.Errorf("default Auth.SessionTTL = %v, want 240h", cfg.Auth.SessionTTL)
	}
	if cfg.Uploads.MaxImageMB != 5 {
		t.Errorf("default Uploads.MaxImageMB = %d, want 5", cfg.Uploads.MaxImageMB)
	}
	if cfg.Auth.Google.IssuerURL != "https://accounts.google.com" {
		t.Errorf("default Google issuer = %q", cfg.Auth.Google.IssuerURL)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_DB_PASS", "mysecret")
	content := `
database:
  password: "${TEST_DB_PASS}"
auth:
` + validSecretLine
	path := writeTempConfig(t, content)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.Password != "mysecret" {
		t.Errorf("Database.Password = %q, want mysecret", cfg.Database.Password)
	}
}

func TestLoad_MissingTokenSecret(t *testing.T) {
	path := writeTempConfig(t, "server:\n  port: 8080\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error for missing token secret, got nil")
	}
	if !strings.Contains(err.Error(), "token_secret") {
		t.Errorf("Load() error = %v, want token_secret mention", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "server: [unclosed")
	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}
