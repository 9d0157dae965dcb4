package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:            "8082",
		APIBaseURL:      "http://localhost:8000",
		APITimeout:      15 * time.Second,
		RefreshInterval: 5 * time.Minute,
		SQLiteDBPath:    "./test.db",
		CacheSize:       128,
		CacheTTL:        time.Minute,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "empty API base URL",
			mutate:      func(c *Config) { c.APIBaseURL = "" },
			wantErr:     true,
			errorString: "API base URL cannot be empty",
		},
		{
			name:        "bad API base URL scheme",
			mutate:      func(c *Config) { c.APIBaseURL = "ftp://localhost" },
			wantErr:     true,
			errorString: "invalid API base URL scheme 'ftp'",
		},
		{
			name:        "refresh interval too short",
			mutate:      func(c *Config) { c.RefreshInterval = time.Second },
			wantErr:     true,
			errorString: "invalid refresh interval 1s: must be at least 10 seconds",
		},
		{
			name:        "empty sqlite path",
			mutate:      func(c *Config) { c.SQLiteDBPath = "" },
			wantErr:     true,
			errorString: "SQLite snapshot path cannot be empty",
		},
		{
			name: "invalid AMQP URL scheme",
			mutate: func(c *Config) {
				c.AMQPURL = "http://localhost:5672/"
				c.AMQPExchange = "fino"
				c.AMQPQueue = "q"
			},
			wantErr:     true,
			errorString: "invalid AMQP URL scheme 'http': must be 'amqp' or 'amqps'",
		},
		{
			name: "AMQP URL without exchange",
			mutate: func(c *Config) {
				c.AMQPURL = "amqp://localhost:5672/"
				c.AMQPExchange = ""
				c.AMQPQueue = "q"
			},
			wantErr:     true,
			errorString: "AMQP exchange name cannot be empty when AMQP URL is provided",
		},
		{
			name: "AMQP URL without queue",
			mutate: func(c *Config) {
				c.AMQPURL = "amqp://localhost:5672/"
				c.AMQPExchange = "fino"
				c.AMQPQueue = ""
			},
			wantErr:     true,
			errorString: "AMQP queue name cannot be empty when AMQP URL is provided",
		},
		{
			name: "spreadsheet without credentials",
			mutate: func(c *Config) {
				c.GoogleSpreadsheetID = "123456789"
				c.GoogleSheetName = "Report"
			},
			wantErr:     true,
			errorString: "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided for sheets export",
		},
		{
			name: "spreadsheet without sheet name",
			mutate: func(c *Config) {
				c.GoogleSpreadsheetID = "123456789"
				c.GoogleSheetName = ""
				c.GoogleCredentialsJSON = "{}"
			},
			wantErr:     true,
			errorString: "Google Sheet name is required when a spreadsheet ID is configured",
		},
		{
			name: "nonexistent credentials file",
			mutate: func(c *Config) {
				c.GoogleSpreadsheetID = "123456789"
				c.GoogleCredentialsFile = "/non/existent/creds.json"
			},
			wantErr:     true,
			errorString: "Google credentials file does not exist",
		},
		{
			name:        "cache size too small",
			mutate:      func(c *Config) { c.CacheSize = 0 },
			wantErr:     true,
			errorString: "invalid cache size 0: must be at least 1",
		},
		{
			name:        "cache TTL too short",
			mutate:      func(c *Config) { c.CacheTTL = 100 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid cache TTL 100ms: must be at least 1 second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Config.Validate() error = nil, wantErr true")
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr false", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	originalVars := map[string]string{
		"PORT":             os.Getenv("PORT"),
		"API_BASE_URL":     os.Getenv("API_BASE_URL"),
		"API_TIMEOUT":      os.Getenv("API_TIMEOUT"),
		"REFRESH_INTERVAL": os.Getenv("REFRESH_INTERVAL"),
		"SQLITE_DB_PATH":   os.Getenv("SQLITE_DB_PATH"),
		"CACHE_SIZE":       os.Getenv("CACHE_SIZE"),
	}
	for key := range originalVars {
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range originalVars {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8082" {
			t.Errorf("Load() Port = %v, want 8082", cfg.Port)
		}
		if cfg.APIBaseURL != "http://localhost:8000" {
			t.Errorf("Load() APIBaseURL = %v, want http://localhost:8000", cfg.APIBaseURL)
		}
		if cfg.RefreshInterval != 5*time.Minute {
			t.Errorf("Load() RefreshInterval = %v, want 5m", cfg.RefreshInterval)
		}
		if cfg.SQLiteDBPath != "./data/fino.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/fino.db", cfg.SQLiteDBPath)
		}
		if cfg.CacheSize != 128 {
			t.Errorf("Load() CacheSize = %v, want 128", cfg.CacheSize)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv("PORT", "9090")
		os.Setenv("API_BASE_URL", "https://api.example.com")
		os.Setenv("REFRESH_INTERVAL", "90s")
		os.Setenv("CACHE_SIZE", "64")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.APIBaseURL != "https://api.example.com" {
			t.Errorf("Load() APIBaseURL = %v, want https://api.example.com", cfg.APIBaseURL)
		}
		if cfg.RefreshInterval != 90*time.Second {
			t.Errorf("Load() RefreshInterval = %v, want 90s", cfg.RefreshInterval)
		}
		if cfg.CacheSize != 64 {
			t.Errorf("Load() CacheSize = %v, want 64", cfg.CacheSize)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		os.Setenv("REFRESH_INTERVAL", "invalid")
		os.Setenv("CACHE_SIZE", "invalid")

		cfg := Load()

		if cfg.RefreshInterval != 5*time.Minute {
			t.Errorf("Load() RefreshInterval = %v, want 5m (default for invalid input)", cfg.RefreshInterval)
		}
		if cfg.CacheSize != 128 {
			t.Errorf("Load() CacheSize = %v, want 128 (default for invalid input)", cfg.CacheSize)
		}
	})
}
