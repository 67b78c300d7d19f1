package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsDurationOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal time.Duration
		expected   time.Duration
	}{
		{"parses duration", "1500ms", time.Second, 1500 * time.Millisecond},
		{"parses bare milliseconds", "250", time.Second, 250 * time.Millisecond},
		{"zero is allowed", "0", time.Second, 0},
		{"uses default for empty", "", 3 * time.Second, 3 * time.Second},
		{"uses default for garbage", "soon", 3 * time.Second, 3 * time.Second},
		{"uses default for negative", "-2s", 3 * time.Second, 3 * time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tc.envValue)

			result := getEnvAsDurationOrDefault("TEST_DURATION", tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("TEST_REQUIRED", "value123")
	defer os.Unsetenv("TEST_REQUIRED")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"GEMINI_MODEL", "GEMINI_ENDPOINT", "ADVISOR_PROVIDER", "CREDENTIAL_KEY", "LOCAL_RESPONSE_DELAY"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Provider != "local" {
		t.Errorf("Expected local provider by default, got %q", cfg.Provider)
	}
	if cfg.CredentialKey != "gemini_api_key" {
		t.Errorf("Expected default credential key, got %q", cfg.CredentialKey)
	}
	if cfg.LocalResponseDelay != 2*time.Second {
		t.Errorf("Expected 2s local delay, got %s", cfg.LocalResponseDelay)
	}
	if cfg.GeminiEndpoint != GeminiEndpointForModel(defaultGeminiModel) {
		t.Errorf("Unexpected endpoint %q", cfg.GeminiEndpoint)
	}
}

func TestLoad_EndpointFollowsModel(t *testing.T) {
	t.Setenv("GEMINI_ENDPOINT", "")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")

	cfg := Load()

	expected := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	if cfg.GeminiEndpoint != expected {
		t.Errorf("Expected %q, got %q", expected, cfg.GeminiEndpoint)
	}
}
