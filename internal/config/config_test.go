package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default pipeline config
	if cfg.Pipeline.RunTimeoutSeconds != 45 {
		t.Errorf("Pipeline.RunTimeoutSeconds = %d, want 45", cfg.Pipeline.RunTimeoutSeconds)
	}
	if cfg.Pipeline.SpecialistTimeoutSeconds != 15 {
		t.Errorf("Pipeline.SpecialistTimeoutSeconds = %d, want 15", cfg.Pipeline.SpecialistTimeoutSeconds)
	}
	if cfg.Pipeline.MaxSpecialists != 3 {
		t.Errorf("Pipeline.MaxSpecialists = %d, want 3", cfg.Pipeline.MaxSpecialists)
	}
	if cfg.Pipeline.RecommendationCap != 7 {
		t.Errorf("Pipeline.RecommendationCap = %d, want 7", cfg.Pipeline.RecommendationCap)
	}
	if cfg.Pipeline.MinQueryTokens != 3 {
		t.Errorf("Pipeline.MinQueryTokens = %d, want 3", cfg.Pipeline.MinQueryTokens)
	}
	if cfg.Pipeline.ClarificationThreshold != 0.4 {
		t.Errorf("Pipeline.ClarificationThreshold = %f, want 0.4", cfg.Pipeline.ClarificationThreshold)
	}
	if cfg.Pipeline.BlockConfidenceThreshold != 0.6 {
		t.Errorf("Pipeline.BlockConfidenceThreshold = %f, want 0.6", cfg.Pipeline.BlockConfidenceThreshold)
	}
	if !cfg.Pipeline.DiagnosisShortcut {
		t.Error("Pipeline.DiagnosisShortcut should be true by default")
	}

	// Verify default reasoning config
	if cfg.Reasoning.Backend != "http" {
		t.Errorf("Reasoning.Backend = %q, want %q", cfg.Reasoning.Backend, "http")
	}
	if cfg.Reasoning.Endpoint == "" {
		t.Error("Reasoning.Endpoint should not be empty by default")
	}
	if cfg.Reasoning.TimeoutSeconds != 30 {
		t.Errorf("Reasoning.TimeoutSeconds = %d, want 30", cfg.Reasoning.TimeoutSeconds)
	}
	if cfg.Reasoning.MaxTokens != 1024 {
		t.Errorf("Reasoning.MaxTokens = %d, want 1024", cfg.Reasoning.MaxTokens)
	}

	// Verify default routing config
	if cfg.Routing.ExtraKeywords == nil {
		t.Error("Routing.ExtraKeywords should be initialized")
	}
	if cfg.Routing.HistoryTurns != 6 {
		t.Errorf("Routing.HistoryTurns = %d, want 6", cfg.Routing.HistoryTurns)
	}

	// Verify default history config
	if cfg.History.MaxTurns != 20 {
		t.Errorf("History.MaxTurns = %d, want 20", cfg.History.MaxTurns)
	}

	// Verify default logging config
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.MaxSizeMB != 10 {
		t.Errorf("Logging.MaxSizeMB = %d, want 10", cfg.Logging.MaxSizeMB)
	}
	if cfg.Logging.MaxBackups != 3 {
		t.Errorf("Logging.MaxBackups = %d, want 3", cfg.Logging.MaxBackups)
	}
}

func TestPipelineConfig_RunTimeout(t *testing.T) {
	cfg := PipelineConfig{RunTimeoutSeconds: 45}

	expected := 45 * time.Second
	if got := cfg.RunTimeout(); got != expected {
		t.Errorf("RunTimeout() = %v, want %v", got, expected)
	}
}

func TestPipelineConfig_SpecialistTimeout(t *testing.T) {
	cfg := PipelineConfig{SpecialistTimeoutSeconds: 15}

	expected := 15 * time.Second
	if got := cfg.SpecialistTimeout(); got != expected {
		t.Errorf("SpecialistTimeout() = %v, want %v", got, expected)
	}
}

func TestReasoningConfig_Timeout(t *testing.T) {
	cfg := ReasoningConfig{TimeoutSeconds: 30}

	expected := 30 * time.Second
	if got := cfg.Timeout(); got != expected {
		t.Errorf("Timeout() = %v, want %v", got, expected)
	}
}

func TestValidReasoningBackends(t *testing.T) {
	backends := ValidReasoningBackends()

	if len(backends) != 2 {
		t.Errorf("ValidReasoningBackends() returned %d backends, want 2", len(backends))
	}

	expected := map[string]bool{"http": true, "static": true}
	for _, b := range backends {
		if !expected[b] {
			t.Errorf("unexpected backend %q", b)
		}
	}
}

func TestIsValidReasoningBackend(t *testing.T) {
	tests := []struct {
		backend string
		valid   bool
	}{
		{"http", true},
		{"static", true},
		{"", false},
		{"HTTP", false},
		{"local", false},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			if got := IsValidReasoningBackend(tt.backend); got != tt.valid {
				t.Errorf("IsValidReasoningBackend(%q) = %v, want %v", tt.backend, got, tt.valid)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

		dir := ConfigDir()
		expected := filepath.Join("/tmp/xdg-test", "routeflow")
		if dir != expected {
			t.Errorf("ConfigDir() = %q, want %q", dir, expected)
		}
	})

	t.Run("falls back to home config", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")

		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("cannot determine home dir: %v", err)
		}

		dir := ConfigDir()
		expected := filepath.Join(home, ".config", "routeflow")
		if dir != expected {
			t.Errorf("ConfigDir() = %q, want %q", dir, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	file := ConfigFile()
	expected := filepath.Join("/tmp/xdg-test", "routeflow", "config.yaml")
	if file != expected {
		t.Errorf("ConfigFile() = %q, want %q", file, expected)
	}
}

func TestGet(t *testing.T) {
	// Get should never return nil even without any viper state
	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
}
