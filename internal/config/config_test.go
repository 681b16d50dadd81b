package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every key so the host environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(strings.ToUpper(k), "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Port != "8080" || c.GeminiModel == "" || c.HighValueScore != 12 || c.LeaderboardSize != 5 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.SessionTTL != 30*time.Minute {
		t.Fatalf("session ttl = %s", c.SessionTTL)
	}
	ref, err := c.Reference()
	if err != nil || !ref.Equal(time.Date(2018, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("reference = %v, %v", ref, err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("GEMINI_TEMPERATURE", "0.2")
	t.Setenv("HIGH_VALUE_SCORE", "10")
	t.Setenv("SESSION_TTL", "5m")
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.GeminiAPIKey != "secret" || c.GeminiModel != "gemini-1.5-pro" {
		t.Fatalf("gemini settings = %+v", c)
	}
	if c.GeminiTemperature != 0.2 || c.HighValueScore != 10 || c.SessionTTL != 5*time.Minute {
		t.Fatalf("overrides not applied: %+v", c)
	}
}

func TestLoad_ZeroTemperature(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_TEMPERATURE", "0")
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.GeminiTemperature != 0 {
		t.Fatalf("temperature = %g, want 0", c.GeminiTemperature)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	content := "gemini_model: gemini-from-file\nleaderboard_size: 3\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.GeminiModel != "gemini-from-file" || c.LeaderboardSize != 3 {
		t.Fatalf("file values not applied: %+v", c)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"RFM_REFERENCE_DATE": "01/12/2018",
		"HIGH_VALUE_SCORE":   "20",
		"GEMINI_MODEL":       " ",
		"GEMINI_TEMPERATURE": "-1",
		"GEMINI_MAX_TOKENS":  "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error for %s=%q", key, val)
			}
		})
	}
}
