package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/campus-budget-coach/internal/config"
	"github.com/boddenberg/campus-budget-coach/internal/goal"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "JWT_SECRET", "USE_SUPABASE", "ROUNDING_POLICY", "HTTP_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg := config.Load()
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.JWTSecret != "" {
		t.Error("JWT should be disabled by default")
	}
	if cfg.UseSupabase {
		t.Error("supabase should be off by default")
	}
	if cfg.RoundingPolicy != "ceil" {
		t.Errorf("expected ceil, got %s", cfg.RoundingPolicy)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("expected 10s, got %v", cfg.HTTPTimeout)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("USE_SUPABASE", "true")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := config.Load()
	if cfg.Port != 9090 {
		t.Errorf("expected 9090, got %d", cfg.Port)
	}
	if !cfg.UseSupabase {
		t.Error("expected supabase enabled")
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.HTTPTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.MaxRetries)
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nCOACH_TEST_A=from-file\nCOACH_TEST_B=\"quoted\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COACH_TEST_A", "from-env")
	t.Setenv("COACH_TEST_B", "")
	os.Unsetenv("COACH_TEST_B")

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("COACH_TEST_A"); got != "from-env" {
		t.Errorf("env must take precedence, got %q", got)
	}
	if got := os.Getenv("COACH_TEST_B"); got != "quoted" {
		t.Errorf("expected quoted value unwrapped, got %q", got)
	}
}

func TestLoadDotEnv_MissingFileSkipped(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing files must be skipped, got %v", err)
	}
}

func TestLoadDotEnv_EarlierFileWins(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	base := filepath.Join(dir, ".env")
	if err := os.WriteFile(local, []byte("COACH_TEST_C=local\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(base, []byte("COACH_TEST_C=base\nCOACH_TEST_D=base\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COACH_TEST_C", "")
	t.Setenv("COACH_TEST_D", "")
	os.Unsetenv("COACH_TEST_C")
	os.Unsetenv("COACH_TEST_D")

	if err := config.LoadDotEnv(local, base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("COACH_TEST_C"); got != "local" {
		t.Errorf("expected local value, got %q", got)
	}
	if got := os.Getenv("COACH_TEST_D"); got != "base" {
		t.Errorf("expected base value, got %q", got)
	}
}

func TestLoadDotEnv_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("COACH_TEST_E=\"unterminated\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COACH_TEST_E", "")
	os.Unsetenv("COACH_TEST_E")
	if err := config.LoadDotEnv(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadTuning_MissingFileReturnsDefaults(t *testing.T) {
	tn, err := config.LoadTuning(filepath.Join(t.TempDir(), "coach.toml"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := config.DefaultTuning()
	if tn.Budget.ReserveCeiling != def.Budget.ReserveCeiling || tn.Goal.Rounding != goal.RoundCeil {
		t.Errorf("expected defaults, got %+v", tn)
	}
}

func TestLoadTuning_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.toml")
	content := `
[budget]
reserve_ceiling = 150000
needs_reduction_order = ["교통", "특별지출", "식사"]

[goal]
rounding = "floor"
aggressive_rate = 0.4
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	tn, err := config.LoadTuning(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tn.Budget.ReserveCeiling != 150_000 {
		t.Errorf("expected 150000, got %d", tn.Budget.ReserveCeiling)
	}
	if tn.Budget.NeedsReductionOrder[0] != "교통" {
		t.Errorf("expected overridden order, got %v", tn.Budget.NeedsReductionOrder)
	}
	if tn.Goal.Rounding != goal.RoundFloor || tn.Goal.AggressiveRate != 0.4 {
		t.Errorf("unexpected goal tuning: %+v", tn.Goal)
	}
	if tn.Budget.CeilingRatio != 1.3 {
		t.Errorf("untouched values keep defaults, got %v", tn.Budget.CeilingRatio)
	}

	tn, err = config.LoadTuning(path, "ceil")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tn.Goal.Rounding != goal.RoundCeil {
		t.Errorf("env policy must win, got %s", tn.Goal.Rounding)
	}
}

func TestLoadTuning_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name, content, rounding string
	}{
		{"bad toml", "[budget\n", ""},
		{"bad policy", "", "half-up"},
		{"bad floor ratio", "[budget]\nneeds_floor_ratio = 1.5\n", ""},
		{"bad ceiling", "[budget]\nceiling_ratio = 0.9\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := config.LoadTuning(path, tt.rounding); err == nil {
				t.Error("expected error")
			}
		})
	}
}
