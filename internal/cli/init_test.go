package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	if err := os.WriteFile(env, []byte("CONSUMABLES_TEST_KEY=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONSUMABLES_TEST_KEY", "")
	os.Unsetenv("CONSUMABLES_TEST_KEY")

	LoadEnvFile(env)
	if got := os.Getenv("CONSUMABLES_TEST_KEY"); got != "from-file" {
		t.Fatalf("expected value from .env, got %q", got)
	}

	// missing files are ignored
	LoadEnvFile(filepath.Join(dir, "missing.env"))
}

func TestLoadAndValidateConfig(t *testing.T) {
	for _, key := range []string{"HISTORY_SOURCE", "MONTHLY_DIR", "GITHUB_REPO", "GOOGLE_SPREADSHEET_ID", "SQLITE_SOURCE_PATH"} {
		t.Setenv(key, "")
	}
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("expected error without any source")
	}

	t.Setenv("MONTHLY_DIR", t.TempDir())
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MonthlyDir == "" {
		t.Fatal("monthly dir not loaded")
	}
}

func TestSignalContextCancel(t *testing.T) {
	logger := SetupLogger("error")
	ctx, cancel := SignalContext(context.Background(), logger)
	cancel()
	<-ctx.Done()
}
