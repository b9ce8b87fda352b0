package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRootCmdFlagDefaults(t *testing.T) {
	cmd := NewRootCmd()

	tests := []struct {
		flag     string
		expected string
	}{
		{"input", "data/input.sample.json"},
		{"output", "data/results.json"},
		{"log-level", "INFO"},
		{"settings", "config/settings.example.json"},
	}

	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.flag)
		if f == nil {
			t.Errorf("expected flag --%s to exist", tt.flag)
			continue
		}
		if f.DefValue != tt.expected {
			t.Errorf("expected --%s default %q, got %q", tt.flag, tt.expected, f.DefValue)
		}
	}
}

func TestRunScrapeEndToEnd(t *testing.T) {
	page := `<html><body><script>window.__sc_hydration = [{"hydratable":"user","data":{"kind":"user","id":42,"permalink_url":"https://soundcloud.com/forss","username":"forss"}}];</script></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.json")
	settingsPath := filepath.Join(dir, "settings.json")
	outputPath := filepath.Join(dir, "results.json")

	input := `{"profiles": ["` + server.URL + `/forss"], "keywords": []}`
	if err := os.WriteFile(inputPath, []byte(input), 0644); err != nil {
		t.Fatalf("writing input: %v", err)
	}
	settings := `{"base_url": "` + server.URL + `", "timeout": 5, "max_retries": 1, "backoff_factor": 0.01}`
	if err := os.WriteFile(settingsPath, []byte(settings), 0644); err != nil {
		t.Fatalf("writing settings: %v", err)
	}

	cmd := NewRootCmd()
	cmd.SetArgs([]string{
		"--input", inputPath,
		"--output", outputPath,
		"--settings", settingsPath,
		"--log-level", "ERROR",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command failed: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("reading results: %v", err)
	}

	var results []struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &results); err != nil {
		t.Fatalf("parsing results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 exported artist, got %d", len(results))
	}
	if results[0].ID != 42 || results[0].Username != "forss" {
		t.Errorf("unexpected exported record: %+v", results[0])
	}
}

func TestRunScrapeInvalidInputFails(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.json")
	if err := os.WriteFile(inputPath, []byte(`{"profiles": "not-a-list"}`), 0644); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	cmd := NewRootCmd()
	cmd.SetArgs([]string{
		"--input", inputPath,
		"--output", filepath.Join(dir, "results.json"),
		"--settings", filepath.Join(dir, "no-settings.json"),
		"--log-level", "ERROR",
	})
	if err := cmd.Execute(); err == nil {
		t.Error("expected validation error for non-list profiles")
	}
}

func TestRunScrapeMissingInputFails(t *testing.T) {
	dir := t.TempDir()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{
		"--input", filepath.Join(dir, "absent.json"),
		"--output", filepath.Join(dir, "results.json"),
		"--settings", filepath.Join(dir, "no-settings.json"),
		"--log-level", "ERROR",
	})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing input file")
	}
}

func TestRunScrapeZeroArtistsSucceeds(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.json")
	outputPath := filepath.Join(dir, "results.json")
	if err := os.WriteFile(inputPath, []byte(`{"profiles": [], "keywords": []}`), 0644); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	cmd := NewRootCmd()
	cmd.SetArgs([]string{
		"--input", inputPath,
		"--output", outputPath,
		"--settings", filepath.Join(dir, "no-settings.json"),
		"--log-level", "ERROR",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected zero-artist run to succeed, got %v", err)
	}

	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Error("expected no output file for a zero-artist run")
	}
}
