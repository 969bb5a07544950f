package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Analysis.WindowDurationSecs != 900 {
		t.Errorf("window duration default = %v, want 900", c.Analysis.WindowDurationSecs)
	}
	if c.Analysis.TimingOffsetSecs != -1 {
		t.Errorf("timing offset default = %v, want -1", c.Analysis.TimingOffsetSecs)
	}
	if c.Analysis.GapToleranceSecs != 5 {
		t.Errorf("gap tolerance default = %v, want 5", c.Analysis.GapToleranceSecs)
	}
	if c.Analysis.MinDurationSecs != 850 {
		t.Errorf("min duration default = %v, want 850", c.Analysis.MinDurationSecs)
	}
	if c.Analysis.VanishedTolerance != 0.8 {
		t.Errorf("vanished tolerance default = %v, want 0.8", c.Analysis.VanishedTolerance)
	}
	if len(c.Analysis.ImbalanceEdges) == 0 || len(c.Analysis.TimeEdges) == 0 {
		t.Fatalf("expected bucket edge defaults")
	}
	if c.Backend.Type != "none" {
		t.Errorf("backend default = %q, want none", c.Backend.Type)
	}
}

func TestValidateRejectsBadTolerance(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"zero gap", "analysis:\n  gap_tolerance_secs: 0\n"},
		{"negative vanished", "analysis:\n  vanished_tolerance: -0.5\n"},
		{"vanished above one", "analysis:\n  vanished_tolerance: 1.5\n"},
		{"min duration above window", "analysis:\n  min_duration_secs: 1000\n"},
		{"zero snapshot count", "analysis:\n  min_snapshot_count: 0\n"},
		{"unsorted edges", "analysis:\n  imbalance_bucket_edges: [0.2, 0.1]\n"},
		{"duplicate edges", "analysis:\n  time_bucket_edges: [0.5, 0.5]\n"},
		{"bad backend", "backend:\n  type: postgres\n"},
		{"kafka without brokers", "backend:\n  type: kafka\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.body)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("TRADES_FILE", "/data/trades.json")
	t.Setenv("L2_DATA_DIR", "/data/l2")
	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Data.TradesFile != "/data/trades.json" {
		t.Errorf("trades file = %q", c.Data.TradesFile)
	}
	if c.Data.L2Dir != "/data/l2" {
		t.Errorf("l2 dir = %q", c.Data.L2Dir)
	}
}
