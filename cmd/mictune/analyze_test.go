package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linuxmatters/mictune/internal/config"
)

func TestAnalyzeDir(t *testing.T) {
	cfg := config.Config{Paths: config.Paths{Runs: "/data/runs"}}
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		name  string
		out   string
		saved bool
		id    int
		want  string
	}{
		{"saved", "", true, 7, filepath.Join("/data/runs", "run-007")},
		{"unsaved", "", false, 1, filepath.Join("/data/runs", "analyze-20260314-092653")},
		{"explicit out", "/tmp/reports", false, 1, "/tmp/reports"},
		{"explicit out saved", "/tmp/reports", true, 7, "/tmp/reports"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analyzeDir(cfg, tt.out, tt.saved, tt.id, now))
		})
	}
}

func TestAnalyzeDirUnsavedNeverUsesRunDir(t *testing.T) {
	cfg := config.Config{Paths: config.Paths{Runs: "/data/runs"}}
	got := analyzeDir(cfg, "", false, 1, time.Now())
	assert.NotEqual(t, runDir(cfg, 1), got)
}
