// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SYKhayyat/docx2org/internal/history"
	"github.com/SYKhayyat/docx2org/pkg/types"
)

func TestBuildLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr string
		check   func(t *testing.T, out string)
	}{
		{
			name:   "text info hides debug",
			level:  "info",
			format: "text",
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "msg=visible")
				assert.NotContains(t, out, "hidden")
			},
		},
		{
			name:   "json debug",
			level:  "DEBUG",
			format: "json",
			check: func(t *testing.T, out string) {
				lines := strings.Split(strings.TrimSpace(out), "\n")
				require.Len(t, lines, 2)
				var rec map[string]any
				require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
				assert.Equal(t, "hidden", rec["msg"])
			},
		},
		{name: "bad level", level: "loud", format: "text", wantErr: "unknown log level"},
		{name: "bad format", level: "info", format: "xml", wantErr: "unknown log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := buildLogger(&buf, tt.level, tt.format)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			logger.Debug("hidden")
			logger.Info("visible")
			tt.check(t, buf.String())
		})
	}
}

func TestFormatHistory(t *testing.T) {
	var empty bytes.Buffer
	formatHistory(&empty, nil)
	assert.Equal(t, "No runs recorded.\n", empty.String())

	runs := []types.Run{{
		ID:        "6f1c2b1e-1111-4c7e-9a55-000000000001",
		Root:      "/home/user/Documents/notes",
		Policy:    types.PolicyRename,
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Summary:   types.BatchSummary{Total: 4, Converted: 2, Skipped: 1, Failed: 1},
	}}
	var buf bytes.Buffer
	formatHistory(&buf, runs)
	out := buf.String()
	assert.Contains(t, out, "6f1c2b1e-1111-4c7e-9a55-000000000001")
	assert.Contains(t, out, "rename")
	assert.Contains(t, out, "/home/user/Documents/notes")
	assert.Contains(t, out, "1 run(s)")
}

func TestTruncateLeft(t *testing.T) {
	assert.Equal(t, "/short", truncateLeft("/short", 10))
	assert.Equal(t, "...efgh", truncateLeft("/abcdefgh", 7))
}

func TestRecordRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), history.FileName)
	run := types.Run{
		ID:         "run-cli",
		Root:       "/docs",
		Policy:     types.PolicySkip,
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Summary:    types.BatchSummary{Total: 1, Converted: 1},
		Results: []types.ConversionResult{
			{InputPath: "/docs/a.docx", OutputPath: "/docs/a.org", Status: types.ConversionConverted},
		},
	}
	require.NoError(t, recordRun(context.Background(), path, run))

	store, err := history.Open(path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.Get(context.Background(), "run-cli")
	require.NoError(t, err)
	assert.Len(t, got.Results, 1)
}
