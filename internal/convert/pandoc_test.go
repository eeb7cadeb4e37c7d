// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine implements engine.Engine for testing.
type fakeEngine struct {
	stderr string
	err    error
	block  bool // wait for ctx cancellation before returning
	args   []string
}

func (f *fakeEngine) Name() string    { return "pandoc" }
func (f *fakeEngine) Version() string { return "pandoc 3.1.11" }

func (f *fakeEngine) Run(ctx context.Context, args []string, stderr io.Writer) error {
	f.args = args
	io.WriteString(stderr, f.stderr)
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func TestPandocConverter_Success(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.docx")
	out := filepath.Join(dir, "out", "nested", "a.org")
	eng := &fakeEngine{}

	outcome := NewPandocConverter(eng, PandocOptions{Args: []string{"--wrap=none"}}).Convert(context.Background(), in, out)

	assert.True(t, outcome.OK)
	assert.Empty(t, outcome.Diagnostic)
	assert.Equal(t, []string{"--wrap=none", "-s", in, "-o", out}, eng.args)
	assert.DirExists(t, filepath.Dir(out))
}

func TestPandocConverter_Failures(t *testing.T) {
	tests := []struct {
		name     string
		engine   *fakeEngine
		opts     PandocOptions
		wantDiag string
	}{
		{
			name:     "stderr becomes diagnostic",
			engine:   &fakeEngine{stderr: "  pandoc: couldn't unpack docx container\n", err: errors.New("exit status 61")},
			wantDiag: "pandoc: couldn't unpack docx container",
		},
		{
			name:     "empty stderr falls back to exit error",
			engine:   &fakeEngine{err: errors.New("running pandoc: signal: segmentation fault")},
			wantDiag: "running pandoc: signal: segmentation fault",
		},
		{
			name:     "timeout",
			engine:   &fakeEngine{block: true},
			opts:     PandocOptions{Timeout: 20 * time.Millisecond},
			wantDiag: "timed out after 20ms",
		},
		{
			name:     "truncated",
			engine:   &fakeEngine{stderr: strings.Repeat("x", 100), err: errors.New("exit status 1")},
			opts:     PandocOptions{MaxDiagnostic: 10},
			wantDiag: "xxxxxxx…",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			outcome := NewPandocConverter(tt.engine, tt.opts).Convert(context.Background(),
				filepath.Join(dir, "a.docx"), filepath.Join(dir, "a.org"))

			assert.False(t, outcome.OK)
			assert.Equal(t, tt.wantDiag, outcome.Diagnostic)
		})
	}
}

func TestPandocConverter_Interrupted(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	outcome := NewPandocConverter(&fakeEngine{block: true}, PandocOptions{}).Convert(ctx,
		filepath.Join(dir, "a.docx"), filepath.Join(dir, "a.org"))

	assert.False(t, outcome.OK)
	assert.Equal(t, "interrupted", outcome.Diagnostic)
}

func TestPandocConverter_OutputDirError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	eng := &fakeEngine{}

	outcome := NewPandocConverter(eng, PandocOptions{}).Convert(context.Background(),
		filepath.Join(dir, "a.docx"), filepath.Join(blocker, "sub", "a.org"))

	assert.False(t, outcome.OK)
	assert.Contains(t, outcome.Diagnostic, "creating output directory")
	assert.Nil(t, eng.args, "engine must not run")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "unbounded", Truncate("unbounded", 0))

	hebrew := strings.Repeat("שלום ", 20)
	got := Truncate(hebrew, 16)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 16)
	assert.True(t, strings.HasSuffix(got, "…"))
}
