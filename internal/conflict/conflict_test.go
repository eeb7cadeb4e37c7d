// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package conflict

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SYKhayyat/docx2org/pkg/types"
)

// scriptedPrompter answers prompts from a fixed list and records the paths
// it was asked about.
type scriptedPrompter struct {
	answers []Choice
	asked   []string
	err     error
}

func (s *scriptedPrompter) Choose(ctx context.Context, path string) (Choice, error) {
	s.asked = append(s.asked, path)
	if s.err != nil {
		return "", s.err
	}
	if len(s.answers) == 0 {
		return "", errors.New("no scripted answer left")
	}
	c := s.answers[0]
	s.answers = s.answers[1:]
	return c, nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o644))
}

func newResolver(t *testing.T, policy types.ConflictPolicy, p Prompter) *Resolver {
	t.Helper()
	r, err := NewResolver(policy, p)
	require.NoError(t, err)
	return r
}

func TestDecide_NoConflictNeverPrompts(t *testing.T) {
	dir := t.TempDir()
	p := &scriptedPrompter{}
	r := newResolver(t, types.PolicyInteractive, p)

	out := filepath.Join(dir, "a.org")
	d, err := r.Decide(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, types.Proceed(out), d)
	assert.Empty(t, p.asked)
}

func TestDecide_Policies(t *testing.T) {
	tests := []struct {
		policy   types.ConflictPolicy
		wantSkip bool
		wantPath string
	}{
		{policy: types.PolicyOverwrite, wantPath: "a.org"},
		{policy: types.PolicySkip, wantSkip: true},
		{policy: types.PolicyRename, wantPath: "a-1.org"},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			dir := t.TempDir()
			out := filepath.Join(dir, "a.org")
			touch(t, out)

			d, err := newResolver(t, tt.policy, nil).Decide(context.Background(), out)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSkip, d.Skipped())
			if !tt.wantSkip {
				assert.Equal(t, filepath.Join(dir, tt.wantPath), d.OutputPath)
			}

			data, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, "existing", string(data), "decision must not modify the file")
		})
	}
}

func TestDecide_RenamePicksSmallestFreeSuffix(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.org", "a-1.org", "a-2.org", "a-4.org"} {
		touch(t, filepath.Join(dir, name))
	}

	d, err := newResolver(t, types.PolicyRename, nil).Decide(context.Background(), filepath.Join(dir, "a.org"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a-3.org"), d.OutputPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, filepath.Base(d.OutputPath), e.Name())
	}
}

func TestDecide_ClaimsWithinBatch(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a.org")
	r := newResolver(t, types.PolicyRename, nil)

	first, err := r.Decide(context.Background(), out)
	require.NoError(t, err)
	second, err := r.Decide(context.Background(), out)
	require.NoError(t, err)
	third, err := r.Decide(context.Background(), out)
	require.NoError(t, err)

	assert.Equal(t, out, first.OutputPath)
	assert.Equal(t, filepath.Join(dir, "a-1.org"), second.OutputPath)
	assert.Equal(t, filepath.Join(dir, "a-2.org"), third.OutputPath)
}

func TestDecide_BatchCollisionRenamedUnderAnyPolicy(t *testing.T) {
	for _, policy := range []types.ConflictPolicy{types.PolicyOverwrite, types.PolicySkip, types.PolicyInteractive} {
		t.Run(string(policy), func(t *testing.T) {
			dir := t.TempDir()
			out := filepath.Join(dir, "a.org")
			// A prompter with no answers fails the test if it is consulted.
			r := newResolver(t, policy, &scriptedPrompter{})

			first, err := r.Decide(context.Background(), out)
			require.NoError(t, err)
			second, err := r.Decide(context.Background(), out)
			require.NoError(t, err)

			assert.Equal(t, out, first.OutputPath)
			assert.False(t, second.Skipped())
			assert.Equal(t, filepath.Join(dir, "a-1.org"), second.OutputPath)
		})
	}
}

func TestDecide_Interactive(t *testing.T) {
	tests := []struct {
		name     string
		answer   Choice
		wantSkip bool
		wantPath string
	}{
		{name: "overwrite", answer: ChoiceOverwrite, wantPath: "a.org"},
		{name: "skip", answer: ChoiceSkip, wantSkip: true},
		{name: "rename", answer: ChoiceRename, wantPath: "a-1.org"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			out := filepath.Join(dir, "a.org")
			touch(t, out)
			p := &scriptedPrompter{answers: []Choice{tt.answer}}
			r := newResolver(t, types.PolicyInteractive, p)

			d, err := r.Decide(context.Background(), out)
			require.NoError(t, err)
			assert.Equal(t, []string{out}, p.asked)
			assert.Equal(t, tt.wantSkip, d.Skipped())
			if !tt.wantSkip {
				assert.Equal(t, filepath.Join(dir, tt.wantPath), d.OutputPath)
			}
			assert.Equal(t, types.PolicyInteractive, r.Policy(), "single choice must not change the policy")
		})
	}
}

func TestDecide_InteractiveApplyToAll(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.org"), filepath.Join(dir, "b.org")
	touch(t, a)
	touch(t, b)
	p := &scriptedPrompter{answers: []Choice{ChoiceSkipAll}}
	r := newResolver(t, types.PolicyInteractive, p)

	d1, err := r.Decide(context.Background(), a)
	require.NoError(t, err)
	d2, err := r.Decide(context.Background(), b)
	require.NoError(t, err)

	assert.True(t, d1.Skipped())
	assert.True(t, d2.Skipped())
	assert.Len(t, p.asked, 1)
	assert.Equal(t, types.PolicySkip, r.Policy())
}

func TestDecide_PrompterError(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a.org")
	touch(t, out)
	r := newResolver(t, types.PolicyInteractive, &scriptedPrompter{err: io.ErrUnexpectedEOF})

	_, err := r.Decide(context.Background(), out)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestNewResolver_InteractiveNeedsPrompter(t *testing.T) {
	_, err := NewResolver(types.PolicyInteractive, nil)
	assert.Error(t, err)
}

func TestNextFreePath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "x-1.org"), NextFreePath(filepath.Join(dir, "x.org")))
	touch(t, filepath.Join(dir, "x-1.org"))
	assert.Equal(t, filepath.Join(dir, "x-2.org"), NextFreePath(filepath.Join(dir, "x.org")))
}

func TestTerminalPrompter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Choice
		wantErr error
		wantOut []string
	}{
		{name: "overwrite", input: "o\n", want: ChoiceOverwrite},
		{name: "rename all", input: "R\n", want: ChoiceRenameAll},
		{name: "word", input: "skip\n", want: ChoiceSkip},
		{name: "no trailing newline", input: "s", want: ChoiceSkip},
		{
			name:    "re-prompts on bad input",
			input:   "x\n\no\n",
			want:    ChoiceOverwrite,
			wantOut: []string{`invalid choice "x"`, "empty response"},
		},
		{name: "eof", input: "", wantErr: io.ErrUnexpectedEOF},
		{name: "bad then eof", input: "maybe", wantErr: io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewTerminalPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Choose(context.Background(), "/docs/a.org")
			assert.Contains(t, out.String(), "File already exists: /docs/a.org")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			for _, s := range tt.wantOut {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestTerminalPrompter_CancelWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	p := NewTerminalPrompter(pr, &out)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := p.Choose(ctx, "/docs/a.org")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// An answer typed after the cancelled prompt serves the next one.
	go io.WriteString(pw, "S\n")
	got, err := p.Choose(context.Background(), "/docs/b.org")
	require.NoError(t, err)
	assert.Equal(t, ChoiceSkipAll, got)
}

func TestChoice(t *testing.T) {
	assert.Equal(t, types.PolicyOverwrite, ChoiceOverwriteAll.Policy())
	assert.True(t, ChoiceOverwriteAll.All())
	assert.False(t, ChoiceRename.All())

	_, err := ParseChoice("yes")
	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)
}
