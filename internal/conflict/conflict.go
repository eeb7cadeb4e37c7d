// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package conflict decides what to do when a proposed output file already
// exists: overwrite it, skip the document, or write to a renamed path.
package conflict

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/SYKhayyat/docx2org/pkg/types"
)

// Resolver applies a ConflictPolicy to proposed output paths. It remembers
// every path it has handed out, so two targets of one batch never share an
// output. A Resolver is safe for concurrent use.
type Resolver struct {
	mu       sync.Mutex
	policy   types.ConflictPolicy
	prompter Prompter
	claimed  map[string]struct{}
	exists   func(string) bool
}

// NewResolver returns a Resolver for policy. The prompter is consulted only
// under the interactive policy and may be nil otherwise.
func NewResolver(policy types.ConflictPolicy, p Prompter) (*Resolver, error) {
	if policy == types.PolicyInteractive && p == nil {
		return nil, errors.New("interactive conflict policy requires a prompter")
	}
	return &Resolver{
		policy:   policy,
		prompter: p,
		claimed:  make(map[string]struct{}),
		exists:   fileExists,
	}, nil
}

// Policy returns the policy currently in effect. It changes when the
// operator picks an apply-to-all choice.
func (r *Resolver) Policy() types.ConflictPolicy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.policy
}

// Decide returns the decision for proposed. A path that neither exists nor
// was claimed earlier in the batch proceeds without consulting the policy.
// Decide never touches the filesystem beyond existence checks. ctx bounds
// the wait for an interactive answer.
func (r *Resolver) Decide(ctx context.Context, proposed string) (types.ConflictDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.taken(proposed) {
		return r.claim(proposed), nil
	}
	// Another document of this batch already writes here. The policy only
	// governs files that existed before the batch, so this one is renamed.
	if _, ok := r.claimed[proposed]; ok {
		return r.claim(r.nextFree(proposed)), nil
	}

	policy := r.policy
	if policy == types.PolicyInteractive {
		choice, err := r.prompter.Choose(ctx, proposed)
		if err != nil {
			return types.ConflictDecision{}, fmt.Errorf("resolving conflict for %s: %w", proposed, err)
		}
		policy = choice.Policy()
		if choice.All() {
			r.policy = policy
		}
	}

	switch policy {
	case types.PolicyOverwrite:
		return r.claim(proposed), nil
	case types.PolicySkip:
		return types.Skip(), nil
	case types.PolicyRename:
		return r.claim(r.nextFree(proposed)), nil
	default:
		return types.ConflictDecision{}, fmt.Errorf("unsupported conflict policy %q", policy)
	}
}

// NextFreePath returns name-<k>.ext for the smallest k >= 1 such that the
// path does not exist.
func NextFreePath(path string) string {
	return nextFree(path, fileExists)
}

func (r *Resolver) nextFree(path string) string {
	return nextFree(path, r.taken)
}

func nextFree(path string, taken func(string) bool) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for k := 1; ; k++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, k, ext)
		if !taken(candidate) {
			return candidate
		}
	}
}

func (r *Resolver) taken(path string) bool {
	if _, ok := r.claimed[path]; ok {
		return true
	}
	return r.exists(path)
}

func (r *Resolver) claim(path string) types.ConflictDecision {
	r.claimed[path] = struct{}{}
	return types.Proceed(path)
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
