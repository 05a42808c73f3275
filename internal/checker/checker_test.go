package checker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsz-lang/tszcore/internal/buildcache"
	"github.com/tsz-lang/tszcore/internal/diagnostics"
	"github.com/tsz-lang/tszcore/internal/runinfo"
)

func errDiag(path string, line int) diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrNotAssignable, diagnostics.Span{File: path, StartLine: line}, "not assignable")
}

func TestCheckAllRunsEveryFile(t *testing.T) {
	calls := map[string]int{}
	p := New(func(ctx context.Context, run *runinfo.Run, f File) ([]diagnostics.DiagnosticError, error) {
		calls[f.Path]++
		if f.Path == "b.tsz" {
			return []diagnostics.DiagnosticError{errDiag(f.Path, 1)}, nil
		}
		return nil, nil
	})

	files := []File{{Path: "a.tsz", Content: []byte("a")}, {Path: "b.tsz", Content: []byte("b")}}
	run := runinfo.New(1000)
	results, err := p.CheckAll(context.Background(), run, files)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, calls["a.tsz"])
	assert.Equal(t, 1, calls["b.tsz"])
	for _, r := range results {
		if r.Path == "b.tsz" {
			assert.Len(t, r.Diagnostics, 1)
		}
	}
}

func TestCheckAllPropagatesError(t *testing.T) {
	p := New(func(ctx context.Context, run *runinfo.Run, f File) ([]diagnostics.DiagnosticError, error) {
		if f.Path == "broken.tsz" {
			return nil, errors.New("boom")
		}
		return nil, nil
	})

	files := []File{{Path: "ok.tsz"}, {Path: "broken.tsz"}}
	_, err := p.CheckAll(context.Background(), runinfo.New(1000), files)
	require.Error(t, err)
}

func TestCheckAllExhaustsFuel(t *testing.T) {
	p := New(func(ctx context.Context, run *runinfo.Run, f File) ([]diagnostics.DiagnosticError, error) {
		return nil, nil
	})
	p.Concurrency = 1

	files := make([]File, 10)
	for i := range files {
		files[i] = File{Path: "f.tsz"}
	}
	_, err := p.CheckAll(context.Background(), runinfo.New(perFileFuelFee*3), files)
	require.Error(t, err, "expected fuel exhaustion error")
}

func TestCheckAllUsesBuildCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.sqlite")
	bc, err := buildcache.Open(cachePath)
	require.NoError(t, err)
	defer bc.Close()

	calls := 0
	p := New(func(ctx context.Context, run *runinfo.Run, f File) ([]diagnostics.DiagnosticError, error) {
		calls++
		return []diagnostics.DiagnosticError{errDiag(f.Path, 7)}, nil
	})
	p.BuildCache = bc

	file := File{Path: "cached.tsz", Content: []byte("const x = 1;")}
	run := runinfo.New(1000)

	first, err := p.CheckAll(context.Background(), run, []File{file})
	require.NoError(t, err)
	assert.False(t, first[0].FromCache, "first run should not be served from cache")

	second, err := p.CheckAll(context.Background(), run, []File{file})
	require.NoError(t, err)
	require.True(t, second[0].FromCache, "second run should be served from cache")
	assert.Equal(t, 1, calls, "FileChecker should not be called again on a cache hit")
	require.Len(t, second[0].Diagnostics, 1)
	assert.Equal(t, diagnostics.ErrNotAssignable, second[0].Diagnostics[0].Code)
}
