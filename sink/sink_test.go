package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		errMsg string
	}{
		{name: "header in namespace dir", path: "UnityEngine/Camera.h"},
		{name: "nested", path: "DotNet/System/Collections/List.h"},
		{name: "top level", path: "Point.h"},
		{name: "empty", path: "", errMsg: "empty"},
		{name: "leading slash", path: "/usr/include/Point.h", errMsg: "absolute paths not allowed"},
		{name: "drive letter", path: "C:/out/Point.h", errMsg: "absolute paths not allowed"},
		{name: "backslash", path: `UnityEngine\Camera.h`, errMsg: "backslash"},
		{name: "inner dotdot", path: "foo/../bar.h", errMsg: "path traversal not allowed"},
		{name: "leading dotdot", path: "../bar.h", errMsg: "path traversal not allowed"},
		{name: "only dotdot", path: "..", errMsg: "path traversal not allowed"},
		{name: "dot prefix", path: "./foo/bar.h", errMsg: "not clean"},
		{name: "double slash", path: "foo//bar.h", errMsg: "not clean"},
		{name: "trailing slash", path: "foo/bar/", errMsg: "not clean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()

	t.Run("write and read", func(t *testing.T) {
		s := NewMemorySink()
		require.NoError(t, s.WriteFile(ctx, "Demo/Point.h", []byte("#pragma once\n")))
		assert.Equal(t, "#pragma once\n", string(s.Get("Demo/Point.h")))
		assert.Nil(t, s.Get("missing.h"))
	})

	t.Run("returned content is a copy", func(t *testing.T) {
		s := NewMemorySink()
		content := []byte("original")
		require.NoError(t, s.WriteFile(ctx, "a.h", content))
		content[0] = 'X'
		got := s.Get("a.h")
		got[1] = 'Y'
		files := s.Files()
		files["b.h"] = nil

		assert.Equal(t, "original", string(s.Get("a.h")))
		assert.Len(t, s.Files(), 1)
	})

	t.Run("paths sorted and reset", func(t *testing.T) {
		s := NewMemorySink()
		for _, p := range []string{"b/B.h", "a/A.h", "c.h"} {
			require.NoError(t, s.WriteFile(ctx, p, nil))
		}
		assert.Equal(t, []string{"a/A.h", "b/B.h", "c.h"}, s.Paths())
		s.Reset()
		assert.Empty(t, s.Paths())
	})

	t.Run("canceled context", func(t *testing.T) {
		s := NewMemorySink()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, s.WriteFile(cctx, "a.h", nil), context.Canceled)
	})

	t.Run("invalid path", func(t *testing.T) {
		s := NewMemorySink()
		assert.Error(t, s.WriteFile(ctx, "../escape.h", nil))
	})
}

func TestMemorySink_Concurrent(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			path := fmt.Sprintf("dir/Type%d.h", id%10)
			assert.NoError(t, s.WriteFile(ctx, path, []byte(path)))
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Files()
			_ = s.Get("dir/Type0.h")
		}()
	}
	wg.Wait()

	assert.Len(t, s.Files(), 10)
}

func TestFilesystemSink(t *testing.T) {
	ctx := context.Background()

	t.Run("creates namespace directories", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFilesystemSink(dir)
		require.NoError(t, s.WriteFile(ctx, "UnityEngine/Rendering/Camera.h", []byte("nested")))
		got, err := os.ReadFile(filepath.Join(dir, "UnityEngine", "Rendering", "Camera.h"))
		require.NoError(t, err)
		assert.Equal(t, "nested", string(got))
	})

	t.Run("file mode", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFilesystemSink(dir)
		s.Mode = 0600
		require.NoError(t, s.WriteFile(ctx, "a.h", []byte("x")))
		info, err := os.Stat(filepath.Join(dir, "a.h"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		s.Mode = 0
		require.NoError(t, s.WriteFile(ctx, "b.h", []byte("x")))
		info, err = os.Stat(filepath.Join(dir, "b.h"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm(), "default mode")
	})

	t.Run("overwrite", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFilesystemSink(dir)
		for _, content := range []string{"first", "second"} {
			require.NoError(t, s.WriteFile(ctx, "a.h", []byte(content)))
		}
		got, _ := os.ReadFile(filepath.Join(dir, "a.h"))
		assert.Equal(t, "second", string(got))
	})

	t.Run("no overwrite", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFilesystemSink(dir)
		s.Overwrite = false
		require.NoError(t, s.WriteFile(ctx, "a.h", []byte("first")))
		assert.ErrorIs(t, s.WriteFile(ctx, "a.h", []byte("second")), ErrFileExists)
		got, _ := os.ReadFile(filepath.Join(dir, "a.h"))
		assert.Equal(t, "first", string(got))
	})

	t.Run("no temp files left", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFilesystemSink(dir)
		require.NoError(t, s.WriteFile(ctx, "a.h", []byte("x")))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), ".bindgen-"), "temp file left behind: %s", e.Name())
		}
	})

	t.Run("rejects unsafe paths", func(t *testing.T) {
		s := NewFilesystemSink(t.TempDir())
		for _, p := range []string{"/etc/passwd", "a/../../escape.h", "C:/Windows/x.h"} {
			assert.Error(t, s.WriteFile(ctx, p, nil), p)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		s := NewFilesystemSink(t.TempDir())
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.Error(t, s.WriteFile(cctx, "a.h", nil))
	})
}

func TestDiscardSink(t *testing.T) {
	var s DiscardSink
	ctx := context.Background()
	require.NoError(t, s.WriteFile(ctx, "a.h", []byte("abc")))
	require.NoError(t, s.WriteFile(ctx, "b/B.h", []byte("de")))
	assert.Error(t, s.WriteFile(ctx, "/abs.h", nil))

	files, n := s.Stats()
	assert.Equal(t, 2, files)
	assert.EqualValues(t, 5, n)
}
