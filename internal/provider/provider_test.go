package provider

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeProvider(t *testing.T) {
	p := NewFakeProvider()
	p.AddFile("main.py", "import util")
	p.AddFile("pkg/sub/util.py", "x = 1")

	root, err := p.ListDir(".")
	require.NoError(t, err)
	require.Len(t, root, 2)
	assert.Equal(t, "main.py", root[0].Name)
	assert.Equal(t, "pkg", root[1].Name)
	assert.True(t, root[1].IsDir())

	content, err := p.Open("pkg/sub/util.py")
	require.NoError(t, err)
	assert.Equal(t, "x = 1", content)

	_, err = p.Open("missing.py")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	exists, _ := p.Exists("pkg/sub")
	assert.True(t, exists)
	isDir, _ := p.IsDir("pkg/sub/util.py")
	assert.False(t, isDir)
}

func TestWalk(t *testing.T) {
	p := NewFakeProvider()
	p.AddFile("a.py", "")
	p.AddFile("node_modules/lib/index.js", "")
	p.AddFile("src/b.py", "")
	p.AddFile("src/deep/c.py", "")

	var visited []string
	err := Walk(p, ".", func(f types.File) error {
		if f.IsDir() && f.Name == "node_modules" {
			return SkipDir
		}
		if !f.IsDir() {
			visited = append(visited, f.Path)
		}
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "src/b.py", "src/deep/c.py"}, visited)
}

func TestWalk_StopsOnError(t *testing.T) {
	p := NewFakeProvider()
	p.AddFile("a.py", "")
	p.AddFile("b.py", "")

	stop := errors.New("stop")
	count := 0
	err := Walk(p, ".", func(f types.File) error {
		count++
		return stop
	}, nil)
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, count)
}

func TestFSProvider(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "app.py"), []byte("print(1)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# readme"), 0o644))

	p := NewFSProvider(dir)
	assert.Equal(t, dir, p.GetBasePath())

	var files []string
	require.NoError(t, Walk(p, ".", func(f types.File) error {
		if !f.IsDir() {
			files = append(files, f.Path)
		}
		return nil
	}, nil))
	assert.Equal(t, []string{"README.md", "src/app.py"}, files)

	content, err := p.Open("src/app.py")
	require.NoError(t, err)
	assert.Equal(t, "print(1)", content)

	exists, err := p.Exists("missing")
	require.NoError(t, err)
	assert.False(t, exists)

	var listErr error
	require.NoError(t, Walk(p, "missing", func(types.File) error { return nil }, func(_ string, err error) { listErr = err }))
	assert.Error(t, listErr)
}
