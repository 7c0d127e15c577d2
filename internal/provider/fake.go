package provider

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// FakeProvider implements the Provider interface for testing.
// Parent directories are created implicitly when files are added.
type FakeProvider struct {
	files   map[string][]types.File
	content map[string]string
}

// NewFakeProvider creates a new fake provider with an empty root
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		files:   map[string][]types.File{".": {}},
		content: make(map[string]string),
	}
}

// AddFile adds a file to the fake provider
func (p *FakeProvider) AddFile(filePath, content string) {
	filePath = path.Clean(filePath)
	dir := path.Dir(filePath)
	p.AddDir(dir)

	p.files[dir] = append(p.files[dir], types.File{
		Name: path.Base(filePath),
		Path: filePath,
		Type: "file",
		Size: int64(len(content)),
	})
	p.content[filePath] = content
}

// AddDir adds a directory and its parents to the fake provider
func (p *FakeProvider) AddDir(dirPath string) {
	dirPath = path.Clean(dirPath)
	if _, exists := p.files[dirPath]; exists {
		return
	}
	p.files[dirPath] = []types.File{}
	if dirPath == "." {
		return
	}
	parent := path.Dir(dirPath)
	p.AddDir(parent)
	p.files[parent] = append(p.files[parent], types.File{
		Name: path.Base(dirPath),
		Path: dirPath,
		Type: "dir",
	})
}

// ListDir returns the contents of a directory sorted by name
func (p *FakeProvider) ListDir(dirPath string) ([]types.File, error) {
	files, exists := p.files[path.Clean(dirPath)]
	if !exists {
		return nil, fmt.Errorf("list %s: %w", dirPath, fs.ErrNotExist)
	}
	out := append([]types.File(nil), files...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Open returns the content of a file
func (p *FakeProvider) Open(filePath string) (string, error) {
	content, exists := p.content[path.Clean(filePath)]
	if !exists {
		return "", fmt.Errorf("open %s: %w", filePath, fs.ErrNotExist)
	}
	return content, nil
}

// ReadFile reads file content as bytes
func (p *FakeProvider) ReadFile(filePath string) ([]byte, error) {
	content, err := p.Open(filePath)
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

// Exists checks if a file or directory exists
func (p *FakeProvider) Exists(filePath string) (bool, error) {
	filePath = path.Clean(filePath)
	_, fileExists := p.content[filePath]
	_, dirExists := p.files[filePath]
	return fileExists || dirExists, nil
}

// IsDir checks if a path is a directory
func (p *FakeProvider) IsDir(filePath string) (bool, error) {
	_, exists := p.files[path.Clean(filePath)]
	return exists, nil
}

// GetBasePath returns the base path for this provider
func (p *FakeProvider) GetBasePath() string {
	return "."
}
