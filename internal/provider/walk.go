package provider

import (
	"errors"
	"path"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// SkipDir is returned by a WalkFunc to skip the directory it was called for
var SkipDir = errors.New("skip this directory")

// WalkFunc is called for every entry below the walk root
type WalkFunc func(file types.File) error

// Walk visits every entry below root in lexical order, depth first.
// Directory listing errors are handed to onError (when set) and the directory is skipped.
func Walk(p types.Provider, root string, fn WalkFunc, onError func(dir string, err error)) error {
	entries, err := p.ListDir(root)
	if err != nil {
		if onError != nil {
			onError(root, err)
		}
		return nil
	}

	for _, entry := range entries {
		if entry.Path == "" {
			entry.Path = path.Join(root, entry.Name)
		}
		err := fn(entry)
		if entry.IsDir() {
			if errors.Is(err, SkipDir) {
				continue
			}
			if err != nil {
				return err
			}
			if err := Walk(p, entry.Path, fn, onError); err != nil {
				return err
			}
			continue
		}
		if err != nil && !errors.Is(err, SkipDir) {
			return err
		}
	}
	return nil
}
