package git

import (
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Info contains git repository information for a scanned root
type Info struct {
	Branch    string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Commit    string `json:"commit,omitempty" yaml:"commit,omitempty"`
	IsDirty   bool   `json:"is_dirty" yaml:"is_dirty"`
	RemoteURL string `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`
	Root      string `json:"-" yaml:"-"`
}

// Inspect returns git information for path, or nil when path is not in a repository
func Inspect(path string) *Info {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil
	}
	info := &Info{Root: worktree.Filesystem.Root()}

	head, err := repo.Head()
	if err == nil {
		info.Commit = head.Hash().String()[:7]
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		} else {
			info.Branch = "HEAD" // detached
		}
	}

	// Status walks the whole worktree
	if status, err := worktree.Status(); err == nil {
		info.IsDirty = !status.IsClean()
	}

	if cfg, err := repo.Config(); err == nil {
		if origin := cfg.Remotes["origin"]; origin != nil && len(origin.URLs) > 0 {
			info.RemoteURL = sanitizeRemoteURL(origin.URLs[0])
		}
	}

	return info
}

// sanitizeRemoteURL strips credentials from http(s) remotes so they never reach a report
func sanitizeRemoteURL(remote string) string {
	if !strings.HasPrefix(remote, "http://") && !strings.HasPrefix(remote, "https://") {
		return remote
	}
	u, err := url.Parse(remote)
	if err != nil || u.User == nil {
		return remote
	}
	u.User = nil
	return u.String()
}

// normalizeRemoteURL converts git URL variants to host/path form
func normalizeRemoteURL(remote string) string {
	remote = strings.TrimPrefix(remote, "https://")
	remote = strings.TrimPrefix(remote, "http://")
	remote = strings.TrimPrefix(remote, "git@")
	remote = strings.TrimPrefix(remote, "git://")
	remote = strings.TrimSuffix(remote, "/")
	remote = strings.TrimSuffix(remote, ".git")
	return remote
}

// RepositoryName returns the host/path of the origin remote, or "" without one
func (i *Info) RepositoryName() string {
	if i == nil || i.RemoteURL == "" {
		return ""
	}
	return normalizeRemoteURL(i.RemoteURL)
}
