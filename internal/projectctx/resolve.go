package projectctx

import (
	"path"
	"sort"
	"strings"
)

var jsCandidateSuffixes = []string{"", ".js", ".jsx", ".ts", ".tsx", "/index.js", "/index.jsx", "/index.ts", "/index.tsx"}

// resolver maps raw import specifiers to project files
type resolver struct {
	files    map[string]bool
	byDir    map[string][]string
	goModule string
}

func newResolver(files []string, goModule string) *resolver {
	r := &resolver{
		files:    make(map[string]bool, len(files)),
		byDir:    make(map[string][]string),
		goModule: goModule,
	}
	for _, f := range files {
		r.files[f] = true
		dir := path.Dir(f)
		r.byDir[dir] = append(r.byDir[dir], f)
	}
	return r
}

// resolve returns the project files an import of from refers to, sorted
func (r *resolver) resolve(from, spec string) []string {
	var targets []string
	switch kindOf(from) {
	case kindPython:
		targets = r.resolvePython(from, spec)
	case kindJavaScript:
		targets = r.resolveJS(from, spec)
	case kindGo:
		targets = r.resolveGo(spec)
	case kindTerraform:
		targets = r.resolveTerraform(from, spec)
	}
	sort.Strings(targets)
	return targets
}

func (r *resolver) first(candidates ...string) []string {
	for _, c := range candidates {
		c = path.Clean(c)
		if r.files[c] {
			return []string{c}
		}
	}
	return nil
}

func (r *resolver) resolvePython(from, spec string) []string {
	dir := path.Dir(from)
	if strings.HasPrefix(spec, ".") {
		trimmed := strings.TrimLeft(spec, ".")
		for i := 1; i < len(spec)-len(trimmed); i++ {
			dir = path.Dir(dir)
		}
		rel := strings.ReplaceAll(trimmed, ".", "/")
		if rel == "" {
			return r.first(path.Join(dir, "__init__.py"))
		}
		base := path.Join(dir, rel)
		return r.first(base+".py", base+"/__init__.py")
	}

	rel := strings.ReplaceAll(spec, ".", "/")
	return r.first(
		rel+".py",
		rel+"/__init__.py",
		path.Join(dir, rel)+".py",
		path.Join(dir, rel, "__init__.py"),
	)
}

func (r *resolver) resolveJS(from, spec string) []string {
	if !strings.HasPrefix(spec, ".") && !strings.HasPrefix(spec, "/") {
		return nil // package import
	}
	base := path.Join(path.Dir(from), spec)
	if strings.HasPrefix(spec, "/") {
		base = strings.TrimPrefix(spec, "/")
	}
	candidates := make([]string, 0, len(jsCandidateSuffixes))
	for _, suffix := range jsCandidateSuffixes {
		candidates = append(candidates, base+suffix)
	}
	return r.first(candidates...)
}

func (r *resolver) resolveGo(spec string) []string {
	if r.goModule == "" {
		return nil
	}
	var dir string
	switch {
	case spec == r.goModule:
		dir = "."
	case strings.HasPrefix(spec, r.goModule+"/"):
		dir = strings.TrimPrefix(spec, r.goModule+"/")
	default:
		return nil
	}
	var targets []string
	for _, f := range r.byDir[dir] {
		if kindOf(f) == kindGo && !strings.HasSuffix(f, "_test.go") {
			targets = append(targets, f)
		}
	}
	return targets
}

func (r *resolver) resolveTerraform(from, spec string) []string {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		return nil // registry or remote module
	}
	dir := path.Clean(path.Join(path.Dir(from), spec))
	var targets []string
	for _, f := range r.byDir[dir] {
		if kindOf(f) == kindTerraform {
			targets = append(targets, f)
		}
	}
	return targets
}
