package projectctx

import (
	"go/parser"
	"go/token"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

var (
	pythonImport     = regexp.MustCompile(`(?m)^import\s+(.+)$`)
	pythonFromImport = regexp.MustCompile(`(?m)^from\s+(\S+)\s+import`)
	jsImportFrom     = regexp.MustCompile(`(?m)^import\s+.*?from\s+['"]([^'"]+)['"]`)
	jsSideEffect     = regexp.MustCompile(`(?m)^import\s+['"]([^'"]+)['"]`)
	jsRequire        = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	goImportLine     = regexp.MustCompile(`(?m)^\s*(?:import\s+)?(?:[\w.]+\s+)?"([^"\s]+)"\s*$`)
)

// sourceKind groups extensions that share import syntax
type sourceKind int

const (
	kindUnknown sourceKind = iota
	kindPython
	kindJavaScript
	kindGo
	kindTerraform
)

var kindByExt = map[string]sourceKind{
	".py":  kindPython,
	".js":  kindJavaScript,
	".jsx": kindJavaScript,
	".ts":  kindJavaScript,
	".tsx": kindJavaScript,
	".go":  kindGo,
	".tf":  kindTerraform,
}

func kindOf(filePath string) sourceKind {
	return kindByExt[strings.ToLower(path.Ext(filePath))]
}

// extractImports returns the raw import specifiers of a file in source order
func extractImports(filePath, content string) []string {
	switch kindOf(filePath) {
	case kindPython:
		return pythonImports(content)
	case kindJavaScript:
		return jsImports(content)
	case kindGo:
		return goImports(filePath, content)
	case kindTerraform:
		return terraformModuleSources(filePath, content)
	}
	return nil
}

func pythonImports(content string) []string {
	var deps []string
	for _, m := range pythonImport.FindAllStringSubmatch(content, -1) {
		// import a.b as c, d
		for _, part := range strings.Split(m[1], ",") {
			if fields := strings.Fields(part); len(fields) > 0 {
				deps = append(deps, fields[0])
			}
		}
	}
	for _, m := range pythonFromImport.FindAllStringSubmatch(content, -1) {
		deps = append(deps, m[1])
	}
	return deps
}

func jsImports(content string) []string {
	var deps []string
	for _, re := range []*regexp.Regexp{jsImportFrom, jsSideEffect, jsRequire} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			deps = append(deps, m[1])
		}
	}
	return deps
}

// goImports uses the Go parser and falls back to a line regex when the file does not parse
func goImports(filePath, content string) []string {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, content, parser.ImportsOnly)
	if err == nil {
		deps := make([]string, 0, len(file.Imports))
		for _, spec := range file.Imports {
			if p, err := strconv.Unquote(spec.Path.Value); err == nil {
				deps = append(deps, p)
			}
		}
		return deps
	}

	var deps []string
	for _, m := range goImportLine.FindAllStringSubmatch(content, -1) {
		deps = append(deps, m[1])
	}
	return deps
}

// terraformModuleSources returns the source attribute of every module block
func terraformModuleSources(filePath, content string) []string {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(content), filePath)
	if diags.HasErrors() || file == nil || file.Body == nil {
		return nil
	}

	body, _, _ := file.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{
				Type:       "module",
				LabelNames: []string{"name"},
			},
		},
	})
	if body == nil {
		return nil
	}

	var sources []string
	for _, block := range body.Blocks.OfType("module") {
		attrs, _, _ := block.Body.PartialContent(&hcl.BodySchema{
			Attributes: []hcl.AttributeSchema{{Name: "source"}},
		})
		if attrs == nil {
			continue
		}
		source, ok := attrs.Attributes["source"]
		if !ok {
			continue
		}
		if val, diags := source.Expr.Value(nil); !diags.HasErrors() && val.Type() == cty.String {
			sources = append(sources, val.AsString())
		}
	}
	return sources
}
