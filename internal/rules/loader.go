package rules

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/petrarca/code-pattern-analyzer/internal/validation"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var coreRulesFS embed.FS

//go:embed builtin/*.yaml
var builtinFS embed.FS

const catalogMetaFile = "_catalog.yaml"

// catalogMeta holds catalog-wide settings stored next to the rule files
type catalogMeta struct {
	Version         string         `yaml:"version"`
	DefaultLanguage types.Language `yaml:"default_language"`
}

// LoadEmbeddedCatalog builds the catalog from the rule files compiled into the binary
func LoadEmbeddedCatalog() (*Catalog, error) {
	metaContent, err := coreRulesFS.ReadFile(path.Join("catalog", catalogMetaFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog metadata: %w", err)
	}
	var meta catalogMeta
	if err := yaml.Unmarshal(metaContent, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse catalog metadata: %w", err)
	}

	files, err := loadRuleFiles(coreRulesFS, "catalog")
	if err != nil {
		return nil, fmt.Errorf("failed to walk embedded rules: %w", err)
	}

	catalog, err := NewCatalog(meta.Version, files...)
	if err != nil {
		return nil, err
	}
	if meta.DefaultLanguage != "" {
		catalog.defaultLanguage = meta.DefaultLanguage
	}
	return catalog, nil
}

// LoadExternalRules loads rule files from an external directory
func LoadExternalRules(rulesDir string) ([]RuleFile, error) {
	info, err := os.Stat(rulesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to access rules directory %s: %w", rulesDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rules path %s is not a directory", rulesDir)
	}

	files, err := loadRuleFiles(os.DirFS(rulesDir), ".")
	if err != nil {
		return nil, fmt.Errorf("failed to walk external rules: %w", err)
	}
	for i := range files {
		files[i].Source = path.Join(rulesDir, files[i].Source)
	}
	return files, nil
}

// loadRuleFiles walks a filesystem and parses every YAML rule file, sorted by path
func loadRuleFiles(fsys fs.FS, root string) ([]RuleFile, error) {
	var files []RuleFile

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		// _catalog.yaml holds metadata, not rules
		if strings.HasPrefix(d.Name(), "_") {
			return nil
		}

		// Only load YAML files
		if !strings.HasSuffix(p, ".yaml") && !strings.HasSuffix(p, ".yml") {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read rule file %s: %w", p, err)
		}

		file, err := ParseRuleFile(content)
		if err != nil {
			return fmt.Errorf("failed to parse rule file %s: %w", p, err)
		}
		file.Source = p

		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Source < files[j].Source })
	return files, nil
}

// ParseRuleFile validates YAML content against the catalog schema and decodes it
func ParseRuleFile(content []byte) (RuleFile, error) {
	if err := validation.ValidateYAML(validation.RuleCatalogSchema, content); err != nil {
		return RuleFile{}, err
	}

	var file RuleFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return RuleFile{}, err
	}
	return file, nil
}
