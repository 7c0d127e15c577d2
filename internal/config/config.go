package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/petrarca/code-pattern-analyzer/internal/validation"
	"gopkg.in/yaml.v3"
)

// ProjectFileName is the optional per-project configuration file at the scan root
const ProjectFileName = ".pattern-analyzer.yml"

// ProjectConfig represents the .pattern-analyzer.yml configuration file
type ProjectConfig struct {
	Exclude       []string               `yaml:"exclude,omitempty"`
	DisabledRules []string               `yaml:"disabled_rules,omitempty"`
	MinSeverity   types.Severity         `yaml:"min_severity,omitempty"`
	Strategy      string                 `yaml:"strategy,omitempty"`
	RulesDir      string                 `yaml:"rules_dir,omitempty"`
	SeedCatalog   string                 `yaml:"seed_catalog,omitempty"`
	Properties    map[string]interface{} `yaml:"properties,omitempty"`
}

// LoadProjectConfig attempts to load .pattern-analyzer.yml from the given directory.
// A missing file yields an empty config, not an error. Relative rules_dir and
// seed_catalog paths are resolved against the directory.
func LoadProjectConfig(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ProjectFileName)

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return &ProjectConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	config, err := ParseProjectConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	config.RulesDir = resolveAgainst(dir, config.RulesDir)
	config.SeedCatalog = resolveAgainst(dir, config.SeedCatalog)
	return config, nil
}

// ParseProjectConfig validates and decodes project configuration content
func ParseProjectConfig(data []byte) (*ProjectConfig, error) {
	if err := validation.ValidateYAML(validation.ProjectConfigSchema, data); err != nil {
		return nil, err
	}

	var config ProjectConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse project config: %w", err)
	}
	return &config, nil
}

func resolveAgainst(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// MergeExcludes merges config excludes with CLI excludes, deduplicated and sorted
func (c *ProjectConfig) MergeExcludes(cliExcludes []string) []string {
	if c == nil {
		return cliExcludes
	}

	excludeMap := make(map[string]bool)
	for _, exclude := range c.Exclude {
		excludeMap[exclude] = true
	}
	for _, exclude := range cliExcludes {
		excludeMap[exclude] = true
	}

	result := make([]string, 0, len(excludeMap))
	for exclude := range excludeMap {
		result = append(result, exclude)
	}
	sort.Strings(result)
	return result
}

// MergeDisabledRules returns the union of config and CLI disabled rule ids
func (c *ProjectConfig) MergeDisabledRules(cliRules []string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(ids []string) {
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id != "" && !seen[id] {
				seen[id] = true
				result = append(result, id)
			}
		}
	}
	if c != nil {
		add(c.DisabledRules)
	}
	add(cliRules)
	sort.Strings(result)
	return result
}
