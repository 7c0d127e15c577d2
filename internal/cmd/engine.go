package cmd

import (
	"fmt"
	"log/slog"

	"github.com/petrarca/code-pattern-analyzer/internal/config"
	"github.com/petrarca/code-pattern-analyzer/internal/matcher"
	"github.com/petrarca/code-pattern-analyzer/internal/rules"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/spf13/cobra"
)

// engineFlags are the rule selection flags shared by analyze and scan
type engineFlags struct {
	minSeverity   string
	disabledRules []string
}

func addEngineFlags(cmd *cobra.Command, f *engineFlags) {
	cmd.Flags().StringVarP(&settings.Strategy, "strategy", "s", settings.Strategy, "Analysis strategy: catalog, heuristics, or security")
	cmd.Flags().StringVar(&settings.SeedCatalog, "seeds", settings.SeedCatalog, "Seed catalog file (JSON or YAML) for the security strategy")
	cmd.Flags().StringVar(&settings.RulesDir, "rules-dir", settings.RulesDir, "Directory with additional rule files")
	cmd.Flags().StringVar(&f.minSeverity, "min-severity", string(settings.MinSeverity), "Only report findings at or above: low, medium, high, critical")
	cmd.Flags().StringSliceVar(&f.disabledRules, "disable", nil, "Rule ids to disable (can be specified multiple times)")
}

// prepareSettings merges flags and the project file, then validates the result
func prepareSettings(cmd *cobra.Command, f *engineFlags, projectDir string, logger *slog.Logger) (*config.ProjectConfig, error) {
	if cmd.Flags().Changed("min-severity") || f.minSeverity != "" {
		severity, err := types.ParseSeverity(f.minSeverity)
		if err != nil {
			return nil, err
		}
		settings.MinSeverity = severity
	}

	project, err := config.LoadProjectConfig(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}
	settings.ApplyProject(project, cmd.Flags().Changed)
	logger.Debug("Resolved settings",
		"strategy", settings.Strategy,
		"min_severity", settings.MinSeverity,
		"rules_dir", settings.RulesDir,
		"seed_catalog", settings.SeedCatalog,
		"exclude_patterns", settings.ExcludePatterns)

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return project, nil
}

// loadCatalog returns the embedded catalog extended with the configured rules directory
func loadCatalog(logger *slog.Logger) (*rules.Catalog, error) {
	catalog, err := rules.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load rule catalog: %w", err)
	}
	if settings.RulesDir == "" {
		return catalog, nil
	}

	files, err := rules.LoadExternalRules(settings.RulesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", settings.RulesDir, err)
	}
	extended, err := catalog.Extend(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to merge rules from %s: %w", settings.RulesDir, err)
	}
	logger.Info("Loaded additional rules", "dir", settings.RulesDir, "files", len(files), "rules", extended.Len())
	return extended, nil
}

// buildEngine wires the catalog, seeds and strategy selection into an engine
func buildEngine(project *config.ProjectConfig, f *engineFlags, logger *slog.Logger) (*matcher.Engine, *rules.Catalog, error) {
	catalog, err := loadCatalog(logger)
	if err != nil {
		return nil, nil, err
	}

	var seeds rules.SeedCatalog
	if settings.SeedCatalog != "" {
		seeds, err = rules.LoadSeedCatalog(settings.SeedCatalog)
		if err != nil {
			return nil, nil, err
		}
	}

	registry, err := matcher.DefaultRegistry(catalog, seeds)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build strategies: %w", err)
	}

	engine, err := matcher.NewEngine(registry, matcher.Options{
		Strategy:      settings.Strategy,
		DisabledRules: project.MergeDisabledRules(f.disabledRules),
		MinSeverity:   settings.MinSeverity,
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return engine, catalog, nil
}
