package cmd

import (
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display information about rules, strategies, languages and samples",
	Long:  `Display the rule catalog, a single rule, the available strategies, the supported languages, test samples and the advisory service status.`,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.AddCommand(rulesCmd)
	infoCmd.AddCommand(ruleCmd)
	infoCmd.AddCommand(strategiesCmd)
	infoCmd.AddCommand(languagesCmd)
	infoCmd.AddCommand(sampleCmd)
	infoCmd.AddCommand(advisorCmd)
}
