package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/advisor"
	"github.com/petrarca/code-pattern-analyzer/internal/samples"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/spf13/cobra"
)

var sampleCmd = &cobra.Command{
	Use:   "sample [language]",
	Short: "Print a code sample with deliberate issues",
	Long: `Print a short snippet containing deliberate bugs, security risks and
inefficiencies, useful to try the analyzer. Without a language the available
samples are listed.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSample,
}

var advisorCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Check whether the Ollama advisory service is reachable",
	Run:   runAdvisor,
}

func init() {
	advisorCmd.Flags().StringVar(&settings.OllamaURL, "ollama-url", settings.OllamaURL, "Ollama server URL")
	advisorCmd.Flags().StringVar(&settings.OllamaModel, "ollama-model", settings.OllamaModel, "Ollama model")
}

func runSample(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		for _, lang := range samples.Languages() {
			fmt.Println(lang)
		}
		return
	}
	fmt.Print(samples.For(types.Language(strings.ToLower(args[0]))))
}

// AdvisorStatus reports the availability check outcome
type AdvisorStatus struct {
	URL       string `json:"url" yaml:"url"`
	Model     string `json:"model" yaml:"model"`
	Available bool   `json:"available" yaml:"available"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (a *AdvisorStatus) ToJSON() interface{} {
	return a
}

func (a *AdvisorStatus) ToText(w io.Writer, s Styles) {
	if a.Available {
		fmt.Fprintf(w, "Ollama at %s is available with model %s\n", a.URL, a.Model)
		return
	}
	fmt.Fprintf(w, "%s Ollama at %s is not usable: %s\n", s.Severity(types.SeverityHigh), a.URL, a.Error)
}

func runAdvisor(cmd *cobra.Command, args []string) {
	logger := configureLogging(cmd)

	generator, err := advisor.NewOllamaGenerator(settings.OllamaURL, settings.OllamaModel, settings.OllamaTimeout)
	exitOnError(logger, "Invalid advisory configuration", err)

	status := &AdvisorStatus{URL: settings.OllamaURL, Model: generator.Model()}
	if err := generator.Available(context.Background()); err != nil {
		status.Error = err.Error()
	} else {
		status.Available = true
	}
	exitOnError(logger, "Failed to write output", Output(status, "text"))
	if !status.Available {
		os.Exit(1)
	}
}
