package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/petrarca/code-pattern-analyzer/internal/language"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/spf13/cobra"
)

var detectFormat string

var detectCmd = &cobra.Command{
	Use:   "detect <file>...",
	Short: "Detect the language of files",
	Long: `Detect resolves the language tag of each file from its extension, falling back
to content signatures. Without any evidence the default language (python) is reported.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	setupFormatFlag(detectCmd, &detectFormat, settings.OutputFormat)
}

// Detection is the language of one file
type Detection struct {
	File     string         `json:"file" yaml:"file"`
	Language types.Language `json:"language" yaml:"language"`
	Type     string         `json:"type" yaml:"type"`
	Method   string         `json:"method" yaml:"method"` // extension, content or default
}

// DetectOutput lists detections
type DetectOutput struct {
	Files []Detection `json:"files" yaml:"files"`
}

func (o *DetectOutput) ToJSON() interface{} {
	return o
}

func (o *DetectOutput) ToText(w io.Writer, s Styles) {
	for _, d := range o.Files {
		fmt.Fprintf(w, "%-40s %-12s %-12s %s\n", s.Path(d.File), d.Language, d.Type, s.Dim(d.Method))
	}
}

// detectFile reports the language of a file and the evidence used
func detectFile(d *language.Detector, file, content string) Detection {
	det := Detection{File: file}
	if lang, ok := d.ByFilename(file); ok {
		det.Language, det.Method = lang, "extension"
	} else if lang, ok := d.ByContent(content); ok && content != "" {
		det.Language, det.Method = lang, "content"
	} else {
		det.Language, det.Method = types.DefaultLanguage, "default"
	}
	det.Type = language.LanguageType(det.Language)
	return det
}

func runDetect(cmd *cobra.Command, args []string) {
	logger := configureLogging(cmd)
	detector := language.NewDetector()

	out := &DetectOutput{Files: make([]Detection, 0, len(args))}
	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("Cannot read file, detecting by name only", "file", file, "error", err)
		}
		out.Files = append(out.Files, detectFile(detector, file, string(data)))
	}
	exitOnError(logger, "Failed to write output", Output(out, detectFormat))
}
