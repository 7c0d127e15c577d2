package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/petrarca/code-pattern-analyzer/internal/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Outputter interface for commands with structured output
type Outputter interface {
	// ToJSON returns the data structure for JSON/YAML marshaling
	ToJSON() interface{}
	// ToText writes human-readable text format
	ToText(w io.Writer, s Styles)
}

// Output handles unified output for any Outputter
func Output(o Outputter, format string) error {
	return OutputToFile(o, format, "")
}

// OutputToFile handles unified output for any Outputter with optional file output
func OutputToFile(o Outputter, format string, outputFile string) error {
	data, err := Render(o, format, outputFile == "" && colorEnabled(os.Stdout), settings.PrettyPrint)
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Results written to %s\n", outputFile)
		return nil
	}
	_, err = os.Stdout.Write(data)
	return err
}

// Render produces the bytes of an Outputter in the given format
func Render(o Outputter, format string, colored, pretty bool) ([]byte, error) {
	switch util.Format(util.NormalizeFormat(format)) {
	case util.FormatJSON:
		var data []byte
		var err error
		if pretty {
			data, err = json.MarshalIndent(o.ToJSON(), "", "  ")
		} else {
			data, err = json.Marshal(o.ToJSON())
		}
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	case util.FormatYAML:
		data, err := yaml.Marshal(o.ToJSON())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return data, nil
	default: // text
		var buf bytes.Buffer
		o.ToText(&buf, NewStyles(colored))
		return buf.Bytes(), nil
	}
}

// setupFormatFlag configures format flag and validation for a command
func setupFormatFlag(cmd *cobra.Command, formatPtr *string, defaultFormat string) {
	cmd.Flags().StringVarP(formatPtr, "format", "f", defaultFormat, "Output format: json, yaml, or text")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		f, err := util.ParseFormat(*formatPtr)
		if err != nil {
			return err
		}
		*formatPtr = string(f)
		return nil
	}
}

// setupOutputFlags configures both format and output flags for a command
func setupOutputFlags(cmd *cobra.Command, formatPtr *string, outputPtr *string, defaultFormat string) {
	setupFormatFlag(cmd, formatPtr, defaultFormat)
	cmd.Flags().StringVarP(outputPtr, "output", "o", *outputPtr, "Output file path (default: stdout, - for stdout)")
	inferFormat(cmd, formatPtr, outputPtr)
}

// inferFormat picks the format from the output file extension unless --format was given
func inferFormat(cmd *cobra.Command, formatPtr *string, outputPtr *string) {
	validate := cmd.PreRunE
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("format") {
			if f, ok := util.FormatForFile(*outputPtr); ok {
				*formatPtr = string(f)
			}
		}
		return validate(cmd, args)
	}
}
