package util

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a report rendering format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats returns the supported formats in display order
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML}
}

// NormalizeFormat lowercases a format name and maps the yml alias to yaml
func NormalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "yml" {
		return string(FormatYAML)
	}
	return format
}

// ParseFormat resolves a user-supplied format name
func ParseFormat(format string) (Format, error) {
	normalized := Format(NormalizeFormat(format))
	for _, f := range Formats() {
		if f == normalized {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format: %q. Valid formats are: text, json, yaml", format)
}

// FormatForFile infers the format from an output file extension
func FormatForFile(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".txt":
		return FormatText, true
	}
	return "", false
}
