package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" Yaml ", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"sarif", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatForFile(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"report.json", FormatJSON, true},
		{"out/findings.YML", FormatYAML, true},
		{"findings.yaml", FormatYAML, true},
		{"summary.txt", FormatText, true},
		{"report", "", false},
		{"report.html", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatForFile(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []Format{FormatText, FormatJSON, FormatYAML}, Formats())
}
