package metadata

import (
	"path/filepath"
	"time"

	"github.com/petrarca/code-pattern-analyzer/internal/git"
	"github.com/petrarca/code-pattern-analyzer/internal/license"
)

// FormatVersion is the version of the scan report layout
const FormatVersion = "1.0"

// ScanMetadata describes one scan execution
type ScanMetadata struct {
	ScanID         string                 `json:"scan_id" yaml:"scan_id"`
	Timestamp      string                 `json:"timestamp" yaml:"timestamp"`
	ScanPath       string                 `json:"scan_path" yaml:"scan_path"`
	FormatVersion  string                 `json:"format_version" yaml:"format_version"`
	ToolVersion    string                 `json:"tool_version,omitempty" yaml:"tool_version,omitempty"`
	Strategy       string                 `json:"strategy" yaml:"strategy"`
	CatalogVersion string                 `json:"catalog_version,omitempty" yaml:"catalog_version,omitempty"`
	DurationMs     int64                  `json:"duration_ms" yaml:"duration_ms"`
	FileCount      int                    `json:"file_count" yaml:"file_count"`
	SkippedCount   int                    `json:"skipped_count,omitempty" yaml:"skipped_count,omitempty"`
	LanguageCount  int                    `json:"language_count" yaml:"language_count"`
	Git            *git.Info              `json:"git,omitempty" yaml:"git,omitempty"`
	Licenses       []license.Match        `json:"licenses,omitempty" yaml:"licenses,omitempty"`
	Properties     map[string]interface{} `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// NewScanMetadata creates metadata stamped with the current UTC time
func NewScanMetadata(scanID, scanPath string) *ScanMetadata {
	absPath, err := filepath.Abs(scanPath)
	if err != nil {
		absPath = scanPath
	}
	return &ScanMetadata{
		ScanID:        scanID,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		ScanPath:      absPath,
		FormatVersion: FormatVersion,
	}
}

// SetDuration sets the scan duration in milliseconds
func (m *ScanMetadata) SetDuration(duration time.Duration) {
	m.DurationMs = duration.Milliseconds()
}

// SetFileCounts sets the analyzed and skipped file counts
func (m *ScanMetadata) SetFileCounts(fileCount, skippedCount int) {
	m.FileCount = fileCount
	m.SkippedCount = skippedCount
}

// SetProperties sets custom properties from configuration
func (m *ScanMetadata) SetProperties(properties map[string]interface{}) {
	if len(properties) > 0 {
		m.Properties = properties
	}
}
