// Package license detects the licenses declared at a scanned root
package license

import (
	"math"
	"sort"

	"github.com/go-enry/go-license-detector/v4/licensedb"
	"github.com/go-enry/go-license-detector/v4/licensedb/filer"
)

// MinConfidence is the lowest detector confidence that is reported
const MinConfidence = 0.9

// Match is one detected license
type Match struct {
	License    string  `json:"license" yaml:"license"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	File       string  `json:"file" yaml:"file"`
}

// Detect returns the licenses found in LICENSE-like files of dir, sorted by id
func Detect(dir string) []Match {
	fs, err := filer.FromDirectory(dir)
	if err != nil {
		return nil
	}
	found, err := licensedb.Detect(fs)
	if err != nil {
		return nil
	}

	var matches []Match
	for id, m := range found {
		if m.Confidence > MinConfidence {
			matches = append(matches, Match{
				License:    id,
				Confidence: math.Round(float64(m.Confidence)*100) / 100,
				File:       m.File,
			})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].License < matches[j].License })
	return matches
}
