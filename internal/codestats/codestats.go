// Package codestats aggregates line, comment and complexity counts for scanned files
package codestats

import (
	"math"
	"sort"
	"sync"

	"github.com/boyter/scc/v3/processor"
	"github.com/go-enry/go-enry/v2"
)

var initOnce sync.Once

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Stats holds code statistics for a language or the whole scan
type Stats struct {
	Lines      int64 `json:"lines" yaml:"lines"`
	Code       int64 `json:"code" yaml:"code"`
	Comments   int64 `json:"comments" yaml:"comments"`
	Blanks     int64 `json:"blanks" yaml:"blanks"`
	Complexity int64 `json:"complexity" yaml:"complexity"`
	Files      int   `json:"files" yaml:"files"`
}

func (s *Stats) add(job *processor.FileJob) {
	s.Lines += job.Lines
	s.Code += job.Code
	s.Comments += job.Comment
	s.Blanks += job.Blank
	s.Complexity += job.Complexity
	s.Files++
}

// LanguageStats is Stats tagged with the Linguist language name
type LanguageStats struct {
	Language string `json:"language" yaml:"language"`
	Stats    `yaml:",inline"`
}

// Metrics are ratios derived from programming-language totals
type Metrics struct {
	CommentRatio      float64 `json:"comment_ratio" yaml:"comment_ratio"`             // comments / code
	CodeDensity       float64 `json:"code_density" yaml:"code_density"`               // code / lines
	AvgFileSize       float64 `json:"avg_file_size" yaml:"avg_file_size"`             // lines / files
	ComplexityPerKLOC float64 `json:"complexity_per_kloc" yaml:"complexity_per_kloc"` // complexity / (code / 1000)
}

// CodeStats is the aggregated result of a collector
type CodeStats struct {
	Total      Stats           `json:"total" yaml:"total"`
	ByLanguage []LanguageStats `json:"by_language" yaml:"by_language"` // sorted by lines descending
	Unanalyzed Stats           `json:"unanalyzed" yaml:"unanalyzed"`   // files scc has no definition for, lines only
	Metrics    *Metrics        `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// Collector aggregates scc counts; safe for concurrent use
type Collector struct {
	mu          sync.Mutex
	total       Stats
	programming Stats
	byLanguage  map[string]*Stats
	unanalyzed  Stats
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{byLanguage: make(map[string]*Stats)}
}

// Add counts one file; language is the Linguist name used for grouping
func (c *Collector) Add(filename, language string, content []byte) {
	if language == "" || len(content) == 0 {
		return
	}

	initOnce.Do(processor.ProcessConstants)

	sccLang := ""
	if langs, _ := processor.DetectLanguage(filename); len(langs) > 0 {
		sccLang = langs[0]
	}
	job := &processor.FileJob{
		Filename: filename,
		Language: sccLang,
		Content:  content,
		Bytes:    int64(len(content)),
	}
	processor.CountStats(job)

	c.mu.Lock()
	defer c.mu.Unlock()

	if sccLang == "" {
		c.unanalyzed.Lines += job.Lines
		c.unanalyzed.Files++
		return
	}

	c.total.add(job)
	if c.byLanguage[language] == nil {
		c.byLanguage[language] = &Stats{}
	}
	c.byLanguage[language].add(job)
	if enry.GetLanguageType(language) == enry.Programming {
		c.programming.add(job)
	}
}

// Stats returns a snapshot of the aggregated counts
func (c *Collector) Stats() *CodeStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	byLanguage := make([]LanguageStats, 0, len(c.byLanguage))
	for lang, s := range c.byLanguage {
		byLanguage = append(byLanguage, LanguageStats{Language: lang, Stats: *s})
	}
	sort.Slice(byLanguage, func(i, j int) bool {
		if byLanguage[i].Lines != byLanguage[j].Lines {
			return byLanguage[i].Lines > byLanguage[j].Lines
		}
		return byLanguage[i].Language < byLanguage[j].Language
	})

	return &CodeStats{
		Total:      c.total,
		ByLanguage: byLanguage,
		Unanalyzed: c.unanalyzed,
		Metrics:    metricsOf(c.programming),
	}
}

func metricsOf(s Stats) *Metrics {
	if s.Files == 0 {
		return nil
	}
	m := &Metrics{}
	if s.Code > 0 {
		m.CommentRatio = round2(float64(s.Comments) / float64(s.Code))
		m.ComplexityPerKLOC = round2(float64(s.Complexity) / (float64(s.Code) / 1000))
	}
	if s.Lines > 0 {
		m.CodeDensity = round2(float64(s.Code) / float64(s.Lines))
	}
	m.AvgFileSize = round2(float64(s.Lines) / float64(s.Files))
	return m
}
