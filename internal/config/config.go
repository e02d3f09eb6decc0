// Package config loads and validates continuity configuration.
//
// The terminology dictionary and style rules used to be process-wide tables; they
// are now plain configuration handed to the checkers at construction time, so a
// deployment (or a test) can supply its own dictionary.
package config

import (
	"runtime"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DefaultPath is the configuration file picked up when no --config flag is given.
const DefaultPath = "continuity.yaml"

// Config represents the application configuration.
type Config struct {
	Series      SeriesConfig   `yaml:"series"`
	Terminology []TermRule     `yaml:"terminology" validate:"dive"`
	Style       StyleConfig    `yaml:"style"`
	Analysis    AnalysisConfig `yaml:"analysis"`
	Report      ReportConfig   `yaml:"report"`
	History     HistoryConfig  `yaml:"history"`
	Notify      NotifyConfig   `yaml:"notify"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}

// SeriesConfig describes which files form a series.
type SeriesConfig struct {
	Extension string `yaml:"extension" validate:"required,startswith=."`
}

// TermRule maps a canonical term to discouraged synonyms.
type TermRule struct {
	Canonical string   `yaml:"canonical" validate:"required"`
	Synonyms  []string `yaml:"synonyms" validate:"min=1,dive,required"`
}

// StyleConfig holds heading and section rules.
type StyleConfig struct {
	MaxHeadingDepth  int      `yaml:"max_heading_depth" validate:"min=1"`
	RequiredSections []string `yaml:"required_sections" validate:"dive,required"`
}

// AnalysisConfig tunes the per-document fan-out.
type AnalysisConfig struct {
	Workers     int           `yaml:"workers,omitempty" validate:"min=1"`
	FileTimeout time.Duration `yaml:"file_timeout" validate:"gte=0"`
}

// ReportConfig controls report emission.
type ReportConfig struct {
	Path string `yaml:"path,omitempty"`
}

// HistoryConfig enables the run history database when Path is set.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// NotifyConfig enables NATS report publication when NATSURL is set.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty" validate:"omitempty,url"`
	Subject string `yaml:"subject" validate:"required_with=NATSURL"`
}

// MetricsConfig enables Prometheus textfile export when Textfile is set.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Default returns the built-in configuration for the guide series.
func Default() *Config {
	return &Config{
		Series: SeriesConfig{Extension: ".md"},
		Terminology: []TermRule{
			{Canonical: "AI 에이전트", Synonyms: []string{"AI agent", "autonomous agent", "intelligent agent"}},
			{Canonical: "명세 기반 개발", Synonyms: []string{"Spec-Driven Development", "SDD", "spec-driven development"}},
			{Canonical: "에이전틱", Synonyms: []string{"agentic", "에이전틱 AI", "agentic AI"}},
			{Canonical: "자율성", Synonyms: []string{"autonomy", "autonomous", "자율적"}},
			{Canonical: "오케스트레이션", Synonyms: []string{"orchestration", "조율", "관리"}},
		},
		Style: StyleConfig{
			MaxHeadingDepth:  6,
			RequiredSections: []string{"개요", "학습 목표", "다음 단계"},
		},
		Analysis: AnalysisConfig{
			Workers:     runtime.NumCPU(),
			FileTimeout: 10 * time.Second,
		},
		Notify: NotifyConfig{Subject: "continuity.reports"},
	}
}

// applyDefaults fills zero values left by a partial YAML file.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Series.Extension == "" {
		c.Series.Extension = def.Series.Extension
	}
	if c.Style.MaxHeadingDepth == 0 {
		c.Style.MaxHeadingDepth = def.Style.MaxHeadingDepth
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = def.Analysis.Workers
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = def.Notify.Subject
	}
}

// normalize puts dictionary terms into NFC so they compare equal to normalized document text.
func (c *Config) normalize() {
	for i := range c.Terminology {
		c.Terminology[i].Canonical = norm.NFC.String(c.Terminology[i].Canonical)
		for j, syn := range c.Terminology[i].Synonyms {
			c.Terminology[i].Synonyms[j] = norm.NFC.String(syn)
		}
	}
	for i, s := range c.Style.RequiredSections {
		c.Style.RequiredSections[i] = norm.NFC.String(s)
	}
}
