package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 15s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// AcceptLanguage is the Accept-Language header (default "bn-BD, bn;q=0.9").
	AcceptLanguage string `json:"accept_language" yaml:"accept_language" mapstructure:"accept_language"`
}

// SiteConfig describes the encyclopedia being queried and the structural
// markers its pages carry.
type SiteConfig struct {
	// Origin is the scheme and host, e.g. "https://bn.wikipedia.org".
	Origin string `json:"origin" yaml:"origin" mapstructure:"origin"`

	// PagePath is prepended to the entity to form the page path ("/wiki/").
	PagePath string `json:"page_path" yaml:"page_path" mapstructure:"page_path"`

	// ContentID is the id of the main content container.
	ContentID string `json:"content_id" yaml:"content_id" mapstructure:"content_id"`

	// DisambigMarkerID is the id of the disambiguation notice box.
	DisambigMarkerID string `json:"disambig_marker_id" yaml:"disambig_marker_id" mapstructure:"disambig_marker_id"`

	// DisambigTitlePhrase marks disambiguation pages in the document title.
	DisambigTitlePhrase string `json:"disambig_title_phrase" yaml:"disambig_title_phrase" mapstructure:"disambig_title_phrase"`
}

// ExtractionLimits bounds what the extractors return.
type ExtractionLimits struct {
	// MaxCandidates caps the candidate list (default 10).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" mapstructure:"max_candidates"`

	// SummaryLimit is the summary length in runes before truncation (default 800).
	SummaryLimit int `json:"summary_limit" yaml:"summary_limit" mapstructure:"summary_limit"`

	// MinParagraphLength is the rune count a paragraph must exceed to be
	// used as a summary (default 80).
	MinParagraphLength int `json:"min_paragraph_length" yaml:"min_paragraph_length" mapstructure:"min_paragraph_length"`
}

// RetryConfig controls the fetch retry loop.
type RetryConfig struct {
	// MaxAttempts is the total number of fetch attempts (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// TransientBackoff is the pause after a transport failure (default 2s).
	TransientBackoff time.Duration `json:"transient_backoff" yaml:"transient_backoff" mapstructure:"transient_backoff"`

	// ProcessingBackoff is the pause after a page processing failure (default 1s).
	ProcessingBackoff time.Duration `json:"processing_backoff" yaml:"processing_backoff" mapstructure:"processing_backoff"`
}

// ResolverConfig holds settings for the resolution stage.
type ResolverConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	Site   SiteConfig       `json:"site" yaml:"site" mapstructure:"site"`
	Limits ExtractionLimits `json:"limits" yaml:"limits" mapstructure:"limits"`
	Retry  RetryConfig      `json:"retry" yaml:"retry" mapstructure:"retry"`
}

// BatchConfig holds settings for the batch runner.
type BatchConfig struct {
	// Workers is the number of concurrent resolutions (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// EntityDelay is the pause between consecutive resolutions of a worker (default 1.5s).
	EntityDelay time.Duration `json:"entity_delay" yaml:"entity_delay" mapstructure:"entity_delay"`

	// CheckpointEvery writes a backup after this many recorded results (default 5).
	CheckpointEvery int `json:"checkpoint_every" yaml:"checkpoint_every" mapstructure:"checkpoint_every"`

	// BackupPath is the checkpoint file (default "Backup_Results.yaml").
	BackupPath string `json:"backup_path" yaml:"backup_path" mapstructure:"backup_path"`

	// OutputPath is the final export written after a complete run.
	OutputPath string `json:"output_path" yaml:"output_path" mapstructure:"output_path"`
}

// StoreConfig holds settings for the result store.
type StoreConfig struct {
	// DBPath is the SQLite database file (default "ambiguity.db").
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Resolver ResolverConfig `json:"resolver" yaml:"resolver" mapstructure:"resolver"`
	Batch    BatchConfig    `json:"batch" yaml:"batch" mapstructure:"batch"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
}

// DefaultResolverConfig returns the settings used against bn.wikipedia.org.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		HTTPConfig: HTTPConfig{
			Timeout:        15 * time.Second,
			UserAgent:      "ambiguity-engine/0.1",
			AcceptLanguage: "bn-BD, bn;q=0.9",
		},
		Site: SiteConfig{
			Origin:              "https://bn.wikipedia.org",
			PagePath:            "/wiki/",
			ContentID:           "mw-content-text",
			DisambigMarkerID:    "disambigbox",
			DisambigTitlePhrase: "দ্ব্যর্থতা নিরসন",
		},
		Limits: ExtractionLimits{
			MaxCandidates:      10,
			SummaryLimit:       800,
			MinParagraphLength: 80,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			TransientBackoff:  2 * time.Second,
			ProcessingBackoff: 1 * time.Second,
		},
	}
}

// DefaultBatchConfig returns the batch settings of a sequential run.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Workers:         1,
		EntityDelay:     1500 * time.Millisecond,
		CheckpointEvery: 5,
		BackupPath:      "Backup_Results.yaml",
		OutputPath:      "Wikipedia_Ambiguity_Results.yaml",
	}
}

// DefaultPipelineConfig returns defaults for every stage.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Resolver: DefaultResolverConfig(),
		Batch:    DefaultBatchConfig(),
		Store:    StoreConfig{DBPath: "ambiguity.db"},
	}
}
