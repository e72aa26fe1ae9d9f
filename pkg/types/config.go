// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "coauthor-graph/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// RateLimit is the sustained request rate in requests per second.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`

	// MaxRetries bounds the retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
}

// OpenAlexConfig holds settings for the OpenAlex collector.
type OpenAlexConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the OpenAlex API root (default https://api.openalex.org).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// Email is sent as the mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`

	// PerPage is the page size for /works pagination (max 200).
	PerPage int `json:"per_page" yaml:"per_page" mapstructure:"per_page" validate:"gte=0,lte=200"`

	// Select lists the work fields to request.
	Select string `json:"select" yaml:"select" mapstructure:"select"`

	// Filter is the base /works filter; a publication_year clause is appended per year.
	Filter string `json:"filter" yaml:"filter" mapstructure:"filter"`
}

// DBLPConfig holds settings for the DBLP co-publication source and the
// CSIndex researcher catalog.
type DBLPConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the DBLP person endpoint prefix (default https://dblp.org/pid/).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// CatalogURL is the CSIndex data directory holding
	// <area>-out-profs-list.csv files.
	CatalogURL string `json:"catalog_url" yaml:"catalog_url" mapstructure:"catalog_url" validate:"omitempty,url"`

	// ResearchersURL is the CSIndex all-researchers.csv location.
	ResearchersURL string `json:"researchers_url" yaml:"researchers_url" mapstructure:"researchers_url" validate:"omitempty,url"`

	// Areas lists the sub-areas to process.
	Areas []string `json:"areas" yaml:"areas" mapstructure:"areas"`
}

// CategoryKey selects which field of a CategoryRef is counted as a vote.
type CategoryKey string

const (
	CategoryByID          CategoryKey = "id"
	CategoryByDisplayName CategoryKey = "display_name"
)

// GraphConfig holds settings for graph accumulation.
type GraphConfig struct {
	// CategoryKey selects the vote key: id or display_name (default display_name).
	CategoryKey CategoryKey `json:"category_key" yaml:"category_key" mapstructure:"category_key" validate:"omitempty,oneof=id display_name"`

	// CategoryAttr is the node attribute name for the resolved category
	// (default "sub_field").
	CategoryAttr string `json:"category_attr" yaml:"category_attr" mapstructure:"category_attr"`

	// CountryAttr is the node attribute name for the first country
	// (default "country"; "label1" reproduces the country network).
	CountryAttr string `json:"country_attr" yaml:"country_attr" mapstructure:"country_attr"`

	// InstitutionAttr is the node attribute name for the first
	// institution (default "institution").
	InstitutionAttr string `json:"institution_attr" yaml:"institution_attr" mapstructure:"institution_attr"`

	// Sentinel is the resolved category for nodes without observations
	// (default "unknown").
	Sentinel string `json:"sentinel" yaml:"sentinel" mapstructure:"sentinel"`
}

// ExportFormat selects the graph serialization.
type ExportFormat string

const (
	FormatGEXF   ExportFormat = "gexf"
	FormatJSON   ExportFormat = "json"
	FormatYAML   ExportFormat = "yaml"
	FormatSQLite ExportFormat = "sqlite"
)

// ExportConfig holds settings for the graph exporter.
type ExportConfig struct {
	// Format selects gexf, json, yaml, or sqlite (default gexf).
	Format ExportFormat `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=gexf json yaml sqlite"`

	// Dir is the output directory for partitioned exports.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// PartitionConfig holds settings for partitioned builds.
type PartitionConfig struct {
	// Workers bounds the number of partitions built concurrently (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gte=0,lte=64"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn warning error"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json console pretty"`

	// Output is stdout or stderr.
	Output string `json:"output" yaml:"output" mapstructure:"output" validate:"omitempty,oneof=stdout stderr"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	OpenAlex  OpenAlexConfig  `json:"openalex" yaml:"openalex" mapstructure:"openalex"`
	DBLP      DBLPConfig      `json:"dblp" yaml:"dblp" mapstructure:"dblp"`
	Graph     GraphConfig     `json:"graph" yaml:"graph" mapstructure:"graph"`
	Export    ExportConfig    `json:"export" yaml:"export" mapstructure:"export"`
	Partition PartitionConfig `json:"partition" yaml:"partition" mapstructure:"partition"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging" mapstructure:"logging"`
}
