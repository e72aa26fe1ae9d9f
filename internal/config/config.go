// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves the pipeline configuration from defaults, an
// optional YAML file, and COAUTHOR_GRAPH_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// COAUTHOR_GRAPH_OPENALEX_EMAIL.
const EnvPrefix = "COAUTHOR_GRAPH"

const (
	DefaultOpenAlexBaseURL = "https://api.openalex.org"
	DefaultDBLPBaseURL     = "https://dblp.org/pid/"
	DefaultCatalogURL      = "https://raw.githubusercontent.com/aserg-ufmg/CSIndex/1082747ff0dbf524e2fe81bc343041bd95fcf1b4/data/"
	DefaultResearchersURL  = "https://raw.githubusercontent.com/aserg-ufmg/CSIndex/refs/heads/master/data/all-researchers.csv"
	DefaultUserAgent       = "coauthor-graph/0.1"
	DefaultSelect          = "id,doi,title,authorships,publication_year,primary_topic,cited_by_count,counts_by_year"
	DefaultFilter          = "type:article,institutions.country_code:BR,primary_topic.field.id:17"
)

// DefaultAreas are the CSIndex sub-areas.
var DefaultAreas = []string{
	"ai", "arch", "bio", "chi", "cse", "data", "dbis", "ds", "formal", "graphics",
	"hardware", "ir", "net", "or", "pl", "robotics", "se", "security", "theory", "vision",
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("openalex.base_url", DefaultOpenAlexBaseURL)
	v.SetDefault("openalex.timeout", 60*time.Second)
	v.SetDefault("openalex.user_agent", DefaultUserAgent)
	v.SetDefault("openalex.rate_limit", 0.8)
	v.SetDefault("openalex.max_retries", 5)
	v.SetDefault("openalex.email", "")
	v.SetDefault("openalex.per_page", 25)
	v.SetDefault("openalex.select", DefaultSelect)
	v.SetDefault("openalex.filter", DefaultFilter)

	v.SetDefault("dblp.base_url", DefaultDBLPBaseURL)
	v.SetDefault("dblp.catalog_url", DefaultCatalogURL)
	v.SetDefault("dblp.researchers_url", DefaultResearchersURL)
	v.SetDefault("dblp.timeout", 10*time.Second)
	v.SetDefault("dblp.user_agent", DefaultUserAgent)
	v.SetDefault("dblp.rate_limit", 1.0)
	v.SetDefault("dblp.max_retries", 5)
	v.SetDefault("dblp.areas", DefaultAreas)

	v.SetDefault("graph.category_key", string(types.CategoryByDisplayName))
	v.SetDefault("graph.category_attr", "sub_field")
	v.SetDefault("graph.country_attr", "country")
	v.SetDefault("graph.institution_attr", "institution")
	v.SetDefault("graph.sentinel", types.UnknownCategory)

	v.SetDefault("export.format", string(types.FormatGEXF))
	v.SetDefault("export.dir", "data/graphs")

	v.SetDefault("partition.workers", 1)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}

// BindEnv wires environment overrides onto v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation in one error.
func Validate(cfg types.PipelineConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
