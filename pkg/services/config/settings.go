package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
)

var (
	ErrMissingRegion     = errors.New("AWS_REGION is required")
	ErrMissingAccountID  = errors.New("AWS_ACCOUNT_ID is required")
	ErrInvalidThreshold  = errors.New("DAILY_COST_THRESHOLD must not be negative")
	ErrInvalidParallel   = errors.New("DETAIL_CONCURRENCY must be at least 1")
	ErrMissingBudgetName = errors.New("MONTHLY_BUDGET_NAME must not be empty")
)

// Settings is the run configuration. Every key can come from the optional
// YAML file or from the upper-cased environment variable of the same name.
type Settings struct {
	Region    string `mapstructure:"aws_region"`
	AccountID string `mapstructure:"aws_account_id"`
	Profile   string `mapstructure:"aws_profile"`

	DailyCostThreshold float64  `mapstructure:"daily_cost_threshold"`
	RequiredTags       []string `mapstructure:"required_tags"`
	MonthlyBudgetName  string   `mapstructure:"monthly_budget_name"`
	DetailConcurrency  int      `mapstructure:"detail_concurrency"`

	OutputDir      string `mapstructure:"output_dir"`
	DBPath         string `mapstructure:"evidence_db_path"`
	EvidenceBucket string `mapstructure:"evidence_bucket"`
	EvidencePrefix string `mapstructure:"evidence_prefix"`

	ListenAddr string `mapstructure:"listen_addr"`
}

var defaults = map[string]any{
	"daily_cost_threshold": 10.0,
	"required_tags":        []string{"env", "team", "project"},
	"monthly_budget_name":  "monthly-budget",
	"detail_concurrency":   4,
	"output_dir":           ".",
	"evidence_db_path":     "evidence.duckdb",
	"evidence_prefix":      "evidence",
	"listen_addr":          ":8080",
}

var envAliases = map[string][]string{
	"aws_region": {"AWS_REGION", "AWS_DEFAULT_REGION"},
}

var keys = []string{
	"aws_region",
	"aws_account_id",
	"aws_profile",
	"daily_cost_threshold",
	"required_tags",
	"monthly_budget_name",
	"detail_concurrency",
	"output_dir",
	"evidence_db_path",
	"evidence_bucket",
	"evidence_prefix",
	"listen_addr",
}

// Load reads settings from path (when not empty) and the environment.
// The environment wins over the file.
func Load(path string) (*Settings, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range keys {
		names := append([]string{key}, envAliases[key]...)
		if err := v.BindEnv(names...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &s, nil
}

// Validate reports every missing or invalid setting at once.
func (s *Settings) Validate() error {
	var errs []error
	if s.Region == "" {
		errs = append(errs, ErrMissingRegion)
	}
	if s.AccountID == "" {
		errs = append(errs, ErrMissingAccountID)
	}
	if s.DailyCostThreshold < 0 {
		errs = append(errs, ErrInvalidThreshold)
	}
	if s.DetailConcurrency < 1 {
		errs = append(errs, ErrInvalidParallel)
	}
	if s.MonthlyBudgetName == "" {
		errs = append(errs, ErrMissingBudgetName)
	}
	return errors.Join(errs...)
}

func (s *Settings) AWS() awsclient.Settings {
	return awsclient.Settings{Profile: s.Profile, Region: s.Region}
}
