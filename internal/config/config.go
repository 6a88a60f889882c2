package config

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Vote   VoteConfig   `yaml:"vote" mapstructure:"vote"`
	Merge  MergeConfig  `yaml:"merge" mapstructure:"merge"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the four source files. Relative file names resolve
// against BaseDir.
type DataConfig struct {
	BaseDir        string `yaml:"base_dir" mapstructure:"base_dir"`
	VoteFile       string `yaml:"vote_file" mapstructure:"vote_file"`
	PopulationFile string `yaml:"population_file" mapstructure:"population_file"`
	RevenueFile    string `yaml:"revenue_file" mapstructure:"revenue_file"`
	EducationFile  string `yaml:"education_file" mapstructure:"education_file"`
}

// OutputConfig configures where the final table goes.
type OutputConfig struct {
	// Path of the final CSV. Empty means <base_dir>/processed/cleaned_data.csv.
	Path         string `yaml:"path" mapstructure:"path"`
	Encoding     string `yaml:"encoding" mapstructure:"encoding"`
	ReportFormat string `yaml:"report_format" mapstructure:"report_format"`
	SQLitePath   string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	PostgresURL  string `yaml:"postgres_url" mapstructure:"postgres_url"`
	Table        string `yaml:"table" mapstructure:"table"`
}

// VoteConfig names the three candidate tickets in vote file column order.
type VoteConfig struct {
	Candidates []string `yaml:"candidates" mapstructure:"candidates"`
}

// MergeConfig configures merge diagnostics.
type MergeConfig struct {
	ExpectedExclusions []string `yaml:"expected_exclusions" mapstructure:"expected_exclusions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DISTRICT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.base_dir", "data")
	v.SetDefault("data.vote_file", "vote.csv")
	v.SetDefault("data.population_file", "population_structure_Jan.csv")
	v.SetDefault("data.revenue_file", "revenue.csv")
	v.SetDefault("data.education_file", "education.csv")
	v.SetDefault("output.path", "")
	v.SetDefault("output.encoding", "utf-8-sig")
	v.SetDefault("output.report_format", "text")
	v.SetDefault("output.sqlite_path", "")
	v.SetDefault("output.postgres_url", "")
	v.SetDefault("output.table", "district_final")
	v.SetDefault("vote.candidates", []string{"Ko_Wu", "Lai_Hsiao", "Hou_Chao"})
	v.SetDefault("merge.expected_exclusions", []string{"Kinmen County", "Lienchiang County"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks values that cannot be caught by unmarshalling.
func (c *Config) Validate() error {
	var errs []string

	switch c.Output.Encoding {
	case "utf-8-sig", "utf-8":
	default:
		errs = append(errs, "output.encoding must be utf-8-sig or utf-8")
	}

	switch c.Output.ReportFormat {
	case "text", "json", "yaml":
	default:
		errs = append(errs, "output.report_format must be text, json, or yaml")
	}

	if len(c.Vote.Candidates) != 3 {
		errs = append(errs, "vote.candidates must name exactly 3 candidates")
	}

	if (c.Output.SQLitePath != "" || c.Output.PostgresURL != "") && c.Output.Table == "" {
		errs = append(errs, "output.table is required when a database sink is configured")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Resolve returns file relative to BaseDir, or file itself when absolute.
func (d DataConfig) Resolve(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(d.BaseDir, file)
}

// OutputPath returns the final CSV location.
func (c *Config) OutputPath() string {
	if c.Output.Path != "" {
		return c.Output.Path
	}
	return filepath.Join(c.Data.BaseDir, "processed", "cleaned_data.csv")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
