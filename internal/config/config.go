package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Default values for a fresh configuration.
const (
	DefaultMaxPoints        = 25
	DefaultDeductionPattern = `//\s*Tutor:\s*(?P<sign>-)?\s*(?P<points>\d+(?:[.,]\d+)?)`
	DefaultIDPattern        = `(\d+)`
	DefaultNamePattern      = `[^\d_]+`
	DefaultFeedbackName     = "feedback"
	DefaultFeedbackMessage  = "Siehe Feedbackdatei."
	DefaultArchiveExtension = ".zip"
	DefaultIDPrefix         = "Teilnehmer/in"
)

// DefaultIgnore lists the name fragments of OS, VCS and IDE artifacts that
// are pruned from extracted submissions. Matching is case-insensitive.
var DefaultIgnore = []string{"__macosx", ".git", ".idea", ".vscode", ".ds_store", "thumbs.db", ".class"}

// DefaultSourceExtensions lists the file extensions scanned for deductions.
var DefaultSourceExtensions = []string{".java", ".c", ".h", ".cpp", ".hpp", ".cs", ".py", ".js", ".ts", ".go", ".rs", ".kt"}

// Config represents the main configuration for tuto.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Grading    GradingConfig    `toml:"grading"`
	Filesystem FilesystemConfig `toml:"filesystem"`
	Table      TableConfig      `toml:"table"`
	Database   DatabaseConfig   `toml:"database"`
	Encryption EncryptionConfig `toml:"encryption"`
	Publish    PublishConfig    `toml:"publish"`
}

// GradingConfig holds the rules used to tally deductions and name results.
type GradingConfig struct {
	MaxPoints        float64  `toml:"max_points" validate:"gte=0"`
	DeductionPattern string   `toml:"deduction_pattern" validate:"required"`
	SignedDeductions bool     `toml:"signed_deductions"` // unsigned markers count as bonus points
	SourceExtensions []string `toml:"source_extensions" validate:"min=1,dive,startswith=."`
	IDPattern        string   `toml:"id_pattern" validate:"required"`
	NamePattern      string   `toml:"name_pattern" validate:"required"`
	FeedbackName     string   `toml:"feedback_name" validate:"required"`
	FeedbackMessage  string   `toml:"feedback_message"`
}

// FilesystemConfig holds settings for unpacking and cleaning submission trees.
type FilesystemConfig struct {
	Ignore           []string `toml:"ignore"`
	ArchiveExtension string   `toml:"archive_extension" validate:"required,startswith=."`
	DeleteSource     bool     `toml:"delete_source"` // remove the top-level archive after extraction
}

// TableConfig holds settings for the grading table format.
type TableConfig struct {
	IDPrefix string `toml:"id_prefix"`
}

// DatabaseConfig represents configuration for the run history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type" validate:"oneof=sqlite memory none"`
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// EncryptionConfig lists the age recipients feedback bundles are sealed for.
// Without recipients a passphrase is requested interactively.
type EncryptionConfig struct {
	Recipients []string `toml:"recipients"`
}

// PublishConfig represents configuration for the bundle publisher.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type PublishConfig struct {
	Type string `toml:"type" validate:"omitempty,oneof=filesystem s3 memory"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	Root string `toml:"root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`
}

// Default creates a Config with every setting at its default, rooted at baseDir.
func Default(baseDir string) *Config {
	cfg := &Config{BaseDir: baseDir}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills every zero-valued setting with its default.
func (c *Config) applyDefaults() {
	if c.LogDir == "" && c.BaseDir != "" {
		c.LogDir = filepath.Join(c.BaseDir, "log")
	}

	g := &c.Grading
	if g.MaxPoints == 0 {
		g.MaxPoints = DefaultMaxPoints
	}
	if g.DeductionPattern == "" {
		g.DeductionPattern = DefaultDeductionPattern
	}
	if len(g.SourceExtensions) == 0 {
		g.SourceExtensions = append([]string(nil), DefaultSourceExtensions...)
	}
	if g.IDPattern == "" {
		g.IDPattern = DefaultIDPattern
	}
	if g.NamePattern == "" {
		g.NamePattern = DefaultNamePattern
	}
	if g.FeedbackName == "" {
		g.FeedbackName = DefaultFeedbackName
	}
	if g.FeedbackMessage == "" {
		g.FeedbackMessage = DefaultFeedbackMessage
	}

	if c.Filesystem.Ignore == nil {
		c.Filesystem.Ignore = append([]string(nil), DefaultIgnore...)
	}
	if c.Filesystem.ArchiveExtension == "" {
		c.Filesystem.ArchiveExtension = DefaultArchiveExtension
	}

	if c.Table.IDPrefix == "" {
		c.Table.IDPrefix = DefaultIDPrefix
	}

	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type == "sqlite" && c.Database.DataDir == "" && c.BaseDir != "" {
		c.Database.DataDir = filepath.Join(c.BaseDir, "data")
	}
}

// Validate checks field constraints and that every pattern compiles.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	patterns := map[string]string{
		"deduction_pattern": c.Grading.DeductionPattern,
		"id_pattern":        c.Grading.IDPattern,
		"name_pattern":      c.Grading.NamePattern,
	}
	for key, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid config: %s: %w", key, err)
		}
	}

	if c.Database.Type == "sqlite" && c.Database.DataDir == "" {
		return fmt.Errorf("invalid config: data_dir required for sqlite database")
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader. Settings absent from the
// input keep their defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads and validates the config at path. A missing file yields the
// defaults rooted at baseDir, so the tool works without `config init`.
func Load(path, baseDir string) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default(baseDir)
	} else if err != nil {
		return nil, err
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = baseDir
		cfg.applyDefaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
