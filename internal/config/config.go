package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StateDir is the project-relative directory holding all wavemaker state.
const StateDir = ".wavemaker"

// Config models .wavemaker/config.yaml plus WAVEMAKER_* environment overrides.
type Config struct {
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Conflict ConflictConfig `mapstructure:"conflict"`
	Run      RunConfig      `mapstructure:"run"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Log      LogConfig      `mapstructure:"log"`
}

// LedgerConfig locates the persisted task ledger and learnings log.
type LedgerConfig struct {
	Path      string `mapstructure:"path"`
	Learnings string `mapstructure:"learnings"`
}

// ConflictConfig controls the conflict analyzer.
type ConflictConfig struct {
	// Mode is "permissive" (unresolvable imports yield no closure) or
	// "conservative" (a task with an unscannable footprint conflicts with
	// every other task).
	Mode string `mapstructure:"mode"`
}

// RunConfig controls the orchestrator loop.
type RunConfig struct {
	// MaxBlocked is the number of blocked tasks tolerated in one run;
	// exceeding it triggers a systemic halt.
	MaxBlocked int    `mapstructure:"max_blocked"`
	ScratchDir string `mapstructure:"scratch_dir"`
	ArchiveDir string `mapstructure:"archive_dir"`
}

// WorkerConfig describes how external workers are invoked.
type WorkerConfig struct {
	// Command is the worker executable plus fixed leading arguments.
	Command []string `mapstructure:"command"`
	// Timeout bounds a single worker invocation.
	Timeout time.Duration `mapstructure:"timeout"`
	// Tiers maps task IDs to explicit tier overrides ("baseline",
	// "elevated", "maximal").
	Tiers map[string]string `mapstructure:"tiers"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Path:      filepath.Join(StateDir, "tasks.yaml"),
			Learnings: filepath.Join(StateDir, "learnings.md"),
		},
		Conflict: ConflictConfig{
			Mode: "permissive",
		},
		Run: RunConfig{
			MaxBlocked: 3,
			ScratchDir: filepath.Join(StateDir, "scratch"),
			ArchiveDir: filepath.Join(StateDir, "archive"),
		},
		Worker: WorkerConfig{
			Command: []string{"wavemaker-worker"},
			Timeout: 15 * time.Minute,
			Tiers:   map[string]string{},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from <workspace>/.wavemaker/config.yaml if present,
// applies WAVEMAKER_* environment overrides, and validates the result.
// A missing config file is not an error; defaults apply.
func Load(workspace string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(workspace, StateDir))
	v.SetEnvPrefix("WAVEMAKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("ledger.path", def.Ledger.Path)
	v.SetDefault("ledger.learnings", def.Ledger.Learnings)
	v.SetDefault("conflict.mode", def.Conflict.Mode)
	v.SetDefault("run.max_blocked", def.Run.MaxBlocked)
	v.SetDefault("run.scratch_dir", def.Run.ScratchDir)
	v.SetDefault("run.archive_dir", def.Run.ArchiveDir)
	v.SetDefault("worker.command", def.Worker.Command)
	v.SetDefault("worker.timeout", def.Worker.Timeout)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Worker.Tiers == nil {
		cfg.Worker.Tiers = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Ledger.Path == "" {
		return fmt.Errorf("config ledger.path is required")
	}
	if c.Ledger.Learnings == "" {
		return fmt.Errorf("config ledger.learnings is required")
	}
	switch c.Conflict.Mode {
	case "permissive", "conservative":
	default:
		return fmt.Errorf("config conflict.mode must be 'permissive' or 'conservative', got %q", c.Conflict.Mode)
	}
	if c.Run.MaxBlocked < 1 {
		return fmt.Errorf("config run.max_blocked must be at least 1, got %d", c.Run.MaxBlocked)
	}
	if len(c.Worker.Command) == 0 {
		return fmt.Errorf("config worker.command is required")
	}
	if c.Worker.Timeout <= 0 {
		return fmt.Errorf("config worker.timeout must be positive, got %s", c.Worker.Timeout)
	}
	return nil
}
