package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// config is loaded from the environment first; command-line flags override it.
type config struct {
	// Jmod is the java.base.jmod defining the bootstrap loader's classes.
	Jmod string `env:"CLASSWALK_JMOD"`

	// JavaHome is searched for jmods/java.base.jmod when Jmod is unset.
	JavaHome string `env:"JAVA_HOME"`

	// ClassPath is a directory of .class files for the application loader.
	ClassPath string `env:"CLASSWALK_CLASSPATH"`

	// Log level ("debug", "info", "warn", "error").
	LogLevel string `env:"CLASSWALK_LOG_LEVEL" envDefault:"info"`

	// Log format ("json", "pretty").
	LogFormat string `env:"CLASSWALK_LOG_FORMAT" envDefault:"pretty"`

	// Output is the report format ("text", "json").
	Output string `env:"CLASSWALK_OUTPUT" envDefault:"text"`

	// SegmentSize is the number of hidden classes per memory segment.
	SegmentSize int `env:"CLASSWALK_SEGMENT_SIZE" envDefault:"64"`

	// ArrayDims is how many array dimensions to create for each class.
	ArrayDims int `env:"CLASSWALK_ARRAY_DIMS" envDefault:"1"`
}

func loadConfig() (config, error) {
	cfg := config{}

	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse classwalk config")
	}
	return cfg, nil
}

// validate performs validation on the merged configuration.
func (cfg *config) validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		return eris.Errorf("invalid log level: %s (must be 'debug', 'info', 'warn', or 'error')", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "pretty" {
		return eris.Errorf("invalid log format: %s (must be 'json' or 'pretty')", cfg.LogFormat)
	}
	if cfg.Output != "text" && cfg.Output != "json" {
		return eris.Errorf("invalid output: %s (must be 'text' or 'json')", cfg.Output)
	}
	if cfg.SegmentSize <= 0 {
		return eris.New("segment size must be positive")
	}
	if cfg.ArrayDims < 0 {
		return eris.New("array dimensions cannot be negative")
	}
	if cfg.Jmod == "" && cfg.ClassPath == "" {
		return eris.New("nothing to load: set a jmod or a class path")
	}
	return nil
}

// resolveJmod fills in Jmod from JAVA_HOME or a well-known install location.
func (cfg *config) resolveJmod() {
	if cfg.Jmod != "" {
		return
	}
	if cfg.JavaHome != "" {
		p := filepath.Join(cfg.JavaHome, "jmods", "java.base.jmod")
		if _, err := os.Stat(p); err == nil {
			cfg.Jmod = p
			return
		}
	}
	matches, _ := filepath.Glob("/usr/lib/jvm/java-*-openjdk-*/jmods/java.base.jmod")
	if len(matches) > 0 {
		cfg.Jmod = matches[0]
	}
}

func (cfg *config) newLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.LogFormat == "pretty" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
