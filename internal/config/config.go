// Package config loads worksheetgen settings from defaults, an optional
// YAML file and WORKSHEETGEN_ environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/worksheetgen/internal/generator"
	"github.com/abhisek/worksheetgen/internal/llm"
	"github.com/abhisek/worksheetgen/internal/paginate"
	"github.com/abhisek/worksheetgen/internal/render"
	"github.com/abhisek/worksheetgen/internal/workbook"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// Config holds all application configuration.
type Config struct {
	Worksheet WorksheetConfig `yaml:"worksheet"`
	PDF       PDFConfig       `yaml:"pdf"`
	Text      TextConfig      `yaml:"text"`
	Server    ServerConfig    `yaml:"server"`
	LLM       llm.Config      `yaml:"llm"`

	// DBPath overrides the default database location.
	DBPath string `yaml:"db_path"`

	// OutputDir is where exports are written.
	OutputDir string `yaml:"output_dir"`

	// ProviderSet reports whether the LLM provider was chosen by the file
	// or the environment rather than left at its default.
	ProviderSet bool `yaml:"-"`
}

// WorksheetConfig holds generation defaults.
type WorksheetConfig struct {
	Type       string   `yaml:"type"`
	Language   string   `yaml:"language"`
	TotalMarks int      `yaml:"total_marks"`
	Tiers      []string `yaml:"tiers"`
}

// PDFConfig holds PDF page settings. Lengths are in millimetres.
type PDFConfig struct {
	PageSize string            `yaml:"page_size"`
	Margin   float64           `yaml:"margin"`
	FontFile string            `yaml:"font_file"`
	Geometry paginate.Geometry `yaml:"geometry"`
}

// TextConfig holds plain text page settings.
type TextConfig struct {
	Width int `yaml:"width"`
	Rows  int `yaml:"rows"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	pdf := render.DefaultPDFOptions()
	return &Config{
		Worksheet: WorksheetConfig{
			Type:       string(worksheet.MCQ),
			Language:   "english",
			TotalMarks: 20,
			Tiers:      append([]string(nil), workbook.DefaultTiers...),
		},
		PDF: PDFConfig{
			PageSize: pdf.PageSize,
			Margin:   pdf.Margin,
			Geometry: pdf.Geometry,
		},
		Text: TextConfig{
			Width: 80,
			Rows:  60,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			MaxBodyBytes: 1 << 20,
		},
		LLM:       llm.DefaultConfig(),
		OutputDir: ".",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/worksheetgen/config.yaml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "worksheetgen", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "worksheetgen", "config.yaml"), nil
}

// Load builds the configuration. An explicit path must exist; when path
// is empty the default location is read if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	var provider struct {
		LLM struct {
			Provider string `yaml:"provider"`
		} `yaml:"llm"`
	}
	if err := yaml.Unmarshal(data, &provider); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	if provider.LLM.Provider != "" {
		c.ProviderSet = true
	}
	return nil
}

func (c *Config) applyEnv() {
	if os.Getenv("WORKSHEETGEN_LLM_PROVIDER") != "" {
		c.ProviderSet = true
	}
	c.LLM = llm.ApplyEnv(c.LLM)

	c.Worksheet.Type = envStr("WORKSHEETGEN_TYPE", c.Worksheet.Type)
	c.Worksheet.Language = envStr("WORKSHEETGEN_LANGUAGE", c.Worksheet.Language)
	c.Worksheet.TotalMarks = envInt("WORKSHEETGEN_TOTAL_MARKS", c.Worksheet.TotalMarks)
	if v := os.Getenv("WORKSHEETGEN_TIERS"); v != "" {
		c.Worksheet.Tiers = SplitList(v)
	}
	c.PDF.FontFile = envStr("WORKSHEETGEN_FONT_FILE", c.PDF.FontFile)
	c.Server.Addr = envStr("WORKSHEETGEN_SERVER_ADDR", c.Server.Addr)
	c.DBPath = envStr("WORKSHEETGEN_DB", c.DBPath)
	c.OutputDir = envStr("WORKSHEETGEN_OUTPUT_DIR", c.OutputDir)
}

// Validate checks the worksheet and layout settings. LLM settings are
// validated when a provider is created.
func (c *Config) Validate() error {
	if _, err := worksheet.ParseQuestionType(c.Worksheet.Type); err != nil {
		return fmt.Errorf("worksheet.type: %w", err)
	}
	if c.Worksheet.TotalMarks < generator.MinTotalMarks || c.Worksheet.TotalMarks > generator.MaxTotalMarks {
		return fmt.Errorf("worksheet.total_marks must be between %d and %d, got %d",
			generator.MinTotalMarks, generator.MaxTotalMarks, c.Worksheet.TotalMarks)
	}
	if len(c.Worksheet.Tiers) == 0 {
		return fmt.Errorf("worksheet.tiers must not be empty")
	}
	if !c.PDF.Geometry.Valid() {
		return fmt.Errorf("pdf.geometry is invalid: %+v", c.PDF.Geometry)
	}
	if c.Text.Width < 20 || c.Text.Rows < 10 {
		return fmt.Errorf("text page must be at least 20x10, got %dx%d", c.Text.Width, c.Text.Rows)
	}
	return nil
}

// QuestionType returns the configured default question type.
func (c *Config) QuestionType() worksheet.QuestionType {
	t, err := worksheet.ParseQuestionType(c.Worksheet.Type)
	if err != nil {
		return worksheet.General
	}
	return t
}

// PDFOptions returns renderer options for the configured page.
func (c *Config) PDFOptions() render.PDFOptions {
	opts := render.DefaultPDFOptions()
	if c.PDF.PageSize != "" {
		opts.PageSize = c.PDF.PageSize
	}
	if c.PDF.Margin > 0 {
		opts.Margin = c.PDF.Margin
	}
	opts.UTF8FontFile = c.PDF.FontFile
	opts.Geometry = c.PDF.Geometry
	return opts
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
