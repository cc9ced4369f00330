package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for the optional YAML file. Zero values mean
// "not set" and fall through to defaults.
type fileConfig struct {
	Port             string `yaml:"port"`
	Env              string `yaml:"env"`
	CORSAllowOrigins string `yaml:"cors_allow_origins"`
	OTLPEndpoint     string `yaml:"otlp_endpoint"`

	Content struct {
		Store     string `yaml:"store"`
		UploadDir string `yaml:"upload_dir"`
		TextDir   string `yaml:"text_dir"`
		S3        struct {
			Region   string `yaml:"region"`
			Bucket   string `yaml:"bucket"`
			Prefix   string `yaml:"prefix"`
			KMSKeyID string `yaml:"kms_key_id"`
		} `yaml:"s3"`
	} `yaml:"content"`

	Analytics struct {
		Store string `yaml:"store"`
		File  string `yaml:"file"`
	} `yaml:"analytics"`

	Users struct {
		Store string `yaml:"store"`
	} `yaml:"users"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`

	LLM struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		RPM      int    `yaml:"rpm"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"llm"`

	OCR struct {
		PopplerPath  string `yaml:"poppler_path"`
		TesseractCmd string `yaml:"tesseract_cmd"`
		DPI          int    `yaml:"dpi"`
		Language     string `yaml:"language"`
	} `yaml:"ocr"`

	Limits struct {
		MaxUploadMB     int `yaml:"max_upload_mb"`
		AskMaxChars     int `yaml:"ask_max_chars"`
		AskAllMaxChars  int `yaml:"ask_all_max_chars"`
		SummaryMaxChars int `yaml:"summary_max_chars"`
	} `yaml:"limits"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// loadFile parses path. A missing file is not an error.
func loadFile(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
