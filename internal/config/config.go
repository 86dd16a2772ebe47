// Package config handles loading the submission tool's settings.
package config

import (
	"time"

	"github.com/YashubuStudio/Vconf-webgl-glTF/preview"
	"github.com/YashubuStudio/Vconf-webgl-glTF/validator"
)

// Config holds all settings.
type Config struct {
	Upload  UploadConfig     `yaml:"upload"`
	Limits  validator.Limits `yaml:"limits"`
	Preview preview.Options  `yaml:"preview"`
	Logging LoggingConfig    `yaml:"logging"`
}

// UploadConfig holds the submission endpoints and presenter credentials.
type UploadConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	RegenerateURL string        `yaml:"regenerate_url"`
	UploadsBase   string        `yaml:"uploads_base"`
	Timeout       time.Duration `yaml:"timeout"`
	PresenterID   string        `yaml:"presenter_id"`
	Passcode      string        `yaml:"passcode"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

const defaultSite = "https://3dobjcttest.yashubustudioetc.com/api"

// Default returns a Config with the portal's endpoints and the submission limits.
func Default() *Config {
	return &Config{
		Upload: UploadConfig{
			Endpoint:      defaultSite + "/upload.php",
			RegenerateURL: defaultSite + "/regenerate.php",
			UploadsBase:   defaultSite + "/uploads",
			Timeout:       60 * time.Second,
		},
		Limits:  validator.DefaultLimits,
		Preview: preview.DefaultOptions,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
