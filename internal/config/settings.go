package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/askoura/rednote-downloader/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath          string  `json:"downloads_path"`
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads"`
	DownloadMaxRetries     int     `json:"download_max_retries"`
	DownloadRetryCooldown  float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent  float64 `json:"download_retry_exponent"`
	ChunkSize              int     `json:"chunk_size"`

	// Ledger settings
	LedgerPath string `json:"ledger_path"`

	// HTTP settings
	UserAgent      string `json:"user_agent"`
	Cookie         string `json:"cookie"`
	TimeoutSeconds int    `json:"timeout_seconds"`

	// Extraction settings
	RecordData    bool   `json:"record_data"`
	ImageFormat   string `json:"image_format"`
	ConvertImages bool   `json:"convert_images"`
	VideoFormat   string `json:"video_format"`

	// Watch settings
	PollIntervalSeconds float64 `json:"poll_interval_seconds"`
	EfficientMode       bool    `json:"efficient_mode"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DownloadsPath:          filepath.Join(homeDir, "Downloads", "RedNote"),
		MaxConcurrentDownloads: 4,
		DownloadMaxRetries:     5,
		DownloadRetryCooldown:  0.5,
		DownloadRetryExponent:  2.0,
		ChunkSize:              1024 * 1024,

		LedgerPath: filepath.Join(homeDir, "Downloads", "RedNote", "records.db"),

		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		TimeoutSeconds: 10,

		RecordData:    true,
		ImageFormat:   "png",
		ConvertImages: false,
		VideoFormat:   "mp4",

		PollIntervalSeconds: 1,
		EfficientMode:       false,
	}
}

// Load reads settings from a JSON file.
//
// A missing file is not an error: defaults are returned so a first run works
// without any configuration.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ToPathConfig converts settings to a model.PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		DownloadsPath: s.DownloadsPath,
	}
}
