package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Report artifact formats.
const (
	FormatText = "text"
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatHTML = "html"
)

const defaultDatasetURL = "https://d396qusza40orc.cloudfront.net/repdata%2Fdata%2FStormData.csv.bz2"

var validFormats = []string{FormatText, FormatCSV, FormatJSON, FormatHTML}

// Config holds all report settings, populated from environment variables.
type Config struct {
	InputPath       string
	DatasetURL      string
	DownloadEnabled bool
	DownloadTimeout time.Duration

	OutputDir     string
	ReportFormats []string
	TopN          int
	BatchSize     int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional Kafka sink for ranked rows; disabled when no brokers are set.
	KafkaBrokers     []string
	KafkaReportTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	downloadTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("DOWNLOAD_TIMEOUT", "5m"))
	if err != nil || downloadTimeout <= 0 {
		return nil, errors.New("invalid DOWNLOAD_TIMEOUT")
	}

	topN, err := strconv.Atoi(sharedcfg.EnvOrDefault("TOP_N", "10"))
	if err != nil || topN < 0 {
		return nil, errors.New("invalid TOP_N: must be a non-negative integer")
	}

	formats, err := parseFormats(sharedcfg.EnvOrDefault("REPORT_FORMATS", "text,csv,json,html"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		InputPath:       sharedcfg.EnvOrDefault("INPUT_PATH", "data/StormData.csv.bz2"),
		DatasetURL:      sharedcfg.EnvOrDefault("DATASET_URL", defaultDatasetURL),
		DownloadEnabled: sharedcfg.EnvOrDefault("DOWNLOAD_ENABLED", "true") == "true",
		DownloadTimeout: downloadTimeout,

		OutputDir:     sharedcfg.EnvOrDefault("OUTPUT_DIR", "out"),
		ReportFormats: formats,
		TopN:          topN,
		BatchSize:     batchSize,

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaReportTopic: sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "storm-impact-rankings"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if cfg.InputPath == "" {
		return nil, errors.New("INPUT_PATH is required")
	}
	if cfg.DownloadEnabled && cfg.DatasetURL == "" {
		return nil, errors.New("DOWNLOAD_ENABLED is true but DATASET_URL is not set")
	}
	if cfg.KafkaEnabled() && cfg.KafkaReportTopic == "" {
		return nil, errors.New("KAFKA_REPORT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether ranked rows should be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// WantsFormat reports whether the named artifact format is enabled.
func (c *Config) WantsFormat(format string) bool {
	for _, f := range c.ReportFormats {
		if f == format {
			return true
		}
	}
	return false
}

func parseFormats(raw string) ([]string, error) {
	var formats []string
	for _, part := range strings.Split(raw, ",") {
		f := strings.ToLower(strings.TrimSpace(part))
		if f == "" {
			continue
		}
		if !isValidFormat(f) {
			return nil, fmt.Errorf("invalid REPORT_FORMATS entry %q (valid: %s)", f, strings.Join(validFormats, ", "))
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func isValidFormat(f string) bool {
	for _, v := range validFormats {
		if v == f {
			return true
		}
	}
	return false
}
