package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/docvault/internal/flagx"
	"github.com/dmitrijs2005/docvault/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration, so both "10s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC    string         `json:"endpoint_addr_grpc"`
	DatabaseDSN         string         `json:"database_dsn"`
	SecretKey           string         `json:"secret_key"`
	KeyEncryptionSecret string         `json:"key_encryption_secret"`
	LogLevel            string         `json:"log_level"`
	DefaultPageSize     int            `json:"default_page_size"`
	MaxPageSize         int            `json:"max_page_size"`
	ShareTokenBytes     int            `json:"share_token_bytes"`
	TaskWorkers         int            `json:"task_workers"`
	TaskQueueSize       int            `json:"task_queue_size"`
	TaskTimeout         timex.Duration `json:"task_timeout"`
	UpdateRetryAttempts int            `json:"update_retry_attempts"`
}

// parseJson overlays values from the JSON file named by -c/-config onto
// config. Fields absent from the file keep their current value.
// An unreadable file or invalid JSON panics: the server must not start
// on a half-read configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()

	if jsonConfigFile == "" {
		return
	}

	if err := ApplyJSONFile(config, jsonConfigFile); err != nil {
		panic(err)
	}
}

// ApplyJSONFile overlays the non-zero values of the JSON file at path onto
// config.
func ApplyJSONFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.KeyEncryptionSecret, c.KeyEncryptionSecret)
	setString(&config.LogLevel, c.LogLevel)
	setInt(&config.DefaultPageSize, c.DefaultPageSize)
	setInt(&config.MaxPageSize, c.MaxPageSize)
	setInt(&config.ShareTokenBytes, c.ShareTokenBytes)
	setInt(&config.TaskWorkers, c.TaskWorkers)
	setInt(&config.TaskQueueSize, c.TaskQueueSize)
	setInt(&config.UpdateRetryAttempts, c.UpdateRetryAttempts)
	if c.TaskTimeout.Duration > 0 {
		config.TaskTimeout = c.TaskTimeout.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
