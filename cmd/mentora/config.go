package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/krancour/mentora/internal/file"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const (
	envconfigPrefix   = "MENTORA"
	defaultAPIAddress = "https://thementoraai-backend-production.up.railway.app"

	sessionBackendFile  = "file"
	sessionBackendRedis = "redis"
)

// savedConfig is what `mentora login` remembers between invocations.
type savedConfig struct {
	APIAddress string `json:"apiAddress"`
}

// envConfig is configuration read from MENTORA_* environment variables.
// Redis connection settings are read separately by internal/redis.
type envConfig struct {
	APIAddress     string `envconfig:"API_ADDRESS"`
	AllowInsecure  bool   `envconfig:"ALLOW_INSECURE"`
	SessionBackend string `envconfig:"SESSION_BACKEND" default:"file"`
}

// loadDotEnv loads variables from a .env file in the working directory, if
// there is one. Variables already set in the environment win.
func loadDotEnv() error {
	if !file.Exists(".env") {
		return nil
	}
	return errors.Wrap(godotenv.Load(".env"), "error loading .env file")
}

func getEnvConfig() (envConfig, error) {
	c := envConfig{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return c, errors.Wrap(err, "error getting configuration from environment")
	}
	c.SessionBackend = strings.ToLower(c.SessionBackend)
	switch c.SessionBackend {
	case sessionBackendFile, sessionBackendRedis:
	default:
		return c, errors.Errorf(
			"unknown session backend %q; supported backends: %s, %s",
			c.SessionBackend,
			sessionBackendFile,
			sessionBackendRedis,
		)
	}
	return c, nil
}

// resolveAPIAddress picks the API address from, in order of precedence, the
// --server flag, the environment, the saved configuration, and the default.
func resolveAPIAddress(flagValue string, env envConfig) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env.APIAddress != "" {
		return env.APIAddress, nil
	}
	saved, err := getSavedConfig()
	if err != nil {
		return "", err
	}
	if saved != nil && saved.APIAddress != "" {
		return saved.APIAddress, nil
	}
	return defaultAPIAddress, nil
}

func getSavedConfig() (*savedConfig, error) {
	configFile, err := getConfigFile()
	if err != nil {
		return nil, err
	}
	if !file.Exists(configFile) {
		return nil, nil
	}
	configBytes, err := os.ReadFile(configFile)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error reading mentora config file at %s",
			configFile,
		)
	}
	config := &savedConfig{}
	if err := json.Unmarshal(configBytes, config); err != nil {
		return nil, errors.Wrapf(
			err,
			"error parsing mentora config file at %s",
			configFile,
		)
	}
	return config, nil
}

func saveConfig(config *savedConfig) error {
	configFile, err := getConfigFile()
	if err != nil {
		return err
	}
	configBytes, err := json.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}
	if err := file.WriteAtomic(configFile, configBytes, 0644); err != nil {
		return errors.Wrapf(err, "error writing to %s", configFile)
	}
	return nil
}

func getConfigFile() (string, error) {
	mentoraHome, err := getMentoraHome()
	if err != nil {
		return "", errors.Wrapf(err, "error finding mentora home")
	}
	return filepath.Join(mentoraHome, "config"), nil
}

func getMentoraHome() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}
	return filepath.Join(homeDir, ".mentora"), nil
}
