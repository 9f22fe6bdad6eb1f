// Config loading for the datax CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ElizabethRoman12/Datax/internal/graph"
	"github.com/ElizabethRoman12/Datax/internal/linkedin"
	"github.com/ElizabethRoman12/Datax/internal/tiktok"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys. Nested keys map to DATAX_* environment variables with
	// dots replaced by underscores (facebook.access_token →
	// DATAX_FACEBOOK_ACCESS_TOKEN), so tokens never have to live in the
	// config file.
	cfgKeyDataDir     = "data_dir"
	cfgKeyGraphURL    = "graph_url"
	cfgKeyLinkedInURL = "linkedin_url"
	cfgKeyTikTokURL   = "tiktok_url"
	cfgKeyFBPageID    = "facebook.page_id"
	cfgKeyFBToken     = "facebook.access_token"
	cfgKeyIGUserID    = "instagram.user_id"
	cfgKeyIGPageID    = "instagram.page_id"
	cfgKeyIGToken     = "instagram.access_token"
	cfgKeyLIOrgID     = "linkedin.org_id"
	cfgKeyLIToken     = "linkedin.access_token"
	cfgKeyTTKBizID    = "tiktok.business_id"
	cfgKeyTTKToken    = "tiktok.access_token"
)

// errMissingConfig marks configuration the user must supply.
var errMissingConfig = errors.New("missing configuration")

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Datax configuration

# Graph API endpoint
# graph_url: https://graph.facebook.com/v19.0

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

facebook:
  # page_id: "123456789"
  # access_token via DATAX_FACEBOOK_ACCESS_TOKEN

instagram:
  # user_id: "178414..."          # business account; or set page_id to resolve it
  # page_id: "123456789"
  # access_token via DATAX_INSTAGRAM_ACCESS_TOKEN

linkedin:
  # org_id: "123456"              # bare numeric organization ID
  # access_token via DATAX_LINKEDIN_ACCESS_TOKEN

tiktok:
  # business_id: "7000000000"
  # access_token via DATAX_TIKTOK_ACCESS_TOKEN
`

// loadConfig reads config.yaml from the resolved config directory using
// Viper, layering DATAX_* environment variables on top. It creates the
// config directory and a default config.yaml on first run. A missing
// config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyGraphURL, graph.DefaultBaseURL)
	v.SetDefault(cfgKeyLinkedInURL, linkedin.DefaultBaseURL)
	v.SetDefault(cfgKeyTikTokURL, tiktok.DefaultBaseURL)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("DATAX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// requireConfig returns the string at key or an errMissingConfig error
// naming the key.
func requireConfig(v *viper.Viper, key string) (string, error) {
	val := v.GetString(key)
	if val == "" {
		return "", fmt.Errorf("%w: %s", errMissingConfig, key)
	}
	return val, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
