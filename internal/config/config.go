package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int `koanf:"port"`
	} `koanf:"server"`

	GitHub struct {
		Token  string `koanf:"token"`
		Org    string `koanf:"org"`
		APIURL string `koanf:"api_url"`
	} `koanf:"github"`

	Shortcut struct {
		Token        string `koanf:"token"`
		Workspace    string `koanf:"workspace"`
		APIURL       string `koanf:"api_url"`
		QAStateID    int64  `koanf:"qa_state_id"`
		ReadyStateID int64  `koanf:"ready_state_id"`
	} `koanf:"shortcut"`

	Slack struct {
		StagingWebhookURL    string `koanf:"staging_webhook_url"`
		ProductionWebhookURL string `koanf:"production_webhook_url"`
	} `koanf:"slack"`

	Effects struct {
		RenameRepos     []string          `koanf:"rename_repos"`
		ReleaseRepos    []string          `koanf:"release_repos"`
		GradleRepos     []string          `koanf:"gradle_repos"`
		ResyncRepos     []string          `koanf:"resync_repos"`
		VersionDefaults map[string]string `koanf:"version_defaults"`
	} `koanf:"effects"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"server.port":             8080,
		"github.api_url":          "https://api.github.com",
		"shortcut.api_url":        "https://api.app.shortcut.com/api/v3",
		"shortcut.qa_state_id":    500086340,
		"shortcut.ready_state_id": 500086341,
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		// Try to load from default locations
		defaultPaths := []string{"./shipbot.toml", "$HOME/.shipbot.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix SHIPBOT_.
	// Only the first underscore becomes a section separator so that
	// multi-word keys like SHIPBOT_SLACK_STAGING_WEBHOOK_URL survive.
	k.Load(env.Provider("SHIPBOT_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "SHIPBOT_"))
		return strings.Replace(s, "_", ".", 1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# shipbot Configuration

[server]
port = 8080

[github]
token = "your-github-token"
org = "your-org"

[shortcut]
token = "your-shortcut-token"
workspace = "your-workspace"

[slack]
staging_webhook_url = ""
production_webhook_url = ""
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.GitHub.Token == "" {
		return fmt.Errorf("github token is required")
	}

	if config.GitHub.Org == "" {
		return fmt.Errorf("github org is required")
	}

	if config.Shortcut.Token == "" {
		return fmt.Errorf("shortcut token is required")
	}

	if config.Shortcut.Workspace == "" {
		return fmt.Errorf("shortcut workspace is required")
	}

	return nil
}
