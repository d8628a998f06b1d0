package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# cryptofolio configuration

[market]
# Market data API endpoint (CoinGecko compatible)
base_url = "https://api.coingecko.com/api/v3"
# Quote currency (only "usd" is supported)
currency = "usd"
# Period between automatic price refreshes
refresh_interval = "60s"
# Timeout for a single price request
request_timeout = "10s"

[storage]
# Persistence backend: "file" or "sqlite"
backend = "file"
# Storage directory (defaults to the config directory)
# path = ""

[insight]
# Model used for portfolio analysis
model = "gpt-4o-mini"

[ui]
# Enable colored output
color_enabled = true
`

const credentialsTemplate = `# cryptofolio credentials
# Environment variables COINGECKO_API_KEY and OPENAI_API_KEY take precedence.

[coingecko]
# Optional; the public endpoint works without a key
api_key = ""

[openai]
# Required only for the 'analyze' command
api_key = ""
`

func createTemplateConfig(configDir string) error {
	return writeTemplate(configDir, "config.toml", configTemplate)
}

func createTemplateCredentials(configDir string) error {
	return writeTemplate(configDir, "credentials.toml", credentialsTemplate)
}

func writeTemplate(configDir, name, content string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing %s template: %w", name, err)
	}
	return nil
}
