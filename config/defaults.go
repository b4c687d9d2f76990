package config

const (
	DefaultProvider = "openai"
	DefaultModel    = "gpt-5-mini"
)

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/teros",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Assistant: AssistantConfig{
			Provider:       DefaultProvider,
			Model:          DefaultModel,
			RequestTimeout: DefaultRequestTimeout.String(),
		},
		Providers: []ProviderConfig{
			{ID: "openai", BaseURL: "https://api.openai.com/v1"},
			{ID: "grok", BaseURL: "https://api.x.ai/v1"},
			{ID: "anthropic", BaseURL: "https://api.anthropic.com"},
			{ID: "ollama", BaseURL: "http://localhost:11434"},
		},
		Security: SecurityConfig{
			CredentialStorage: SecurityPlainText,
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# Teros System Configuration
# Location: ~/.config/teros/settings.toml
# This file uses TOML format: https://toml.io

# Directory where the user config, credentials and attachment ledger live
data_directory = "~/.local/share/teros"
`
}

func GenerateUserConfigTemplate() string {
	return `# Teros User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[assistant]
# One of: openai, grok, anthropic, ollama
provider = "openai"
model = "gpt-5-mini"

# Appended to the built-in system message (optional)
system_prompt = ""

# Name the assistant addresses you by (defaults to the OS account name)
user_name = ""

# Override the model's context window in tokens (0 = built-in table)
context_window = 0

request_timeout = "2m0s"

# Directory read_file may open files from (defaults to the working directory)
# files_root = "~/projects"

[[providers]]
id = "openai"
base_url = "https://api.openai.com/v1"

[[providers]]
id = "grok"
base_url = "https://api.x.ai/v1"

[[providers]]
id = "anthropic"
base_url = "https://api.anthropic.com"

[[providers]]
id = "ollama"
base_url = "http://localhost:11434"

[security]
# "plaintext" (credentials.toml, 0600) or "ssh_key" (credentials.enc)
credential_storage = "plaintext"
ssh_key_path = ""
`
}
