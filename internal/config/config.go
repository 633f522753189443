// Package config provides configuration management for the PDF translator.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "pdf-translator-config.json"
	// EnvOpenAIAPIKey is the environment variable name for the OpenAI API key
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvOpenAIBaseURL is the environment variable name for the OpenAI base URL
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	// EnvOpenAIModel is the environment variable name for the model identifier
	EnvOpenAIModel = "OPENAI_MODEL"
	// EnvWorkspaceDir is the environment variable name for the workspace root
	EnvWorkspaceDir = "WORKSPACE_DIR"
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the default model to use
	DefaultModel = "gpt-4o-mini"
	// DefaultConcurrency is the default number of concurrent translation requests
	DefaultConcurrency = 4
	// DefaultLangIn is the default source language code
	DefaultLangIn = "en"
	// DefaultLangOut is the default target language code
	DefaultLangOut = "zh"
)

// Manager loads, persists, and answers queries about the application
// configuration. File values win over environment variables; environment
// variables win over built-in defaults.
type Manager struct {
	configPath string
	config     *types.Config
}

// NewManager creates a Manager with the specified config path.
// If configPath is empty, the default path in the user's home directory is used.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "pdf-translator", DefaultConfigFileName)
	}

	logger.Info("config manager initialized", logger.String("configPath", configPath))
	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

func defaultConfig() *types.Config {
	return &types.Config{
		OpenAIBaseURL: DefaultBaseURL,
		OpenAIModel:   DefaultModel,
		LangIn:        DefaultLangIn,
		LangOut:       DefaultLangOut,
		Concurrency:   DefaultConcurrency,
	}
}

// Load reads the config file. A missing file is not an error; defaults are
// used and environment variables fill the gaps.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		config := &types.Config{}
		if err := json.Unmarshal(data, config); err != nil {
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			m.config = config
		}
	}

	if m.config.OpenAIModel == "" {
		m.config.OpenAIModel = DefaultModel
	}
	if m.config.OpenAIBaseURL == "" {
		m.config.OpenAIBaseURL = DefaultBaseURL
	}
	if m.config.Concurrency <= 0 {
		m.config.Concurrency = DefaultConcurrency
	}
	if m.config.LangIn == "" {
		m.config.LangIn = DefaultLangIn
	}
	if m.config.LangOut == "" {
		m.config.LangOut = DefaultLangOut
	}

	return nil
}

// Save writes the current configuration to the config file.
func (m *Manager) Save() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved", logger.String("path", m.configPath))
	return nil
}

// Config returns the current configuration.
func (m *Manager) Config() *types.Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// SetConfig replaces the entire configuration.
func (m *Manager) SetConfig(config *types.Config) {
	m.config = config
}

// ConfigPath returns the path to the config file.
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// APIKey returns the OpenAI API key, falling back to the environment.
func (m *Manager) APIKey() string {
	if m.config != nil && m.config.OpenAIAPIKey != "" {
		return m.config.OpenAIAPIKey
	}
	return os.Getenv(EnvOpenAIAPIKey)
}

// BaseURL returns the OpenAI API base URL, falling back to the environment.
func (m *Manager) BaseURL() string {
	if m.config != nil && m.config.OpenAIBaseURL != "" && m.config.OpenAIBaseURL != DefaultBaseURL {
		return m.config.OpenAIBaseURL
	}
	if envURL := os.Getenv(EnvOpenAIBaseURL); envURL != "" {
		return envURL
	}
	if m.config != nil && m.config.OpenAIBaseURL != "" {
		return m.config.OpenAIBaseURL
	}
	return DefaultBaseURL
}

// Model returns the model identifier, falling back to the environment.
func (m *Manager) Model() string {
	if m.config != nil && m.config.OpenAIModel != "" && m.config.OpenAIModel != DefaultModel {
		return m.config.OpenAIModel
	}
	if envModel := os.Getenv(EnvOpenAIModel); envModel != "" {
		return envModel
	}
	return DefaultModel
}

// Concurrency returns the translation concurrency limit.
func (m *Manager) Concurrency() int {
	if m.config != nil && m.config.Concurrency > 0 {
		return m.config.Concurrency
	}
	return DefaultConcurrency
}

// WorkspaceRoot returns the directory against which relative input and
// output paths are resolved. Priority: config file, WORKSPACE_DIR env,
// then ~/.pdf-translator/workspace. The directory is created on demand.
func (m *Manager) WorkspaceRoot() (string, error) {
	root := ""
	if m.config != nil && m.config.WorkspaceRoot != "" {
		root = m.config.WorkspaceRoot
	} else if env := os.Getenv(EnvWorkspaceDir); env != "" {
		root = env
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		root = filepath.Join(homeDir, ".pdf-translator", "workspace")
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return "", types.NewAppError(types.ErrConfig, "failed to create workspace directory", err)
	}
	return root, nil
}

// CachePath returns the translation cache file path. An empty string keeps
// the cache in memory only.
func (m *Manager) CachePath() string {
	if m.config != nil {
		return m.config.CachePath
	}
	return ""
}

// LayoutModelPath returns the path to the layout detection ONNX model.
func (m *Manager) LayoutModelPath() string {
	if m.config != nil {
		return m.config.LayoutModel
	}
	return ""
}
