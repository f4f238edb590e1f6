package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	configDir        = ".api-docs-tui"
	envFile          = "environments.yaml"
	historyFile      = "history.json"
	configFile       = "config.yaml"
	logFile          = "apidocs.log"
	defaultHistLimit = 100
)

// RequestItem is one try-it request as it went over the wire.
type RequestItem struct {
	ID         string            `json:"id"`
	EndpointID string            `json:"endpoint_id"`
	Name       string            `json:"name"`
	URL        string            `json:"url"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	StatusCode int               `json:"status_code,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	LastUsed   time.Time         `json:"last_used"`
}

type Environment struct {
	Name      string            `yaml:"name"`
	Variables map[string]string `yaml:"variables"`
}

type Config struct {
	Theme          string `yaml:"theme"`
	Timeout        int    `yaml:"timeout"`
	HistoryLimit   int    `yaml:"history_limit"`
	AutoFormatJSON bool   `yaml:"auto_format_json"`
	SaveHistory    bool   `yaml:"save_history"`
	CurrentEnv     string `yaml:"current_env"`
	StartExpanded  bool   `yaml:"start_expanded"`
	Watch          bool   `yaml:"watch"`
	LogLevel       string `yaml:"log_level"`
	LogFile        string `yaml:"log_file"`
}

func DefaultConfig() Config {
	return Config{
		Theme:          "mocha",
		Timeout:        30,
		HistoryLimit:   defaultHistLimit,
		AutoFormatJSON: true,
		SaveHistory:    true,
		CurrentEnv:     "development",
		Watch:          true,
		LogLevel:       "info",
	}
}

// ConfigManager holds the settings in effect. Config may carry command line
// overrides; saved mirrors config.yaml and is the only copy written back.
type ConfigManager struct {
	Config       Config
	History      []RequestItem
	Environments map[string]Environment
	configDir    string
	saved        Config
	mu           sync.RWMutex
}

// defaultConfigDir resolves ~/.api-docs-tui.
func defaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, configDir), nil
}

// NewConfigManager loads config, environments and history from dir,
// creating the directory and default files when they are missing.
func NewConfigManager(dir string) (*ConfigManager, error) {
	if dir == "" {
		var err error
		if dir, err = defaultConfigDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cm := &ConfigManager{
		configDir:    dir,
		Config:       DefaultConfig(),
		Environments: make(map[string]Environment),
	}

	if err := cm.loadConfig(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cm.loadEnvironments(); err != nil {
		return nil, fmt.Errorf("environments: %w", err)
	}
	if err := cm.loadHistory(); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	return cm, nil
}

// LogPath is where the file logger writes unless log_file overrides it.
func (cm *ConfigManager) LogPath() string {
	if cm.Config.LogFile != "" {
		return cm.Config.LogFile
	}
	return filepath.Join(cm.configDir, logFile)
}

func (cm *ConfigManager) loadConfig() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	configPath := filepath.Join(cm.configDir, configFile)
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		cm.saved = cm.Config
		return cm.saveConfigLocked()
	}
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, &cm.Config); err != nil {
		cm.Config = DefaultConfig()
		return err
	}
	if cm.Config.Theme == "" {
		cm.Config.Theme = "mocha"
	}
	if cm.Config.HistoryLimit <= 0 {
		cm.Config.HistoryLimit = defaultHistLimit
	}
	cm.saved = cm.Config
	return nil
}

func (cm *ConfigManager) saveConfigLocked() error {
	configPath := filepath.Join(cm.configDir, configFile)
	data, err := yaml.Marshal(cm.saved)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

func (cm *ConfigManager) loadHistory() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	historyPath := filepath.Join(cm.configDir, historyFile)
	data, err := os.ReadFile(historyPath)
	if os.IsNotExist(err) {
		cm.History = []RequestItem{}
		return nil
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &cm.History)
}

func (cm *ConfigManager) saveHistoryLocked() error {
	if !cm.Config.SaveHistory {
		return nil
	}

	if len(cm.History) > cm.Config.HistoryLimit {
		cm.History = cm.History[:cm.Config.HistoryLimit]
	}

	historyPath := filepath.Join(cm.configDir, historyFile)
	data, err := json.MarshalIndent(cm.History, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(historyPath, data, 0644)
}

// addToHistory puts req at the front. A repeat of the same method and URL
// moves the existing entry instead of adding a new one.
func (cm *ConfigManager) addToHistory(req RequestItem) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	now := time.Now()
	for i, item := range cm.History {
		if item.URL == req.URL && item.Method == req.Method {
			item.LastUsed = now
			item.StatusCode = req.StatusCode
			cm.History = append(cm.History[:i], cm.History[i+1:]...)
			cm.History = append([]RequestItem{item}, cm.History...)
			return cm.saveHistoryLocked()
		}
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.CreatedAt = now
	req.LastUsed = now
	cm.History = append([]RequestItem{req}, cm.History...)

	return cm.saveHistoryLocked()
}

// RecentHistory returns up to n of the most recent requests.
func (cm *ConfigManager) RecentHistory(n int) []RequestItem {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if n > len(cm.History) {
		n = len(cm.History)
	}
	return append([]RequestItem(nil), cm.History[:n]...)
}

func defaultEnvironments() map[string]Environment {
	return map[string]Environment{
		"development": {
			Name: "development",
			Variables: map[string]string{
				"BASE_URL": "http://localhost:3000",
				"API_KEY":  "dev-key-123",
			},
		},
		"production": {
			Name: "production",
			Variables: map[string]string{
				"BASE_URL": "https://api.example.com",
				"API_KEY":  "prod-key-789",
			},
		},
	}
}

func (cm *ConfigManager) loadEnvironments() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	envPath := filepath.Join(cm.configDir, envFile)
	data, err := os.ReadFile(envPath)
	if os.IsNotExist(err) {
		cm.Environments = defaultEnvironments()
		out, err := yaml.Marshal(cm.Environments)
		if err != nil {
			return err
		}
		return os.WriteFile(envPath, out, 0644)
	}
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, &cm.Environments); err != nil {
		return err
	}
	for name, env := range cm.Environments {
		if env.Name == "" {
			env.Name = name
			cm.Environments[name] = env
		}
	}
	return nil
}

func (cm *ConfigManager) getCurrentEnvironment() Environment {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if env, exists := cm.Environments[cm.Config.CurrentEnv]; exists {
		return env
	}
	names := cm.environmentNamesLocked()
	if len(names) > 0 {
		return cm.Environments[names[0]]
	}
	return Environment{}
}

func (cm *ConfigManager) replaceEnvVars(input string) string {
	env := cm.getCurrentEnvironment()
	if env.Variables == nil {
		return input
	}

	result := input
	for key, value := range env.Variables {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// SetCurrentEnv changes the current environment and saves the configuration
func (cm *ConfigManager) SetCurrentEnv(envName string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.Environments[envName]; !exists {
		return fmt.Errorf("environment %s not found", envName)
	}

	cm.Config.CurrentEnv = envName
	cm.saved.CurrentEnv = envName
	return cm.saveConfigLocked()
}

// NextEnv switches to the environment after the current one in name order.
func (cm *ConfigManager) NextEnv() (string, error) {
	names := cm.GetAvailableEnvironments()
	if len(names) == 0 {
		return "", fmt.Errorf("no environments configured")
	}
	cur := cm.getCurrentEnvironment().Name
	next := names[0]
	for i, name := range names {
		if name == cur {
			next = names[(i+1)%len(names)]
			break
		}
	}
	return next, cm.SetCurrentEnv(next)
}

// GetAvailableEnvironments returns environment names, sorted.
func (cm *ConfigManager) GetAvailableEnvironments() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.environmentNamesLocked()
}

func (cm *ConfigManager) environmentNamesLocked() []string {
	envs := make([]string, 0, len(cm.Environments))
	for name := range cm.Environments {
		envs = append(envs, name)
	}
	sort.Strings(envs)
	return envs
}

// FindHistoryByEndpoint returns the requests sent for one endpoint.
func (cm *ConfigManager) FindHistoryByEndpoint(endpointID string) []RequestItem {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	var results []RequestItem
	for _, item := range cm.History {
		if item.EndpointID == endpointID {
			results = append(results, item)
		}
	}
	return results
}
