package session

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/groupchat/agent"
)

const (
	defaultHumanName   = "Human"
	defaultHistoryFile = "chat_history.json"
)

// Config holds initialization parameters for a chat session. Agents is an
// ordered list: roster position is turn-taking position.
type Config struct {
	Agents      []agent.Config `json:"agents,omitempty"`
	HumanName   string         `json:"human_name,omitempty"`
	HistoryFile string         `json:"history_file,omitempty"`
}

// DefaultConfig returns a Config with an empty roster and default human
// identity and transcript location.
func DefaultConfig() Config {
	return Config{
		HumanName:   defaultHumanName,
		HistoryFile: defaultHistoryFile,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if len(source.Agents) > 0 {
		c.Agents = source.Agents
	}
	if source.HumanName != "" {
		c.HumanName = source.HumanName
	}
	if source.HistoryFile != "" {
		c.HistoryFile = source.HistoryFile
	}
}

// LoadConfig reads a JSON config file and merges it over the defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
