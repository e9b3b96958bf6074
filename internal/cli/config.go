package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	StateFile string
	Output    string

	// SessionID and PlayerID come from flags, falling back to the state file
	SessionID string
	PlayerID  string
}

// State is what create and join persist between invocations
type State struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("HOMEGUESS_SERVER", "http://localhost:8080"),
		StateFile: getEnvOrDefault("HOMEGUESS_STATE_FILE", defaultStateFile()),
		Output:    "text",
	}
}

// LoadState fills ids not given as flags from the state file
func (c *Config) LoadState() error {
	data, err := os.ReadFile(c.StateFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No state file is fine
		}
		return err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("invalid state file %s: %w", c.StateFile, err)
	}

	if c.SessionID == "" {
		c.SessionID = state.SessionID
	}
	if c.PlayerID == "" {
		c.PlayerID = state.PlayerID
	}
	return nil
}

// SaveState writes the session and player ids to the state file
func (c *Config) SaveState(sessionID, playerID string) error {
	c.SessionID = sessionID
	c.PlayerID = playerID

	dir := filepath.Dir(c.StateFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(State{SessionID: sessionID, PlayerID: playerID})
	if err != nil {
		return err
	}
	return os.WriteFile(c.StateFile, data, 0600)
}

// ClearState removes the state file
func (c *Config) ClearState() error {
	if err := os.Remove(c.StateFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RequireSession returns the session id or an error telling the user how to set one
func (c *Config) RequireSession() (string, error) {
	if c.SessionID == "" {
		return "", errors.New("no session: pass --session or run create/join first")
	}
	return c.SessionID, nil
}

// RequirePlayer returns the player id or an error telling the user how to set one
func (c *Config) RequirePlayer() (string, error) {
	if c.PlayerID == "" {
		return "", errors.New("no player: pass --player or run create/join first")
	}
	return c.PlayerID, nil
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".homeguess/state.json"
	}
	return filepath.Join(home, ".homeguess", "state.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
