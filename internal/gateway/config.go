package gateway

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fpt/klein-relay/internal/history"
	"github.com/fpt/klein-relay/pkg/client"
)

// Default values observed in the original deployment.
const (
	DefaultAllowedChannelID = "1319559650605137963"
	DefaultInactivityWindow = time.Hour
	DefaultHistoryFile      = "conversationHistory.json"
	DefaultPersonalityFile  = "personality.txt"
	DefaultConsoleChannelID = "console"
)

// Config is the top-level configuration for klein-relay.
type Config struct {
	client.Settings `yaml:",inline"`

	HistoryFile      string `json:"history_file" yaml:"history_file"`
	HistoryLimit     int    `json:"history_limit" yaml:"history_limit"`
	PersonalityFile  string `json:"personality_file" yaml:"personality_file"`
	InactivityWindow string `json:"inactivity_window" yaml:"inactivity_window"` // Go duration, default "1h"

	Discord DiscordConfig `json:"discord" yaml:"discord"`
	Console ConsoleConfig `json:"console" yaml:"console"`
	Prompts Prompts       `json:"prompts" yaml:"prompts"`
	Replies Replies       `json:"replies" yaml:"replies"`
}

// DiscordConfig holds Discord bot configuration.
type DiscordConfig struct {
	Token             string   `json:"-" yaml:"-"` // DISCORD_TOKEN only
	AllowedChannelIDs []string `json:"allowed_channel_ids" yaml:"allowed_channel_ids"`
}

// ConsoleConfig controls the local stdin/stdout adapter.
type ConsoleConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	ChannelID string `json:"channel_id" yaml:"channel_id"`
	UserName  string `json:"user_name" yaml:"user_name"`
}

// Prompts holds the text the relay sends to the model.
type Prompts struct {
	Personality    string `json:"personality" yaml:"personality"` // used when the personality file is unreadable
	UserTurnFormat string `json:"user_turn_format" yaml:"user_turn_format"`
	Inactivity     string `json:"inactivity" yaml:"inactivity"`
	Image          string `json:"image" yaml:"image"`
}

// Replies holds the fixed fallback texts sent to the channel.
type Replies struct {
	EmptyReply      string `json:"empty_reply" yaml:"empty_reply"`
	Apology         string `json:"apology" yaml:"apology"`
	EmptyInactivity string `json:"empty_inactivity" yaml:"empty_inactivity"`
	InactivityError string `json:"inactivity_error" yaml:"inactivity_error"`
	EmptyImage      string `json:"empty_image" yaml:"empty_image"`
	ImageError      string `json:"image_error" yaml:"image_error"`
	AttachImage     string `json:"attach_image" yaml:"attach_image"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: client.Settings{
			Backend: "openai",
			Model:   "gpt-4o-mini",
		},
		HistoryFile:      DefaultHistoryFile,
		HistoryLimit:     history.DefaultLimit,
		PersonalityFile:  DefaultPersonalityFile,
		InactivityWindow: DefaultInactivityWindow.String(),
		Discord: DiscordConfig{
			AllowedChannelIDs: []string{DefaultAllowedChannelID},
		},
		Console: ConsoleConfig{
			ChannelID: DefaultConsoleChannelID,
			UserName:  "you",
		},
		Prompts: DefaultPrompts(),
		Replies: DefaultReplies(),
	}
}

// DefaultPrompts returns the built-in model prompts.
func DefaultPrompts() Prompts {
	return Prompts{
		Personality:    "You are a standard assistant. Answer in a generic but helpful way.",
		UserTurnFormat: "%s said: %s",
		Inactivity: "There has been no activity in the channel for 10 minutes. " +
			"Write an ironic, sarcastic and biting message. You are in a Discord channel " +
			"and the message is for everyone. Keep it short.",
		Image: "What is in this image? Answer in a sarcastic, ironic and biting way.",
	}
}

// DefaultReplies returns the built-in fallback replies.
func DefaultReplies() Replies {
	return Replies{
		EmptyReply:      "I have no answer for that.",
		Apology:         "There was an error processing your message. Please try again later.",
		EmptyInactivity: "Well, it seems silence is the answer...",
		InactivityError: "There was an error generating the inactivity message.",
		EmptyImage:      "I'm not sure what this image is.",
		ImageError:      "There was a problem analyzing the image. Try another one.",
		AttachImage:     "Attach an image so I can analyze it.",
	}
}

// LoadConfig reads a YAML or JSON config file over the defaults. The format
// follows the extension (.json is JSON, anything else YAML). When the file
// does not exist and required is false, the defaults are returned.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults restores defaults for fields a config file blanked out.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.HistoryFile == "" {
		c.HistoryFile = def.HistoryFile
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = def.HistoryLimit
	}
	if c.PersonalityFile == "" {
		c.PersonalityFile = def.PersonalityFile
	}
	if c.InactivityWindow == "" {
		c.InactivityWindow = def.InactivityWindow
	}
	if c.Console.ChannelID == "" {
		c.Console.ChannelID = def.Console.ChannelID
	}
	if c.Console.UserName == "" {
		c.Console.UserName = def.Console.UserName
	}
	fillString(&c.Prompts.Personality, def.Prompts.Personality)
	fillString(&c.Prompts.UserTurnFormat, def.Prompts.UserTurnFormat)
	fillString(&c.Prompts.Inactivity, def.Prompts.Inactivity)
	fillString(&c.Prompts.Image, def.Prompts.Image)
	fillString(&c.Replies.EmptyReply, def.Replies.EmptyReply)
	fillString(&c.Replies.Apology, def.Replies.Apology)
	fillString(&c.Replies.EmptyInactivity, def.Replies.EmptyInactivity)
	fillString(&c.Replies.InactivityError, def.Replies.InactivityError)
	fillString(&c.Replies.EmptyImage, def.Replies.EmptyImage)
	fillString(&c.Replies.ImageError, def.Replies.ImageError)
	fillString(&c.Replies.AttachImage, def.Replies.AttachImage)
}

func fillString(dst *string, def string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = def
	}
}

// ApplyEnv reads secrets from the environment.
func (c *Config) ApplyEnv() {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		c.Discord.Token = token
	}
}

// Window returns the parsed inactivity window, falling back to one hour
// for unparsable or non-positive values.
func (c *Config) Window() time.Duration {
	d, err := time.ParseDuration(c.InactivityWindow)
	if err != nil || d <= 0 {
		return DefaultInactivityWindow
	}
	return d
}

// DiscordEnabled reports whether the Discord adapter should run. Without a
// console adapter Discord is the only surface and is always enabled.
func (c *Config) DiscordEnabled() bool {
	return c.Discord.Token != "" || !c.Console.Enabled
}

// AllowedChannels returns every channel id the relay serves.
func (c *Config) AllowedChannels() []string {
	ids := make([]string, 0, len(c.Discord.AllowedChannelIDs)+1)
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if c.DiscordEnabled() {
		for _, id := range c.Discord.AllowedChannelIDs {
			add(id)
		}
	}
	if c.Console.Enabled {
		add(c.Console.ChannelID)
	}
	return ids
}

// Validate reports configuration that prevents startup.
func (c *Config) Validate() error {
	if c.DiscordEnabled() && c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN environment variable not set")
	}
	if _, err := time.ParseDuration(c.InactivityWindow); err != nil {
		return fmt.Errorf("invalid inactivity_window %q: %w", c.InactivityWindow, err)
	}
	if strings.Count(c.Prompts.UserTurnFormat, "%s") != 2 {
		return fmt.Errorf("user_turn_format must contain exactly two %%s verbs (author, text)")
	}
	return nil
}

// LoadDotEnv loads a .env file without overriding variables already set.
// A missing file is only an error when required is true.
func LoadDotEnv(path string, required bool) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".klein", "relay", "config.yaml")
}
