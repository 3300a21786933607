package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/handiism/metarenamer/internal/config"
	"github.com/handiism/metarenamer/internal/logging"
)

type commandContext struct {
	configFlag *string
	envFiles   *[]string
	logLevel   *string

	settingsOnce sync.Once
	settings     *config.Settings
	settingsErr  error
}

func newCommandContext(configFlag *string, envFiles *[]string, logLevel *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		envFiles:   envFiles,
		logLevel:   logLevel,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			return path
		}
	}
	return config.DefaultPath()
}

// ensureSettings loads the settings file and applies environment overrides
// once per invocation.
func (c *commandContext) ensureSettings() (*config.Settings, error) {
	c.settingsOnce.Do(func() {
		settings, err := config.Load(c.configPath())
		if err != nil {
			c.settingsErr = fmt.Errorf("load config: %w", err)
			return
		}
		var envFiles []string
		if c.envFiles != nil {
			envFiles = *c.envFiles
		}
		if err := settings.ApplyEnv(envFiles...); err != nil {
			c.settingsErr = fmt.Errorf("apply environment: %w", err)
			return
		}
		if c.logLevel != nil && strings.TrimSpace(*c.logLevel) != "" {
			settings.LogLevel = strings.TrimSpace(*c.logLevel)
		}
		if err := settings.Validate(); err != nil {
			c.settingsErr = fmt.Errorf("invalid config: %w", err)
			return
		}
		c.settings = settings
	})
	return c.settings, c.settingsErr
}

// logger builds the structured logger for the loaded settings, writing to
// stderr.
func (c *commandContext) logger() *slog.Logger {
	settings, err := c.ensureSettings()
	if err != nil {
		return logging.Nop()
	}
	logger, err := logging.New(logging.Options{
		Level:  settings.LogLevel,
		Format: settings.LogFormat,
		Output: os.Stderr,
	})
	if err != nil {
		return logging.Nop()
	}
	return logger
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
