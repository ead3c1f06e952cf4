package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/xob0t/covergen/pkg/batch"
	"github.com/xob0t/covergen/pkg/config"
	"github.com/xob0t/covergen/pkg/fonts"
	"github.com/xob0t/covergen/pkg/framesource"
	"github.com/xob0t/covergen/pkg/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// coordinator wires the ffmpeg frame source into a batch coordinator.
func (c *commandContext) coordinator(logger *slog.Logger) *batch.Coordinator {
	return &batch.Coordinator{
		Frames: framesource.NewFFmpeg(),
		Fonts:  fonts.NewCache(),
		Logger: logger,
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
