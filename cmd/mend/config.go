package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mendworks/mend/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		bold := color.New(color.Bold).SprintFunc()

		fmt.Printf("%s %s\n", bold("user config:"), config.GetUserConfigPath())
		if p := config.GetProjectConfigPath(); p != "" {
			fmt.Printf("%s %s\n", bold("project config:"), p)
		}
		fmt.Println()

		key := "(not set)"
		if cfg.Anthropic.APIKey != "" {
			key = "****" + tail(cfg.Anthropic.APIKey, 4)
		}
		fmt.Printf("anthropic.api_key:       %s\n", key)
		fmt.Printf("anthropic.model:         %s\n", orDefault(cfg.Anthropic.Model, "(sdk default)"))
		fmt.Printf("anthropic.use_bedrock:   %v\n", cfg.Anthropic.UseBedrock)
		fmt.Printf("pipeline.max_iterations: %d\n", cfg.Pipeline.MaxIterations)
		fmt.Printf("pipeline.test_timeout:   %s\n", cfg.Pipeline.TestTimeout)
		fmt.Printf("commands.lint:           %s\n", cfg.Commands.Lint)
		fmt.Printf("commands.test:           %s\n", cfg.Commands.Test)
		fmt.Printf("history.keep:            %s\n", cfg.History.Keep)
		return nil
	},
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
