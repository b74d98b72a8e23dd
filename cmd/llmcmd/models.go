package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iishyfishyy/llmcmd/internal/agent"
	"github.com/iishyfishyy/llmcmd/internal/config"
	"github.com/iishyfishyy/llmcmd/internal/ui"
)

// stdinIsTerminal gates the interactive model picker
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newModelsCmd() *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List models and choose the default",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List known models",
		Args:  cobra.NoArgs,
		RunE:  runModelsList,
	}

	defaultCmd := &cobra.Command{
		Use:   "default [model]",
		Short: "Show or set the default model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runModelsDefault,
	}

	modelsCmd.AddCommand(listCmd)
	modelsCmd.AddCommand(defaultCmd)
	return modelsCmd
}

func runModelsList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	registry := agent.NewRegistry(cfg)
	out := cmd.OutOrStdout()
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	for _, def := range registry.Definitions() {
		line := fmt.Sprintf("%s (%s)", def.ID, def.Provider)
		if len(def.Aliases) > 0 {
			line += " " + gray.Sprintf("aliases: %s", strings.Join(def.Aliases, ", "))
		}
		if def.ID == registry.DefaultID() {
			green.Fprintf(out, "* %s\n", line)
		} else {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
	return nil
}

func runModelsDefault(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	registry := agent.NewRegistry(cfg)

	if len(args) == 0 {
		exists, err := config.Exists()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Default model: %s\n", registry.DefaultID())
		if !exists {
			path, _ := config.GetConfigPath()
			color.New(color.FgHiBlack).Fprintf(out, "No config file at %s, using built-in defaults\n", path)
		}
		if !stdinIsTerminal() {
			return nil
		}

		var options []string
		for _, def := range registry.Definitions() {
			options = append(options, def.ID)
		}
		selected, err := ui.SelectModel(options, registry.DefaultID())
		if err != nil {
			return err
		}
		return saveDefaultModel(cfg, selected)
	}

	def, err := registry.Lookup(args[0])
	if err != nil {
		return err
	}
	return saveDefaultModel(cfg, def.ID)
}

func saveDefaultModel(cfg *config.Config, id string) error {
	cfg.DefaultModel = id
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	ui.ShowSuccess(fmt.Sprintf("Default model set to %s", id))
	return nil
}
