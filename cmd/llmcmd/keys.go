package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iishyfishyy/llmcmd/internal/config"
	"github.com/iishyfishyy/llmcmd/internal/ui"
)

func newKeysCmd() *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage stored API keys",
	}

	setCmd := &cobra.Command{
		Use:     "set <alias>",
		Short:   "Store a key under an alias (e.g. openai, anthropic)",
		Args:    cobra.ExactArgs(1),
		Example: "  llmcmd keys set openai",
		RunE:    runKeysSet,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored key aliases",
		Args:  cobra.NoArgs,
		RunE:  runKeysList,
	}

	keysCmd.AddCommand(setCmd)
	keysCmd.AddCommand(listCmd)
	return keysCmd
}

func runKeysSet(cmd *cobra.Command, args []string) error {
	alias := args[0]

	secret, err := ui.PromptSecret(alias)
	if err != nil {
		return err
	}

	if err := config.SetKey(alias, secret); err != nil {
		return fmt.Errorf("failed to save key: %w", err)
	}

	path, _ := config.GetKeysPath()
	ui.ShowSuccess(fmt.Sprintf("Key %s saved to %s", alias, path))
	return nil
}

func runKeysList(cmd *cobra.Command, args []string) error {
	keys, err := config.LoadKeys()
	if err != nil {
		return fmt.Errorf("failed to load keys: %w", err)
	}

	aliases := keys.Aliases()
	if len(aliases) == 0 {
		ui.ShowInfo("No keys stored. Run 'llmcmd keys set <alias>' to add one.")
		return nil
	}
	for _, alias := range aliases {
		fmt.Fprintln(cmd.OutOrStdout(), alias)
	}
	return nil
}
