package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/iishyfishyy/llmcmd/internal/agent"
	"github.com/iishyfishyy/llmcmd/internal/config"
	"github.com/iishyfishyy/llmcmd/internal/executor"
	"github.com/iishyfishyy/llmcmd/internal/history"
	"github.com/iishyfishyy/llmcmd/internal/pipeline"
	"github.com/iishyfishyy/llmcmd/internal/tldr"
	"github.com/iishyfishyy/llmcmd/internal/ui"
)

func newCmdCmd() *cobra.Command {
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "cmd [request...]",
		Short: "Generate a shell command, review it, then run it",
		Example: `  llmcmd cmd undo last git commit
  llmcmd cmd --tldr extract archive.tar.gz into /tmp
  llmcmd cmd -m claude-3.5-sonnet find files larger than 100MB`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Args = args
			return runCmd(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Model, "model", "m", "", "Model to use (ID or alias)")
	flags.StringVarP(&opts.System, "system", "s", "", "Override the system instruction")
	flags.StringVar(&opts.Key, "key", "", "API key, or the alias of a stored key")
	flags.BoolVar(&opts.TLDR, "tldr", false, "Look up tldr examples for the command and ask again")
	flags.BoolVar(&opts.Copy, "copy", false, "Copy the reviewed command to the clipboard")
	flags.BoolVar(&opts.NoLog, "no-log", false, "Do not record this run")

	return cmd
}

func runCmd(cmd *cobra.Command, opts pipeline.Options) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	log.WithField("prompt", opts.Prompt()).Debug("starting")

	keys, err := config.LoadKeys()
	if err != nil {
		return fmt.Errorf("failed to load keys: %w", err)
	}

	p := &pipeline.Pipeline{
		Invoker: &agent.Invoker{
			Registry: agent.NewRegistry(cfg),
			Keys:     keys,
			Log:      log,
		},
		Enricher: tldr.New(cfg.DocTool, log),
		Reviewer: ui.NewReviewer(log),
		Executor: executor.New(cfg.Shell, cmd.OutOrStdout(), log),
		Hooks: pipeline.Hooks{
			Copy: clipboard.WriteAll,
			Warn: ui.ShowWarning,
		},
		Log: log,
	}

	if cfg.ShouldLogRuns() && !opts.NoLog {
		store, err := openRunLog()
		if err != nil {
			ui.ShowWarning(fmt.Sprintf("Run log unavailable: %v", err))
		} else {
			defer store.Close()
			p.Recorder = store
		}
	}

	return p.Run(cmd.Context(), opts)
}

func openRunLog() (*history.Store, error) {
	path, err := config.GetLogsPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}
