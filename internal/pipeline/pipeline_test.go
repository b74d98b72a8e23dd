package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iishyfishyy/llmcmd/internal/agent"
	"github.com/iishyfishyy/llmcmd/internal/config"
	"github.com/iishyfishyy/llmcmd/internal/executor"
	"github.com/iishyfishyy/llmcmd/internal/history"
	"github.com/iishyfishyy/llmcmd/internal/logging"
	"github.com/iishyfishyy/llmcmd/internal/tldr"
	"github.com/iishyfishyy/llmcmd/internal/ui"
)

// scriptedModel answers prompts in order and remembers what it was asked
type scriptedModel struct {
	responses []string
	err       error
	prompts   []string
	systems   []string
}

func (m *scriptedModel) Prompt(ctx context.Context, prompt, system string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.systems = append(m.systems, system)
	if m.err != nil {
		return "", m.err
	}
	if len(m.prompts) > len(m.responses) {
		return "", fmt.Errorf("unexpected prompt %q", prompt)
	}
	return m.responses[len(m.prompts)-1], nil
}

type docRunner struct {
	installed bool
	pages     map[string]string
	calls     []string
}

func (r *docRunner) LookPath(name string) (string, error) {
	if !r.installed {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + name, nil
}

func (r *docRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	r.calls = append(r.calls, strings.Join(args, " "))
	if args[0] == "--update" {
		return "", nil
	}
	page, ok := r.pages[args[0]]
	if !ok {
		return "", errors.New("exit status 1")
	}
	return page, nil
}

type echoReviewer struct {
	seen []string
	edit func(string) string
	err  error
}

func (r *echoReviewer) Review(ctx context.Context, command string) (string, error) {
	r.seen = append(r.seen, command)
	if r.err != nil {
		return "", r.err
	}
	if r.edit != nil {
		return r.edit(command), nil
	}
	return command, nil
}

type recordingExecutor struct {
	ran      []string
	exitCode int
}

func (e *recordingExecutor) Run(ctx context.Context, command string) executor.Result {
	e.ran = append(e.ran, command)
	return executor.Result{Command: command, ExitCode: e.exitCode}
}

type memoryRecorder struct {
	entries []history.Entry
	err     error
}

func (r *memoryRecorder) Record(ctx context.Context, entry history.Entry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

type fixture struct {
	model    *scriptedModel
	docs     *docRunner
	reviewer *echoReviewer
	exec     *recordingExecutor
	recorder *memoryRecorder
	warnings []string
	copied   []string
	pipeline *Pipeline
}

func newFixture(responses ...string) *fixture {
	f := &fixture{
		model:    &scriptedModel{responses: responses},
		docs:     &docRunner{pages: map[string]string{}},
		reviewer: &echoReviewer{},
		exec:     &recordingExecutor{},
		recorder: &memoryRecorder{},
	}

	registry := agent.NewRegistry(config.Default())
	registry.Register(config.ProviderOpenAI, func(def config.ModelDefinition, key string) (agent.Model, error) {
		return f.model, nil
	})

	enricher := tldr.New("", logging.Discard())
	enricher.Runner = f.docs

	f.pipeline = &Pipeline{
		Invoker:  &agent.Invoker{Registry: registry, Keys: config.Keys{"openai": "sk-test"}},
		Enricher: enricher,
		Reviewer: f.reviewer,
		Executor: f.exec,
		Recorder: f.recorder,
		Hooks: Hooks{
			Copy: func(command string) error {
				f.copied = append(f.copied, command)
				return nil
			},
			Warn: func(message string) { f.warnings = append(f.warnings, message) },
		},
		Log: logging.Discard(),
	}
	return f
}

func TestOptions_Prompt(t *testing.T) {
	opts := Options{Args: []string{"list", "files", "by size"}}
	assert.Equal(t, "list files by size", opts.Prompt())
}

func TestRun_PlainFlow(t *testing.T) {
	f := newFixture("git status")

	err := f.pipeline.Run(context.Background(), Options{Args: []string{"show", "changes"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"show changes"}, f.model.prompts)
	assert.Equal(t, []string{agent.SystemPrompt}, f.model.systems)
	assert.Equal(t, []string{"git status"}, f.reviewer.seen)
	assert.Equal(t, []string{"git status"}, f.exec.ran)
	assert.Empty(t, f.docs.calls, "doc tool must not run without --tldr")
}

func TestRun_ToolAbsentKeepsCandidate(t *testing.T) {
	plain := newFixture("git status")
	require.NoError(t, plain.pipeline.Run(context.Background(), Options{Args: []string{"status"}}))

	enriched := newFixture("git status")
	require.NoError(t, enriched.pipeline.Run(context.Background(), Options{Args: []string{"status"}, TLDR: true}))

	assert.Equal(t, plain.reviewer.seen, enriched.reviewer.seen)
	assert.Equal(t, []string{"git status"}, enriched.exec.ran)
	assert.Len(t, enriched.model.prompts, 1)
}

func TestRun_LookupFailureKeepsResponse(t *testing.T) {
	f := newFixture("frobnicate --all")
	f.docs.installed = true

	require.NoError(t, f.pipeline.Run(context.Background(), Options{Args: []string{"frob"}, TLDR: true}))

	assert.Equal(t, []string{"--update", "frobnicate"}, f.docs.calls)
	assert.Len(t, f.model.prompts, 1)
	assert.Equal(t, []string{"frobnicate --all"}, f.reviewer.seen)
	require.Len(t, f.recorder.entries, 1)
	assert.False(t, f.recorder.entries[0].Enriched)
}

func TestRun_LookupSuccessReprompts(t *testing.T) {
	f := newFixture("`tar` -x", "tar -xzf archive.tar.gz")
	f.docs.installed = true
	f.docs.pages["tar"] = "E"

	opts := Options{Args: []string{"extract", "archive.tar.gz"}, System: "be terse", TLDR: true}
	require.NoError(t, f.pipeline.Run(context.Background(), opts))

	require.Len(t, f.model.prompts, 2)
	second := f.model.prompts[1]
	assert.True(t, strings.HasPrefix(second, "extract archive.tar.gz\n\n"))
	assert.Contains(t, second, "Here's examples for `tar`:\nE.")
	assert.Equal(t, []string{"be terse", "be terse"}, f.model.systems)

	assert.Equal(t, []string{"tar -xzf archive.tar.gz"}, f.reviewer.seen)
	require.Len(t, f.recorder.entries, 1)
	assert.True(t, f.recorder.entries[0].Enriched)
	assert.Equal(t, "tar -xzf archive.tar.gz", f.recorder.entries[0].Response)
}

func TestRun_SecondCallFailureIsFatal(t *testing.T) {
	f := newFixture("tar -x")
	f.docs.installed = true
	f.docs.pages["tar"] = "E"

	err := f.pipeline.Run(context.Background(), Options{Args: []string{"untar"}, TLDR: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected prompt")
	assert.Empty(t, f.reviewer.seen)
	assert.Empty(t, f.exec.ran)
}

func TestRun_EmptyResponseStillReviewed(t *testing.T) {
	f := newFixture("")
	f.docs.installed = true
	f.reviewer.edit = func(string) string { return "ls" }

	require.NoError(t, f.pipeline.Run(context.Background(), Options{Args: []string{"list"}, TLDR: true}))

	assert.Empty(t, f.docs.calls)
	assert.Equal(t, []string{""}, f.reviewer.seen)
	assert.Equal(t, []string{"ls"}, f.exec.ran)
}

func TestRun_EditedCommandIsExecuted(t *testing.T) {
	f := newFixture("rm -rf build")
	f.reviewer.edit = func(string) string { return "rm -rf build/tmp" }

	require.NoError(t, f.pipeline.Run(context.Background(), Options{Args: []string{"clean"}}))
	assert.Equal(t, []string{"rm -rf build/tmp"}, f.exec.ran)
	assert.Equal(t, "rm -rf build/tmp", f.recorder.entries[0].Command)
	assert.Equal(t, "rm -rf build", f.recorder.entries[0].Response)
}

func TestRun_AbortRunsNothing(t *testing.T) {
	f := newFixture("git push --force")
	f.reviewer.err = ui.ErrAborted

	err := f.pipeline.Run(context.Background(), Options{Args: []string{"push"}})
	assert.ErrorIs(t, err, ui.ErrAborted)
	assert.Empty(t, f.exec.ran)
	assert.Empty(t, f.recorder.entries)
}

func TestRun_ConfigErrorsBeforeAnything(t *testing.T) {
	t.Run("unknown model", func(t *testing.T) {
		f := newFixture("ls")
		err := f.pipeline.Run(context.Background(), Options{Args: []string{"x"}, Model: "nope"})
		assert.ErrorIs(t, err, agent.ErrUnknownModel)
		assert.Empty(t, f.model.prompts)
		assert.Empty(t, f.reviewer.seen)
	})
	t.Run("missing key", func(t *testing.T) {
		f := newFixture("ls")
		f.pipeline.Invoker.(*agent.Invoker).Keys = config.Keys{}
		f.pipeline.Invoker.(*agent.Invoker).Getenv = func(string) string { return "" }
		err := f.pipeline.Run(context.Background(), Options{Args: []string{"x"}})
		assert.ErrorIs(t, err, agent.ErrMissingKey)
		assert.Empty(t, f.model.prompts)
	})
	t.Run("backend failure", func(t *testing.T) {
		f := newFixture()
		f.model.err = errors.New("rate limited")
		err := f.pipeline.Run(context.Background(), Options{Args: []string{"x"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
		assert.Empty(t, f.reviewer.seen)
	})
}

func TestRun_FailedCommandIsNotAnError(t *testing.T) {
	f := newFixture("false")
	f.exec.exitCode = 1

	require.NoError(t, f.pipeline.Run(context.Background(), Options{Args: []string{"fail"}}))
	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, 1, f.recorder.entries[0].ExitCode)
}

func TestRun_RunLog(t *testing.T) {
	t.Run("records the run", func(t *testing.T) {
		f := newFixture("uptime")
		require.NoError(t, f.pipeline.Run(context.Background(), Options{Args: []string{"load"}}))

		require.Len(t, f.recorder.entries, 1)
		entry := f.recorder.entries[0]
		assert.Equal(t, config.DefaultModel, entry.Model)
		assert.Equal(t, "load", entry.Prompt)
		assert.Equal(t, agent.SystemPrompt, entry.System)
		assert.Equal(t, "uptime", entry.Command)
		assert.NotEmpty(t, entry.ID)
	})
	t.Run("no-log skips it", func(t *testing.T) {
		f := newFixture("uptime")
		require.NoError(t, f.pipeline.Run(context.Background(), Options{Args: []string{"load"}, NoLog: true}))
		assert.Empty(t, f.recorder.entries)
	})
	t.Run("record failure only warns", func(t *testing.T) {
		f := newFixture("uptime")
		f.recorder.err = errors.New("disk full")
		require.NoError(t, f.pipeline.Run(context.Background(), Options{Args: []string{"load"}}))
		require.Len(t, f.warnings, 1)
		assert.Contains(t, f.warnings[0], "disk full")
		assert.Equal(t, []string{"uptime"}, f.exec.ran)
	})
}

func TestRun_Copy(t *testing.T) {
	f := newFixture("date")
	require.NoError(t, f.pipeline.Run(context.Background(), Options{Args: []string{"time"}, Copy: true}))
	assert.Equal(t, []string{"date"}, f.copied)

	f = newFixture("date")
	f.pipeline.Hooks.Copy = func(string) error { return errors.New("no clipboard") }
	require.NoError(t, f.pipeline.Run(context.Background(), Options{Args: []string{"time"}, Copy: true}))
	assert.Equal(t, []string{"date"}, f.exec.ran)
	require.Len(t, f.warnings, 1)
	assert.Contains(t, f.warnings[0], "no clipboard")

	f = newFixture("date")
	require.NoError(t, f.pipeline.Run(context.Background(), Options{Args: []string{"time"}}))
	assert.Empty(t, f.copied)
}

func TestCandidate_Idempotent(t *testing.T) {
	opts := Options{Args: []string{"find", "big", "files"}, TLDR: true}

	run := func() string {
		f := newFixture("find . -size +100M", "find . -type f -size +100M")
		f.docs.installed = true
		f.docs.pages["find"] = "find examples"
		candidate, _, _, err := f.pipeline.Candidate(context.Background(), opts)
		require.NoError(t, err)
		return candidate
	}

	first := run()
	assert.Equal(t, "find . -type f -size +100M", first)
	assert.Equal(t, first, run())
}
