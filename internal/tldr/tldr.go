// Package tldr enriches a generated command with usage examples from the
// tldr client. Every failure in here is swallowed: enrichment either
// happens or the original response is kept.
package tldr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/iishyfishyy/llmcmd/internal/logging"
)

// Runner executes the documentation tool
type Runner interface {
	LookPath(name string) (string, error)
	// Run returns the tool's stdout; a non-zero exit is an error
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs the tool as a subprocess
type ExecRunner struct{}

// LookPath implements Runner
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run implements Runner
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Lookup is the documentation found for a candidate command
type Lookup struct {
	Name string
	Docs string
}

// Reprompt sends an enriched prompt to the same model session
type Reprompt func(ctx context.Context, prompt string) (string, error)

// Enricher looks up usage examples and asks the model again with them
type Enricher struct {
	Tool   string
	Runner Runner
	Log    *logging.Logger
}

// New creates an enricher for tool ("tldr" when empty)
func New(tool string, log *logging.Logger) *Enricher {
	if tool == "" {
		tool = "tldr"
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Enricher{Tool: tool, Runner: ExecRunner{}, Log: log.WithComponent("tldr")}
}

// CandidateName returns the first whitespace-delimited token of response
// with surrounding backticks removed. It reports false when nothing usable
// is left.
func CandidateName(response string) (string, bool) {
	fields := strings.Fields(response)
	if len(fields) == 0 {
		return "", false
	}
	name := strings.Trim(fields[0], "`")
	return name, name != ""
}

// EnrichedPrompt folds the looked-up examples into the original prompt
func EnrichedPrompt(prompt string, l Lookup) string {
	return fmt.Sprintf("%s\n\nHere's examples for `%s`:\n%s. You only return the terminal command. Don't include backticks.",
		prompt, l.Name, l.Docs)
}

// Available reports whether the tool is installed
func (e *Enricher) Available() bool {
	_, err := e.Runner.LookPath(e.Tool)
	return err == nil
}

// Lookup refreshes the tool's cache (best effort) and fetches the page for
// name. It reports false when the tool has no page or fails.
func (e *Enricher) Lookup(ctx context.Context, name string) (Lookup, bool) {
	if _, err := e.Runner.Run(ctx, e.Tool, "--update"); err != nil {
		e.Log.WithError(err).Debug("cache update failed")
	}

	docs, err := e.Runner.Run(ctx, e.Tool, name)
	if err != nil {
		e.Log.WithField("name", name).WithError(err).Debug("lookup failed")
		return Lookup{}, false
	}
	return Lookup{Name: name, Docs: docs}, true
}

// Enrich returns the response to use after enrichment. When the tool is
// missing, no candidate can be derived or the lookup fails, response is
// returned unchanged. Only an error from reprompt is returned.
func (e *Enricher) Enrich(ctx context.Context, prompt, response string, reprompt Reprompt) (string, error) {
	if !e.Available() {
		e.Log.WithField("tool", e.Tool).Debug("tool not installed, skipping")
		return response, nil
	}

	name, ok := CandidateName(response)
	if !ok {
		e.Log.Debug("no candidate command in response, skipping")
		return response, nil
	}
	e.Log.WithField("name", name).Debug("candidate command")

	lookup, ok := e.Lookup(ctx, name)
	if !ok {
		return response, nil
	}

	enriched := EnrichedPrompt(prompt, lookup)
	e.Log.WithField("prompt", enriched).Debug("re-prompting with examples")

	return reprompt(ctx, enriched)
}
