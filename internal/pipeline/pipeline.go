// Package pipeline drives one request from prompt to executed command:
// model call, optional tldr enrichment, interactive review, shell run.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/iishyfishyy/llmcmd/internal/agent"
	"github.com/iishyfishyy/llmcmd/internal/executor"
	"github.com/iishyfishyy/llmcmd/internal/history"
	"github.com/iishyfishyy/llmcmd/internal/logging"
	"github.com/iishyfishyy/llmcmd/internal/tldr"
)

// Options are the parsed command-line arguments of a run
type Options struct {
	Args   []string
	Model  string
	System string
	Key    string
	TLDR   bool
	// Copy puts the reviewed command on the clipboard before it runs
	Copy bool
	// NoLog skips the run log
	NoLog bool
}

// Prompt joins the argument tokens into the request prompt
func (o Options) Prompt() string {
	return strings.Join(o.Args, " ")
}

// Opener resolves a model session
type Opener interface {
	Open(modelID, system, key string) (*agent.Session, error)
}

// Enricher folds documentation into a response
type Enricher interface {
	Enrich(ctx context.Context, prompt, response string, reprompt tldr.Reprompt) (string, error)
}

// Reviewer lets the user edit the command before it runs
type Reviewer interface {
	Review(ctx context.Context, command string) (string, error)
}

// Executor runs the approved command
type Executor interface {
	Run(ctx context.Context, command string) executor.Result
}

// Recorder stores the finished run
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

// Hooks are optional callbacks between stages
type Hooks struct {
	// Copy writes the approved command to the clipboard
	Copy func(command string) error
	// Warn reports a non-fatal failure to the user
	Warn func(message string)
}

// Pipeline wires the stages of a run together
type Pipeline struct {
	Invoker  Opener
	Enricher Enricher
	Reviewer Reviewer
	Executor Executor
	// Recorder may be nil to skip logging
	Recorder Recorder
	Hooks    Hooks
	Log      *logging.Logger
}

// Candidate resolves the model and returns the response that goes to
// review, along with the session used and whether enrichment replaced it
func (p *Pipeline) Candidate(ctx context.Context, opts Options) (string, *agent.Session, bool, error) {
	log := p.logger()

	session, err := p.Invoker.Open(opts.Model, opts.System, opts.Key)
	if err != nil {
		return "", nil, false, err
	}

	prompt := opts.Prompt()
	response, err := session.Prompt(ctx, prompt)
	if err != nil {
		return "", nil, false, err
	}
	log.WithField("response", response).Debug("model response")

	if !opts.TLDR || p.Enricher == nil {
		return response, session, false, nil
	}

	reprompted := false
	reprompt := func(ctx context.Context, prompt string) (string, error) {
		reprompted = true
		return session.Prompt(ctx, prompt)
	}
	enriched, err := p.Enricher.Enrich(ctx, prompt, response, reprompt)
	if err != nil {
		return "", nil, false, err
	}
	if reprompted {
		log.WithField("response", enriched).Debug("enriched response")
	}
	return enriched, session, reprompted, nil
}

// Run executes the whole pipeline once. Configuration, backend and review
// errors are returned before anything runs; a failing shell command is
// reported by the executor and is not an error.
func (p *Pipeline) Run(ctx context.Context, opts Options) error {
	response, session, enriched, err := p.Candidate(ctx, opts)
	if err != nil {
		return err
	}

	command, err := p.Reviewer.Review(ctx, response)
	if err != nil {
		return err
	}
	if opts.Copy && p.Hooks.Copy != nil {
		if err := p.Hooks.Copy(command); err != nil {
			p.warn(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		}
	}

	result := p.Executor.Run(ctx, command)

	if p.Recorder != nil && !opts.NoLog {
		entry := history.NewEntry(session.ModelID, opts.Prompt(), session.System, response, enriched, command, result.ExitCode)
		if err := p.Recorder.Record(ctx, entry); err != nil {
			p.logger().WithError(err).Debug("record failed")
			p.warn(fmt.Sprintf("Failed to record run: %v", err))
		}
	}
	return nil
}

func (p *Pipeline) warn(message string) {
	if p.Hooks.Warn != nil {
		p.Hooks.Warn(message)
	}
}

func (p *Pipeline) logger() *logging.Logger {
	if p.Log == nil {
		p.Log = logging.Discard()
	}
	return p.Log.WithComponent("pipeline")
}
