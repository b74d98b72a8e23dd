package agent

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// ClaudeCLIModel implements Model using the locally installed Claude CLI,
// which handles its own authentication
type ClaudeCLIModel struct {
	binary string
}

// NewClaudeCLIModel creates a Claude CLI backend. An empty binary means
// "claude" from PATH.
func NewClaudeCLIModel(binary string) *ClaudeCLIModel {
	if binary == "" {
		binary = "claude"
	}
	return &ClaudeCLIModel{binary: binary}
}

// IsClaudeCLIInstalled checks if the claude CLI is available
func IsClaudeCLIInstalled() bool {
	_, err := exec.LookPath("claude")
	return err == nil
}

// Prompt calls the Claude CLI in print mode. The CLI has no separate system
// channel here, so the instruction leads the prompt.
func (c *ClaudeCLIModel) Prompt(ctx context.Context, prompt, system string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary, "-p", fmt.Sprintf("%s\n\n%s", system, prompt))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to call claude CLI: %w\nStderr: %s", err, stderr.String())
	}

	return stdout.String(), nil
}
