// Package llm wraps the external text-generation service behind a minimal
// interface. The concrete runner shells out to a local claude binary; the
// interface keeps it replaceable and testable with a fake.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Model is an opaque text-in/text-out service.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNotAvailable means the claude binary is missing or not working.
var ErrNotAvailable = errors.New("claude CLI not available (install Claude Code and verify with: claude --version)")

// Default timeouts per call site. Classification prompts are shorter than
// skill-generation prompts.
const (
	ClassifyTimeout  = 120 * time.Second
	RecommendTimeout = 180 * time.Second

	probeTimeout = 5 * time.Second
)

// CLI runs prompts through the local claude binary with --print, prompt on
// stdin. Binary is overridable for tests.
type CLI struct {
	Binary string
}

// NewCLI returns a runner using the claude binary on PATH.
func NewCLI() *CLI {
	return &CLI{Binary: "claude"}
}

// Available probes `claude --version` with a short timeout.
func (c *CLI) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	return exec.CommandContext(ctx, c.Binary, "--version").Run() == nil
}

// Generate sends the prompt and returns the trimmed response. The context
// deadline is the call timeout; callers choose it per prompt kind.
func (c *CLI) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Available() {
		return "", ErrNotAvailable
	}

	cmd := exec.CommandContext(ctx, c.Binary, "--print")
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("claude CLI timed out: %w", ctx.Err())
		}
		return "", fmt.Errorf("claude CLI failed: %w (stderr: %s)",
			err, strings.TrimSpace(stderr.String()))
	}

	response := strings.TrimSpace(stdout.String())
	if response == "" {
		return "", errors.New("claude CLI returned empty response")
	}
	return response, nil
}

// ExtractJSON pulls the JSON payload out of a model response: the first
// ```json fenced block if present, else the first ``` fenced block, else
// the raw response, trimmed either way.
func ExtractJSON(response string) string {
	if idx := strings.Index(response, "```json"); idx >= 0 {
		rest := response[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(response, "```"); idx >= 0 {
		rest := response[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(response)
}
