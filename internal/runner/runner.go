// Package runner drives the iteration loop: it resolves credentials and
// the prompt, invokes the Claude CLI once per iteration with its output
// piped through the formatter, and commits and pushes between iterations
// when configured.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/codeloop/looper/internal/auth"
	"github.com/codeloop/looper/internal/config"
	"github.com/codeloop/looper/internal/executor"
	"github.com/codeloop/looper/internal/formatter"
	"github.com/codeloop/looper/internal/gitops"
	"github.com/codeloop/looper/internal/prompt"
	"github.com/codeloop/looper/internal/proxy"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Options configures a loop run. Config carries file and flag settings,
// Prompt is the resolved prompt with its frontmatter applied.
type Options struct {
	Dir    string
	Config config.Config
	Prompt prompt.Prompt

	Stdout io.Writer
	Stderr io.Writer

	Interactive bool
	Markdown    bool
	Color       string
	Debug       bool
	Passthrough bool
	DryRun      bool
	Binary      string // CLI binary override
}

// Runner executes the loop described by its Options.
type Runner struct {
	opts  Options
	runID string
}

// New creates a Runner with a fresh run ID.
func New(opts Options) *Runner {
	return &Runner{
		opts:  opts,
		runID: uuid.NewString()[:8],
	}
}

// RunID returns the short identifier for this run, used in branch names
// and commit messages.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes all iterations. It returns the first CLI error, after
// finishing cleanup; git failures are reported but never stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	cfg := r.effectiveConfig()

	if r.opts.DryRun {
		exec := executor.New(r.executorConfig(cfg, ""), io.Discard, io.Discard)
		fmt.Fprintln(r.opts.Stdout, exec.GetCommand())
		return nil
	}

	source := auth.Detect()
	if !source.Available() {
		return errors.New("no credentials found: set ANTHROPIC_API_KEY or log in with the claude CLI")
	}
	fmt.Fprintln(r.opts.Stderr, noteStyle.Render("auth: "+source.String()))

	baseURL, stopProxy, err := r.startProxy(ctx, cfg)
	if err != nil {
		return err
	}
	defer stopProxy()

	git := r.setupGit(ctx, cfg)

	f := formatter.New(formatter.Config{
		Output:      r.opts.Stdout,
		Passthrough: r.opts.Passthrough,
		Debug:       r.opts.Debug,
		Interactive: r.opts.Interactive,
		Markdown:    r.opts.Markdown,
		Color:       r.opts.Color,
	})

	pr, pw := io.Pipe()
	formatDone := make(chan error, 1)
	go func() {
		formatDone <- f.Run(pr)
	}()

	var runErr error
	completed := 0
	for i := 1; i <= cfg.Iterations; i++ {
		if ctx.Err() != nil {
			break
		}
		completed++
		fmt.Fprintln(r.opts.Stderr, headerStyle.Render(
			fmt.Sprintf("═══ iteration %d/%d (run %s) ═══", i, cfg.Iterations, r.runID)))

		exec := executor.New(r.executorConfig(cfg, baseURL), pw, r.opts.Stderr)
		if err := exec.Execute(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintln(r.opts.Stderr, warnStyle.Render(
				fmt.Sprintf("iteration %d failed: %v", i, err)))
			if runErr == nil {
				runErr = fmt.Errorf("iteration %d: %w", i, err)
			}
		}

		r.commitAndPush(ctx, git, cfg, i)
	}

	pw.Close()
	if err := <-formatDone; err != nil && runErr == nil {
		runErr = err
	}
	f.Interrupt()

	if ctx.Err() != nil {
		fmt.Fprintln(r.opts.Stderr, warnStyle.Render("interrupted"))
	}
	fmt.Fprintln(r.opts.Stderr, noteStyle.Render(
		fmt.Sprintf("run %s finished: %d iteration(s), $%.4f total", r.runID, completed, f.State().TotalCost)))
	return runErr
}

// effectiveConfig layers prompt frontmatter over the file configuration.
func (r *Runner) effectiveConfig() config.Config {
	cfg := r.opts.Config
	if r.opts.Prompt.Model != "" {
		cfg.Model = r.opts.Prompt.Model
	}
	if r.opts.Prompt.AllowedTools != "" {
		cfg.AllowedTools = r.opts.Prompt.AllowedTools
	}
	if r.opts.Prompt.PermissionMode != "" {
		cfg.PermissionMode = r.opts.Prompt.PermissionMode
	}
	if r.opts.Prompt.MaxIterations > 0 && r.opts.Prompt.MaxIterations < cfg.Iterations {
		cfg.Iterations = r.opts.Prompt.MaxIterations
	}
	return cfg
}

func (r *Runner) executorConfig(cfg config.Config, baseURL string) executor.Config {
	return executor.Config{
		Prompt:         r.opts.Prompt.Text,
		Model:          cfg.Model,
		AllowedTools:   cfg.AllowedTools,
		PermissionMode: cfg.PermissionMode,
		WorkDir:        r.opts.Dir,
		BaseURL:        baseURL,
		Binary:         r.opts.Binary,
	}
}

// startProxy launches the thinking-strip proxy when enabled and returns
// the base URL the CLI should use.
func (r *Runner) startProxy(ctx context.Context, cfg config.Config) (string, func(), error) {
	if !cfg.Proxy.Enabled {
		return "", func() {}, nil
	}
	srv, err := proxy.New(cfg.Proxy.Upstream, r.opts.Stderr)
	if err != nil {
		return "", nil, fmt.Errorf("proxy: %w", err)
	}
	proxyCtx, cancel := context.WithCancel(ctx)
	go func() {
		if err := srv.ListenAndServe(proxyCtx, cfg.Proxy.Listen); err != nil {
			fmt.Fprintln(r.opts.Stderr, warnStyle.Render("proxy: "+err.Error()))
		}
	}()
	return "http://" + cfg.Proxy.Listen, cancel, nil
}

// setupGit returns a git client on the session branch, or nil when git
// integration is off or dir is not a repository.
func (r *Runner) setupGit(ctx context.Context, cfg config.Config) *gitops.Client {
	if !cfg.Git.Commit {
		return nil
	}
	git := gitops.New(r.opts.Dir)
	if !git.IsRepo(ctx) {
		fmt.Fprintln(r.opts.Stderr, warnStyle.Render("git: not a repository, skipping commits"))
		return nil
	}
	branch := cfg.Git.BranchPrefix + "/" + r.runID
	if err := git.EnsureBranch(ctx, branch); err != nil {
		fmt.Fprintln(r.opts.Stderr, warnStyle.Render("git: "+err.Error()))
		return nil
	}
	fmt.Fprintln(r.opts.Stderr, noteStyle.Render("git: working on branch "+branch))
	return git
}

func (r *Runner) commitAndPush(ctx context.Context, git *gitops.Client, cfg config.Config, iteration int) {
	if git == nil {
		return
	}
	message := fmt.Sprintf("looper: iteration %d (run %s)", iteration, r.runID)
	committed, err := git.CommitAll(ctx, message)
	if err != nil {
		fmt.Fprintln(r.opts.Stderr, warnStyle.Render("git commit: "+err.Error()))
		return
	}
	if !committed {
		fmt.Fprintln(r.opts.Stderr, noteStyle.Render("git: no changes to commit"))
		return
	}
	fmt.Fprintln(r.opts.Stderr, noteStyle.Render("git: committed "+strings.TrimSpace(message)))

	if cfg.Git.Push {
		branch := cfg.Git.BranchPrefix + "/" + r.runID
		if err := git.Push(ctx, cfg.Git.Remote, branch); err != nil {
			fmt.Fprintln(r.opts.Stderr, warnStyle.Render("git push: "+err.Error()))
		}
	}
}
