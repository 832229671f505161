package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/codeloop/looper/internal/color"
	"github.com/codeloop/looper/internal/config"
	"github.com/codeloop/looper/internal/formatter"
	"github.com/codeloop/looper/internal/prompt"
	"github.com/codeloop/looper/internal/proxy"
	"github.com/codeloop/looper/internal/runner"
	"github.com/codeloop/looper/internal/wizard"
)

const version = "0.1.0"

func main() {
	if err := run(os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// separateFlags separates flag arguments from positional arguments.
// This allows flags to appear anywhere in the argument list, not just before positional args.
// Returns (flagArgs, positionalArgs).
func separateFlags(args []string) ([]string, []string) {
	var flagArgs []string
	var posArgs []string

	boolFlags := map[string]bool{
		"version": true, "help": true, "debug": true, "dry-run": true,
		"q": true, "quiet": true, "init": true, "format-only": true,
		"proxy": true, "markdown": true, "commit": true, "push": true,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if len(arg) > 0 && arg[0] == '-' {
			flagArgs = append(flagArgs, arg)

			// Flags with = carry their value inline; flags without = may
			// take the next argument as a value, unless they are boolean.
			if !strings.Contains(arg, "=") && i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				name := strings.TrimLeft(arg, "-")
				if !boolFlags[name] {
					i++
					flagArgs = append(flagArgs, args[i])
				}
			}
		} else {
			posArgs = append(posArgs, arg)
		}
	}

	return flagArgs, posArgs
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		showVersion    = flags.Bool("version", false, "Show version information")
		showHelp       = flags.Bool("help", false, "Show help information")
		debug          = flags.Bool("debug", false, "Show raw stream JSON as it's received")
		dryRun         = flags.Bool("dry-run", false, "Show the command that would be executed without running it")
		quiet          = flags.Bool("q", false, "Quiet mode - suppress all output except errors")
		doInit         = flags.Bool("init", false, "Interactively create looper.yml and a starter PROMPT.md")
		formatOnly     = flags.Bool("format-only", false, "Format a stream-json stream from stdin instead of running the loop")
		proxyOnly      = flags.Bool("proxy", false, "Run only the thinking-strip proxy")
		markdown       = flags.Bool("markdown", false, "Render assistant text as markdown")
		iterations     = flags.Int("iterations", 0, "Number of loop iterations (overrides looper.yml)")
		model          = flags.String("model", "", "Override model to use (overrides looper.yml and frontmatter)")
		allowedTools   = flags.String("allowed-tools", "", "Override allowed tools")
		permissionMode = flags.String("permission-mode", "", "Override permission mode (default: acceptEdits)")
		outputFormat   = flags.String("output-format", "", "Override output format; disables formatting (default: stream-json)")
		colorMode      = flags.String("color", "auto", "Control color output (auto, always, never)")
		gitCommit      = flags.Bool("commit", false, "Commit after each iteration")
		gitPush        = flags.Bool("push", false, "Push commits after each iteration (implies --commit)")
	)
	flags.BoolVar(quiet, "quiet", false, "Quiet mode - suppress all output except errors")

	// Separate flags from positional arguments to support flags in any position
	flagArgs, posArgs := separateFlags(args[1:])

	if err := flags.Parse(flagArgs); err != nil {
		return err
	}

	if *showVersion {
		_, _ = fmt.Fprintf(stdout, "looper version %s\n", version)
		return nil
	}

	if *showHelp {
		printHelp(stdout, *colorMode)
		return nil
	}

	color.Configure(*colorMode)

	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	if *doInit {
		if err := wizard.Run(dir); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(stdout, "Created "+config.FileName+" and PROMPT.md")
		return nil
	}

	output := stdout
	if *quiet {
		output = io.Discard
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	if *formatOnly {
		form := formatter.New(formatter.Config{
			Output:      output,
			Passthrough: *outputFormat != "",
			Debug:       *debug,
			Interactive: color.IsTerminal(stdout),
			Markdown:    *markdown,
			Color:       *colorMode,
		})
		return form.Run(stdin)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	if *iterations > 0 {
		cfg.Iterations = *iterations
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *allowedTools != "" {
		cfg.AllowedTools = *allowedTools
	}
	if *permissionMode != "" {
		cfg.PermissionMode = *permissionMode
	}
	if *gitPush {
		cfg.Git.Push = true
		cfg.Git.Commit = true
	}
	if *gitCommit {
		cfg.Git.Commit = true
	}

	if *proxyOnly {
		srv, err := proxy.New(cfg.Proxy.Upstream, stderr)
		if err != nil {
			return err
		}
		return srv.ListenAndServe(ctx, cfg.Proxy.Listen)
	}

	promptArg := cfg.Prompt
	if len(posArgs) > 0 {
		promptArg = posArgs[0]
	}
	p, err := prompt.Load(promptArg, dir)
	if err != nil {
		return err
	}

	r := runner.New(runner.Options{
		Dir:         dir,
		Config:      cfg,
		Prompt:      *p,
		Stdout:      output,
		Stderr:      stderr,
		Interactive: color.IsTerminal(stdout) && !*quiet,
		Markdown:    *markdown,
		Color:       *colorMode,
		Debug:       *debug,
		Passthrough: *outputFormat != "",
		DryRun:      *dryRun,
	})
	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("loop failed: %w", err)
	}
	return nil
}

func printHelp(w io.Writer, colorMode string) {
	useColors := color.Enabled(colorMode, os.Stdout)

	var mdRenderer *glamour.TermRenderer
	if useColors {
		var err error
		mdRenderer, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0),
		)
		if err != nil {
			mdRenderer = nil
		}
	}

	renderMarkdown := func(text string) string {
		if mdRenderer == nil {
			return text
		}
		rendered, err := mdRenderer.Render(text)
		if err != nil {
			return text
		}
		return strings.TrimSpace(rendered)
	}

	titleStyle := lipgloss.NewStyle().Bold(true).MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().Bold(true).MarginTop(1)
	optionStyle := lipgloss.NewStyle()
	codeStyle := lipgloss.NewStyle().Italic(true)
	descStyle := lipgloss.NewStyle()

	if useColors {
		titleStyle = titleStyle.Foreground(lipgloss.Color("6"))
		sectionStyle = sectionStyle.Foreground(lipgloss.Color("3"))
		optionStyle = optionStyle.Foreground(lipgloss.Color("2"))
		codeStyle = codeStyle.Foreground(lipgloss.Color("8"))
		descStyle = descStyle.Foreground(lipgloss.Color("7"))
	}

	title := titleStyle.Render("looper - Run the Claude CLI in a loop")

	usage := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Usage:"),
		"  looper [options] [prompt-path]",
	)

	description := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Description:"),
		descStyle.Render("  Looper runs the Claude CLI headlessly, once per iteration, and"),
		descStyle.Render("  reformats its streaming JSON output into readable terminal text."),
		descStyle.Render("  Between iterations it can commit and push the work tree."),
		"",
		"  The prompt path can be:",
		"  • An exact file path "+codeStyle.Render("(e.g., tasks/PROMPT.md)"),
		"  • A directory containing PROMPT.md "+codeStyle.Render("(e.g., tasks/)"),
		"  • Omitted, to use looper.yml's prompt or ./PROMPT.md",
	)

	options := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Options:"),
		fmt.Sprintf("  %s              Show this help message", optionStyle.Render("--help")),
		fmt.Sprintf("  %s           Show version information", optionStyle.Render("--version")),
		fmt.Sprintf("  %s              Interactively create looper.yml and PROMPT.md", optionStyle.Render("--init")),
		fmt.Sprintf("  %s       Format a stream-json stream from stdin", optionStyle.Render("--format-only")),
		fmt.Sprintf("  %s             Run only the thinking-strip proxy", optionStyle.Render("--proxy")),
		fmt.Sprintf("  %s        Number of loop iterations", optionStyle.Render("--iterations")),
		fmt.Sprintf("  %s            Commit after each iteration", optionStyle.Render("--commit")),
		fmt.Sprintf("  %s              Push commits (implies --commit)", optionStyle.Render("--push")),
		fmt.Sprintf("  %s          Render assistant text as markdown", optionStyle.Render("--markdown")),
		fmt.Sprintf("  %s             Show raw stream JSON as it's received", optionStyle.Render("--debug")),
		fmt.Sprintf("  %s           Show the command that would be executed without running it", optionStyle.Render("--dry-run")),
		fmt.Sprintf("  %s, %s         Quiet mode - suppress all output except errors", optionStyle.Render("-q"), optionStyle.Render("--quiet")),
		fmt.Sprintf("  %s             Override model to use", optionStyle.Render("--model")),
		fmt.Sprintf("  %s     Override allowed tools", optionStyle.Render("--allowed-tools")),
		fmt.Sprintf("  %s   Override permission mode (default: acceptEdits)", optionStyle.Render("--permission-mode")),
		fmt.Sprintf("  %s     Override output format; disables formatting", optionStyle.Render("--output-format")),
		fmt.Sprintf("  %s            Control color output (auto, always, never)", optionStyle.Render("--color")),
	)

	examplesBlock := `~~~sh
# Run one iteration with ./PROMPT.md
looper

# Run ten iterations, committing after each
looper --iterations 10 --commit

# Use a specific prompt file
looper tasks/PROMPT.md

# Format a saved stream
claude -p --output-format stream-json "hi" | looper --format-only

# Show what command would be executed
looper --dry-run
~~~`

	examples := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Examples:"),
		renderMarkdown(examplesBlock),
	)

	promptFormatExample := `~~~yaml
---
model: claude-opus-4-5-20251101
allowed-tools: Read,Write,Bash
max-iterations: 10
---

# Instructions

Your loop instructions go here...
~~~`

	promptFormat := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("PROMPT.md Format:"),
		"  A PROMPT.md file is markdown with optional YAML frontmatter:",
		"",
		renderMarkdown(promptFormatExample),
	)

	help := lipgloss.JoinVertical(lipgloss.Left,
		title,
		usage,
		description,
		options,
		examples,
		promptFormat,
	)

	_, _ = fmt.Fprintln(w, help)
}
