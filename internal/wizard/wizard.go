// Package wizard interactively scaffolds a new workspace: it asks for
// the loop settings, writes looper.yml, and drops a starter PROMPT.md.
package wizard

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/codeloop/looper/internal/config"
)

const starterPrompt = `Work on the tasks in this repository.

Pick the most important unfinished task, complete it, and verify your
work before moving on. Keep changes small and focused.
`

// Run asks for the loop settings and writes looper.yml plus PROMPT.md
// into dir. Existing files are never overwritten.
func Run(dir string) error {
	cfg := config.Default()

	iterations := strconv.Itoa(cfg.Iterations)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Iterations").
				Description("How many times to run the loop").
				Value(&iterations).
				Validate(validateIterations),
			huh.NewInput().
				Title("Model").
				Description("Model name, empty for the CLI default").
				Value(&cfg.Model),
			huh.NewSelect[string]().
				Title("Permission mode").
				Options(
					huh.NewOption("acceptEdits (default)", ""),
					huh.NewOption("plan", "plan"),
					huh.NewOption("bypassPermissions", "bypassPermissions"),
				).
				Value(&cfg.PermissionMode),
			huh.NewConfirm().
				Title("Commit after each iteration?").
				Value(&cfg.Git.Commit),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Push commits?").
				Value(&cfg.Git.Push),
		).WithHideFunc(func() bool { return !cfg.Git.Commit }),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup canceled: %w", err)
	}

	n, err := strconv.Atoi(iterations)
	if err != nil || n < 1 {
		n = 1
	}
	cfg.Iterations = n

	return Write(cfg, dir)
}

// Write materializes the configuration and a starter prompt in dir,
// refusing to overwrite either file.
func Write(cfg config.Config, dir string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	if err := config.Save(cfg, dir); err != nil {
		return err
	}

	promptPath := filepath.Join(dir, "PROMPT.md")
	if _, err := os.Stat(promptPath); err == nil {
		return nil // keep an existing prompt
	}
	if err := os.WriteFile(promptPath, []byte(starterPrompt), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", promptPath, err)
	}
	return nil
}

func validateIterations(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("enter a number of at least 1")
	}
	return nil
}
