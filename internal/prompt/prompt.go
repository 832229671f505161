// Package prompt resolves and parses the prompt file a loop iteration
// feeds to the CLI. A prompt file is markdown, optionally starting with
// YAML frontmatter that overrides loop settings.
package prompt

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultFileName = "PROMPT.md"

// Prompt is a parsed prompt file.
type Prompt struct {
	// Frontmatter overrides. Zero values mean "not set".
	Model          string `yaml:"model,omitempty"`
	AllowedTools   string `yaml:"allowed-tools,omitempty"`
	PermissionMode string `yaml:"permission-mode,omitempty"`
	MaxIterations  int    `yaml:"max-iterations,omitempty"`

	// Text is the prompt body sent to the CLI.
	Text string
	// Path is the absolute path of the resolved file.
	Path string
}

// Resolve locates the prompt file. input may be an exact file path, a
// directory containing PROMPT.md, or empty, which falls back to PROMPT.md
// in dir.
func Resolve(input, dir string) (string, error) {
	if input == "" {
		input = filepath.Join(dir, defaultFileName)
	}

	info, err := os.Stat(input)
	if err != nil {
		return "", fmt.Errorf("prompt file not found: %s", input)
	}
	if info.IsDir() {
		input = filepath.Join(input, defaultFileName)
		if _, err := os.Stat(input); err != nil {
			return "", fmt.Errorf("prompt file not found: %s", input)
		}
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}

// Load resolves and parses a prompt file.
func Load(input, dir string) (*Prompt, error) {
	path, err := Resolve(input, dir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}

	p, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	p.Path = path
	return p, nil
}

// Parse splits optional YAML frontmatter ("---" fences at the top) from
// the prompt body and unmarshals the frontmatter overrides.
func Parse(data string) (*Prompt, error) {
	front, body := splitFrontmatter(data)

	p := &Prompt{}
	if front != "" {
		if err := yaml.Unmarshal([]byte(front), p); err != nil {
			return nil, fmt.Errorf("invalid frontmatter: %w", err)
		}
	}

	p.Text = strings.TrimSpace(body)
	if p.Text == "" {
		return nil, fmt.Errorf("prompt body is empty")
	}
	return p, nil
}

// splitFrontmatter separates the frontmatter YAML (without fences) from
// the body. A file without a leading "---" line has no frontmatter.
func splitFrontmatter(data string) (front, body string) {
	scanner := bufio.NewScanner(strings.NewReader(data))

	var frontLines, bodyLines []string
	fences := 0
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if strings.TrimSpace(line) != "---" {
				// No frontmatter at all.
				bodyLines = append(bodyLines, line)
				for scanner.Scan() {
					bodyLines = append(bodyLines, scanner.Text())
				}
				break
			}
			fences = 1
			continue
		}
		if fences == 1 {
			if strings.TrimSpace(line) == "---" {
				fences = 2
				continue
			}
			frontLines = append(frontLines, line)
			continue
		}
		bodyLines = append(bodyLines, line)
	}

	if fences == 1 {
		// Unterminated fence: treat the whole file as body.
		return "", data
	}
	return strings.Join(frontLines, "\n"), strings.Join(bodyLines, "\n")
}
