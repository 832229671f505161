// Package auth detects which CLI credential source is configured before a
// loop starts. It only reports presence; credential handling itself
// belongs to the CLI.
package auth

import (
	"os"
	"path/filepath"
)

// Source identifies where credentials were found.
type Source int

const (
	SourceNone Source = iota
	SourceAPIKey
	SourceOAuthToken
	SourceAuthToken
	SourceCredentialsFile
)

// Environment variables checked, in order of preference.
const (
	envAPIKey     = "ANTHROPIC_API_KEY"
	envOAuthToken = "CLAUDE_CODE_OAUTH_TOKEN"
	envAuthToken  = "ANTHROPIC_AUTH_TOKEN"
)

// Detect reports the first available credential source.
func Detect() Source {
	if os.Getenv(envAPIKey) != "" {
		return SourceAPIKey
	}
	if os.Getenv(envOAuthToken) != "" {
		return SourceOAuthToken
	}
	if os.Getenv(envAuthToken) != "" {
		return SourceAuthToken
	}
	if home, err := os.UserHomeDir(); err == nil {
		if _, err := os.Stat(filepath.Join(home, ".claude", ".credentials.json")); err == nil {
			return SourceCredentialsFile
		}
	}
	return SourceNone
}

// String describes the source for startup output.
func (s Source) String() string {
	switch s {
	case SourceAPIKey:
		return "API key (" + envAPIKey + ")"
	case SourceOAuthToken:
		return "OAuth token (" + envOAuthToken + ")"
	case SourceAuthToken:
		return "auth token (" + envAuthToken + ")"
	case SourceCredentialsFile:
		return "credentials file (~/.claude/.credentials.json)"
	default:
		return "none"
	}
}

// Available reports whether any credential source was found.
func (s Source) Available() bool {
	return s != SourceNone
}
