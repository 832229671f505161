package auth

import "testing"

func TestDetect_EnvOrder(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("CLAUDE_CODE_OAUTH_TOKEN", "tok")
	t.Setenv("ANTHROPIC_AUTH_TOKEN", "tok2")

	if got := Detect(); got != SourceAPIKey {
		t.Errorf("Detect = %v, want SourceAPIKey to win", got)
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	if got := Detect(); got != SourceOAuthToken {
		t.Errorf("Detect = %v, want SourceOAuthToken", got)
	}

	t.Setenv("CLAUDE_CODE_OAUTH_TOKEN", "")
	if got := Detect(); got != SourceAuthToken {
		t.Errorf("Detect = %v, want SourceAuthToken", got)
	}
}

func TestDetect_None(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLAUDE_CODE_OAUTH_TOKEN", "")
	t.Setenv("ANTHROPIC_AUTH_TOKEN", "")
	t.Setenv("HOME", t.TempDir())

	got := Detect()
	if got.Available() {
		t.Errorf("Detect = %v, want none", got)
	}
	if got.String() != "none" {
		t.Errorf("String = %q", got.String())
	}
}

func TestSourceString(t *testing.T) {
	if s := SourceAPIKey.String(); s == "" || s == "none" {
		t.Errorf("String = %q", s)
	}
	if !SourceCredentialsFile.Available() {
		t.Error("credentials file source should count as available")
	}
}
