// Package proxy implements a small HTTP forwarder that strips Anthropic
// thinking parameters from request bodies before passing them upstream.
// Some upstream gateways reject requests that carry these fields, so the
// loop points ANTHROPIC_BASE_URL at this proxy when enabled.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// thinkingKeys are removed from JSON request bodies at any nesting depth.
var thinkingKeys = map[string]bool{
	"thinking":          true,
	"extended_thinking": true,
	"thinking_budget":   true,
	"budget_tokens":     true,
}

// Server forwards requests to a single upstream.
type Server struct {
	upstream *url.URL
	client   *http.Client
	logOut   io.Writer
}

// New returns a Server forwarding to upstream, logging to logOut.
func New(upstream string, logOut io.Writer) (*Server, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL %q: %w", upstream, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream URL %q: missing scheme or host", upstream)
	}
	return &Server{
		upstream: u,
		client:   &http.Client{Timeout: 10 * time.Minute},
		logOut:   logOut,
	}, nil
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	s.logf("listening on %s, forwarding to %s", addr, s.upstream)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// ServeHTTP forwards the request, rewriting POST bodies on the way.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadGateway)
		return
	}

	if r.Method == http.MethodPost && len(body) > 0 {
		if rewritten, modified := StripThinking(body); modified {
			s.logf("stripped thinking params from request to %s", r.URL.Path)
			body = rewritten
		}
	}

	target := *s.upstream
	target.Path = r.URL.Path
	target.RawQuery = r.URL.RawQuery

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), bytes.NewReader(body))
	if err != nil {
		http.Error(w, "failed to build upstream request", http.StatusInternalServerError)
		return
	}
	copyHeaders(req.Header, r.Header, requestSkipHeaders)
	if len(body) > 0 {
		req.Header.Set("Content-Length", strconv.Itoa(len(body)))
		req.ContentLength = int64(len(body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logf("upstream error for %s: %v", target.String(), err)
		http.Error(w, "upstream unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header, responseSkipHeaders)
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

var requestSkipHeaders = map[string]bool{
	"host":              true,
	"connection":        true,
	"keep-alive":        true,
	"transfer-encoding": true,
	"content-length":    true,
}

var responseSkipHeaders = map[string]bool{
	"transfer-encoding": true,
	"connection":        true,
}

func copyHeaders(dst, src http.Header, skip map[string]bool) {
	for key, values := range src {
		if skip[strings.ToLower(key)] {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

// StripThinking removes thinking-related keys from a JSON document at any
// depth. It returns the rewritten body and whether anything was removed.
// Non-JSON input is returned unchanged.
func StripThinking(body []byte) ([]byte, bool) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return body, false
	}
	if !stripValue(data) {
		return body, false
	}
	rewritten, err := json.Marshal(data)
	if err != nil {
		return body, false
	}
	return rewritten, true
}

func stripValue(v any) bool {
	modified := false
	switch val := v.(type) {
	case map[string]any:
		for key, child := range val {
			if thinkingKeys[key] {
				delete(val, key)
				modified = true
				continue
			}
			if stripValue(child) {
				modified = true
			}
		}
	case []any:
		for _, item := range val {
			if stripValue(item) {
				modified = true
			}
		}
	}
	return modified
}

func (s *Server) logf(format string, args ...any) {
	if s.logOut != nil {
		fmt.Fprintf(s.logOut, "[proxy] "+format+"\n", args...)
	}
}
