package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
)

// Tool names that delegate work to a nested assistant task. "Task" is the
// current subagent tool; "Agent" was its name in older CLI builds.
func isSubagentTool(name string) bool {
	return name == "Task" || name == "Agent"
}

// RunState holds the mutable counters threaded across one event stream.
// Tool and subagent counts reset after every result summary; TotalCost is
// a session-lifetime total.
type RunState struct {
	ToolInvocations int
	Subagents       int
	TotalCost       float64

	toolStart  time.Time
	activeTool string
}

// RendererConfig configures a Renderer.
type RendererConfig struct {
	Output io.Writer
	// Interactive enables the animated progress indication. Leave false
	// when output is not a terminal.
	Interactive bool
	// Markdown renders assistant text blocks through glamour.
	Markdown bool
	// Color mode: "auto", "always", or "never".
	Color string
}

// Renderer turns Events into colorized terminal output. It owns the run
// state and the single progress indication; it is not safe for concurrent
// use, matching the one-line-at-a-time input model.
type Renderer struct {
	out     io.Writer
	spin    *spinner
	md      *glamour.TermRenderer
	state   RunState
	midLine bool
}

// NewRenderer creates a renderer writing to cfg.Output.
func NewRenderer(cfg RendererConfig) *Renderer {
	r := &Renderer{
		out:  cfg.Output,
		spin: newSpinner(cfg.Output, cfg.Interactive),
	}
	if cfg.Markdown {
		r.md = createMarkdownRenderer(cfg.Color)
	}
	return r
}

// State returns a copy of the current run state.
func (r *Renderer) State() RunState {
	return r.state
}

// Render processes one event: zero or more output lines plus state
// updates. It never fails; malformed payloads degrade to defaults.
func (r *Renderer) Render(ev Event) {
	// Comma-ok assertions throughout: a hand-built event with the wrong
	// payload degrades to zero values instead of panicking.
	switch ev.Kind {
	case KindRaw:
		data, _ := ev.Data.(RawData)
		r.renderRaw(data)
	case KindAssistant:
		data, _ := ev.Data.(AssistantData)
		r.renderAssistant(data)
	case KindContentBlockStart:
		data, _ := ev.Data.(BlockStartData)
		r.renderBlockStart(data)
	case KindContentBlockDelta:
		data, _ := ev.Data.(BlockDeltaData)
		r.renderBlockDelta(data)
	case KindContentBlockStop:
		r.spin.Stop()
		r.endLine()
	case KindToolUse:
		data, _ := ev.Data.(ToolUseData)
		r.renderToolUse(data)
	case KindToolResult:
		data, _ := ev.Data.(ToolResultData)
		r.renderToolResult(data)
	case KindError:
		data, _ := ev.Data.(ErrorData)
		r.renderError(data)
	case KindMessageStart:
		data, _ := ev.Data.(MessageStartData)
		r.renderMessageStart(data)
	case KindMessageDelta:
		data, _ := ev.Data.(MessageDeltaData)
		r.renderMessageDelta(data)
	case KindMessageStop:
		r.spin.Stop()
		r.endLine()
		_, _ = fmt.Fprintln(r.out)
	case KindSystem:
		data, _ := ev.Data.(SystemData)
		r.renderSystem(data)
	case KindResult:
		data, _ := ev.Data.(ResultData)
		r.renderResult(data)
	default:
		data, _ := ev.Data.(UnknownData)
		r.renderUnknown(data)
	}
}

// Close stops any active indication and prints the session cost total when
// one accumulated. Call exactly once, at end of stream or on interrupt.
func (r *Renderer) Close() {
	r.spin.Stop()
	r.endLine()
	if r.state.TotalCost > 0 {
		_, _ = fmt.Fprintln(r.out, dimStyle.Render(fmt.Sprintf("[session total] $%.4f", r.state.TotalCost)))
	}
}

// endLine terminates a partially streamed output line.
func (r *Renderer) endLine() {
	if r.midLine {
		_, _ = fmt.Fprintln(r.out)
		r.midLine = false
	}
}

func (r *Renderer) renderRaw(data RawData) {
	r.spin.Stop()
	r.endLine()
	_, _ = fmt.Fprintln(r.out, data.Line)
}

func (r *Renderer) renderAssistant(data AssistantData) {
	if len(data.Texts) == 0 {
		return
	}
	r.spin.Stop()
	r.endLine()
	for _, text := range data.Texts {
		if r.md != nil {
			text = renderMarkdown(r.md, text)
		}
		_, _ = fmt.Fprintln(r.out, infoStyle.Render(text))
	}
}

func (r *Renderer) renderBlockStart(data BlockStartData) {
	if data.BlockType != "tool_use" {
		return
	}
	name := data.ToolName
	if name == "" {
		name = "tool"
	}
	// Progress signal only; counting happens on the dedicated tool_use
	// event so the same logical call is never counted twice.
	r.spin.Start(name)
	r.state.toolStart = time.Now()
	r.state.activeTool = data.ToolName
}

func (r *Renderer) renderBlockDelta(data BlockDeltaData) {
	switch data.DeltaType {
	case "text_delta":
		r.spin.Stop()
		_, _ = fmt.Fprint(r.out, infoStyle.Render(data.Text))
		r.midLine = true
	case "input_json_delta":
		// Fragments are not valid JSON on their own; show a tick instead.
		r.spin.Stop()
		_, _ = fmt.Fprint(r.out, dimStyle.Render("."))
		r.midLine = true
	}
}

func (r *Renderer) renderToolUse(data ToolUseData) {
	r.spin.Stop()
	r.endLine()

	name := data.Name
	if name == "" {
		name = "unknown"
	}

	r.state.ToolInvocations++
	if isSubagentTool(name) {
		r.state.Subagents++
		header := "◆ subagent " + name
		if desc, ok := data.Input["description"].(string); ok && desc != "" {
			header += ": " + desc
		}
		_, _ = fmt.Fprintln(r.out, subagentStyle.Render(header))
	} else {
		_, _ = fmt.Fprintln(r.out, toolStyle.Render("→ "+name))
	}

	preview := Truncate(compactJSON(data.Input), maxInputPreviewLength)
	_, _ = fmt.Fprintln(r.out, dimStyle.Render("  input: "+preview))

	r.state.toolStart = time.Now()
	r.state.activeTool = name
}

func (r *Renderer) renderToolResult(data ToolResultData) {
	r.spin.Stop()
	r.endLine()

	var elapsed string
	if !r.state.toolStart.IsZero() {
		elapsed = FormatDuration(float64(time.Since(r.state.toolStart).Milliseconds()))
		r.state.toolStart = time.Time{}
	}
	name := r.state.activeTool
	if name == "" {
		name = "tool"
	}
	r.state.activeTool = ""

	if data.IsError {
		line := fmt.Sprintf("%s %s failed", errorIcon.String(), name)
		if elapsed != "" {
			line += " (" + elapsed + ")"
		}
		_, _ = fmt.Fprintln(r.out, errorStyle.Render(line))
		if dump := Truncate(extractText(data.Content), maxContentDisplayLength); dump != "" {
			_, _ = fmt.Fprintln(r.out, dimStyle.Render("  "+dump))
		}
		return
	}

	line := fmt.Sprintf("%s %s done", successIcon.String(), name)
	if elapsed != "" {
		line += " (" + elapsed + ")"
	} else if text := extractText(data.Content); text != "" {
		line += " (" + FormatBytes(int64(len(text))) + ")"
	}
	_, _ = fmt.Fprintln(r.out, successStyle.Render(line))
}

func (r *Renderer) renderError(data ErrorData) {
	r.spin.Stop()
	r.endLine()
	message := data.Message
	if message == "" {
		message = "unknown error"
	}
	_, _ = fmt.Fprintln(r.out, errorStyle.Render(errorIcon.String()+" "+message))
}

func (r *Renderer) renderMessageStart(data MessageStartData) {
	if data.Model == "" {
		return
	}
	_, _ = fmt.Fprintln(r.out, dimStyle.Render("[model: "+data.Model+"]"))
}

func (r *Renderer) renderMessageDelta(data MessageDeltaData) {
	if data.OutputTokens <= 0 {
		return
	}
	_, _ = fmt.Fprintln(r.out, dimStyle.Render(fmt.Sprintf("[tokens: %d]", data.OutputTokens)))
}

func (r *Renderer) renderSystem(data SystemData) {
	if data.Message == "" {
		return
	}
	r.spin.Stop()
	r.endLine()
	_, _ = fmt.Fprintln(r.out, systemStyle.Render(data.Message))
}

func (r *Renderer) renderResult(data ResultData) {
	r.spin.Stop()
	r.endLine()

	var lines []string
	if data.HasDuration {
		lines = append(lines, "duration: "+FormatDuration(data.DurationMS))
	}
	if data.HasCost {
		lines = append(lines, fmt.Sprintf("cost: $%.4f", data.Cost))
		r.state.TotalCost += data.Cost
	}
	if data.HasTurns {
		lines = append(lines, fmt.Sprintf("turns: %d", data.NumTurns))
	}
	lines = append(lines,
		fmt.Sprintf("tools: %d", r.state.ToolInvocations),
		fmt.Sprintf("subagents: %d", r.state.Subagents),
	)
	_, _ = fmt.Fprintln(r.out, summaryBoxStyle.Render(strings.Join(lines, "\n")))

	// A result marks the end of one iteration.
	r.state.ToolInvocations = 0
	r.state.Subagents = 0
	r.state.toolStart = time.Time{}
	r.state.activeTool = ""
}

func (r *Renderer) renderUnknown(data UnknownData) {
	if data.Subagent == "" {
		return
	}
	_, _ = fmt.Fprintln(r.out, subagentStyle.Render("subagent: "+data.Subagent))
}
