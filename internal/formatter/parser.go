package formatter

import (
	"encoding/json"
	"strings"
)

// envelope is the permissive wire shape for one stream-json line. Every
// field any event kind cares about lives here; unknown fields are ignored.
type envelope struct {
	Type         string          `json:"type"`
	Subtype      string          `json:"subtype,omitempty"`
	Message      json.RawMessage `json:"message,omitempty"`
	ContentBlock *contentBlock   `json:"content_block,omitempty"`
	Delta        *blockDelta     `json:"delta,omitempty"`
	Usage        *streamUsage    `json:"usage,omitempty"`
	Name         string          `json:"name,omitempty"`
	Input        map[string]any  `json:"input,omitempty"`
	IsError      bool            `json:"is_error,omitempty"`
	Content      any             `json:"content,omitempty"`
	Error        *errorBody      `json:"error,omitempty"`
	CostUSD      json.RawMessage `json:"cost_usd,omitempty"`
	TotalCostUSD json.RawMessage `json:"total_cost_usd,omitempty"`
	DurationMS   float64         `json:"duration_ms,omitempty"`
	NumTurns     int             `json:"num_turns,omitempty"`
	Subagent     string          `json:"subagent,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type blockDelta struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
}

type streamUsage struct {
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
}

type errorBody struct {
	Message string `json:"message,omitempty"`
}

// messageBody is the object form of an envelope's message field.
type messageBody struct {
	Model   string          `json:"model,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

// textBlock is one element of an assistant message's content array.
type textBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Prefilter normalizes a raw input line before JSON parsing. It strips an
// SSE "data: " prefix and reports false for lines that should be skipped
// entirely: blanks, "event:" announcements, and bare ":" heartbeats.
func Prefilter(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	if strings.HasPrefix(trimmed, ":") {
		return "", false
	}
	if strings.HasPrefix(trimmed, "event:") {
		return "", false
	}
	if rest, ok := strings.CutPrefix(trimmed, "data: "); ok {
		return rest, true
	}
	return trimmed, true
}

// ParseLine turns one input line into an Event. The second return is false
// when the line is SSE framing noise and no event should be dispatched.
// Parsing is pure: no state is touched here, and malformed JSON degrades
// to a raw event carrying the line unmodified.
func ParseLine(line string) (Event, bool) {
	candidate, ok := Prefilter(line)
	if !ok {
		return Event{}, false
	}

	var env envelope
	if err := json.Unmarshal([]byte(candidate), &env); err != nil {
		return Event{Kind: KindRaw, Data: RawData{Line: candidate}}, true
	}

	switch env.Type {
	case "assistant":
		return Event{Kind: KindAssistant, Data: AssistantData{Texts: assistantTexts(env.Message)}}, true
	case "content_block_start":
		data := BlockStartData{}
		if env.ContentBlock != nil {
			data.BlockType = env.ContentBlock.Type
			data.ToolName = env.ContentBlock.Name
		}
		return Event{Kind: KindContentBlockStart, Data: data}, true
	case "content_block_delta":
		data := BlockDeltaData{}
		if env.Delta != nil {
			data.DeltaType = env.Delta.Type
			data.Text = env.Delta.Text
		}
		return Event{Kind: KindContentBlockDelta, Data: data}, true
	case "content_block_stop":
		return Event{Kind: KindContentBlockStop}, true
	case "tool_use":
		return Event{Kind: KindToolUse, Data: ToolUseData{Name: env.Name, Input: env.Input}}, true
	case "tool_result":
		return Event{Kind: KindToolResult, Data: ToolResultData{IsError: env.IsError, Content: env.Content}}, true
	case "error":
		return Event{Kind: KindError, Data: ErrorData{Message: errorMessage(env)}}, true
	case "message_start":
		var body messageBody
		if env.Message != nil {
			_ = json.Unmarshal(env.Message, &body)
		}
		return Event{Kind: KindMessageStart, Data: MessageStartData{Model: body.Model}}, true
	case "message_delta":
		data := MessageDeltaData{}
		if env.Usage != nil {
			data.OutputTokens = env.Usage.OutputTokens
		}
		return Event{Kind: KindMessageDelta, Data: data}, true
	case "message_stop":
		return Event{Kind: KindMessageStop}, true
	case "system":
		return Event{Kind: KindSystem, Data: SystemData{Subtype: env.Subtype, Message: messageString(env.Message)}}, true
	case "result":
		data := ResultData{
			DurationMS:  env.DurationMS,
			HasDuration: env.DurationMS > 0,
			NumTurns:    env.NumTurns,
			HasTurns:    env.NumTurns > 0,
		}
		raw := env.CostUSD
		if raw == nil {
			raw = env.TotalCostUSD
		}
		if cost, ok := parseCost(raw); ok {
			data.Cost = cost
			data.HasCost = true
		}
		return Event{Kind: KindResult, Data: data}, true
	default:
		return Event{Kind: KindUnknown, Data: UnknownData{Subagent: env.Subagent}}, true
	}
}

// assistantTexts extracts the text blocks of an assistant message in input
// order. Content may be a plain string or an array of typed blocks;
// non-text blocks are skipped.
func assistantTexts(message json.RawMessage) []string {
	if message == nil {
		return nil
	}
	var body messageBody
	if err := json.Unmarshal(message, &body); err != nil || body.Content == nil {
		return nil
	}

	var blocks []textBlock
	if err := json.Unmarshal(body.Content, &blocks); err == nil {
		var texts []string
		for _, block := range blocks {
			if block.Type == "text" && block.Text != "" {
				texts = append(texts, block.Text)
			}
		}
		return texts
	}

	var text string
	if err := json.Unmarshal(body.Content, &text); err == nil && text != "" {
		return []string{text}
	}
	return nil
}

// errorMessage resolves an error event's message: error.message first,
// then a top-level string message. Empty means unknown.
func errorMessage(env envelope) string {
	if env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return messageString(env.Message)
}

// messageString decodes a message field that is a plain JSON string.
func messageString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
