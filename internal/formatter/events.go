package formatter

// Kind identifies the different stream events.
type Kind int

const (
	KindRaw Kind = iota
	KindAssistant
	KindContentBlockStart
	KindContentBlockDelta
	KindContentBlockStop
	KindToolUse
	KindToolResult
	KindError
	KindMessageStart
	KindMessageDelta
	KindMessageStop
	KindSystem
	KindResult
	KindUnknown
)

// Event is one parsed unit of the input stream. Data holds the
// kind-specific payload struct, or nil for kinds without one.
type Event struct {
	Kind Kind
	Data any
}

// RawData carries a line that did not parse as JSON. It is echoed verbatim.
type RawData struct {
	Line string
}

// AssistantData holds the text blocks of an assistant message, in input
// order. Non-text blocks are already filtered out.
type AssistantData struct {
	Texts []string
}

// BlockStartData represents a content_block_start event.
type BlockStartData struct {
	BlockType string
	ToolName  string
}

// BlockDeltaData represents a content_block_delta event.
type BlockDeltaData struct {
	DeltaType string
	Text      string
}

// ToolUseData represents a dedicated tool_use event.
type ToolUseData struct {
	Name  string
	Input map[string]any
}

// ToolResultData represents a tool_result event.
type ToolResultData struct {
	IsError bool
	Content any
}

// ErrorData represents an upstream-reported error event. Message may be
// empty; the renderer substitutes a generic message.
type ErrorData struct {
	Message string
}

// MessageStartData carries the model identifier, if any.
type MessageStartData struct {
	Model string
}

// MessageDeltaData carries streaming usage counts.
type MessageDeltaData struct {
	OutputTokens int
}

// SystemData represents a system event.
type SystemData struct {
	Subtype string
	Message string
}

// ResultData represents an end-of-iteration result event.
type ResultData struct {
	Cost        float64
	HasCost     bool
	DurationMS  float64
	HasDuration bool
	NumTurns    int
	HasTurns    bool
}

// UnknownData holds the few fields inspected on unrecognized events.
type UnknownData struct {
	Subagent string
}
