package formatter

import (
	"testing"
)

func TestPrefilter(t *testing.T) {
	if _, ok := Prefilter(""); ok {
		t.Error("empty line should be skipped")
	}
	if _, ok := Prefilter("   \t"); ok {
		t.Error("whitespace-only line should be skipped")
	}
	if _, ok := Prefilter("event: message_start"); ok {
		t.Error("SSE event announcement should be skipped")
	}
	if _, ok := Prefilter(":"); ok {
		t.Error("SSE heartbeat should be skipped")
	}

	got, ok := Prefilter(`data: {"type":"system"}`)
	if !ok || got != `{"type":"system"}` {
		t.Errorf("data prefix should be stripped, got %q, %v", got, ok)
	}

	got, ok = Prefilter(`{"type":"system"}`)
	if !ok || got != `{"type":"system"}` {
		t.Errorf("plain JSON line should pass through, got %q, %v", got, ok)
	}
}

func TestParseLine_InvalidJSON(t *testing.T) {
	ev, ok := ParseLine("not valid json at all")
	if !ok {
		t.Fatal("invalid JSON should still produce an event")
	}
	if ev.Kind != KindRaw {
		t.Fatalf("kind = %v, want KindRaw", ev.Kind)
	}
	if ev.Data.(RawData).Line != "not valid json at all" {
		t.Errorf("raw event should carry the original line, got %q", ev.Data.(RawData).Line)
	}
}

func TestParseLine_MissingType(t *testing.T) {
	ev, ok := ParseLine(`{"foo":"bar"}`)
	if !ok || ev.Kind != KindUnknown {
		t.Errorf("missing type should classify as unknown, got %v", ev.Kind)
	}
}

func TestParseLine_UnknownWithSubagent(t *testing.T) {
	ev, _ := ParseLine(`{"type":"banana","subagent":"research"}`)
	if ev.Kind != KindUnknown {
		t.Fatalf("kind = %v", ev.Kind)
	}
	if ev.Data.(UnknownData).Subagent != "research" {
		t.Errorf("subagent field should survive, got %+v", ev.Data)
	}
}

func TestParseLine_AssistantArrayContent(t *testing.T) {
	line := `{"type":"assistant","message":{"content":[{"type":"text","text":"first"},{"type":"tool_use","name":"Read"},{"type":"text","text":"second"}]}}`
	ev, _ := ParseLine(line)
	if ev.Kind != KindAssistant {
		t.Fatalf("kind = %v", ev.Kind)
	}
	texts := ev.Data.(AssistantData).Texts
	if len(texts) != 2 || texts[0] != "first" || texts[1] != "second" {
		t.Errorf("texts = %v, want [first second] skipping non-text blocks", texts)
	}
}

func TestParseLine_AssistantStringContent(t *testing.T) {
	ev, _ := ParseLine(`{"type":"assistant","message":{"content":"Hello"}}`)
	texts := ev.Data.(AssistantData).Texts
	if len(texts) != 1 || texts[0] != "Hello" {
		t.Errorf("texts = %v, want [Hello]", texts)
	}
}

func TestParseLine_AssistantEmptyContent(t *testing.T) {
	ev, _ := ParseLine(`{"type":"assistant","message":{}}`)
	if len(ev.Data.(AssistantData).Texts) != 0 {
		t.Errorf("empty content should yield no texts, got %v", ev.Data)
	}
}

func TestParseLine_ContentBlockStart(t *testing.T) {
	ev, _ := ParseLine(`{"type":"content_block_start","content_block":{"type":"tool_use","name":"Bash"}}`)
	if ev.Kind != KindContentBlockStart {
		t.Fatalf("kind = %v", ev.Kind)
	}
	data := ev.Data.(BlockStartData)
	if data.BlockType != "tool_use" || data.ToolName != "Bash" {
		t.Errorf("data = %+v", data)
	}
}

func TestParseLine_Deltas(t *testing.T) {
	ev, _ := ParseLine(`{"type":"content_block_delta","delta":{"type":"text_delta","text":"chunk"}}`)
	data := ev.Data.(BlockDeltaData)
	if data.DeltaType != "text_delta" || data.Text != "chunk" {
		t.Errorf("text delta = %+v", data)
	}

	ev, _ = ParseLine(`{"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"fi"}}`)
	data = ev.Data.(BlockDeltaData)
	if data.DeltaType != "input_json_delta" {
		t.Errorf("input delta = %+v", data)
	}
}

func TestParseLine_ToolUse(t *testing.T) {
	ev, _ := ParseLine(`{"type":"tool_use","name":"Read","input":{"file_path":"/a.txt"}}`)
	if ev.Kind != KindToolUse {
		t.Fatalf("kind = %v", ev.Kind)
	}
	data := ev.Data.(ToolUseData)
	if data.Name != "Read" || data.Input["file_path"] != "/a.txt" {
		t.Errorf("data = %+v", data)
	}
}

func TestParseLine_ToolResult(t *testing.T) {
	ev, _ := ParseLine(`{"type":"tool_result","is_error":true,"content":"boom"}`)
	data := ev.Data.(ToolResultData)
	if !data.IsError || data.Content != "boom" {
		t.Errorf("data = %+v", data)
	}
}

func TestParseLine_ErrorMessageResolution(t *testing.T) {
	ev, _ := ParseLine(`{"type":"error","error":{"message":"nested"}}`)
	if ev.Data.(ErrorData).Message != "nested" {
		t.Errorf("error.message should win, got %+v", ev.Data)
	}

	ev, _ = ParseLine(`{"type":"error","message":"flat"}`)
	if ev.Data.(ErrorData).Message != "flat" {
		t.Errorf("top-level message fallback, got %+v", ev.Data)
	}

	ev, _ = ParseLine(`{"type":"error"}`)
	if ev.Data.(ErrorData).Message != "" {
		t.Errorf("absent message should stay empty for renderer default, got %+v", ev.Data)
	}
}

func TestParseLine_MessageStart(t *testing.T) {
	ev, _ := ParseLine(`{"type":"message_start","message":{"model":"claude-opus-4"}}`)
	if ev.Data.(MessageStartData).Model != "claude-opus-4" {
		t.Errorf("model = %+v", ev.Data)
	}
}

func TestParseLine_MessageDelta(t *testing.T) {
	ev, _ := ParseLine(`{"type":"message_delta","usage":{"output_tokens":42}}`)
	if ev.Data.(MessageDeltaData).OutputTokens != 42 {
		t.Errorf("tokens = %+v", ev.Data)
	}
}

func TestParseLine_System(t *testing.T) {
	ev, _ := ParseLine(`{"type":"system","subtype":"info","message":"session started"}`)
	data := ev.Data.(SystemData)
	if data.Message != "session started" || data.Subtype != "info" {
		t.Errorf("data = %+v", data)
	}
}

func TestParseLine_ResultCostForms(t *testing.T) {
	ev, _ := ParseLine(`{"type":"result","cost_usd":"0.0025","duration_ms":1500,"num_turns":3}`)
	data := ev.Data.(ResultData)
	if !data.HasCost || data.Cost != 0.0025 {
		t.Errorf("string cost = %+v", data)
	}
	if !data.HasDuration || data.DurationMS != 1500 {
		t.Errorf("duration = %+v", data)
	}
	if !data.HasTurns || data.NumTurns != 3 {
		t.Errorf("turns = %+v", data)
	}

	ev, _ = ParseLine(`{"type":"result","total_cost_usd":0.01}`)
	data = ev.Data.(ResultData)
	if !data.HasCost || data.Cost != 0.01 {
		t.Errorf("numeric total_cost_usd fallback = %+v", data)
	}
}

func TestParseLine_SSEWrapped(t *testing.T) {
	ev, ok := ParseLine(`data: {"type":"message_stop"}`)
	if !ok || ev.Kind != KindMessageStop {
		t.Errorf("SSE-wrapped event should parse, got %v, %v", ev.Kind, ok)
	}
}
