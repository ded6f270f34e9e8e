package domain

import "time"

// TurnKind tags the variant held by a Turn.
type TurnKind string

const (
	TurnUser       TurnKind = "user"
	TurnToolCall   TurnKind = "tool_call"
	TurnToolResult TurnKind = "tool_result"
	TurnFinal      TurnKind = "final"
)

// Turn is one entry of a trace.
// Only the fields relevant to Kind are populated.
type Turn struct {
	Kind      TurnKind       `json:"kind"`
	Text      string         `json:"text,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
	CallID    string         `json:"call_id,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
	IsError   bool           `json:"is_error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// UserMessage creates a user turn.
func UserMessage(text string) Turn {
	return Turn{Kind: TurnUser, Text: text, CreatedAt: time.Now()}
}

// NewToolCall creates a tool call turn.
func NewToolCall(call ToolCall) Turn {
	return Turn{
		Kind:      TurnToolCall,
		ToolName:  call.Name,
		CallID:    call.ID,
		Args:      call.Args,
		CreatedAt: time.Now(),
	}
}

// NewToolResult creates a tool result turn.
func NewToolResult(res ToolResult) Turn {
	return Turn{
		Kind:      TurnToolResult,
		Text:      res.Output,
		ToolName:  res.Name,
		CallID:    res.ID,
		IsError:   res.IsError,
		CreatedAt: time.Now(),
	}
}

// FinalAnswer creates a final answer turn.
func FinalAnswer(text string) Turn {
	return Turn{Kind: TurnFinal, Text: text, CreatedAt: time.Now()}
}

// ToolCall returns the call carried by a tool call turn.
func (t Turn) ToolCall() ToolCall {
	return ToolCall{ID: t.CallID, Name: t.ToolName, Args: t.Args}
}

// ToolsUsed lists the tools called in a trace, in call order, without duplicates.
func ToolsUsed(trace []Turn) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range trace {
		if t.Kind != TurnToolCall || seen[t.ToolName] {
			continue
		}
		seen[t.ToolName] = true
		names = append(names, t.ToolName)
	}
	return names
}
