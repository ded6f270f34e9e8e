package domain

// CompletionRequest is everything the model sees for one round.
type CompletionRequest struct {
	System  string // System instructions
	History []Turn // Prior conversation, oldest first
	Trace   []Turn // Current invocation, starting with the user message
	Tools   []Tool // Tools the model may call
}

// Turns returns history followed by the trace.
func (r CompletionRequest) Turns() []Turn {
	turns := make([]Turn, 0, len(r.History)+len(r.Trace))
	turns = append(turns, r.History...)
	return append(turns, r.Trace...)
}

// Completion is the model's answer for one round: either final text or one tool call.
type Completion struct {
	Text     string
	ToolCall *ToolCall
}

// IsFinal reports whether the completion ends the loop.
func (c Completion) IsFinal() bool {
	return c.ToolCall == nil
}
