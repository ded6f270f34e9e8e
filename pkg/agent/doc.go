// Package agent implements the bounded tool-invocation loop.
//
// Each round asks the completion client for the next step. A final text ends
// the loop; a tool call is executed against the registry and its result is
// appended to the trace before the next round. Unknown tools and handler
// faults become tool results so the model can recover. When the round budget
// is spent without an answer, Run returns domain.ErrIterationExhausted.
package agent
