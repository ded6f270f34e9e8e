/*
Package domain contains the core types shared by every waybill component.

It is kept free of I/O and third-party dependencies so that the loop, the
validator and the adapters can agree on a single vocabulary.

# Key Entities

  - Tool: the descriptor a model sees (name, description, ordered parameters).
  - ToolCall / ToolResult: one requested invocation and its textual outcome.
  - Turn: one entry of a trace (user message, tool call, tool result or final answer).
  - CompletionRequest / Completion: what the loop hands to the model and what it gets back.
  - ShipmentResponse / ResearchResponse: the validated structured answers.
*/
package domain
