/*
Package ports defines the driven ports (interfaces) of the waybill assistants.

These interfaces decouple the tool loop from the hosted model, the history
backends and the tracing sinks.

# Key Interfaces

  - CompletionClient: one round-trip to the hosted model (final text or a tool call).
  - HistoryStore: persists the bounded conversation memory.
  - DistributedLocker: serializes access to a conversation across replicas.
  - Tracer: spans and events for observability.
*/
package ports
