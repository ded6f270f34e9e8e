/*
Package session implements bounded conversation memory.

A Manager serializes access per conversation (in-process reference-counted
mutexes, optionally backed by a distributed locker) and exposes a sliding
window over the turns kept by a ports.HistoryStore. Only user messages and
final answers are remembered; tool chatter stays in each run's trace.
*/
package session
