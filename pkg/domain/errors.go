package domain

import "errors"

// ErrIterationExhausted is returned when the loop spends its round budget without a final answer.
var ErrIterationExhausted = errors.New("iteration budget exhausted")

// ErrFormatValidation is returned when a final answer cannot be parsed into the expected record.
var ErrFormatValidation = errors.New("format validation failed")

// ErrToolNotFound is returned when a tool name is not present in the registry.
var ErrToolNotFound = errors.New("tool not found")

// ErrInvalidArguments is returned when tool arguments cannot be decoded or miss required fields.
var ErrInvalidArguments = errors.New("invalid tool arguments")

// ErrCompletion wraps failures of the completion client (transport, quota, malformed replies).
var ErrCompletion = errors.New("completion failed")
