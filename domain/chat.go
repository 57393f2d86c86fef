package domain

import "time"

// ChatRequest is the inbound message on the HTTP and websocket surfaces.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the model's reply back to the caller.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ErrorResponse is the body of every failed HTTP or websocket turn.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// CompletionResult is the outcome of one interactive turn.
type CompletionResult struct {
	Reply   string
	Err     error
	Elapsed time.Duration
}
