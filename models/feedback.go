package models

import "time"

type FeedbackKind string

const (
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
	FeedbackInfo    FeedbackKind = "info"
)

// Feedback is a transient user-facing banner. Clients stop showing it
// once ExpiresAt has passed.
type Feedback struct {
	Kind      FeedbackKind `json:"kind"`
	Message   string       `json:"message"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func NewFeedback(kind FeedbackKind, message string, ttl time.Duration) Feedback {
	return Feedback{
		Kind:      kind,
		Message:   message,
		ExpiresAt: time.Now().Add(ttl),
	}
}

func (f Feedback) Expired(now time.Time) bool {
	return now.After(f.ExpiresAt)
}
