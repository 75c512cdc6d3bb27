package models

import (
	"testing"
	"time"
)

func TestFeedbackExpiry(t *testing.T) {
	f := NewFeedback(FeedbackSuccess, "saved", time.Minute)

	if f.Kind != FeedbackSuccess {
		t.Fatalf("Kind=%q, want %q", f.Kind, FeedbackSuccess)
	}
	if f.Expired(time.Now()) {
		t.Fatal("Expired() now = true, want false")
	}
	if !f.Expired(time.Now().Add(2 * time.Minute)) {
		t.Fatal("Expired() after ttl = false, want true")
	}
}
