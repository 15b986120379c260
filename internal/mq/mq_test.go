package mq

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestDecodeEvent(t *testing.T) {
	runID := uuid.New()
	body, err := json.Marshal(NewEvent(EventJobCompleted, runID, map[string]any{"job_key": "42"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	event, err := DecodeEvent(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.Type != EventJobCompleted {
		t.Errorf("expected type %s, got %s", EventJobCompleted, event.Type)
	}
	if event.RunID != runID {
		t.Errorf("expected run id %s, got %s", runID, event.RunID)
	}

	payload, err := ParsePayload[struct {
		JobKey string `json:"job_key"`
	}](event)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.JobKey != "42" {
		t.Errorf("expected job_key 42, got %q", payload.JobKey)
	}
}

func TestDecodeEvent_Invalid(t *testing.T) {
	if _, err := DecodeEvent([]byte("not json")); err == nil {
		t.Error("expected error for malformed body")
	}
	if _, err := DecodeEvent([]byte(`{"id":"1"}`)); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestParsePayload_InMemory(t *testing.T) {
	event := NewEvent(EventRunFinished, uuid.Nil, map[string]any{"status": "SUCCEEDED"})

	payload, err := ParsePayload[map[string]string](event)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload["status"] != "SUCCEEDED" {
		t.Errorf("unexpected payload %v", payload)
	}
}
