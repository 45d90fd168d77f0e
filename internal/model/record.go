package model

import (
	"encoding/json"
	"time"
)

type Origin string

const (
	OriginRequest Origin = "request"
	OriginPush    Origin = "push"
)

// WriteRequest is an ingress write from either the HTTP or the push path.
type WriteRequest struct {
	RoomCode     RoomCode
	RecordID     string
	Label        string
	Payload      json.RawMessage
	Origin       Origin
	ConnectionID string
}

// Record is a single accepted value for (RoomCode, RecordID).
type Record struct {
	RoomCode  RoomCode
	RecordID  string
	Label     string
	Payload   json.RawMessage
	UpdatedAt time.Time
}

// RecordState is what readers see for one record id of a room.
type RecordState struct {
	Label     string          `json:"label"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (r Record) State() RecordState {
	return RecordState{
		Label:     r.Label,
		Payload:   r.Payload,
		UpdatedAt: r.UpdatedAt,
	}
}
