package model

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventRecordUpdated EventType = "record_updated"
	EventRoomState     EventType = "room_state"
	EventWriteFailed   EventType = "write_failed"
	EventPresence      EventType = "presence"
	EventError         EventType = "error"
)

// Event is an egress message addressed to one or more live connections.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// RecordEvent is the fan-out body of an accepted write.
type RecordEvent struct {
	RoomCode  RoomCode        `json:"room_code"`
	RecordID  string          `json:"record_id"`
	Label     string          `json:"label"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (r Record) Event() RecordEvent {
	return RecordEvent{
		RoomCode:  r.RoomCode,
		RecordID:  r.RecordID,
		Label:     r.Label,
		Payload:   r.Payload,
		UpdatedAt: r.UpdatedAt,
	}
}

func RecordUpdated(e RecordEvent) Event {
	return Event{Type: EventRecordUpdated, Payload: e}
}
