package model

import (
	"time"

	"github.com/google/uuid"
)

type RoomCode = string

const EmptyRoomCode RoomCode = ""

type Room struct {
	ID        uuid.UUID
	Code      RoomCode
	Name      string
	CreatedAt time.Time
}
