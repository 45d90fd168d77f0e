package ws_room

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/humanbelnik/lootsplit/internal/model"
	"github.com/humanbelnik/lootsplit/internal/service/registry"
	usecase_record "github.com/humanbelnik/lootsplit/internal/usecase/record"
	usecase_room "github.com/humanbelnik/lootsplit/internal/usecase/room"
	"go.uber.org/zap"
)

const (
	MessageJoin   = "join"
	MessageLeave  = "leave"
	MessageUpdate = "update"
)

const (
	ReasonInvalidPayload = "invalid_payload"
	ReasonStoreFailure   = "store_failure"
	ReasonRoomNotFound   = "room_not_found"
	ReasonBadMessage     = "bad_message"
	ReasonUnavailable    = "unavailable"
)

const requestTimeout = 10 * time.Second

// Inbound is a message sent by a client over the push channel.
type Inbound struct {
	Type     string          `json:"type"`
	RoomCode string          `json:"room_code,omitempty"`
	RecordID string          `json:"record_id,omitempty"`
	Label    string          `json:"label,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type RoomState struct {
	RoomCode string                       `json:"room_code"`
	Records  map[string]model.RecordState `json:"records"`
}

type WriteFailed struct {
	RecordID string `json:"record_id"`
	Reason   string `json:"reason"`
}

type Presence struct {
	RoomCode string `json:"room_code"`
	Members  int    `json:"members"`
}

type ErrorBody struct {
	Reason string `json:"reason"`
}

// Hub turns push-channel messages into engine calls and keeps room
// membership in the registry.
type Hub struct {
	registry *registry.Registry
	rooms    *usecase_room.Usecase
	records  *usecase_record.Usecase

	sendBuffer int
	logger     *zap.Logger
}

func NewHub(
	registry *registry.Registry,
	rooms *usecase_room.Usecase,
	records *usecase_record.Usecase,
	sendBuffer int,
	logger *zap.Logger,
) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Hub{
		registry:   registry,
		rooms:      rooms,
		records:    records,
		sendBuffer: sendBuffer,
		logger:     logger,
	}
}

func (h *Hub) handle(c *Client, data []byte) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Deliver(errorEvent(ReasonBadMessage))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch msg.Type {
	case MessageJoin:
		h.join(ctx, c, msg.RoomCode)
	case MessageLeave:
		h.leave(c)
	case MessageUpdate:
		h.update(ctx, c, msg)
	default:
		c.Deliver(errorEvent(ReasonBadMessage))
	}
}

// join subscribes c before reading the room state, so no update accepted in
// between can be missed.
func (h *Hub) join(ctx context.Context, c *Client, roomCode string) {
	ok, err := h.rooms.Exists(ctx, roomCode)
	if err != nil {
		c.logger.Error("failed to resolve room", zap.String("room", roomCode), zap.Error(err))
		c.Deliver(errorEvent(ReasonUnavailable))
		return
	}
	if !ok {
		c.Deliver(errorEvent(ReasonRoomNotFound))
		return
	}

	previous, hadRoom := h.registry.RoomOf(c.ID())
	h.registry.Join(c, roomCode)
	c.room = roomCode

	states, err := h.records.ReadAll(ctx, roomCode)
	if err != nil {
		c.logger.Error("failed to read room state", zap.String("room", roomCode), zap.Error(err))
		states = map[string]model.RecordState{}
	}
	c.Deliver(model.Event{
		Type:    model.EventRoomState,
		Payload: RoomState{RoomCode: roomCode, Records: states},
	})

	if hadRoom && previous != roomCode {
		h.broadcastPresence(previous)
	}
	if !hadRoom || previous != roomCode {
		h.broadcastPresence(roomCode)
	}
}

func (h *Hub) leave(c *Client) {
	roomCode, ok := h.registry.RoomOf(c.ID())
	c.room = ""
	if !ok {
		return
	}
	h.registry.Leave(c.ID())
	h.broadcastPresence(roomCode)
}

// update defaults to the joined room when the message names none.
func (h *Hub) update(ctx context.Context, c *Client, msg Inbound) {
	if msg.RoomCode == "" {
		msg.RoomCode, _ = h.registry.RoomOf(c.ID())
	}
	if msg.RoomCode != "" {
		ok, err := h.rooms.Exists(ctx, msg.RoomCode)
		if err != nil {
			c.logger.Error("failed to resolve room", zap.String("room", msg.RoomCode), zap.Error(err))
			c.Deliver(errorEvent(ReasonUnavailable))
			return
		}
		if !ok {
			c.Deliver(errorEvent(ReasonRoomNotFound))
			return
		}
	}

	_, err := h.records.Write(ctx, model.WriteRequest{
		RoomCode:     msg.RoomCode,
		RecordID:     msg.RecordID,
		Label:        msg.Label,
		Payload:      msg.Payload,
		Origin:       model.OriginPush,
		ConnectionID: c.ID(),
	})
	if err == nil {
		return
	}

	reason := ReasonStoreFailure
	if errors.Is(err, usecase_record.ErrInvalidPayload) {
		reason = ReasonInvalidPayload
	}
	c.Deliver(model.Event{
		Type:    model.EventWriteFailed,
		Payload: WriteFailed{RecordID: msg.RecordID, Reason: reason},
	})
}

// disconnect also covers clients the engine already evicted as stalled: their
// membership is gone, but the room they were in still needs a presence update.
func (h *Hub) disconnect(c *Client) {
	roomCode := c.room
	_, member := h.registry.RoomOf(c.ID())
	h.leave(c)
	if !member && roomCode != "" {
		h.broadcastPresence(roomCode)
	}
	c.logger.Info("client disconnected")
}

func (h *Hub) broadcastPresence(roomCode string) {
	members := h.registry.MembersOf(roomCode)
	e := model.Event{
		Type:    model.EventPresence,
		Payload: Presence{RoomCode: roomCode, Members: len(members)},
	}
	for _, m := range members {
		m.Deliver(e)
	}
}

func errorEvent(reason string) model.Event {
	return model.Event{Type: model.EventError, Payload: ErrorBody{Reason: reason}}
}
