// Package registry tracks which live connections are joined to which room.
// A connection belongs to at most one room at a time.
package registry

import (
	"sync"

	"github.com/humanbelnik/lootsplit/internal/model"
	"go.uber.org/zap"
)

type Registry struct {
	mu sync.RWMutex

	// room code -> connection id -> subscriber
	rooms map[string]map[string]model.Subscriber
	// connection id -> room code
	memberships map[string]string

	logger *zap.Logger
}

func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		rooms:       make(map[string]map[string]model.Subscriber),
		memberships: make(map[string]string),
		logger:      logger,
	}
}

// Join puts sub into roomCode. Joining the current room again is a no-op;
// joining another room replaces the old membership.
func (r *Registry) Join(sub model.Subscriber, roomCode string) {
	id := sub.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.memberships[id]; ok {
		if current == roomCode {
			return
		}
		r.removeLocked(id, current)
	}

	if _, ok := r.rooms[roomCode]; !ok {
		r.rooms[roomCode] = make(map[string]model.Subscriber)
	}
	r.rooms[roomCode][id] = sub
	r.memberships[id] = roomCode

	r.logger.Info("connection joined room",
		zap.String("connection_id", id),
		zap.String("room", roomCode))
}

func (r *Registry) Leave(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomCode, ok := r.memberships[connectionID]
	if !ok {
		return
	}
	r.removeLocked(connectionID, roomCode)

	r.logger.Info("connection left room",
		zap.String("connection_id", connectionID),
		zap.String("room", roomCode))
}

// MembersOf returns a point-in-time snapshot of the room's subscribers.
func (r *Registry) MembersOf(roomCode string) []model.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomCode]
	members := make([]model.Subscriber, 0, len(room))
	for _, sub := range room {
		members = append(members, sub)
	}
	return members
}

func (r *Registry) RoomOf(connectionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomCode, ok := r.memberships[connectionID]
	return roomCode, ok
}

func (r *Registry) Count(roomCode string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[roomCode])
}

func (r *Registry) removeLocked(connectionID, roomCode string) {
	delete(r.memberships, connectionID)
	if room, ok := r.rooms[roomCode]; ok {
		delete(room, connectionID)
		if len(room) == 0 {
			delete(r.rooms, roomCode)
		}
	}
}
