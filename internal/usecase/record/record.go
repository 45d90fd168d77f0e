package usecase_record

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/humanbelnik/lootsplit/internal/model"
	"go.uber.org/zap"
)

var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrStoreFailure   = errors.New("record store failure")
	ErrRecordNotFound = errors.New("record not found")
)

const (
	maxRecordIDLen = 128
	maxLabelLen    = 128
)

// RecordRepository persists records with latest-write-wins semantics per
// (room code, record id).
//
//go:generate mockery --name=RecordRepository --output=./mocks/repository --filename=repository.go
type RecordRepository interface {
	// Upsert reports false when a newer value is already stored.
	Upsert(ctx context.Context, record model.Record) (bool, error)
	LatestAll(ctx context.Context, roomCode string) ([]model.Record, error)
	Latest(ctx context.Context, roomCode string, recordID string) (model.Record, error)
}

//go:generate mockery --name=Registry --output=./mocks/registry --filename=registry.go
type Registry interface {
	MembersOf(roomCode string) []model.Subscriber
	Leave(connectionID string)
}

// Relay carries accepted writes to other instances of the service.
//
//go:generate mockery --name=Relay --output=./mocks/relay --filename=relay.go
type Relay interface {
	Publish(ctx context.Context, event model.RecordEvent) error
}

type Usecase struct {
	repo     RecordRepository
	registry Registry
	relay    Relay

	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Usecase)

func WithLogger(logger *zap.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func WithRelay(relay Relay) Option {
	return func(u *Usecase) {
		u.relay = relay
	}
}

func New(repo RecordRepository, registry Registry, opts ...Option) *Usecase {
	u := &Usecase{
		repo:     repo,
		registry: registry,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Write validates req, stamps it with the server clock, persists it and fans
// it out to every member of the room, the writer included. Nothing is fanned
// out unless the record became the stored value. A write that lost to a newer
// stored value returns that value and is not broadcast.
func (u *Usecase) Write(ctx context.Context, req model.WriteRequest) (model.Record, error) {
	payload, err := normalize(req)
	if err != nil {
		u.logger.Info("write rejected",
			zap.String("room", req.RoomCode),
			zap.String("record_id", req.RecordID),
			zap.String("origin", string(req.Origin)),
			zap.Error(err))
		return model.Record{}, errors.Join(ErrInvalidPayload, err)
	}

	record := model.Record{
		RoomCode:  req.RoomCode,
		RecordID:  req.RecordID,
		Label:     req.Label,
		Payload:   payload,
		UpdatedAt: u.now().UTC(),
	}

	applied, err := u.repo.Upsert(ctx, record)
	if err != nil {
		u.logger.Error("failed to persist record",
			zap.String("room", req.RoomCode),
			zap.String("record_id", req.RecordID),
			zap.String("origin", string(req.Origin)),
			zap.Error(err))
		return model.Record{}, errors.Join(ErrStoreFailure, err)
	}
	if !applied {
		return u.superseded(ctx, record)
	}

	event := record.Event()
	delivered := u.fanOut(event)

	if u.relay != nil {
		if err := u.relay.Publish(ctx, event); err != nil {
			u.logger.Warn("failed to relay record update",
				zap.String("room", req.RoomCode),
				zap.String("record_id", req.RecordID),
				zap.Error(err))
		}
	}

	u.logger.Debug("record accepted",
		zap.String("room", req.RoomCode),
		zap.String("record_id", req.RecordID),
		zap.String("origin", string(req.Origin)),
		zap.String("connection_id", req.ConnectionID),
		zap.Int("delivered", delivered))

	return record, nil
}

func (u *Usecase) superseded(ctx context.Context, record model.Record) (model.Record, error) {
	current, err := u.repo.Latest(ctx, record.RoomCode, record.RecordID)
	if err != nil {
		u.logger.Error("failed to read superseding record",
			zap.String("room", record.RoomCode),
			zap.String("record_id", record.RecordID),
			zap.Error(err))
		return model.Record{}, errors.Join(ErrStoreFailure, err)
	}

	u.logger.Info("write superseded by newer value",
		zap.String("room", record.RoomCode),
		zap.String("record_id", record.RecordID),
		zap.Time("stamped", record.UpdatedAt),
		zap.Time("stored", current.UpdatedAt))
	return current, nil
}

// DeliverRemote fans out an update accepted by another instance to the
// members connected here.
func (u *Usecase) DeliverRemote(event model.RecordEvent) {
	u.fanOut(event)
}

// ReadAll returns the current value of every record in the room. Rows whose
// payload no longer decodes are left out.
func (u *Usecase) ReadAll(ctx context.Context, roomCode string) (map[string]model.RecordState, error) {
	records, err := u.repo.LatestAll(ctx, roomCode)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	states := make(map[string]model.RecordState, len(records))
	for _, r := range records {
		if _, err := model.ParsePayload(r.Payload); err != nil {
			u.logger.Warn("skipping corrupt record",
				zap.String("room", roomCode),
				zap.String("record_id", r.RecordID),
				zap.Error(err))
			continue
		}
		if prev, ok := states[r.RecordID]; ok && prev.UpdatedAt.After(r.UpdatedAt) {
			continue
		}
		states[r.RecordID] = r.State()
	}

	return states, nil
}

func (u *Usecase) Read(ctx context.Context, roomCode string, recordID string) (model.RecordState, error) {
	record, err := u.repo.Latest(ctx, roomCode, recordID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return model.RecordState{}, ErrRecordNotFound
		}
		return model.RecordState{}, errors.Join(ErrStoreFailure, err)
	}

	if _, err := model.ParsePayload(record.Payload); err != nil {
		u.logger.Warn("corrupt record",
			zap.String("room", roomCode),
			zap.String("record_id", recordID),
			zap.Error(err))
		return model.RecordState{}, ErrRecordNotFound
	}

	return record.State(), nil
}

// fanOut delivers event to a snapshot of the room members. Members that
// cannot take the event are dropped from the room.
func (u *Usecase) fanOut(event model.RecordEvent) int {
	members := u.registry.MembersOf(event.RoomCode)
	msg := model.RecordUpdated(event)

	delivered := 0
	for _, m := range members {
		if m.Deliver(msg) {
			delivered++
			continue
		}
		u.logger.Warn("subscriber stalled, dropping",
			zap.String("room", event.RoomCode),
			zap.String("connection_id", m.ID()))
		u.registry.Leave(m.ID())
	}
	return delivered
}

func normalize(req model.WriteRequest) (json.RawMessage, error) {
	switch {
	case req.RoomCode == model.EmptyRoomCode:
		return nil, errors.New("room code is required")
	case req.RecordID == "":
		return nil, errors.New("record id is required")
	case utf8.RuneCountInString(req.RecordID) > maxRecordIDLen:
		return nil, fmt.Errorf("record id longer than %d", maxRecordIDLen)
	case utf8.RuneCountInString(req.Label) > maxLabelLen:
		return nil, fmt.Errorf("label longer than %d", maxLabelLen)
	}

	if _, err := model.ParsePayload(req.Payload); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, req.Payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
