package usecase_room

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/humanbelnik/lootsplit/internal/model"
	"go.uber.org/zap"
)

var (
	ErrCodeConflict     = errors.New("code conflict")
	ErrStoreUnavailable = errors.New("room directory unavailable")
	ErrRoomNotFound     = errors.New("room not found")
	ErrInvalidName      = errors.New("invalid room name")
)

const (
	codeLen       = 6
	codeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	createRetries = 5
	maxNameLen    = 64
)

//go:generate mockery --name=RoomRepository --output=./mocks/repository --filename=repository.go
type RoomRepository interface {
	Create(ctx context.Context, room model.Room) error
	ByCode(ctx context.Context, code string) (model.Room, error)
}

type Usecase struct {
	RoomRepository RoomRepository

	logger *zap.Logger
	now    func() time.Time
	code   func() (string, error)
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

// WithCodeSource replaces the random code generator.
func WithCodeSource(code func() (string, error)) Option {
	return func(u *Usecase) {
		u.code = code
	}
}

func New(roomRepository RoomRepository, opts ...Option) *Usecase {
	u := &Usecase{
		RoomRepository: roomRepository,
		logger:         zap.NewNop(),
		now:            time.Now,
		code:           buildRoomCode,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CreateRoom allocates a fresh code. Codes can conflict with existing
// rooms, so generation is retried a bounded number of times.
func (u *Usecase) CreateRoom(ctx context.Context, name string) (model.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return model.Room{}, ErrInvalidName
	}

	for attempt := 1; attempt <= createRetries; attempt++ {
		code, err := u.code()
		if err != nil {
			return model.Room{}, errors.Join(ErrStoreUnavailable, err)
		}

		room := model.Room{
			ID:        uuid.New(),
			Code:      code,
			Name:      name,
			CreatedAt: u.now().UTC(),
		}
		err = u.RoomRepository.Create(ctx, room)
		if err == nil {
			u.logger.Info("room created", zap.String("room", code), zap.Int("attempt", attempt))
			return room, nil
		}
		if !errors.Is(err, ErrCodeConflict) {
			return model.Room{}, errors.Join(ErrStoreUnavailable, err)
		}
		u.logger.Debug("room code conflict", zap.String("room", code), zap.Int("attempt", attempt))
	}

	u.logger.Warn("room code retries exhausted", zap.Int("retries", createRetries))
	return model.Room{}, ErrStoreUnavailable
}

func (u *Usecase) GetRoom(ctx context.Context, code string) (model.Room, error) {
	room, err := u.RoomRepository.ByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return model.Room{}, ErrRoomNotFound
		}
		return model.Room{}, errors.Join(ErrStoreUnavailable, err)
	}
	return room, nil
}

func (u *Usecase) Exists(ctx context.Context, code string) (bool, error) {
	_, err := u.GetRoom(ctx, code)
	if errors.Is(err, ErrRoomNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func buildRoomCode() (string, error) {
	var builder strings.Builder
	builder.Grow(codeLen)

	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLen; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		builder.WriteByte(codeAlphabet[n.Int64()])
	}

	return builder.String(), nil
}
