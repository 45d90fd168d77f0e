package infra_db_room

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/lootsplit/internal/model"
	usecase_room "github.com/humanbelnik/lootsplit/internal/usecase/room"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const pqUniqueViolation = "23505"

type Driver struct {
	db *sqlx.DB
}

func New(
	db *sqlx.DB,
) *Driver {
	return &Driver{db: db}
}

type roomDTO struct {
	ID        uuid.UUID `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func (d *Driver) Create(ctx context.Context, room model.Room) error {
	dto := roomDTO{
		ID:        room.ID,
		Code:      room.Code,
		Name:      room.Name,
		CreatedAt: room.CreatedAt,
	}

	query := `
		INSERT INTO rooms (id, code, name, created_at)
		VALUES (:id, :code, :name, :created_at)
	`

	_, err := d.db.NamedExecContext(ctx, query, dto)
	if err != nil {
		if isUniqueViolation(err) {
			return usecase_room.ErrCodeConflict
		}
		return err
	}
	return nil
}

func (d *Driver) ByCode(ctx context.Context, code string) (model.Room, error) {
	var dto roomDTO

	query := d.db.Rebind(`
		SELECT id, code, name, created_at
		FROM rooms
		WHERE code = ?
	`)

	err := d.db.GetContext(ctx, &dto, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Room{}, usecase_room.ErrRoomNotFound
		}
		return model.Room{}, err
	}

	return model.Room{
		ID:        dto.ID,
		Code:      dto.Code,
		Name:      dto.Name,
		CreatedAt: dto.CreatedAt.UTC(),
	}, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
