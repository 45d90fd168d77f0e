package infra_db_record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/humanbelnik/lootsplit/internal/model"
	usecase_record "github.com/humanbelnik/lootsplit/internal/usecase/record"
	"github.com/jmoiron/sqlx"
)

// Driver stores one row per (room_code, record_id). A write replaces the row
// only when its timestamp is not older than the stored one, so concurrent
// writers converge on the latest server timestamp; equal timestamps resolve
// to the later insertion.
type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type recordDTO struct {
	RoomCode  string `db:"room_code"`
	RecordID  string `db:"record_id"`
	Label     string `db:"label"`
	Payload   string `db:"payload"`
	UpdatedAt int64  `db:"updated_at"`
}

func (dto recordDTO) toModel() model.Record {
	return model.Record{
		RoomCode:  dto.RoomCode,
		RecordID:  dto.RecordID,
		Label:     dto.Label,
		Payload:   json.RawMessage(dto.Payload),
		UpdatedAt: time.Unix(0, dto.UpdatedAt).UTC(),
	}
}

// Upsert reports whether record became the stored value. It returns false
// when the stored row is newer.
func (d *Driver) Upsert(ctx context.Context, record model.Record) (bool, error) {
	query := d.db.Rebind(`
		INSERT INTO records (room_code, record_id, label, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (room_code, record_id) DO UPDATE
		SET label = excluded.label,
			payload = excluded.payload,
			updated_at = excluded.updated_at
		WHERE excluded.updated_at >= records.updated_at
	`)

	res, err := d.db.ExecContext(ctx, query,
		record.RoomCode,
		record.RecordID,
		record.Label,
		string(record.Payload),
		record.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (d *Driver) LatestAll(ctx context.Context, roomCode string) ([]model.Record, error) {
	var rows []recordDTO

	query := d.db.Rebind(`
		SELECT room_code, record_id, label, payload, updated_at
		FROM records
		WHERE room_code = ?
		ORDER BY record_id
	`)

	if err := d.db.SelectContext(ctx, &rows, query, roomCode); err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toModel())
	}
	return records, nil
}

func (d *Driver) Latest(ctx context.Context, roomCode string, recordID string) (model.Record, error) {
	var row recordDTO

	query := d.db.Rebind(`
		SELECT room_code, record_id, label, payload, updated_at
		FROM records
		WHERE room_code = ? AND record_id = ?
	`)

	if err := d.db.GetContext(ctx, &row, query, roomCode, recordID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Record{}, usecase_record.ErrRecordNotFound
		}
		return model.Record{}, err
	}
	return row.toModel(), nil
}
