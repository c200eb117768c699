package transcript

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ListLimit bounds the number of chat logs read back from the remote store.
const ListLimit = 100

// PostgresRepository is the remote side of the chat logs, backed by the
// `chat_logs` table. Messages are stored as jsonb and the timestamp as timestamptz.
type PostgresRepository struct {
	db *sqlx.DB
}

type transcriptRow struct {
	ID          string         `db:"id"`
	Timestamp   time.Time      `db:"timestamp"`
	ProductName sql.NullString `db:"product_name"`
	Messages    []byte         `db:"messages"`
	LeadName    sql.NullString `db:"lead_name"`
	LeadContact sql.NullString `db:"lead_contact"`
}

const (
	listTranscriptsQuery = `
		SELECT id, timestamp, product_name, messages, lead_name, lead_contact
		FROM chat_logs
		ORDER BY timestamp DESC
		LIMIT $1
	`
	insertTranscriptQuery = `
		INSERT INTO chat_logs (id, timestamp, product_name, messages, lead_name, lead_contact)
		VALUES (:id, :timestamp, :product_name, :messages, :lead_name, :lead_contact)
	`
	updateTranscriptQuery = `
		UPDATE chat_logs
		SET timestamp = :timestamp,
			product_name = :product_name,
			messages = :messages,
			lead_name = :lead_name,
			lead_contact = :lead_contact
		WHERE id = :id
	`
	deleteTranscriptQuery     = `DELETE FROM chat_logs WHERE id = $1`
	deleteAllTranscriptsQuery = `DELETE FROM chat_logs`
)

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Transcript, error) {
	var rows []transcriptRow
	if err := r.db.SelectContext(ctx, &rows, listTranscriptsQuery, ListLimit); err != nil {
		return nil, fmt.Errorf("listing chat logs: %w", err)
	}
	out := make([]Transcript, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTranscript(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t Transcript) error {
	row, err := transcriptToRow(t)
	if err != nil {
		return err
	}
	if _, err := r.db.NamedExecContext(ctx, insertTranscriptQuery, row); err != nil {
		return fmt.Errorf("inserting chat log %s: %w", t.ID, err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, t Transcript) error {
	row, err := transcriptToRow(t)
	if err != nil {
		return err
	}
	if _, err := r.db.NamedExecContext(ctx, updateTranscriptQuery, row); err != nil {
		return fmt.Errorf("updating chat log %s: %w", t.ID, err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, deleteTranscriptQuery, id); err != nil {
		return fmt.Errorf("deleting chat log %s: %w", id, err)
	}
	return nil
}

func (r *PostgresRepository) Replace(ctx context.Context, ts []Transcript) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, deleteAllTranscriptsQuery); err != nil {
		return fmt.Errorf("clearing chat logs: %w", err)
	}
	for _, t := range ts {
		row, err := transcriptToRow(t)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, insertTranscriptQuery, row); err != nil {
			return fmt.Errorf("inserting chat log %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func transcriptToRow(t Transcript) (transcriptRow, error) {
	msgs := t.Messages
	if msgs == nil {
		msgs = []Message{}
	}
	raw, err := json.Marshal(msgs)
	if err != nil {
		return transcriptRow{}, fmt.Errorf("encoding messages of chat log %s: %w", t.ID, err)
	}
	row := transcriptRow{
		ID:          t.ID,
		Timestamp:   time.UnixMilli(t.Timestamp).UTC(),
		Messages:    raw,
		LeadName:    nullString(t.LeadName),
		LeadContact: nullString(t.LeadContact),
	}
	if t.ProductName != nil {
		row.ProductName = sql.NullString{String: *t.ProductName, Valid: true}
	}
	return row, nil
}

func rowToTranscript(row transcriptRow) (Transcript, error) {
	var msgs []Message
	if err := json.Unmarshal(row.Messages, &msgs); err != nil {
		return Transcript{}, fmt.Errorf("decoding messages of chat log %s: %w", row.ID, err)
	}
	if msgs == nil {
		msgs = []Message{}
	}
	t := Transcript{
		ID:          row.ID,
		Timestamp:   row.Timestamp.UnixMilli(),
		Messages:    msgs,
		LeadName:    row.LeadName.String,
		LeadContact: row.LeadContact.String,
	}
	if row.ProductName.Valid {
		name := row.ProductName.String
		t.ProductName = &name
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
