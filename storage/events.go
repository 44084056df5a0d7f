package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ferreirogomes/energytradehub/models"
)

// eventRow é a linha de ledger_events.
type eventRow struct {
	LedgerID  string    `db:"ledger_id"`
	Seq       uint64    `db:"seq"`
	Kind      string    `db:"kind"`
	TokenID   uint64    `db:"token_id"`
	DisputeID uint64    `db:"dispute_id"`
	Account   string    `db:"account"`
	Amount    string    `db:"amount"`
	Payload   string    `db:"payload"`
	PrevHash  string    `db:"prev_hash"`
	Hash      string    `db:"hash"`
	CreatedAt time.Time `db:"created_at"`
}

func toRow(ledgerID uuid.UUID, ev models.Event) (eventRow, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return eventRow{}, fmt.Errorf("falha ao serializar evento %d: %w", ev.Seq, err)
	}
	return eventRow{
		LedgerID:  ledgerID.String(),
		Seq:       ev.Seq,
		Kind:      string(ev.Kind),
		TokenID:   ev.TokenID,
		DisputeID: ev.DisputeID,
		Account:   ev.Account,
		Amount:    ev.Amount,
		Payload:   string(payload),
		PrevHash:  ev.PrevHash,
		Hash:      ev.Hash,
		CreatedAt: ev.Timestamp,
	}, nil
}

func (r eventRow) event() (models.Event, error) {
	var ev models.Event
	if err := json.Unmarshal([]byte(r.Payload), &ev); err != nil {
		return models.Event{}, fmt.Errorf("falha ao deserializar evento %d: %w", r.Seq, err)
	}
	return ev, nil
}

const insertEvent = `INSERT INTO ledger_events
	(ledger_id, seq, kind, token_id, dispute_id, account, amount, payload, prev_hash, hash, created_at)
	VALUES (:ledger_id, :seq, :kind, :token_id, :dispute_id, :account, :amount, :payload, :prev_hash, :hash, :created_at)
	ON CONFLICT (ledger_id, seq) DO NOTHING`

// SaveEvents grava os eventos do ledger numa única transação. Eventos já
// gravados são ignorados, o que torna a entrega idempotente.
func (d *DB) SaveEvents(ctx context.Context, ledgerID uuid.UUID, events []models.Event) error {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("falha ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	for _, ev := range events {
		row, err := toRow(ledgerID, ev)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, insertEvent, row); err != nil {
			return fmt.Errorf("falha ao salvar evento %d: %w", ev.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("falha ao confirmar eventos: %w", err)
	}
	return nil
}

// GetEvents retorna até limit eventos do ledger com seq maior que since.
func (d *DB) GetEvents(ctx context.Context, ledgerID uuid.UUID, since uint64, limit int) ([]models.Event, error) {
	query := d.Rebind(`SELECT * FROM ledger_events WHERE ledger_id = ? AND seq > ? ORDER BY seq LIMIT ?`)
	var rows []eventRow
	if err := d.SelectContext(ctx, &rows, query, ledgerID.String(), since, limit); err != nil {
		return nil, fmt.Errorf("falha ao buscar eventos: %w", err)
	}
	return decodeRows(rows)
}

// GetTokenEvents retorna o histórico de um token.
func (d *DB) GetTokenEvents(ctx context.Context, ledgerID uuid.UUID, tokenID uint64) ([]models.Event, error) {
	query := d.Rebind(`SELECT * FROM ledger_events WHERE ledger_id = ? AND token_id = ? ORDER BY seq`)
	var rows []eventRow
	if err := d.SelectContext(ctx, &rows, query, ledgerID.String(), tokenID); err != nil {
		return nil, fmt.Errorf("falha ao buscar eventos do token %d: %w", tokenID, err)
	}
	return decodeRows(rows)
}

// LastSequence retorna o maior seq gravado para o ledger, ou 0.
func (d *DB) LastSequence(ctx context.Context, ledgerID uuid.UUID) (uint64, error) {
	query := d.Rebind(`SELECT seq FROM ledger_events WHERE ledger_id = ? ORDER BY seq DESC LIMIT 1`)
	var seq uint64
	err := d.GetContext(ctx, &seq, query, ledgerID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("falha ao buscar última sequência: %w", err)
	}
	return seq, nil
}

func decodeRows(rows []eventRow) ([]models.Event, error) {
	out := make([]models.Event, 0, len(rows))
	for _, r := range rows {
		ev, err := r.event()
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// Journal entrega os eventos de um ledger ao banco. Implementa services.EventSink.
type Journal struct {
	db       *DB
	ledgerID uuid.UUID
}

func (d *DB) Journal(ledgerID uuid.UUID) *Journal {
	return &Journal{db: d, ledgerID: ledgerID}
}

func (j *Journal) Append(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := j.db.SaveEvents(ctx, j.ledgerID, events); err != nil {
		return err
	}
	j.db.log.Debug("eventos gravados no journal",
		zap.String("ledger_id", j.ledgerID.String()),
		zap.Uint64("last_seq", events[len(events)-1].Seq))
	return nil
}

// Events lê eventos já gravados deste ledger.
func (j *Journal) Events(ctx context.Context, since uint64, limit int) ([]models.Event, error) {
	return j.db.GetEvents(ctx, j.ledgerID, since, limit)
}

// LastSequence retorna o maior seq já gravado deste ledger.
func (j *Journal) LastSequence(ctx context.Context) (uint64, error) {
	return j.db.LastSequence(ctx, j.ledgerID)
}

// TokenEvents lê o histórico gravado de um token deste ledger.
func (j *Journal) TokenEvents(ctx context.Context, tokenID uint64) ([]models.Event, error) {
	return j.db.GetTokenEvents(ctx, j.ledgerID, tokenID)
}
