package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Postgres implementa a persistência de eventos, apostas e saldos.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadySettled    = errors.New("event already settled")
	ErrWagerExists       = errors.New("wager already placed for this event")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// IsRetryableTxError identifica falhas de serialização/deadlock do Postgres
// que o chamador pode tentar de novo (40001, 40P01).
func IsRetryableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CreateEvent insere um novo evento e retorna o id gerado.
func (p *Postgres) CreateEvent(ctx context.Context, e *Event) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO events (id, group_id, side_a, side_b, start_time, end_time, completed, organizer_id)
		VALUES ($1,$2,$3,$4,$5,$6,FALSE,$7)`,
		id, e.GroupID, e.SideA, e.SideB, e.StartTime, e.EndTime, e.OrganizerID,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetEvent carrega um evento pelo id.
func (p *Postgres) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	var e Event
	err := p.db.QueryRowContext(ctx, `
		SELECT id, group_id, side_a, side_b, side_a_score, side_b_score,
		       start_time, end_time, completed, organizer_id, created_at, updated_at
		FROM events WHERE id=$1`, eventID).
		Scan(&e.ID, &e.GroupID, &e.SideA, &e.SideB, &e.SideAScore, &e.SideBScore,
			&e.StartTime, &e.EndTime, &e.Completed, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEvent altera lados e janela de tempo de um evento ainda não iniciado.
// A checagem de janela/organizador é do lifecycle guard, não daqui.
func (p *Postgres) UpdateEvent(ctx context.Context, e *Event) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE events SET side_a=$1, side_b=$2, start_time=$3, end_time=$4, updated_at=NOW()
		WHERE id=$5`,
		e.SideA, e.SideB, e.StartTime, e.EndTime, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent remove o evento; apostas e participantes caem por cascata (FK).
func (p *Postgres) DeleteEvent(ctx context.Context, eventID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM events WHERE id=$1`, eventID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// EventWager é uma aposta acompanhada do username, pro snapshot do pool.
type EventWager struct {
	Wager
	Username string
}

// ListWagersByEvent retorna todas as apostas de um evento com o username.
func (p *Postgres) ListWagersByEvent(ctx context.Context, eventID string) ([]EventWager, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT w.id, w.event_id, w.user_id, w.side_choice, w.amount, w.status,
		       w.created_at, w.updated_at, u.username
		FROM wagers w
		JOIN users u ON u.id = w.user_id
		WHERE w.event_id=$1
		ORDER BY w.created_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventWager
	for rows.Next() {
		var w EventWager
		if err := rows.Scan(&w.ID, &w.EventID, &w.UserID, &w.SideChoice, &w.Amount,
			&w.Status, &w.CreatedAt, &w.UpdatedAt, &w.Username); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// PlaceWager registra uma aposta debitando o valor do saldo do usuário
// (escrow na colocação), tudo numa transação:
//  1. débito condicional e atômico do saldo (sem read-modify-write)
//  2. insert da aposta (UNIQUE event_id+user_id barra aposta dupla)
//  3. insert do vínculo participante
//  4. registro ESCROW no ledger
func (p *Postgres) PlaceWager(ctx context.Context, w *Wager) (string, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE users SET available_funds = available_funds - $1, updated_at = NOW()
		WHERE id=$2 AND available_funds >= $1`,
		w.Amount, w.UserID)
	if err != nil {
		return "", err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// usuário inexistente ou saldo insuficiente; distingue pro chamador
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT TRUE FROM users WHERE id=$1`, w.UserID).Scan(&exists); err == sql.ErrNoRows {
			return "", ErrNotFound
		} else if err != nil {
			return "", err
		}
		return "", ErrInsufficientFunds
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wagers (id, event_id, user_id, side_choice, amount, status)
		VALUES ($1,$2,$3,$4,$5,'PENDING')`,
		id, w.EventID, w.UserID, w.SideChoice, w.Amount); err != nil {
		if isUniqueViolation(err) {
			return "", ErrWagerExists
		}
		return "", err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO participants (event_id, user_id, wager_id)
		VALUES ($1,$2,$3)`,
		w.EventID, w.UserID, id); err != nil {
		return "", err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger (user_id, event_id, wager_id, operation_type, amount_value, description)
		VALUES ($1,$2,$3,'ESCROW',$4,$5)`,
		w.UserID, w.EventID, id, w.Amount, "wager:"+id); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// SettlementCredit é uma parcela do plano de pagamento a aplicar.
type SettlementCredit struct {
	WagerID string
	UserID  string
	Credit  decimal.Decimal
	Refund  bool
}

// ApplySettlement aplica o plano de liquidação numa única transação:
//
//	(a) flip completed=false→true como gate de escritor único; zero linhas
//	    afetadas significa que outra liquidação venceu a corrida
//	(b) crédito atômico relativo no saldo de cada usuário + linha no ledger
//	(c) status WON/LOST de todas as apostas conforme o lado vencedor
//
// Qualquer erro desfaz (a)-(c); liquidação parcial nunca é observável.
func (p *Postgres) ApplySettlement(ctx context.Context, eventID string, winner Side, credits []SettlementCredit) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE events SET completed = TRUE, updated_at = NOW()
		WHERE id=$1 AND completed = FALSE`, eventID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadySettled
	}

	for _, c := range credits {
		if !c.Credit.IsPositive() {
			continue
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE users SET available_funds = available_funds + $1, updated_at = NOW()
			WHERE id=$2`, c.Credit, c.UserID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		op := "PAYOUT"
		if c.Refund {
			op = "REFUND"
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO wallet_ledger (user_id, event_id, wager_id, operation_type, amount_value, description)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			c.UserID, eventID, c.WagerID, op, c.Credit, "settle:"+eventID); err != nil {
			return err
		}
	}

	// Status reflete o acerto da previsão mesmo em cenários de estorno
	if _, err := tx.ExecContext(ctx, `
		UPDATE wagers SET status = CASE WHEN side_choice = $2 THEN 'WON' ELSE 'LOST' END,
		       updated_at = NOW()
		WHERE event_id = $1`, eventID, winner); err != nil {
		return err
	}

	return tx.Commit()
}

// GetBalance retorna o saldo disponível do usuário.
func (p *Postgres) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := p.db.QueryRowContext(ctx, `SELECT available_funds FROM users WHERE id=$1`, userID).Scan(&bal)
	if err == sql.ErrNoRows {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return bal, nil
}

// InsertNotification grava o registro de auditoria consumido pelo
// payout-notification-worker.
func (p *Postgres) InsertNotification(ctx context.Context, eventID, userID string, amount decimal.Decimal) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO settlement_notifications (event_id, user_id, amount)
		VALUES ($1,$2,$3)`, eventID, userID, amount)
	return err
}
