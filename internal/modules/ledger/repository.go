// Package ledger provides the append-only transaction store in ledger.db.
// Entries are the system's audit trail: they are written once, never
// updated or deleted, and queried newest first.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/alfredorueda/portfolio-service/internal/domain"
)

// Filter narrows a transaction query. PortfolioID is required; every other
// field is optional and ignored when zero. It replaces threading six
// individual optional parameters through every call.
type Filter struct {
	PortfolioID string
	Ticker      string
	Type        domain.TransactionType
	From        *time.Time
	To          *time.Time
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
}

// transactionsColumns is the column list for the transactions table.
// Order must match scanTransaction.
const transactionsColumns = `id, portfolio_id, type, ticker, quantity, unit_price, total_amount, profit, created_at`

// Repository handles transaction persistence in ledger.db.
type Repository struct {
	ledgerDB *sql.DB
	log      zerolog.Logger
}

// NewRepository creates a new ledger repository.
func NewRepository(ledgerDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "ledger").Logger(),
	}
}

// Append inserts a transaction record.
func (r *Repository) Append(t domain.Transaction) error {
	_, err := r.ledgerDB.Exec(
		`INSERT INTO transactions
		 (id, portfolio_id, type, ticker, quantity, unit_price, total_amount, profit, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.PortfolioID,
		string(t.Type),
		nullString(t.Ticker),
		t.Quantity,
		t.UnitPrice.String(),
		t.TotalAmount.String(),
		t.Profit.String(),
		t.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	r.log.Info().
		Str("portfolio_id", t.PortfolioID).
		Str("type", string(t.Type)).
		Str("total_amount", t.TotalAmount.String()).
		Msg("Transaction appended")
	return nil
}

// Query returns the transactions matching the filter, newest first.
//
// Ticker, type and date bounds are pushed into SQL; the amount range is
// applied afterwards in Go because amounts are stored as decimal strings
// and must not be compared with SQLite's text collation.
func (r *Repository) Query(f Filter) ([]domain.Transaction, error) {
	query := "SELECT " + transactionsColumns + " FROM transactions WHERE portfolio_id = ?"
	args := []interface{}{f.PortfolioID}

	if f.Ticker != "" {
		query += " AND ticker = ?"
		args = append(args, f.Ticker)
	}
	if f.Type != "" {
		query += " AND type = ?"
		args = append(args, string(f.Type))
	}
	if f.From != nil {
		query += " AND created_at >= ?"
		args = append(args, f.From.Unix())
	}
	if f.To != nil {
		query += " AND created_at <= ?"
		args = append(args, f.To.Unix())
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.ledgerDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		if f.MinAmount != nil && t.TotalAmount.LessThan(*f.MinAmount) {
			continue
		}
		if f.MaxAmount != nil && t.TotalAmount.GreaterThan(*f.MaxAmount) {
			continue
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

func scanTransaction(rows *sql.Rows) (domain.Transaction, error) {
	var (
		t         domain.Transaction
		txType    string
		ticker    sql.NullString
		unitPrice string
		total     string
		profit    string
		createdAt int64
	)
	if err := rows.Scan(&t.ID, &t.PortfolioID, &txType, &ticker, &t.Quantity, &unitPrice, &total, &profit, &createdAt); err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	t.Type = domain.TransactionType(txType)
	t.Ticker = ticker.String
	t.CreatedAt = time.Unix(createdAt, 0).UTC()

	var err error
	if t.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return domain.Transaction{}, fmt.Errorf("corrupt unit price in transaction %s: %w", t.ID, err)
	}
	if t.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return domain.Transaction{}, fmt.Errorf("corrupt total amount in transaction %s: %w", t.ID, err)
	}
	if t.Profit, err = decimal.NewFromString(profit); err != nil {
		return domain.Transaction{}, fmt.Errorf("corrupt profit in transaction %s: %w", t.ID, err)
	}
	return t, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
