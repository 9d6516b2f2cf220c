// Package portfolio provides persistence and management operations for the
// Portfolio aggregate.
package portfolio

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/alfredorueda/portfolio-service/internal/domain"
)

// ErrVersionConflict is returned by Save when the aggregate was modified by
// a concurrent writer between Load and Save. Callers retry the whole
// read-modify-write cycle; this is an infrastructure signal, not a domain
// error.
var ErrVersionConflict = errors.New("portfolio was modified concurrently")

// Repository handles portfolio aggregate persistence in portfolio.db.
//
// The aggregate is stored across three tables (portfolios, holdings, lots)
// and always loaded and saved whole: Save replaces the holding and lot rows
// inside one SQL transaction and bumps the portfolio's version, using the
// version column as an optimistic concurrency check.
type Repository struct {
	portfolioDB *sql.DB
	log         zerolog.Logger
}

// NewRepository creates a new portfolio repository.
func NewRepository(portfolioDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		portfolioDB: portfolioDB,
		log:         log.With().Str("repo", "portfolio").Logger(),
	}
}

// Create inserts a brand-new portfolio. New portfolios have no holdings, so
// only the portfolio row is written.
func (r *Repository) Create(p *domain.Portfolio) error {
	_, err := r.portfolioDB.Exec(
		`INSERT INTO portfolios (id, owner_name, balance, created_at, version) VALUES (?, ?, ?, ?, 0)`,
		p.ID(), p.OwnerName(), p.Balance().String(), p.CreatedAt().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}

	r.log.Info().Str("portfolio_id", p.ID()).Str("owner", p.OwnerName()).Msg("Portfolio created")
	return nil
}

// Load reconstructs the whole aggregate for the given id. A missing id
// yields a PortfolioNotFound domain error, as the loader is the component
// responsible for raising it.
func (r *Repository) Load(id string) (*domain.Portfolio, error) {
	var (
		ownerName string
		balance   string
		createdAt int64
		version   int64
	)
	err := r.portfolioDB.QueryRow(
		`SELECT owner_name, balance, created_at, version FROM portfolios WHERE id = ?`, id,
	).Scan(&ownerName, &balance, &createdAt, &version)
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodePortfolioNotFound, "portfolio not found with id %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio %s: %w", id, err)
	}

	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for portfolio %s: %w", id, err)
	}

	holdings, err := r.loadHoldings(id)
	if err != nil {
		return nil, err
	}

	return domain.RehydratePortfolio(id, ownerName, bal, time.Unix(createdAt, 0).UTC(), version, holdings), nil
}

func (r *Repository) loadHoldings(portfolioID string) ([]*domain.Holding, error) {
	rows, err := r.portfolioDB.Query(
		`SELECT id, ticker FROM holdings WHERE portfolio_id = ? ORDER BY ticker`, portfolioID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	type holdingRow struct{ id, ticker string }
	var holdingRows []holdingRow
	for rows.Next() {
		var hr holdingRow
		if err := rows.Scan(&hr.id, &hr.ticker); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdingRows = append(holdingRows, hr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	holdings := make([]*domain.Holding, 0, len(holdingRows))
	for _, hr := range holdingRows {
		lots, err := r.loadLots(hr.id)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, domain.RehydrateHolding(hr.id, hr.ticker, lots))
	}
	return holdings, nil
}

func (r *Repository) loadLots(holdingID string) ([]*domain.Lot, error) {
	// seq preserves purchase order; lots are only ever appended.
	rows, err := r.portfolioDB.Query(
		`SELECT id, remaining, unit_price, purchased_at FROM lots WHERE holding_id = ? ORDER BY seq`, holdingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	var lots []*domain.Lot
	for rows.Next() {
		var (
			id          string
			remaining   int64
			unitPrice   string
			purchasedAt int64
		)
		if err := rows.Scan(&id, &remaining, &unitPrice, &purchasedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		price, err := decimal.NewFromString(unitPrice)
		if err != nil {
			return nil, fmt.Errorf("corrupt unit price for lot %s: %w", id, err)
		}
		lots = append(lots, domain.RehydrateLot(id, remaining, price, time.Unix(purchasedAt, 0).UTC()))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lots: %w", err)
	}
	return lots, nil
}

// Save persists the aggregate's new state. The portfolio row is updated
// with an optimistic version check; on a version mismatch ErrVersionConflict
// is returned and nothing changes. Holding and lot rows are replaced
// wholesale, which mirrors how the aggregate itself is rebuilt from storage
// on every mutation cycle.
func (r *Repository) Save(p *domain.Portfolio) error {
	tx, err := r.portfolioDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE portfolios SET owner_name = ?, balance = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		p.OwnerName(), p.Balance().String(), p.ID(), p.Version(),
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or a concurrent writer bumped the version.
		var exists int
		err := tx.QueryRow(`SELECT COUNT(1) FROM portfolios WHERE id = ?`, p.ID()).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check portfolio existence: %w", err)
		}
		if exists == 0 {
			return domain.Errorf(domain.CodePortfolioNotFound, "portfolio not found with id %s", p.ID())
		}
		return ErrVersionConflict
	}

	if _, err := tx.Exec(
		`DELETE FROM lots WHERE holding_id IN (SELECT id FROM holdings WHERE portfolio_id = ?)`, p.ID(),
	); err != nil {
		return fmt.Errorf("failed to clear lots: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM holdings WHERE portfolio_id = ?`, p.ID()); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}

	for _, h := range p.Holdings() {
		if _, err := tx.Exec(
			`INSERT INTO holdings (id, portfolio_id, ticker) VALUES (?, ?, ?)`,
			h.ID(), p.ID(), h.Ticker(),
		); err != nil {
			return fmt.Errorf("failed to insert holding %s: %w", h.Ticker(), err)
		}
		for seq, lot := range h.Lots() {
			if _, err := tx.Exec(
				`INSERT INTO lots (id, holding_id, seq, remaining, unit_price, purchased_at) VALUES (?, ?, ?, ?, ?, ?)`,
				lot.ID(), h.ID(), seq, lot.Remaining(), lot.UnitPrice().String(), lot.PurchasedAt().Unix(),
			); err != nil {
				return fmt.Errorf("failed to insert lot for %s: %w", h.Ticker(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit portfolio save: %w", err)
	}

	r.log.Debug().
		Str("portfolio_id", p.ID()).
		Str("balance", p.Balance().String()).
		Int64("version", p.Version()+1).
		Msg("Portfolio saved")
	return nil
}

// Count returns the number of stored portfolios.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.portfolioDB.QueryRow(`SELECT COUNT(*) FROM portfolios`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count portfolios: %w", err)
	}
	return n, nil
}

// ListHeldTickers returns every ticker with an open holding across all
// portfolios. Used by the price cache warm job.
func (r *Repository) ListHeldTickers() ([]string, error) {
	rows, err := r.portfolioDB.Query(`SELECT DISTINCT ticker FROM holdings ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to query held tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickers: %w", err)
	}
	return tickers, nil
}
