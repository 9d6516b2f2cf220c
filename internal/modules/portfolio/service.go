package portfolio

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/alfredorueda/portfolio-service/internal/domain"
)

// maxSaveRetries bounds how often a read-modify-write cycle is retried when
// a concurrent writer wins the optimistic version check.
const maxSaveRetries = 3

// LedgerAppender records a transaction in the audit ledger.
// Defined here to avoid a dependency on the ledger package.
type LedgerAppender interface {
	Append(tx domain.Transaction) error
}

// Service orchestrates portfolio lifecycle and cash operations: create,
// lookup, deposit and withdraw. Each mutation loads the aggregate fresh,
// applies exactly one domain operation, saves it, and then appends the
// matching ledger entry.
type Service struct {
	repo   *Repository
	ledger LedgerAppender
	log    zerolog.Logger
}

// NewService creates a new portfolio management service.
func NewService(repo *Repository, ledger LedgerAppender, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		ledger: ledger,
		log:    log.With().Str("service", "portfolio").Logger(),
	}
}

// Create creates and persists a portfolio for the given owner. The balance
// starts at zero.
func (s *Service) Create(ownerName string) (*domain.Portfolio, error) {
	p := domain.NewPortfolio(ownerName)
	if err := s.repo.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get loads a portfolio by id.
func (s *Service) Get(id string) (*domain.Portfolio, error) {
	return s.repo.Load(id)
}

// Deposit adds cash to a portfolio and records a DEPOSIT ledger entry.
func (s *Service) Deposit(portfolioID string, amount decimal.Decimal) error {
	err := s.mutate(portfolioID, func(p *domain.Portfolio) error {
		return p.Deposit(amount)
	})
	if err != nil {
		return err
	}
	return s.appendLedger(domain.NewDepositTransaction(portfolioID, amount))
}

// Withdraw removes cash from a portfolio and records a WITHDRAWAL ledger
// entry.
func (s *Service) Withdraw(portfolioID string, amount decimal.Decimal) error {
	err := s.mutate(portfolioID, func(p *domain.Portfolio) error {
		return p.Withdraw(amount)
	})
	if err != nil {
		return err
	}
	return s.appendLedger(domain.NewWithdrawalTransaction(portfolioID, amount))
}

// mutate runs one read-modify-write cycle against the aggregate, retrying a
// bounded number of times when a concurrent writer invalidates the loaded
// version. Domain-rule violations abort immediately; they are never retried.
func (s *Service) mutate(portfolioID string, op func(*domain.Portfolio) error) error {
	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		p, err := s.repo.Load(portfolioID)
		if err != nil {
			return err
		}
		if err := op(p); err != nil {
			return err
		}
		err = s.repo.Save(p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
		lastErr = err
		s.log.Debug().
			Str("portfolio_id", portfolioID).
			Int("attempt", attempt+1).
			Msg("Version conflict, retrying operation")
	}
	return fmt.Errorf("portfolio operation failed after %d attempts: %w", maxSaveRetries, lastErr)
}

// appendLedger records a transaction after the aggregate mutation has been
// committed. If the append fails the ledger has diverged from aggregate
// state, which is logged loudly before the error is surfaced so operators
// can reconcile.
func (s *Service) appendLedger(tx domain.Transaction) error {
	if err := s.ledger.Append(tx); err != nil {
		s.log.Error().
			Err(err).
			Str("portfolio_id", tx.PortfolioID).
			Str("type", string(tx.Type)).
			Msg("Ledger append failed after portfolio mutation, ledger is behind aggregate state")
		return fmt.Errorf("failed to record %s transaction: %w", tx.Type, err)
	}
	return nil
}
