package portfolio

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredorueda/portfolio-service/internal/domain"
	testhelpers "github.com/alfredorueda/portfolio-service/internal/testing"
)

type serviceFixture struct {
	repo    *Repository
	ledger  *testhelpers.MockLedger
	service *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db, cleanup := testhelpers.NewTestDB(t, "portfolio")
	t.Cleanup(cleanup)

	repo := NewRepository(db.Conn(), zerolog.Nop())
	ledger := testhelpers.NewMockLedger()
	return &serviceFixture{
		repo:    repo,
		ledger:  ledger,
		service: NewService(repo, ledger, zerolog.Nop()),
	}
}

func TestService_Create(t *testing.T) {
	f := newServiceFixture(t)

	p, err := f.service.Create("Alice")
	require.NoError(t, err)
	assert.True(t, p.Balance().IsZero())

	loaded, err := f.service.Get(p.ID())
	require.NoError(t, err)
	assert.Equal(t, "Alice", loaded.OwnerName())
}

func TestService_Get_NotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Get("missing")
	assert.True(t, domain.IsCode(err, domain.CodePortfolioNotFound))
}

func TestService_DepositRecordsLedgerEntry(t *testing.T) {
	f := newServiceFixture(t)
	p, err := f.service.Create("Alice")
	require.NoError(t, err)

	require.NoError(t, f.service.Deposit(p.ID(), dec("1500.25")))

	loaded, err := f.service.Get(p.ID())
	require.NoError(t, err)
	assert.True(t, loaded.Balance().Equal(dec("1500.25")))

	txs := f.ledger.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionDeposit, txs[0].Type)
	assert.True(t, txs[0].TotalAmount.Equal(dec("1500.25")))
}

func TestService_WithdrawRecordsLedgerEntry(t *testing.T) {
	f := newServiceFixture(t)
	p, err := f.service.Create("Alice")
	require.NoError(t, err)
	require.NoError(t, f.service.Deposit(p.ID(), dec("1000")))

	require.NoError(t, f.service.Withdraw(p.ID(), dec("400")))

	loaded, err := f.service.Get(p.ID())
	require.NoError(t, err)
	assert.True(t, loaded.Balance().Equal(dec("600")))

	txs := f.ledger.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, domain.TransactionWithdrawal, txs[1].Type)
}

func TestService_Withdraw_InsufficientFunds(t *testing.T) {
	f := newServiceFixture(t)
	p, err := f.service.Create("Alice")
	require.NoError(t, err)
	require.NoError(t, f.service.Deposit(p.ID(), dec("100")))

	err = f.service.Withdraw(p.ID(), dec("100.01"))
	assert.True(t, domain.IsCode(err, domain.CodeInsufficientFunds))

	// A rejected withdrawal leaves no ledger trace.
	assert.Len(t, f.ledger.Transactions(), 1)

	loaded, err := f.service.Get(p.ID())
	require.NoError(t, err)
	assert.True(t, loaded.Balance().Equal(dec("100")))
}

func TestService_Deposit_InvalidAmount(t *testing.T) {
	f := newServiceFixture(t)
	p, err := f.service.Create("Alice")
	require.NoError(t, err)

	err = f.service.Deposit(p.ID(), dec("-5"))
	assert.True(t, domain.IsCode(err, domain.CodeInvalidAmount))
	assert.Empty(t, f.ledger.Transactions())
}

func TestService_Deposit_UnknownPortfolio(t *testing.T) {
	f := newServiceFixture(t)

	err := f.service.Deposit("missing", dec("100"))
	assert.True(t, domain.IsCode(err, domain.CodePortfolioNotFound))
}

func TestService_LedgerAppendFailureSurfaces(t *testing.T) {
	f := newServiceFixture(t)
	p, err := f.service.Create("Alice")
	require.NoError(t, err)

	f.ledger.SetError(assert.AnError)
	err = f.service.Deposit(p.ID(), dec("100"))
	require.Error(t, err)

	// The aggregate mutation already committed; only the ledger is behind.
	loaded, err := f.service.Get(p.ID())
	require.NoError(t, err)
	assert.True(t, loaded.Balance().Equal(dec("100")))
}
