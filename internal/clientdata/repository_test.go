package clientdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/alfredorueda/portfolio-service/internal/testing"
)

type quote struct {
	Price string `json:"price"`
}

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, cleanup := testhelpers.NewTestDB(t, "cache")
	t.Cleanup(cleanup)
	return NewRepository(db.Conn())
}

func TestStoreAndGetPrice(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.StorePrice("AAPL", quote{Price: "150.25"}, time.Minute))

	var got quote
	found, err := repo.GetPrice("AAPL", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "150.25", got.Price)
}

func TestGetPrice_MissIsNotAnError(t *testing.T) {
	repo := newTestRepo(t)

	var got quote
	found, err := repo.GetPrice("MSFT", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetPrice_ExpiredEntryIsAMiss(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.StorePrice("AAPL", quote{Price: "150.25"}, -time.Minute))

	var got quote
	found, err := repo.GetPrice("AAPL", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStorePrice_UpsertsExistingTicker(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.StorePrice("AAPL", quote{Price: "150.25"}, time.Minute))
	require.NoError(t, repo.StorePrice("AAPL", quote{Price: "151.00"}, time.Minute))

	var got quote
	found, err := repo.GetPrice("AAPL", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "151.00", got.Price)
}

func TestDeleteExpired(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.StorePrice("STALE", quote{Price: "10"}, -time.Minute))
	require.NoError(t, repo.StorePrice("ALSO_STALE", quote{Price: "20"}, -time.Hour))
	require.NoError(t, repo.StorePrice("FRESH", quote{Price: "30"}, time.Hour))

	deleted, err := repo.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var got quote
	found, err := repo.GetPrice("FRESH", &got)
	require.NoError(t, err)
	assert.True(t, found)
}
