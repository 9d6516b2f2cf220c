// Package clientdata provides persistent caching for external API client
// responses. Data is stored as JSON blobs with expiration timestamps for
// cache-first behavior.
package clientdata

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository provides cache operations for client data in cache.db.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new client data repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// StorePrice saves a quote for a ticker with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert data.
func (r *Repository) StorePrice(ticker string, data interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal price data: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()

	_, err = r.db.Exec(
		"INSERT OR REPLACE INTO current_prices (ticker, data, expires_at) VALUES (?, ?, ?)",
		ticker, string(jsonData), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store price for %s: %w", ticker, err)
	}
	return nil
}

// GetPrice loads a non-expired quote for a ticker into dest. Returns false
// when there is no fresh entry (a miss is not an error).
func (r *Repository) GetPrice(ticker string, dest interface{}) (bool, error) {
	var jsonData string
	err := r.db.QueryRow(
		"SELECT data FROM current_prices WHERE ticker = ? AND expires_at > ?",
		ticker, time.Now().Unix(),
	).Scan(&jsonData)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cached price for %s: %w", ticker, err)
	}

	if err := json.Unmarshal([]byte(jsonData), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached price for %s: %w", ticker, err)
	}
	return true, nil
}

// DeleteExpired removes every cache row whose expiration has passed and
// returns the number of rows deleted.
func (r *Repository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(
		"DELETE FROM current_prices WHERE expires_at <= ?",
		time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired prices: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return deleted, nil
}
