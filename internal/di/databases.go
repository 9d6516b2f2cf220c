package di

import (
	"fmt"
	"path/filepath"

	"github.com/alfredorueda/portfolio-service/internal/database"
)

// initDatabases opens the three SQLite databases and applies their schemas.
// The ledger gets the durability-first profile because it is the system's
// audit trail; the cache gets the throwaway profile.
func (c *Container) initDatabases() error {
	specs := []struct {
		name    string
		profile database.DatabaseProfile
		target  **database.DB
	}{
		{"portfolio", database.ProfileStandard, &c.PortfolioDB},
		{"ledger", database.ProfileLedger, &c.LedgerDB},
		{"cache", database.ProfileCache, &c.CacheDB},
	}

	for _, spec := range specs {
		db, err := database.New(database.Config{
			Path:    filepath.Join(c.Cfg.DataDir, spec.name+".db"),
			Profile: spec.profile,
			Name:    spec.name,
		})
		if err != nil {
			return fmt.Errorf("failed to open %s database: %w", spec.name, err)
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to migrate %s database: %w", spec.name, err)
		}
		*spec.target = db
		c.Log.Info().Str("database", spec.name).Str("path", db.Path()).Msg("Database ready")
	}

	return nil
}

// closeDatabases closes every open database, logging failures instead of
// returning them so shutdown always proceeds.
func (c *Container) closeDatabases() {
	for _, db := range []*database.DB{c.CacheDB, c.LedgerDB, c.PortfolioDB} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil {
			c.Log.Error().Err(err).Str("database", db.Name()).Msg("Failed to close database")
		}
	}
}
