package di

import (
	"github.com/alfredorueda/portfolio-service/internal/clientdata"
	"github.com/alfredorueda/portfolio-service/internal/modules/ledger"
	"github.com/alfredorueda/portfolio-service/internal/modules/portfolio"
)

// initRepositories wires the repositories onto their databases.
func (c *Container) initRepositories() {
	c.PortfolioRepo = portfolio.NewRepository(c.PortfolioDB.Conn(), c.Log)
	c.LedgerRepo = ledger.NewRepository(c.LedgerDB.Conn(), c.Log)
	c.ClientDataRepo = clientdata.NewRepository(c.CacheDB.Conn())
}
