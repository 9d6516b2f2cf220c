// Package di provides dependency injection wiring for the portfolio service.
package di

import (
	"github.com/rs/zerolog"

	"github.com/alfredorueda/portfolio-service/internal/clientdata"
	"github.com/alfredorueda/portfolio-service/internal/clients/finnhub"
	"github.com/alfredorueda/portfolio-service/internal/config"
	"github.com/alfredorueda/portfolio-service/internal/database"
	"github.com/alfredorueda/portfolio-service/internal/modules/analysis"
	"github.com/alfredorueda/portfolio-service/internal/modules/ledger"
	"github.com/alfredorueda/portfolio-service/internal/modules/portfolio"
	"github.com/alfredorueda/portfolio-service/internal/modules/trading"
)

// Container holds every long-lived component of the application, wired once
// at startup. Handlers and jobs pull their dependencies from here so there
// is a single source of truth for construction order.
type Container struct {
	Cfg *config.Config
	Log zerolog.Logger

	// Databases
	PortfolioDB *database.DB
	LedgerDB    *database.DB
	CacheDB     *database.DB

	// Repositories
	PortfolioRepo  *portfolio.Repository
	LedgerRepo     *ledger.Repository
	ClientDataRepo *clientdata.Repository

	// Clients
	PriceClient *finnhub.Client

	// Services
	PortfolioService *portfolio.Service
	TradingService   *trading.Service
	AnalysisService  *analysis.Service
}
