package di

import (
	"github.com/alfredorueda/portfolio-service/internal/clients/finnhub"
	"github.com/alfredorueda/portfolio-service/internal/modules/analysis"
	"github.com/alfredorueda/portfolio-service/internal/modules/portfolio"
	"github.com/alfredorueda/portfolio-service/internal/modules/trading"
)

// initServices wires the price client and the module services. Repositories
// must be initialized first.
func (c *Container) initServices() {
	c.PriceClient = finnhub.New(finnhub.Config{
		APIKey:   c.Cfg.FinnhubAPIKey,
		BaseURL:  c.Cfg.FinnhubBaseURL,
		TestMode: c.Cfg.PriceTestMode,
		CacheTTL: c.Cfg.PriceCacheTTL,
	}, c.ClientDataRepo, c.Log)

	c.PortfolioService = portfolio.NewService(c.PortfolioRepo, c.LedgerRepo, c.Log)
	c.TradingService = trading.NewService(c.PortfolioRepo, c.LedgerRepo, c.PriceClient, c.Log)
	c.AnalysisService = analysis.NewService(c.PortfolioRepo, c.LedgerRepo, c.PriceClient, c.Log)
}
