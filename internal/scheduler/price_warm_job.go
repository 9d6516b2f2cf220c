package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/alfredorueda/portfolio-service/internal/domain"
)

// TickerSource lists the tickers whose prices are worth keeping warm.
type TickerSource interface {
	ListHeldTickers() ([]string, error)
}

// PriceWarmJob refreshes the quote cache for every ticker with an open
// holding, so interactive reads rarely pay the fetch latency.
type PriceWarmJob struct {
	tickers TickerSource
	prices  domain.PriceProvider
	log     zerolog.Logger
}

// NewPriceWarmJob creates a new price warm job.
func NewPriceWarmJob(tickers TickerSource, prices domain.PriceProvider, log zerolog.Logger) *PriceWarmJob {
	return &PriceWarmJob{
		tickers: tickers,
		prices:  prices,
		log:     log.With().Str("job", "price_warm").Logger(),
	}
}

// Run fetches the current price for each held ticker. A single failing
// ticker does not abort the rest of the sweep.
func (j *PriceWarmJob) Run() error {
	tickers, err := j.tickers.ListHeldTickers()
	if err != nil {
		return err
	}

	var failed int
	for _, ticker := range tickers {
		if _, err := j.prices.CurrentPrice(ticker); err != nil {
			j.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to warm price")
			failed++
		}
	}

	j.log.Info().
		Int("tickers", len(tickers)).
		Int("failed", failed).
		Msg("Price warm sweep completed")
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *PriceWarmJob) Name() string {
	return "price_warm"
}
