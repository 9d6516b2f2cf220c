package di

import (
	"github.com/rs/zerolog"

	"github.com/alfredorueda/portfolio-service/internal/config"
)

// New builds the full container: databases, repositories, clients and
// services, in that order.
func New(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	c := &Container{
		Cfg: cfg,
		Log: log,
	}

	if err := c.initDatabases(); err != nil {
		return nil, err
	}
	c.initRepositories()
	c.initServices()

	log.Info().Msg("Dependency container initialized")
	return c, nil
}

// Close releases every resource held by the container.
func (c *Container) Close() {
	c.closeDatabases()
}
