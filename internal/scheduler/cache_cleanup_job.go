package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/alfredorueda/portfolio-service/internal/clientdata"
)

// CacheCleanupJob removes expired entries from the quote cache.
type CacheCleanupJob struct {
	repo *clientdata.Repository
	log  zerolog.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job.
func NewCacheCleanupJob(repo *clientdata.Repository, log zerolog.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		repo: repo,
		log:  log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Run executes the cleanup job, removing all expired cache entries.
func (j *CacheCleanupJob) Run() error {
	deleted, err := j.repo.DeleteExpired()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired cache entries")
		return err
	}

	if deleted > 0 {
		j.log.Info().
			Int64("deleted", deleted).
			Msg("Cleaned up expired cache entries")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}
