package jobs

import (
	"cinestream/config"
	"cinestream/internal/controllers"
	metadataController "cinestream/internal/controllers/metadata"
	"cinestream/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	Daily  = services.Daily
	Hourly = services.Hourly
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	controllers controllers.Controllers,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	if config.TMDBAPIKey == "" {
		log.Warn("TMDB_API_KEY not set, skipping metadata refresh job")
		return nil
	}

	metadataRefreshJob := NewMetadataRefreshJob(
		controllers.Metadata,
		metadataController.RefreshBatchSize,
		Daily,
	)
	if err := schedulerService.AddJob(metadataRefreshJob); err != nil {
		return log.Err("failed to register metadata refresh job", err)
	}
	log.Info("Registered metadata refresh job", "schedule", "daily")

	return nil
}
