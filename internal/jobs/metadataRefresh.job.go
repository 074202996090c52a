package jobs

import (
	"context"

	metadataController "cinestream/internal/controllers/metadata"
	"cinestream/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type MetadataRefresher interface {
	RefreshLinked(ctx context.Context, limit int) (metadataController.RefreshSummary, error)
}

// MetadataRefreshJob re-fetches provider metadata for linked media and
// rewrites the rows whose payload changed.
type MetadataRefreshJob struct {
	refresher MetadataRefresher
	batchSize int
	log       logger.Logger
	schedule  services.Schedule
}

func NewMetadataRefreshJob(
	refresher MetadataRefresher,
	batchSize int,
	schedule services.Schedule,
) *MetadataRefreshJob {
	log := logger.New("metadataRefreshJob")
	log.Info("Creating new metadata refresh job", "schedule", schedule, "batchSize", batchSize)

	return &MetadataRefreshJob{
		refresher: refresher,
		batchSize: batchSize,
		log:       log,
		schedule:  schedule,
	}
}

func (j *MetadataRefreshJob) Name() string {
	return "DailyMetadataRefresh"
}

func (j *MetadataRefreshJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	log.Info("Starting scheduled metadata refresh")

	summary, err := j.refresher.RefreshLinked(ctx, j.batchSize)
	if err != nil {
		return log.Err("metadata refresh failed", err)
	}

	log.Info(
		"Scheduled metadata refresh completed",
		"checked", summary.Checked,
		"updated", summary.Updated,
		"unchanged", summary.Unchanged,
		"failed", summary.Failed,
	)
	return nil
}

func (j *MetadataRefreshJob) Schedule() services.Schedule {
	return j.schedule
}
