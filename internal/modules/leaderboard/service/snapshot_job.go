package service

import "context"

const SnapshotJobName = "leaderboard-snapshot"

// SnapshotJob takes a leaderboard snapshot on a cron schedule.
type SnapshotJob struct {
	service  LeaderboardService
	schedule string
}

func NewSnapshotJob(service LeaderboardService, schedule string) *SnapshotJob {
	return &SnapshotJob{service: service, schedule: schedule}
}

func (j *SnapshotJob) GetName() string     { return SnapshotJobName }
func (j *SnapshotJob) GetSchedule() string { return j.schedule }

func (j *SnapshotJob) Execute(ctx context.Context) error {
	_, err := j.service.SnapshotLeaderboard(ctx)
	return err
}
