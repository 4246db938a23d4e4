package service

import (
	"context"
	"fmt"
	"time"

	"anoa.com/proofofgrind/internal/entity"
	grinderService "anoa.com/proofofgrind/internal/modules/grinder/service"
	leaderboardDto "anoa.com/proofofgrind/internal/modules/leaderboard/dto"
	leaderboardRepo "anoa.com/proofofgrind/internal/modules/leaderboard/repository"
	"anoa.com/proofofgrind/internal/modules/tier"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeaderboardService is the read side of the top-K board kept by the
// grinder engine, plus its periodic persistence.
type LeaderboardService interface {
	// GetLeaderboard returns at most limit rows, clamped to [1, K].
	GetLeaderboard(limit int) []leaderboardDto.LeaderboardEntry
	TopGrinders() []string
	SnapshotLeaderboard(ctx context.Context) (*leaderboardDto.SnapshotResponse, error)
	GetLatestSnapshot(ctx context.Context) (*leaderboardDto.SnapshotResponse, error)
}

type leaderboardService struct {
	grinders grinderService.GrinderService
	repo     leaderboardRepo.LeaderboardRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewLeaderboardService(grinders grinderService.GrinderService, repo leaderboardRepo.LeaderboardRepository, logger *zap.Logger) LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &leaderboardService{
		grinders: grinders,
		repo:     repo,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *leaderboardService) GetLeaderboard(limit int) []leaderboardDto.LeaderboardEntry {
	k := s.grinders.Rules().BoardSize
	if limit < 1 || limit > k {
		limit = k
	}

	standings := s.grinders.Standings()
	if len(standings) > limit {
		standings = standings[:limit]
	}

	entries := make([]leaderboardDto.LeaderboardEntry, 0, len(standings))
	for _, st := range standings {
		entries = append(entries, leaderboardDto.LeaderboardEntry{
			Position:      st.Position,
			Address:       st.Stats.Address,
			TokenID:       st.Stats.TokenID,
			Points:        st.Stats.Points,
			TotalGrinds:   st.Stats.TotalGrinds,
			CurrentStreak: st.Stats.CurrentStreak,
			TierStatus:    tier.StatusOf(st.Stats.TotalGrinds),
		})
	}
	return entries
}

func (s *leaderboardService) TopGrinders() []string {
	return s.grinders.TopGrinders()
}

// SnapshotLeaderboard persists the current board under a fresh snapshot id.
// An empty board is not persisted.
func (s *leaderboardService) SnapshotLeaderboard(ctx context.Context) (*leaderboardDto.SnapshotResponse, error) {
	standings := s.grinders.Standings()
	snap := &leaderboardDto.SnapshotResponse{
		SnapshotID: uuid.New(),
		TakenAt:    s.now().UTC(),
		Entries:    make([]leaderboardDto.SnapshotEntry, 0, len(standings)),
	}

	rows := make([]entity.LeaderboardSnapshot, 0, len(standings))
	for _, st := range standings {
		rows = append(rows, entity.LeaderboardSnapshot{
			SnapshotID: snap.SnapshotID,
			Position:   st.Position,
			Address:    st.Stats.Address,
			Points:     st.Stats.Points,
			TakenAt:    snap.TakenAt,
		})
		snap.Entries = append(snap.Entries, leaderboardDto.SnapshotEntry{
			Position: st.Position,
			Address:  st.Stats.Address,
			Points:   st.Stats.Points,
		})
	}

	if err := s.repo.SaveSnapshot(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to save leaderboard snapshot: %w", err)
	}

	s.logger.Info("leaderboard snapshot taken",
		zap.String("snapshot_id", snap.SnapshotID.String()),
		zap.Int("entries", len(rows)),
	)
	return snap, nil
}

func (s *leaderboardService) GetLatestSnapshot(ctx context.Context) (*leaderboardDto.SnapshotResponse, error) {
	rows, err := s.repo.GetLatestSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard snapshot: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	snap := &leaderboardDto.SnapshotResponse{
		SnapshotID: rows[0].SnapshotID,
		TakenAt:    rows[0].TakenAt,
		Entries:    make([]leaderboardDto.SnapshotEntry, 0, len(rows)),
	}
	for _, row := range rows {
		snap.Entries = append(snap.Entries, leaderboardDto.SnapshotEntry{
			Position: row.Position,
			Address:  row.Address,
			Points:   row.Points,
		})
	}
	return snap, nil
}
