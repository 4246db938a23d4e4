package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"anoa.com/proofofgrind/internal/entity"
	grinderRepo "anoa.com/proofofgrind/internal/modules/grinder/repository"
	"anoa.com/proofofgrind/internal/modules/leaderboard/topk"
	notifService "anoa.com/proofofgrind/internal/modules/notification/service"
	"anoa.com/proofofgrind/internal/modules/tier"
	"anoa.com/proofofgrind/pkg/address"
	"anoa.com/proofofgrind/pkg/apperror"
	"go.uber.org/zap"
)

// GrinderService is the progression engine. Every write runs as one atomic
// unit: it either lands completely (record, point logs, leaderboard) or
// fails with a typed error and changes nothing.
type GrinderService interface {
	Register(ctx context.Context, addr string, now time.Time) error
	Grind(ctx context.Context, addr string, now time.Time) error
	Boost(ctx context.Context, booster, target string, now time.Time) error
	CheckIn(ctx context.Context, addr string, now time.Time) error

	GetStats(addr string) (Stats, error)
	IsRegistered(addr string) bool
	CanGrind(addr string, now time.Time) bool
	TimeUntilNextGrind(addr string, now time.Time) time.Duration
	TopGrinders() []string
	Standings() []Standing
	TokenURI(tokenID uint64) (string, error)
	History(ctx context.Context, addr string, limit int) ([]entity.PointLog, error)
	Rules() Rules

	// Restore reloads all records from the repository and rebuilds the
	// leaderboard. Call once before serving.
	Restore(ctx context.Context) error
}

// Stats is a read-time snapshot of one grinder. Tier is derived from
// TotalGrinds on every read.
type Stats struct {
	Address       string
	TokenID       uint64
	TotalGrinds   uint64
	CurrentStreak uint64
	BestStreak    uint64
	LastGrindAt   time.Time
	LastCheckInAt time.Time
	Points        uint64
	RegisteredAt  time.Time
	Tier          tier.Tier
}

// Standing is a leaderboard row.
type Standing struct {
	Position int
	Stats    Stats
}

type grinderService struct {
	repo     grinderRepo.GrinderRepository
	notifier notifService.NotificationService
	logger   *zap.Logger
	rules    Rules

	mu        sync.RWMutex
	records   map[string]entity.GrinderRecord
	tokens    map[uint64]string
	lastToken uint64
	board     *topk.Board
}

func NewGrinderService(repo grinderRepo.GrinderRepository, notifier notifService.NotificationService, rules Rules, logger *zap.Logger) (GrinderService, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &grinderService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		rules:    rules,
		records:  make(map[string]entity.GrinderRecord),
		tokens:   make(map[uint64]string),
		board:    topk.New(rules.BoardSize),
	}, nil
}

// txn stages the records and point logs of one operation.
type txn struct {
	now     time.Time
	records []entity.GrinderRecord
	logs    []entity.PointLog
}

func (t *txn) stage(rec entity.GrinderRecord) {
	for i := range t.records {
		if t.records[i].Address == rec.Address {
			t.records[i] = rec
			return
		}
	}
	t.records = append(t.records, rec)
}

// award adds points to rec and logs the award. Points never decrease.
func (t *txn) award(rec *entity.GrinderRecord, action string, points uint64, counterparty string) {
	rec.Points += points
	l := entity.PointLog{
		Address:    rec.Address,
		ActionType: action,
		Points:     points,
		CreatedAt:  t.now,
	}
	if counterparty != "" {
		cp := counterparty
		l.Counterparty = &cp
	}
	t.logs = append(t.logs, l)
}

// outcome carries what to publish once the lock is released.
type outcome struct {
	tierUp *tierChange
	top    []string // set only when the board changed
}

type tierChange struct {
	address     string
	from, to    tier.Tier
	totalGrinds uint64
}

// commit persists t and, only on success, applies it to memory and the
// board. The board update always follows the points mutation it reports.
// Callers hold s.mu.
func (s *grinderService) commit(ctx context.Context, t *txn) (boardChanged bool, err error) {
	if err := s.repo.Commit(ctx, grinderRepo.Changeset{Records: t.records, Logs: t.logs}); err != nil {
		return false, fmt.Errorf("failed to commit grinder changes: %w", err)
	}
	for _, rec := range t.records {
		s.records[rec.Address] = rec
		if s.board.Update(rec.Address, rec.Points, rec.TokenID) {
			boardChanged = true
		}
	}
	return boardChanged, nil
}

// lookup returns a copy of the record for addr. Callers hold s.mu.
func (s *grinderService) lookup(addr string) (entity.GrinderRecord, error) {
	rec, ok := s.records[addr]
	if !ok {
		return entity.GrinderRecord{}, fmt.Errorf("%w: %s", apperror.ErrNotRegistered, addr)
	}
	return rec, nil
}

func (s *grinderService) Register(ctx context.Context, raw string, now time.Time) error {
	addr, err := address.Normalize(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	out, err := s.registerLocked(ctx, addr, now)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Info("grinder registered", zap.String("address", addr))
	s.publish(ctx, out)
	return nil
}

func (s *grinderService) registerLocked(ctx context.Context, addr string, now time.Time) (outcome, error) {
	if _, ok := s.records[addr]; ok {
		return outcome{}, fmt.Errorf("%w: %s", apperror.ErrAlreadyRegistered, addr)
	}

	t := &txn{now: now}
	t.stage(entity.GrinderRecord{
		Address:      addr,
		TokenID:      s.lastToken + 1,
		RegisteredAt: now,
	})
	changed, err := s.commit(ctx, t)
	if err != nil {
		return outcome{}, err
	}
	s.lastToken++
	s.tokens[s.lastToken] = addr

	return s.outcomeFor(nil, changed), nil
}

func (s *grinderService) Grind(ctx context.Context, raw string, now time.Time) error {
	addr, err := address.Normalize(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	out, err := s.grindLocked(ctx, addr, now)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(ctx, out)
	return nil
}

func (s *grinderService) grindLocked(ctx context.Context, addr string, now time.Time) (outcome, error) {
	rec, err := s.lookup(addr)
	if err != nil {
		return outcome{}, err
	}
	if !canAct(rec.LastGrindAt, now, s.rules.CooldownInterval) {
		wait := timeUntil(rec.LastGrindAt, now, s.rules.CooldownInterval)
		return outcome{}, fmt.Errorf("%w: next grind in %s", apperror.ErrCooldownActive, wait.Round(time.Second))
	}

	before := tier.Of(rec.TotalGrinds)

	rec.CurrentStreak = nextStreak(rec.CurrentStreak, rec.LastGrindAt, now, s.rules.StreakWindow)
	if rec.CurrentStreak > rec.BestStreak {
		rec.BestStreak = rec.CurrentStreak
	}
	rec.TotalGrinds++
	rec.LastGrindAt = now

	t := &txn{now: now}
	t.award(&rec, entity.ActionGrind, s.rules.GrindPoints, "")
	t.stage(rec)

	changed, err := s.commit(ctx, t)
	if err != nil {
		return outcome{}, err
	}

	var tc *tierChange
	if after := tier.Of(rec.TotalGrinds); after != before {
		tc = &tierChange{address: addr, from: before, to: after, totalGrinds: rec.TotalGrinds}
	}
	return s.outcomeFor(tc, changed), nil
}

func (s *grinderService) Boost(ctx context.Context, rawBooster, rawTarget string, now time.Time) error {
	booster, err := address.Normalize(rawBooster)
	if err != nil {
		return err
	}
	target, err := address.Normalize(rawTarget)
	if err != nil {
		return err
	}
	if booster == target {
		return fmt.Errorf("%w: %s", apperror.ErrSelfBoost, booster)
	}

	s.mu.Lock()
	out, err := s.boostLocked(ctx, booster, target, now)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(ctx, out)
	return nil
}

func (s *grinderService) boostLocked(ctx context.Context, booster, target string, now time.Time) (outcome, error) {
	boosterRec, err := s.lookup(booster)
	if err != nil {
		return outcome{}, err
	}
	targetRec, err := s.lookup(target)
	if err != nil {
		return outcome{}, err
	}

	// Target first, then booster.
	t := &txn{now: now}
	t.award(&targetRec, entity.ActionBoostReceived, s.rules.BoostReceivedPoints, booster)
	t.award(&boosterRec, entity.ActionBoostGiven, s.rules.BoostGivenPoints, target)
	t.stage(targetRec)
	t.stage(boosterRec)

	changed, err := s.commit(ctx, t)
	if err != nil {
		return outcome{}, err
	}
	return s.outcomeFor(nil, changed), nil
}

func (s *grinderService) CheckIn(ctx context.Context, raw string, now time.Time) error {
	addr, err := address.Normalize(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	out, err := s.checkInLocked(ctx, addr, now)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(ctx, out)
	return nil
}

func (s *grinderService) checkInLocked(ctx context.Context, addr string, now time.Time) (outcome, error) {
	rec, err := s.lookup(addr)
	if err != nil {
		return outcome{}, err
	}

	if period := s.rules.CheckInPeriod; period > 0 && !rec.LastCheckInAt.IsZero() {
		if now.Before(rec.LastCheckInAt) || samePeriod(rec.LastCheckInAt, now, period) {
			return outcome{}, fmt.Errorf("%w: %s", apperror.ErrCheckInTooSoon, addr)
		}
	}

	rec.LastCheckInAt = now
	t := &txn{now: now}
	t.award(&rec, entity.ActionCheckIn, s.rules.CheckInPoints, "")
	t.stage(rec)

	changed, err := s.commit(ctx, t)
	if err != nil {
		return outcome{}, err
	}
	return s.outcomeFor(nil, changed), nil
}

// outcomeFor snapshots the board when it changed. Callers hold s.mu.
func (s *grinderService) outcomeFor(tc *tierChange, boardChanged bool) outcome {
	out := outcome{tierUp: tc}
	if boardChanged {
		out.top = s.board.Addresses()
	}
	return out
}

// publish is best-effort; the operation has already committed.
func (s *grinderService) publish(ctx context.Context, out outcome) {
	if s.notifier == nil {
		return
	}
	if tc := out.tierUp; tc != nil {
		if err := s.notifier.PublishTierUp(ctx, tc.address, tc.from, tc.to, tc.totalGrinds); err != nil {
			s.logger.Warn("failed to publish tier up", zap.String("address", tc.address), zap.Error(err))
		}
	}
	if out.top != nil {
		if err := s.notifier.PublishLeaderboard(ctx, out.top); err != nil {
			s.logger.Warn("failed to publish leaderboard", zap.Error(err))
		}
	}
}

func statsOf(rec entity.GrinderRecord) Stats {
	return Stats{
		Address:       rec.Address,
		TokenID:       rec.TokenID,
		TotalGrinds:   rec.TotalGrinds,
		CurrentStreak: rec.CurrentStreak,
		BestStreak:    rec.BestStreak,
		LastGrindAt:   rec.LastGrindAt,
		LastCheckInAt: rec.LastCheckInAt,
		Points:        rec.Points,
		RegisteredAt:  rec.RegisteredAt,
		Tier:          tier.Of(rec.TotalGrinds),
	}
}

func (s *grinderService) GetStats(raw string) (Stats, error) {
	addr, err := address.Normalize(raw)
	if err != nil {
		return Stats{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.lookup(addr)
	if err != nil {
		return Stats{}, err
	}
	return statsOf(rec), nil
}

func (s *grinderService) IsRegistered(raw string) bool {
	addr, err := address.Normalize(raw)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[addr]
	return ok
}

// CanGrind is false for unregistered addresses, since their grind would fail.
func (s *grinderService) CanGrind(raw string, now time.Time) bool {
	addr, err := address.Normalize(raw)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[addr]
	if !ok {
		return false
	}
	return canAct(rec.LastGrindAt, now, s.rules.CooldownInterval)
}

func (s *grinderService) TimeUntilNextGrind(raw string, now time.Time) time.Duration {
	addr, err := address.Normalize(raw)
	if err != nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[addr]
	if !ok {
		return 0
	}
	return timeUntil(rec.LastGrindAt, now, s.rules.CooldownInterval)
}

func (s *grinderService) TopGrinders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Addresses()
}

func (s *grinderService) Standings() []Standing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.board.Entries()
	standings := make([]Standing, 0, len(entries))
	for i, e := range entries {
		standings = append(standings, Standing{
			Position: i + 1, // 1-based position
			Stats:    statsOf(s.records[e.Address]),
		})
	}
	return standings
}

func (s *grinderService) History(ctx context.Context, raw string, limit int) ([]entity.PointLog, error) {
	addr, err := address.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if !s.IsRegistered(addr) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNotRegistered, addr)
	}
	return s.repo.GetPointLogs(ctx, addr, limit)
}

func (s *grinderService) Rules() Rules {
	return s.rules
}

func (s *grinderService) Restore(ctx context.Context) error {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load grinders: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]entity.GrinderRecord, len(records))
	s.tokens = make(map[uint64]string, len(records))
	s.lastToken = 0
	s.board = topk.New(s.rules.BoardSize)

	for _, rec := range records {
		s.records[rec.Address] = rec
		s.tokens[rec.TokenID] = rec.Address
		if rec.TokenID > s.lastToken {
			s.lastToken = rec.TokenID
		}
		s.board.Update(rec.Address, rec.Points, rec.TokenID)
	}

	s.logger.Info("grinders restored",
		zap.Int("count", len(records)),
		zap.Int("leaderboard_size", s.board.Len()),
	)
	return nil
}
