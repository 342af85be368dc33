package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"creator-contest/domain/dto"
	"creator-contest/domain/model"
	"creator-contest/domain/repository"
	"creator-contest/domain/scoring"
	"creator-contest/infrastructure/logger"
	"creator-contest/infrastructure/utils"

	"golang.org/x/sync/errgroup"
)

type SyncOptions struct {
	Interval   time.Duration
	ChunkSize  int
	ChunkPause time.Duration
}

type IMetricsSync interface {
	// RunOnce refreshes every approved submission of every active contest and re-ranks them.
	// A call made while another run is in flight returns a report with Skipped set.
	RunOnce(ctx context.Context) (*dto.SyncReport, error)
	// Start runs RunOnce on every interval tick until ctx is done.
	Start(ctx context.Context) error
}

type MetricsSyncScheduler struct {
	contests    repository.IContest
	submissions repository.ISubmission
	vault       ICredentialVault
	platform    repository.IPlatform
	engine      *scoring.Engine
	ranker      IRankingUsecase
	opts        SyncOptions

	running atomic.Bool
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewMetricsSyncScheduler(
	contests repository.IContest,
	submissions repository.ISubmission,
	vault ICredentialVault,
	platform repository.IPlatform,
	engine *scoring.Engine,
	ranker IRankingUsecase,
	opts SyncOptions,
) *MetricsSyncScheduler {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 10
	}
	return &MetricsSyncScheduler{
		contests:    contests,
		submissions: submissions,
		vault:       vault,
		platform:    platform,
		engine:      engine,
		ranker:      ranker,
		opts:        opts,
		now:         utils.GetCurrentTime,
		sleep:       sleepContext,
	}
}

func (s *MetricsSyncScheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()
	logger.GetLogger().WithField("interval", s.opts.Interval.String()).Info("metrics sync scheduler started")

	for {
		select {
		case <-ctx.Done():
			logger.GetLogger().Info("metrics sync scheduler stopped")
			return nil
		case <-ticker.C:
			report, err := s.RunOnce(ctx)
			if err != nil {
				logger.GetLogger().WithField("error", err).Error("metrics sync run aborted")
				continue
			}
			if report.Skipped {
				logger.GetLogger().Warn("previous metrics sync still running, tick skipped")
			}
		}
	}
}

type syncCounters struct {
	scored          atomic.Int64
	skippedNoToken  atomic.Int64
	skippedAPIError atomic.Int64
}

func (s *MetricsSyncScheduler) RunOnce(ctx context.Context) (*dto.SyncReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return &dto.SyncReport{Skipped: true, StartedAt: s.now(), FinishedAt: s.now()}, nil
	}
	defer s.running.Store(false)

	report := &dto.SyncReport{StartedAt: s.now()}
	contests, err := s.contests.ListByStatus(ctx, model.ContestActive)
	if err != nil {
		return nil, &model.PersistenceError{Op: "list active contests", Err: err}
	}

	var counters syncCounters
	for _, contest := range contests {
		report.Contests++
		if err := s.syncContest(ctx, contest, &counters); err != nil {
			var perr *model.PersistenceError
			if errors.As(err, &perr) || ctx.Err() != nil {
				s.fill(report, &counters)
				return report, err
			}
			report.ContestsFailed++
			logger.GetLogger().WithField("contest_id", contest.ID).WithField("error", err).Warn("contest skipped this cycle")
		}
	}

	s.fill(report, &counters)
	logger.GetLogger().
		WithField("contests", report.Contests).
		WithField("scored", report.Scored).
		WithField("skipped_no_token", report.SkippedNoToken).
		WithField("skipped_api_error", report.SkippedAPIError).
		Info("metrics sync finished")
	return report, nil
}

func (s *MetricsSyncScheduler) fill(report *dto.SyncReport, c *syncCounters) {
	report.Scored = int(c.scored.Load())
	report.SkippedNoToken = int(c.skippedNoToken.Load())
	report.SkippedAPIError = int(c.skippedAPIError.Load())
	report.FinishedAt = s.now()
}

func (s *MetricsSyncScheduler) syncContest(ctx context.Context, contest model.Contest, c *syncCounters) error {
	subs, err := s.submissions.ListApproved(ctx, contest.ID)
	if err != nil {
		// Only this contest is skipped; the next one may still be readable.
		return err
	}

	for start := 0; start < len(subs); start += s.opts.ChunkSize {
		end := start + s.opts.ChunkSize
		if end > len(subs) {
			end = len(subs)
		}
		g, gctx := errgroup.WithContext(ctx)
		for _, sub := range subs[start:end] {
			sub := sub
			g.Go(func() error {
				return s.refreshSubmission(gctx, sub, c)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if end < len(subs) && s.opts.ChunkPause > 0 {
			if err := s.sleep(ctx, s.opts.ChunkPause); err != nil {
				return err
			}
		}
	}

	_, err = s.ranker.RankContest(ctx, contest)
	return err
}

// refreshSubmission only returns an error for storage failures; platform problems skip the submission.
func (s *MetricsSyncScheduler) refreshSubmission(ctx context.Context, sub model.Submission, c *syncCounters) error {
	log := logger.GetLogger().WithField("submission_id", sub.ID).WithField("video_id", sub.VideoID)

	token, ok := s.vault.GetValidAccessToken(ctx, sub.OwnerID)
	if !ok {
		c.skippedNoToken.Add(1)
		log.Debug("no usable platform token, keeping previous scores")
		return nil
	}

	videos, err := s.platform.QueryVideos(ctx, token, []string{sub.VideoID})
	if err != nil {
		c.skippedAPIError.Add(1)
		log.WithField("error", err).WithField("transient", model.IsTransientPlatformError(err)).Warn("stats fetch failed")
		return nil
	}
	var stats *model.VideoStats
	for i := range videos {
		if videos[i].ID == sub.VideoID {
			stats = &videos[i].Stats
			break
		}
	}
	if stats == nil {
		c.skippedAPIError.Add(1)
		log.Warn("video not returned by platform")
		return nil
	}

	scoredAt := s.now()
	b := s.engine.Score(*stats, scoredAt)
	if err := s.submissions.UpdateScores(ctx, sub.ID, *stats, b, scoredAt); err != nil {
		return &model.PersistenceError{Op: "update scores", Err: err}
	}
	c.scored.Add(1)
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
