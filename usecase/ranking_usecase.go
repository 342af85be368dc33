package usecase

import (
	"context"
	"time"

	"creator-contest/domain/model"
	"creator-contest/domain/ranking"
	"creator-contest/domain/repository"
	"creator-contest/infrastructure/logger"
	"creator-contest/infrastructure/utils"
)

const LeaderboardUpdatedEvent = "leaderboard.updated"

type IRankingUsecase interface {
	// RankContest re-ranks the contest's approved submissions and persists the result.
	// Storage failures come back as *model.PersistenceError.
	RankContest(ctx context.Context, contest model.Contest) (*model.LeaderboardEvent, error)
}

type rankingUsecase struct {
	contests           repository.IContest
	submissions        repository.ISubmission
	cache              repository.ILeaderboardCache
	publishers         []repository.IEventPublisher
	broadcaster        repository.ILeaderboardBroadcaster
	defaultWinnerCount int
	now                func() time.Time
}

// NewRankingUsecase builds the ranking step. cache, broadcaster and publishers are optional.
func NewRankingUsecase(
	contests repository.IContest,
	submissions repository.ISubmission,
	cache repository.ILeaderboardCache,
	broadcaster repository.ILeaderboardBroadcaster,
	defaultWinnerCount int,
	publishers ...repository.IEventPublisher,
) IRankingUsecase {
	return &rankingUsecase{
		contests:           contests,
		submissions:        submissions,
		cache:              cache,
		publishers:         publishers,
		broadcaster:        broadcaster,
		defaultWinnerCount: defaultWinnerCount,
		now:                utils.GetCurrentTime,
	}
}

func (u *rankingUsecase) RankContest(ctx context.Context, contest model.Contest) (*model.LeaderboardEvent, error) {
	subs, err := u.submissions.ListApproved(ctx, contest.ID)
	if err != nil {
		return nil, &model.PersistenceError{Op: "list approved submissions", Err: err}
	}

	winnerCount := contest.WinnerCount
	if winnerCount <= 0 {
		winnerCount = u.defaultWinnerCount
	}
	ranks := ranking.Assign(subs, winnerCount)
	if err := u.submissions.ApplyRanking(ctx, contest.ID, ranks); err != nil {
		return nil, &model.PersistenceError{Op: "apply ranking", Err: err}
	}
	if err := u.contests.RecomputeAggregates(ctx, contest.ID); err != nil {
		return nil, &model.PersistenceError{Op: "recompute aggregates", Err: err}
	}

	if u.cache != nil {
		if err := u.cache.Invalidate(ctx, contest.ID); err != nil {
			logger.GetLogger().WithField("contest_id", contest.ID).WithField("error", err).Warn("leaderboard cache invalidation failed")
		}
	}

	evt := u.buildEvent(contest.ID, subs, ranks)
	u.notify(ctx, evt)
	return &evt, nil
}

func (u *rankingUsecase) buildEvent(contestID string, subs []model.Submission, ranks []model.RankAssignment) model.LeaderboardEvent {
	byID := make(map[string]model.RankAssignment, len(ranks))
	for _, r := range ranks {
		byID[r.SubmissionID] = r
	}
	entries := make([]model.Submission, 0, len(subs))
	for _, s := range ranking.Order(subs) {
		r := byID[s.ID]
		pos := r.RankPosition
		s.RankPosition = &pos
		s.IsWinner = r.IsWinner
		entries = append(entries, s)
	}
	return model.LeaderboardEvent{
		Type:      LeaderboardUpdatedEvent,
		ContestID: contestID,
		RankedAt:  u.now(),
		Winners:   ranking.Winners(ranks),
		Entries:   entries,
	}
}

// notify is best-effort; a broker outage never fails a ranking pass.
func (u *rankingUsecase) notify(ctx context.Context, evt model.LeaderboardEvent) {
	for _, p := range u.publishers {
		if p == nil {
			continue
		}
		if err := p.PublishLeaderboard(ctx, evt); err != nil {
			logger.GetLogger().WithField("contest_id", evt.ContestID).WithField("error", err).Warn("leaderboard event publish failed")
		}
	}
	if u.broadcaster != nil {
		u.broadcaster.BroadcastLeaderboard(evt)
	}
}
