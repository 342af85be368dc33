package usecase

import (
	"context"
	"strings"
	"time"

	"creator-contest/domain/dto"
	"creator-contest/domain/model"
	"creator-contest/domain/repository"
	"creator-contest/domain/scoring"
	"creator-contest/infrastructure/logger"
	"creator-contest/infrastructure/utils"
)

type ISubmissionUsecase interface {
	Submit(ctx context.Context, contestID, ownerID, videoURL string) (*model.Submission, error)
	GetContestLeaderboard(ctx context.Context, contestID string) (*dto.LeaderboardResponse, error)
}

type SubmissionUsecase struct {
	contests    repository.IContest
	submissions repository.ISubmission
	vault       ICredentialVault
	platform    repository.IPlatform
	links       repository.ILinkResolver
	engine      *scoring.Engine
	cache       repository.ILeaderboardCache
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewSubmissionUsecase wires intake and leaderboard reads. cache may be nil; without links short share links are rejected.
func NewSubmissionUsecase(
	contests repository.IContest,
	submissions repository.ISubmission,
	vault ICredentialVault,
	platform repository.IPlatform,
	links repository.ILinkResolver,
	engine *scoring.Engine,
	cache repository.ILeaderboardCache,
	cacheTTL time.Duration,
) ISubmissionUsecase {
	return &SubmissionUsecase{
		contests:    contests,
		submissions: submissions,
		vault:       vault,
		platform:    platform,
		links:       links,
		engine:      engine,
		cache:       cache,
		cacheTTL:    cacheTTL,
		now:         utils.GetCurrentTime,
	}
}

func (u *SubmissionUsecase) Submit(ctx context.Context, contestID, ownerID, videoURL string) (*model.Submission, error) {
	videoURL = strings.TrimSpace(videoURL)
	short := IsShortLink(videoURL)
	videoID, ok := ExtractVideoID(videoURL)
	if !ok && !short {
		return nil, model.ErrInvalidURL
	}

	contest, err := u.contests.GetByID(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if contest.Status != model.ContestActive {
		return nil, model.ErrContestNotOpen
	}

	if short {
		if videoURL, videoID, err = u.resolveShortLink(ctx, videoURL); err != nil {
			return nil, err
		}
	}

	exists, err := u.submissions.Exists(ctx, contestID, ownerID, videoID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrDuplicateSubmission
	}

	stats := u.initialStats(ctx, ownerID, videoID)
	now := u.now()
	sub := &model.Submission{
		ID:           utils.NewID(),
		ContestID:    contestID,
		OwnerID:      ownerID,
		VideoID:      videoID,
		VideoURL:     videoURL,
		Status:       model.SubmissionPending,
		Stats:        stats,
		SubmittedAt:  now,
		LastScoredAt: &now,
	}
	sub.ApplyScores(u.engine.Score(stats, now))

	if err := u.submissions.Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := u.contests.RecomputeAggregates(ctx, contestID); err != nil {
		logger.GetLogger().WithField("contest_id", contestID).WithField("error", err).Warn("failed recomputing contest aggregates")
	}

	logger.GetLogger().
		WithField("contest_id", contestID).
		WithField("submission_id", sub.ID).
		WithField("final_score", sub.FinalScore).
		Info("submission accepted")
	return sub, nil
}

// resolveShortLink turns a short share link into the canonical URL so duplicates are caught by video id.
func (u *SubmissionUsecase) resolveShortLink(ctx context.Context, shortURL string) (string, string, error) {
	if u.links == nil {
		return "", "", model.ErrInvalidURL
	}
	resolved, err := u.links.ResolveShareLink(ctx, shortURL)
	if err != nil {
		logger.GetLogger().WithField("share_link", shortURL).WithField("error", err).Warn("share link resolution failed")
		return "", "", err
	}
	videoID, ok := ExtractVideoID(resolved)
	if !ok {
		return "", "", model.ErrInvalidURL
	}
	return resolved, videoID, nil
}

// initialStats returns zeroed stats whenever the owner has no usable token or the platform call fails.
func (u *SubmissionUsecase) initialStats(ctx context.Context, ownerID, videoID string) model.VideoStats {
	token, ok := u.vault.GetValidAccessToken(ctx, ownerID)
	if !ok {
		return model.VideoStats{}
	}
	videos, err := u.platform.QueryVideos(ctx, token, []string{videoID})
	if err != nil {
		logger.GetLogger().WithField("video_id", videoID).WithField("error", err).Warn("initial stats fetch failed")
		return model.VideoStats{}
	}
	for _, v := range videos {
		if v.ID == videoID {
			return v.Stats
		}
	}
	return model.VideoStats{}
}

func (u *SubmissionUsecase) GetContestLeaderboard(ctx context.Context, contestID string) (*dto.LeaderboardResponse, error) {
	if _, err := u.contests.GetByID(ctx, contestID); err != nil {
		return nil, err
	}

	if u.cache != nil {
		entries, hit, err := u.cache.Get(ctx, contestID)
		if err != nil {
			logger.GetLogger().WithField("contest_id", contestID).WithField("error", err).Warn("leaderboard cache read failed")
		} else if hit {
			return &dto.LeaderboardResponse{ContestID: contestID, Entries: entries, Cached: true}, nil
		}
	}

	entries, err := u.submissions.Leaderboard(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []dto.LeaderboardEntry{}
	}

	if u.cache != nil && u.cacheTTL > 0 {
		if err := u.cache.Set(ctx, contestID, entries, u.cacheTTL); err != nil {
			logger.GetLogger().WithField("contest_id", contestID).WithField("error", err).Warn("leaderboard cache write failed")
		}
	}
	return &dto.LeaderboardResponse{ContestID: contestID, Entries: entries}, nil
}
