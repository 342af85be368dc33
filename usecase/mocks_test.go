package usecase_test

import (
	"context"
	"time"

	"creator-contest/domain/dto"
	"creator-contest/domain/model"

	"github.com/stretchr/testify/mock"
)

type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) GetByOwner(ctx context.Context, ownerID string) (*model.CredentialRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CredentialRecord), args.Error(1)
}

func (m *MockCredentialRepository) Upsert(ctx context.Context, rec *model.CredentialRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockCredentialRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) MirrorPlatform(ctx context.Context, ownerID string, p model.PlatformProfile) error {
	args := m.Called(ctx, ownerID, p)
	return args.Error(0)
}

func (m *MockProfileRepository) ClearPlatform(ctx context.Context, ownerID string) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

type MockTokenSource struct {
	mock.Mock
}

func (m *MockTokenSource) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockTokenSource) Exchange(ctx context.Context, code string) (*model.TokenGrant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenGrant), args.Error(1)
}

func (m *MockTokenSource) Refresh(ctx context.Context, refreshToken string) (*model.TokenGrant, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenGrant), args.Error(1)
}

func (m *MockTokenSource) Revoke(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) FetchUserInfo(ctx context.Context, accessToken string) (*model.PlatformProfile, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlatformProfile), args.Error(1)
}

func (m *MockPlatform) QueryVideos(ctx context.Context, accessToken string, videoIDs []string) ([]model.PlatformVideo, error) {
	args := m.Called(ctx, accessToken, videoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PlatformVideo), args.Error(1)
}

func (m *MockPlatform) ListVideos(ctx context.Context, accessToken string, cursor int64, maxCount int) (*model.VideoPage, error) {
	args := m.Called(ctx, accessToken, cursor, maxCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoPage), args.Error(1)
}

type MockLinkResolver struct {
	mock.Mock
}

func (m *MockLinkResolver) ResolveShareLink(ctx context.Context, rawURL string) (string, error) {
	args := m.Called(ctx, rawURL)
	return args.String(0), args.Error(1)
}

type MockContestRepository struct {
	mock.Mock
}

func (m *MockContestRepository) GetByID(ctx context.Context, id string) (*model.Contest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contest), args.Error(1)
}

func (m *MockContestRepository) ListByStatus(ctx context.Context, status model.ContestStatus) ([]model.Contest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contest), args.Error(1)
}

func (m *MockContestRepository) RecomputeAggregates(ctx context.Context, contestID string) error {
	args := m.Called(ctx, contestID)
	return args.Error(0)
}

type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Exists(ctx context.Context, contestID, ownerID, videoID string) (bool, error) {
	args := m.Called(ctx, contestID, ownerID, videoID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSubmissionRepository) ListApproved(ctx context.Context, contestID string) ([]model.Submission, error) {
	args := m.Called(ctx, contestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) UpdateScores(ctx context.Context, id string, stats model.VideoStats, b model.ScoreBreakdown, scoredAt time.Time) error {
	args := m.Called(ctx, id, stats, b, scoredAt)
	return args.Error(0)
}

func (m *MockSubmissionRepository) ApplyRanking(ctx context.Context, contestID string, ranks []model.RankAssignment) error {
	args := m.Called(ctx, contestID, ranks)
	return args.Error(0)
}

func (m *MockSubmissionRepository) Leaderboard(ctx context.Context, contestID string) ([]dto.LeaderboardEntry, error) {
	args := m.Called(ctx, contestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.LeaderboardEntry), args.Error(1)
}

type MockLeaderboardCache struct {
	mock.Mock
}

func (m *MockLeaderboardCache) Get(ctx context.Context, contestID string) ([]dto.LeaderboardEntry, bool, error) {
	args := m.Called(ctx, contestID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]dto.LeaderboardEntry), args.Bool(1), args.Error(2)
}

func (m *MockLeaderboardCache) Set(ctx context.Context, contestID string, entries []dto.LeaderboardEntry, ttl time.Duration) error {
	args := m.Called(ctx, contestID, entries, ttl)
	return args.Error(0)
}

func (m *MockLeaderboardCache) Invalidate(ctx context.Context, contestID string) error {
	args := m.Called(ctx, contestID)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishLeaderboard(ctx context.Context, evt model.LeaderboardEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastLeaderboard(evt model.LeaderboardEvent) {
	m.Called(evt)
}

type MockVault struct {
	mock.Mock
}

func (m *MockVault) Store(ctx context.Context, ownerID string, grant model.TokenGrant, profile model.PlatformProfile) error {
	args := m.Called(ctx, ownerID, grant, profile)
	return args.Error(0)
}

func (m *MockVault) GetValidAccessToken(ctx context.Context, ownerID string) (string, bool) {
	args := m.Called(ctx, ownerID)
	return args.String(0), args.Bool(1)
}

func (m *MockVault) Disconnect(ctx context.Context, ownerID string) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

func (m *MockVault) Connect(ctx context.Context, ownerID, code string) (*model.ConnectionStatus, error) {
	args := m.Called(ctx, ownerID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConnectionStatus), args.Error(1)
}

func (m *MockVault) Status(ctx context.Context, ownerID string) (*model.ConnectionStatus, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConnectionStatus), args.Error(1)
}

type MockRanker struct {
	mock.Mock
}

func (m *MockRanker) RankContest(ctx context.Context, contest model.Contest) (*model.LeaderboardEvent, error) {
	args := m.Called(ctx, contest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LeaderboardEvent), args.Error(1)
}
