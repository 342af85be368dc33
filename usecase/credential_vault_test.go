package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"creator-contest/domain/model"
	"creator-contest/infrastructure/cryptox"
	"creator-contest/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memCredentials is a goroutine-safe credential store that hands out copies.
type memCredentials struct {
	mu      sync.Mutex
	recs    map[string]model.CredentialRecord
	upserts int
}

func newMemCredentials() *memCredentials {
	return &memCredentials{recs: map[string]model.CredentialRecord{}}
}

func (m *memCredentials) GetByOwner(_ context.Context, ownerID string) (*model.CredentialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[ownerID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memCredentials) Upsert(_ context.Context, rec *model.CredentialRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.OwnerID] = *rec
	m.upserts++
	return nil
}

func (m *memCredentials) DeleteByOwner(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, ownerID)
	return nil
}

type vaultFixture struct {
	store    *memCredentials
	profiles *MockProfileRepository
	tokens   *MockTokenSource
	platform *MockPlatform
	cipher   *cryptox.TokenCipher
	vault    usecase.ICredentialVault
}

func newVaultFixture(t *testing.T) *vaultFixture {
	t.Helper()
	cipher, err := cryptox.NewTokenCipher("vault-test-secret")
	require.NoError(t, err)
	f := &vaultFixture{
		store:    newMemCredentials(),
		profiles: new(MockProfileRepository),
		tokens:   new(MockTokenSource),
		platform: new(MockPlatform),
		cipher:   cipher,
	}
	f.vault = usecase.NewCredentialVault(f.store, f.profiles, cipher, f.tokens, f.platform, 60*time.Second)
	return f
}

func (f *vaultFixture) seed(t *testing.T, ownerID, access, refresh string, expiresAt time.Time) {
	t.Helper()
	encA, err := f.cipher.Encrypt(access)
	require.NoError(t, err)
	encR, err := f.cipher.Encrypt(refresh)
	require.NoError(t, err)
	f.store.recs[ownerID] = model.CredentialRecord{
		OwnerID:               ownerID,
		EncryptedAccessToken:  encA,
		EncryptedRefreshToken: encR,
		ExpiresAt:             expiresAt,
		Handle:                "creator",
	}
}

func TestCredentialVault_StoreThenGet(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()
	profile := model.PlatformProfile{OpenID: "open-1", Handle: "creator", DisplayName: "Creator", FollowerCount: 42}
	f.profiles.On("MirrorPlatform", ctx, "owner-1", profile).Return(nil)

	err := f.vault.Store(ctx, "owner-1", model.TokenGrant{AccessToken: "acc", RefreshToken: "ref", ExpiresInSeconds: 3600}, profile)
	require.NoError(t, err)

	stored, _ := f.store.GetByOwner(ctx, "owner-1")
	require.NotNil(t, stored)
	assert.NotEqual(t, "acc", stored.EncryptedAccessToken)
	assert.NotEqual(t, "ref", stored.EncryptedRefreshToken)
	assert.Equal(t, "open-1", stored.PlatformUserID)

	tok, ok := f.vault.GetValidAccessToken(ctx, "owner-1")
	assert.True(t, ok)
	assert.Equal(t, "acc", tok)
	f.tokens.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	f.profiles.AssertExpectations(t)
}

func TestCredentialVault_StoreMirrorFailureKeepsCredential(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()
	f.profiles.On("MirrorPlatform", ctx, "owner-1", mock.Anything).Return(errors.New("profile table locked"))

	err := f.vault.Store(ctx, "owner-1", model.TokenGrant{AccessToken: "acc", RefreshToken: "ref", ExpiresInSeconds: 3600}, model.PlatformProfile{})
	require.NoError(t, err)

	_, ok := f.vault.GetValidAccessToken(ctx, "owner-1")
	assert.True(t, ok)
}

func TestCredentialVault_StoreRejectsEmptyAccessToken(t *testing.T) {
	f := newVaultFixture(t)
	err := f.vault.Store(context.Background(), "owner-1", model.TokenGrant{}, model.PlatformProfile{})
	require.Error(t, err)
	assert.Equal(t, 0, f.store.upserts)
}

func TestCredentialVault_MissingRecord(t *testing.T) {
	f := newVaultFixture(t)
	tok, ok := f.vault.GetValidAccessToken(context.Background(), "nobody")
	assert.False(t, ok)
	assert.Empty(t, tok)
}

func TestCredentialVault_RefreshesExpiredToken(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()
	f.seed(t, "owner-1", "old-access", "old-refresh", time.Now().Add(-time.Hour))
	f.tokens.On("Refresh", mock.Anything, "old-refresh").
		Return(&model.TokenGrant{AccessToken: "new-access", ExpiresInSeconds: 86400}, nil).Once()

	tok, ok := f.vault.GetValidAccessToken(ctx, "owner-1")
	require.True(t, ok)
	assert.Equal(t, "new-access", tok)

	rec, _ := f.store.GetByOwner(ctx, "owner-1")
	assert.True(t, rec.ExpiresAt.After(time.Now().Add(23*time.Hour)))
	refresh, err := f.cipher.Decrypt(rec.EncryptedRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "old-refresh", refresh, "refresh token is kept when the platform does not rotate it")

	// the refreshed record is now fresh, so a second call must not refresh again
	tok, ok = f.vault.GetValidAccessToken(ctx, "owner-1")
	require.True(t, ok)
	assert.Equal(t, "new-access", tok)
	f.tokens.AssertExpectations(t)
}

func TestCredentialVault_RefreshesInsideSkewWindow(t *testing.T) {
	f := newVaultFixture(t)
	f.seed(t, "owner-1", "old-access", "old-refresh", time.Now().Add(30*time.Second))
	f.tokens.On("Refresh", mock.Anything, "old-refresh").
		Return(&model.TokenGrant{AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresInSeconds: 3600}, nil).Once()

	tok, ok := f.vault.GetValidAccessToken(context.Background(), "owner-1")
	require.True(t, ok)
	assert.Equal(t, "new-access", tok)

	rec, _ := f.store.GetByOwner(context.Background(), "owner-1")
	refresh, err := f.cipher.Decrypt(rec.EncryptedRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "new-refresh", refresh)
}

func TestCredentialVault_RefreshFailureLeavesRecord(t *testing.T) {
	f := newVaultFixture(t)
	expiresAt := time.Now().Add(-time.Hour)
	f.seed(t, "owner-1", "old-access", "dead-refresh", expiresAt)
	before := f.store.recs["owner-1"]
	f.tokens.On("Refresh", mock.Anything, "dead-refresh").
		Return(nil, &model.PlatformAPIError{Code: "invalid_grant", Message: "refresh token expired", HTTPStatus: 400})

	tok, ok := f.vault.GetValidAccessToken(context.Background(), "owner-1")
	assert.False(t, ok)
	assert.Empty(t, tok)
	assert.Equal(t, before, f.store.recs["owner-1"])
}

func TestCredentialVault_UndecryptableRecordIsNotConnected(t *testing.T) {
	f := newVaultFixture(t)
	f.store.recs["owner-1"] = model.CredentialRecord{
		OwnerID:               "owner-1",
		EncryptedAccessToken:  "sealed-with-another-key",
		EncryptedRefreshToken: "sealed-with-another-key",
		ExpiresAt:             time.Now().Add(time.Hour),
	}

	tok, ok := f.vault.GetValidAccessToken(context.Background(), "owner-1")
	assert.False(t, ok)
	assert.Empty(t, tok)
	f.tokens.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestCredentialVault_UndecryptableRefreshTokenSkipsRefresh(t *testing.T) {
	f := newVaultFixture(t)
	f.store.recs["owner-1"] = model.CredentialRecord{
		OwnerID:               "owner-1",
		EncryptedAccessToken:  "garbage",
		EncryptedRefreshToken: "garbage",
		ExpiresAt:             time.Now().Add(-time.Hour),
	}

	_, ok := f.vault.GetValidAccessToken(context.Background(), "owner-1")
	assert.False(t, ok)
	f.tokens.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestCredentialVault_ConcurrentCallersRefreshOnce(t *testing.T) {
	f := newVaultFixture(t)
	f.seed(t, "owner-1", "old-access", "old-refresh", time.Now().Add(-time.Minute))
	f.tokens.On("Refresh", mock.Anything, "old-refresh").
		Run(func(mock.Arguments) { time.Sleep(50 * time.Millisecond) }).
		Return(&model.TokenGrant{AccessToken: "new-access", ExpiresInSeconds: 3600}, nil).Once()

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	oks := make([]bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], oks[i] = f.vault.GetValidAccessToken(context.Background(), "owner-1")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.True(t, oks[i])
		assert.Equal(t, "new-access", results[i])
	}
	f.tokens.AssertNumberOfCalls(t, "Refresh", 1)
}

func TestCredentialVault_SharedRefreshOutlivesCancelledCaller(t *testing.T) {
	f := newVaultFixture(t)
	f.seed(t, "owner-1", "old-access", "old-refresh", time.Now().Add(-time.Minute))

	started := make(chan struct{})
	release := make(chan struct{})
	var refreshCtxErr error
	f.tokens.On("Refresh", mock.Anything, "old-refresh").
		Run(func(args mock.Arguments) {
			close(started)
			<-release
			refreshCtxErr = args.Get(0).(context.Context).Err()
		}).
		Return(&model.TokenGrant{AccessToken: "new-access", ExpiresInSeconds: 3600}, nil).Once()

	firstCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var first, second string
	var firstOK, secondOK bool

	wg.Add(1)
	go func() {
		defer wg.Done()
		first, firstOK = f.vault.GetValidAccessToken(firstCtx, "owner-1")
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		second, secondOK = f.vault.GetValidAccessToken(context.Background(), "owner-1")
	}()

	cancel()
	close(release)
	wg.Wait()

	require.NoError(t, refreshCtxErr)
	assert.True(t, firstOK)
	assert.Equal(t, "new-access", first)
	assert.True(t, secondOK)
	assert.Equal(t, "new-access", second)
	f.tokens.AssertNumberOfCalls(t, "Refresh", 1)

	rec, _ := f.store.GetByOwner(context.Background(), "owner-1")
	require.NotNil(t, rec)
	assert.True(t, rec.ExpiresAt.After(time.Now()))
}

func TestCredentialVault_DisconnectIgnoresRevokeFailure(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()
	f.seed(t, "owner-1", "acc", "ref", time.Now().Add(time.Hour))
	f.tokens.On("Revoke", ctx, "acc").Return(errors.New("platform unavailable"))
	f.profiles.On("ClearPlatform", ctx, "owner-1").Return(nil)

	require.NoError(t, f.vault.Disconnect(ctx, "owner-1"))

	rec, _ := f.store.GetByOwner(ctx, "owner-1")
	assert.Nil(t, rec)
	f.tokens.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
}

func TestCredentialVault_DisconnectWithoutRecord(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()
	f.profiles.On("ClearPlatform", ctx, "owner-1").Return(nil)

	require.NoError(t, f.vault.Disconnect(ctx, "owner-1"))
	f.tokens.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
}

func TestCredentialVault_Status(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()

	st, err := f.vault.Status(ctx, "owner-1")
	require.NoError(t, err)
	assert.False(t, st.Connected)

	f.seed(t, "owner-1", "acc", "ref", time.Now().Add(time.Hour))
	st, err = f.vault.Status(ctx, "owner-1")
	require.NoError(t, err)
	assert.True(t, st.Connected)
	assert.Equal(t, "creator", st.Handle)
	require.NotNil(t, st.ExpiresAt)
}

func TestCredentialVault_Connect(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()
	grant := &model.TokenGrant{AccessToken: "acc", RefreshToken: "ref", ExpiresInSeconds: 86400, OpenID: "open-1"}
	profile := &model.PlatformProfile{OpenID: "open-1", Handle: "creator", DisplayName: "Creator", IsVerified: true}
	f.tokens.On("Exchange", ctx, "auth-code").Return(grant, nil)
	f.platform.On("FetchUserInfo", ctx, "acc").Return(profile, nil)
	f.profiles.On("MirrorPlatform", ctx, "owner-1", *profile).Return(nil)

	st, err := f.vault.Connect(ctx, "owner-1", "auth-code")
	require.NoError(t, err)
	assert.True(t, st.Connected)
	assert.Equal(t, "creator", st.Handle)
	assert.True(t, st.IsVerified)

	f.tokens.AssertExpectations(t)
	f.platform.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
}

func TestCredentialVault_ConnectExchangeFailure(t *testing.T) {
	f := newVaultFixture(t)
	ctx := context.Background()
	f.tokens.On("Exchange", ctx, "bad-code").Return(nil, &model.PlatformAPIError{Code: "invalid_request", HTTPStatus: 400})

	_, err := f.vault.Connect(ctx, "owner-1", "bad-code")
	require.Error(t, err)
	var pe *model.PlatformAPIError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, 0, f.store.upserts)
}
