package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"creator-contest/domain/model"
)

type CredentialRepository struct{ db *sql.DB }

func NewCredentialRepository(db *sql.DB) *CredentialRepository { return &CredentialRepository{db: db} }

const credentialColumns = `id, owner_id, access_token_enc, refresh_token_enc, expires_at, platform_user_id, handle, display_name, follower_count, is_verified, created_at, updated_at`

func (r *CredentialRepository) GetByOwner(ctx context.Context, ownerID string) (*model.CredentialRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+credentialColumns+` FROM platform_credentials WHERE owner_id=$1`, ownerID)
	rec := &model.CredentialRecord{}
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.EncryptedAccessToken, &rec.EncryptedRefreshToken, &rec.ExpiresAt,
		&rec.PlatformUserID, &rec.Handle, &rec.DisplayName, &rec.FollowerCount, &rec.IsVerified, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *CredentialRepository) Upsert(ctx context.Context, rec *model.CredentialRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	q := `INSERT INTO platform_credentials (owner_id, access_token_enc, refresh_token_enc, expires_at, platform_user_id, handle, display_name, follower_count, is_verified, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		  ON CONFLICT (owner_id) DO UPDATE SET
			access_token_enc=EXCLUDED.access_token_enc,
			refresh_token_enc=EXCLUDED.refresh_token_enc,
			expires_at=EXCLUDED.expires_at,
			platform_user_id=EXCLUDED.platform_user_id,
			handle=EXCLUDED.handle,
			display_name=EXCLUDED.display_name,
			follower_count=EXCLUDED.follower_count,
			is_verified=EXCLUDED.is_verified,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, rec.OwnerID, rec.EncryptedAccessToken, rec.EncryptedRefreshToken, rec.ExpiresAt,
		rec.PlatformUserID, rec.Handle, rec.DisplayName, rec.FollowerCount, rec.IsVerified, rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (r *CredentialRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM platform_credentials WHERE owner_id=$1`, ownerID)
	return err
}
