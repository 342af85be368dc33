package persistence

import (
	"context"
	"database/sql"
	"time"

	"creator-contest/domain/model"
)

type ProfileRepository struct{ db *sql.DB }

func NewProfileRepository(db *sql.DB) *ProfileRepository { return &ProfileRepository{db: db} }

// MirrorPlatform keeps a display name the owner already chose.
func (r *ProfileRepository) MirrorPlatform(ctx context.Context, ownerID string, p model.PlatformProfile) error {
	q := `INSERT INTO profiles (id, display_name, platform_handle, platform_name, platform_verified, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$6)
		  ON CONFLICT (id) DO UPDATE SET
			display_name=CASE WHEN profiles.display_name = '' THEN EXCLUDED.display_name ELSE profiles.display_name END,
			platform_handle=EXCLUDED.platform_handle,
			platform_name=EXCLUDED.platform_name,
			platform_verified=EXCLUDED.platform_verified,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, ownerID, p.DisplayName, p.Handle, p.DisplayName, p.IsVerified, time.Now().UTC())
	return err
}

func (r *ProfileRepository) ClearPlatform(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE profiles SET platform_handle=NULL, platform_name=NULL, platform_verified=FALSE, updated_at=$2 WHERE id=$1`, ownerID, time.Now().UTC())
	return err
}
