package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"creator-contest/domain/dto"
	"creator-contest/domain/model"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type SubmissionRepository struct{ db *sql.DB }

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository { return &SubmissionRepository{db: db} }

const submissionColumns = `id, contest_id, owner_id, video_id, video_url, status, views, likes, comments, shares, duration_seconds, video_created_at, title, description, engagement_score, quality_score, virality_score, final_score, rank_position, is_winner, submitted_at, last_scored_at`

func scanSubmission(s rowScanner) (*model.Submission, error) {
	sub := &model.Submission{}
	var videoCreated, lastScored sql.NullTime
	var rank sql.NullInt64
	if err := s.Scan(&sub.ID, &sub.ContestID, &sub.OwnerID, &sub.VideoID, &sub.VideoURL, &sub.Status,
		&sub.Stats.Views, &sub.Stats.Likes, &sub.Stats.Comments, &sub.Stats.Shares, &sub.Stats.DurationSeconds,
		&videoCreated, &sub.Stats.Title, &sub.Stats.Description,
		&sub.EngagementScore, &sub.QualityScore, &sub.ViralityScore, &sub.FinalScore,
		&rank, &sub.IsWinner, &sub.SubmittedAt, &lastScored); err != nil {
		return nil, err
	}
	if videoCreated.Valid {
		sub.Stats.CreatedAt = videoCreated.Time
	}
	if rank.Valid {
		v := int(rank.Int64)
		sub.RankPosition = &v
	}
	if lastScored.Valid {
		sub.LastScoredAt = &lastScored.Time
	}
	return sub, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func (r *SubmissionRepository) Exists(ctx context.Context, contestID, ownerID, videoID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM submissions WHERE contest_id=$1 AND owner_id=$2 AND video_id=$3)`,
		contestID, ownerID, videoID).Scan(&exists)
	return exists, err
}

func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	q := `INSERT INTO submissions (id, contest_id, owner_id, video_id, video_url, status, views, likes, comments, shares, duration_seconds, video_created_at, title, description, engagement_score, quality_score, virality_score, final_score, submitted_at, last_scored_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`
	var lastScored sql.NullTime
	if s.LastScoredAt != nil {
		lastScored = nullTime(*s.LastScoredAt)
	}
	_, err := r.db.ExecContext(ctx, q, s.ID, s.ContestID, s.OwnerID, s.VideoID, s.VideoURL, s.Status,
		s.Stats.Views, s.Stats.Likes, s.Stats.Comments, s.Stats.Shares, s.Stats.DurationSeconds,
		nullTime(s.Stats.CreatedAt), s.Stats.Title, s.Stats.Description,
		s.EngagementScore, s.QualityScore, s.ViralityScore, s.FinalScore, s.SubmittedAt, lastScored)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return model.ErrDuplicateSubmission
	}
	return err
}

func (r *SubmissionRepository) ListApproved(ctx context.Context, contestID string) ([]model.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE contest_id=$1 AND status='approved' ORDER BY submitted_at ASC, id ASC`, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// UpdateScores is a no-op once the submission leaves approved or its contest closes.
func (r *SubmissionRepository) UpdateScores(ctx context.Context, id string, stats model.VideoStats, b model.ScoreBreakdown, scoredAt time.Time) error {
	q := `UPDATE submissions s SET
			views=$2, likes=$3, comments=$4, shares=$5, duration_seconds=$6, video_created_at=$7, title=$8, description=$9,
			engagement_score=$10, quality_score=$11, virality_score=$12, final_score=$13, last_scored_at=$14
		  FROM contests c
		  WHERE s.id=$1 AND s.status='approved' AND c.id=s.contest_id AND c.status='active'`
	_, err := r.db.ExecContext(ctx, q, id, stats.Views, stats.Likes, stats.Comments, stats.Shares, stats.DurationSeconds,
		nullTime(stats.CreatedAt), stats.Title, stats.Description,
		b.EngagementScore, b.QualityScore, b.ViralityScore, b.FinalScore, scoredAt)
	return err
}

// ApplyRanking writes every assignment in one transaction and clears stale ranks on
// submissions that are no longer approved. A contest that is not active is left untouched.
func (r *SubmissionRepository) ApplyRanking(ctx context.Context, contestID string, ranks []model.RankAssignment) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var status model.ContestStatus
	if err = tx.QueryRowContext(ctx, `SELECT status FROM contests WHERE id=$1 FOR UPDATE`, contestID).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = model.ErrContestNotFound
		}
		return err
	}
	if status != model.ContestActive {
		err = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `UPDATE submissions SET rank_position=$1, is_winner=$2 WHERE id=$3 AND contest_id=$4 AND status='approved'`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, rk := range ranks {
		if _, err = stmt.ExecContext(ctx, rk.RankPosition, rk.IsWinner, rk.SubmissionID, contestID); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx, `UPDATE submissions SET rank_position=NULL, is_winner=FALSE WHERE contest_id=$1 AND status<>'approved' AND (rank_position IS NOT NULL OR is_winner)`, contestID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SubmissionRepository) Leaderboard(ctx context.Context, contestID string) ([]dto.LeaderboardEntry, error) {
	q := `SELECT s.id, s.owner_id, COALESCE(p.display_name,''), COALESCE(p.platform_handle,''), s.video_id, s.video_url,
				 s.rank_position, s.is_winner, s.final_score, s.views, s.likes, s.comments, s.shares, s.submitted_at
		  FROM submissions s
		  LEFT JOIN profiles p ON p.id = s.owner_id
		  WHERE s.contest_id=$1 AND s.status='approved'
		  ORDER BY s.rank_position ASC NULLS LAST, s.final_score DESC, s.submitted_at ASC, s.id ASC`
	rows, err := r.db.QueryContext(ctx, q, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []dto.LeaderboardEntry{}
	for rows.Next() {
		var e dto.LeaderboardEntry
		var rank sql.NullInt64
		if err := rows.Scan(&e.SubmissionID, &e.OwnerID, &e.DisplayName, &e.PlatformHandle, &e.VideoID, &e.VideoURL,
			&rank, &e.IsWinner, &e.FinalScore, &e.Views, &e.Likes, &e.Comments, &e.Shares, &e.SubmittedAt); err != nil {
			return nil, err
		}
		if rank.Valid {
			v := int(rank.Int64)
			e.RankPosition = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
