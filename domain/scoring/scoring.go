// Package scoring turns a video statistics snapshot into comparable integer scores.
// Every function here is pure: identical inputs always produce identical outputs.
package scoring

import (
	"math"
	"time"
	"unicode/utf8"

	"creator-contest/domain/model"
)

type Weights struct {
	EngagementRatio       float64 `json:"engagementRatio"`
	EngagementReach       float64 `json:"engagementReach"`
	EngagementInteraction float64 `json:"engagementInteraction"`
	LikeMultiplier        float64 `json:"likeMultiplier"`
	CommentMultiplier     float64 `json:"commentMultiplier"`
	ShareMultiplier       float64 `json:"shareMultiplier"`

	QualityBase         int `json:"qualityBase"`
	QualityBonus        int `json:"qualityBonus"`
	QualityRecencyBonus int `json:"qualityRecencyBonus"`
	QualityCap          int `json:"qualityCap"`
	TitleMinRunes       int `json:"titleMinRunes"`
	DescriptionMinRunes int `json:"descriptionMinRunes"`
	MinDurationSeconds  int `json:"minDurationSeconds"`
	MaxDurationSeconds  int `json:"maxDurationSeconds"`
	RecencyWindowHours  int `json:"recencyWindowHours"`

	ViralityReachCap    float64 `json:"viralityReachCap"`
	ViralityReach       float64 `json:"viralityReach"`
	ViralityLikeRate    float64 `json:"viralityLikeRate"`
	ViralityCommentRate float64 `json:"viralityCommentRate"`

	FinalEngagement float64 `json:"finalEngagement"`
	FinalQuality    float64 `json:"finalQuality"`
	FinalVirality   float64 `json:"finalVirality"`
}

func DefaultWeights() Weights {
	return Weights{
		EngagementRatio:       0.4,
		EngagementReach:       0.3,
		EngagementInteraction: 0.3,
		LikeMultiplier:        1,
		CommentMultiplier:     2,
		ShareMultiplier:       3,

		QualityBase:         50,
		QualityBonus:        10,
		QualityRecencyBonus: 20,
		QualityCap:          100,
		TitleMinRunes:       10,
		DescriptionMinRunes: 20,
		MinDurationSeconds:  15,
		MaxDurationSeconds:  60,
		RecencyWindowHours:  24,

		ViralityReachCap:    1_000_000,
		ViralityReach:       0.5,
		ViralityLikeRate:    0.3,
		ViralityCommentRate: 0.2,

		FinalEngagement: 0.6,
		FinalQuality:    0.2,
		FinalVirality:   0.2,
	}
}

// Engine scores statistics with a fixed set of weights.
type Engine struct {
	w Weights
}

func NewEngine(w Weights) *Engine {
	return &Engine{w: w}
}

// denominator floors views at 1 so zero-view videos never divide by zero.
func denominator(views int64) float64 {
	if views < 1 {
		return 1
	}
	return float64(views)
}

func (e *Engine) Engagement(s model.VideoStats) int {
	v := denominator(s.Views)
	likes, comments, shares := float64(s.Likes), float64(s.Comments), float64(s.Shares)

	ratio := (likes + comments + shares) / v * 100 * e.w.EngagementRatio
	views := s.Views
	if views < 0 {
		views = 0
	}
	reach := math.Log10(float64(views)+1) / 10 * e.w.EngagementReach
	interaction := (e.w.LikeMultiplier*likes/v +
		e.w.CommentMultiplier*comments/v +
		e.w.ShareMultiplier*shares/v) * e.w.EngagementInteraction

	return int(math.Round(ratio + reach + interaction))
}

// Quality is a heuristic effort proxy. scoredAt decides the recency bonus.
func (e *Engine) Quality(s model.VideoStats, scoredAt time.Time) int {
	score := e.w.QualityBase
	if utf8.RuneCountInString(s.Title) > e.w.TitleMinRunes {
		score += e.w.QualityBonus
	}
	if utf8.RuneCountInString(s.Description) > e.w.DescriptionMinRunes {
		score += e.w.QualityBonus
	}
	if s.DurationSeconds >= e.w.MinDurationSeconds {
		score += e.w.QualityBonus
	}
	if s.DurationSeconds > 0 && s.DurationSeconds <= e.w.MaxDurationSeconds {
		score += e.w.QualityBonus
	}
	if !s.CreatedAt.IsZero() {
		age := scoredAt.Sub(s.CreatedAt)
		if age >= 0 && age <= time.Duration(e.w.RecencyWindowHours)*time.Hour {
			score += e.w.QualityRecencyBonus
		}
	}
	if score > e.w.QualityCap {
		score = e.w.QualityCap
	}
	return score
}

// Virality is returned unrounded; Final blends the exact value.
func (e *Engine) Virality(s model.VideoStats) float64 {
	v := denominator(s.Views)
	reach := math.Min(float64(s.Views)/e.w.ViralityReachCap, 1)
	if reach < 0 {
		reach = 0
	}
	return reach*100*e.w.ViralityReach +
		float64(s.Likes)/v*100*e.w.ViralityLikeRate +
		float64(s.Comments)/v*100*e.w.ViralityCommentRate
}

// Score computes the full breakdown for one snapshot.
func (e *Engine) Score(s model.VideoStats, scoredAt time.Time) model.ScoreBreakdown {
	engagement := e.Engagement(s)
	quality := e.Quality(s, scoredAt)
	virality := e.Virality(s)
	final := float64(engagement)*e.w.FinalEngagement +
		float64(quality)*e.w.FinalQuality +
		virality*e.w.FinalVirality

	return model.ScoreBreakdown{
		EngagementScore: engagement,
		QualityScore:    quality,
		ViralityScore:   int(math.Round(virality)),
		FinalScore:      int(math.Round(final)),
	}
}
