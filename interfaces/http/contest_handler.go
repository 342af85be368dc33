package http

import (
	"context"
	"errors"
	"net/http"

	"creator-contest/domain/dto"
	"creator-contest/domain/model"
	"creator-contest/infrastructure/logger"
	"creator-contest/interfaces/middleware"
	"creator-contest/usecase"

	"github.com/gin-gonic/gin"
)

type IContestHandler interface {
	SubmitVideo(c *gin.Context)
	GetLeaderboard(c *gin.Context)
	SyncMetrics(c *gin.Context)
}

type ContestHandler struct {
	submissions usecase.ISubmissionUsecase
	sync        usecase.IMetricsSync
}

func NewContestHandler(submissions usecase.ISubmissionUsecase, sync usecase.IMetricsSync) IContestHandler {
	return &ContestHandler{submissions: submissions, sync: sync}
}

// SubmitVideo enters the caller's video into a contest.
func (h *ContestHandler) SubmitVideo(c *gin.Context) {
	ownerID := c.GetString(middleware.UserIDKey)
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req dto.SubmitVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video_url is required"})
		return
	}

	sub, err := h.submissions.Submit(c.Request.Context(), c.Param("contestId"), ownerID, req.VideoURL)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.GetLogger().WithField("contest_id", c.Param("contestId")).WithField("error", err).Error("submission failed")
			c.JSON(status, gin.H{"error": "submission failed"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *ContestHandler) GetLeaderboard(c *gin.Context) {
	res, err := h.submissions.GetContestLeaderboard(c.Request.Context(), c.Param("contestId"))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.GetLogger().WithField("contest_id", c.Param("contestId")).WithField("error", err).Error("leaderboard read failed")
			c.JSON(status, gin.H{"error": "leaderboard unavailable"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// SyncMetrics triggers a scheduler cycle out of band. A dropped client connection does not abort the cycle.
func (h *ContestHandler) SyncMetrics(c *gin.Context) {
	report, err := h.sync.RunOnce(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("manual metrics sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "metrics sync failed"})
		return
	}
	if report.Skipped {
		c.JSON(http.StatusConflict, report)
		return
	}
	c.JSON(http.StatusOK, report)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrContestNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDuplicateSubmission):
		return http.StatusConflict
	case errors.Is(err, model.ErrContestNotOpen):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
