package middleware

import (
	"net/http"

	"creator-contest/domain/dto"
	"creator-contest/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

// RequireOperator admits only callers whose id is listed. Must run after Auth. An empty list admits nobody.
func RequireOperator(operatorIDs []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		if id != "" {
			allowed[id] = struct{}{}
		}
	}
	return func(ctx *gin.Context) {
		userID := ctx.GetString(UserIDKey)
		if _, ok := allowed[userID]; !ok {
			logger.GetLogger().WithField("user_id", userID).WithField("path", ctx.FullPath()).Warn("operator route refused")
			ctx.AbortWithStatusJSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: "Forbidden"})
			return
		}
		ctx.Next()
	}
}
