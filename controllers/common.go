package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thriftly/thriftly/middleware"
	"github.com/thriftly/thriftly/utils"
)

// currentUserID pulls the authenticated user ID placed by the auth middleware.
// Writes a 401 and returns false when the middleware did not run.
func currentUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return 0, false
	}
	userID, ok := value.(uint)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return 0, false
	}
	return userID, true
}
