package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SeSAC-PrePair/prepair/utils"
)

const (
	// UserIDHeader carries the authenticated identity on API requests.
	UserIDHeader = "X-User-ID"
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
)

// AuthRequired ensures the request carries a well-formed X-User-ID header.
// Controllers load the user row themselves, which also rejects deleted accounts.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw := strings.TrimSpace(ctx.GetHeader(UserIDHeader))
		if raw == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "X-User-ID header missing")
			ctx.Abort()
			return
		}

		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid X-User-ID header")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, uint(id))
		ctx.Next()
	}
}

// UserID extracts the authenticated user ID from the Gin context.
func UserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
