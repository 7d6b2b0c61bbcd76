package session

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

const TokenExpiration = 24 * time.Hour

// TokenCache maps session tokens to usernames. Only the credential is
// cached; the actor and its Ability are re-resolved on every request so
// grant changes take effect immediately.
var TokenCache = cache.New(TokenExpiration, 1*time.Minute)

type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const KeySecCtx = "SecCtx"
const KeySecToken = "sec_token"

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return nil
	}
	s, ok := value.(*Session)
	if !ok || s.Ability == nil {
		return nil
	}
	clone := s.Clone()
	clone.Context = ctx.Request.Context() // trace context
	return &clone
}

func InjectSessionIntoGinContext(ctx *gin.Context, s *Session) {
	if s != nil && s.Ability != nil {
		ctx.Set(KeySecCtx, s)
	}
}
