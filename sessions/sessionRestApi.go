package sessions

import (
	"net/http"
	"time"

	"caster/authz"
	"caster/session"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

func RegisterSessionRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/session", middleWares...)
	g.GET("", authz.Filter(), DetailSessionHandler)
}

// DetailSessionHandler returns the resolved session of the request and
// slides the cookie token expiration when one is in use.
func DetailSessionHandler(c *gin.Context) {
	sec := session.ExtractSessionFromGinContext(c)

	if sec.Token != "" {
		if _, found := session.TokenCache.Get(sec.Token); found {
			session.TokenCache.Set(sec.Token, sec.Identity.Name, cache.DefaultExpiration)
			c.SetCookie(session.KeySecToken, sec.Token, int(session.TokenExpiration/time.Second), "/", "", false, false)
		}
	}
	c.JSON(http.StatusOK, sec)
}
