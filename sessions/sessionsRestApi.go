package sessions

import (
	"net/http"
	"time"

	"caster/account"
	"caster/authn"
	"caster/bizerror"
	"caster/misc"
	"caster/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// loginLimiter throttles credential guessing across the instance.
var loginLimiter = rate.NewLimiter(rate.Every(time.Second), 10)

type LoginResponse struct {
	Token    string           `json:"token"`
	Jwt      string           `json:"jwt,omitempty"`
	Identity session.Identity `json:"identity"`
}

func RegisterSessionsRestAPI(r *gin.Engine) {
	g := r.Group("/v1/sessions")
	g.POST("", SimpleLoginHandler)
	g.DELETE("", SimpleLogoutHandler)
}

func SimpleLoginHandler(c *gin.Context) {
	login := session.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if !loginLimiter.Allow() {
		c.JSON(http.StatusTooManyRequests, &misc.ErrorBody{
			Code: "common.too_many_requests", Message: "too many login attempts",
		})
		return
	}

	user, err := account.UserByUsernameFunc(login.Name)
	if err != nil {
		panic(err)
	}
	if user == nil || !user.Active || user.Secret != account.HashSha256(login.Password) {
		panic(bizerror.ErrUnauthenticated)
	}

	token := uuid.New().String()
	session.TokenCache.Set(token, user.Username, cache.DefaultExpiration)

	jwtToken, err := authn.SignToken(user.Username)
	if err != nil {
		logrus.Warnf("bearer token not issued: %v\n", err)
		jwtToken = ""
	}

	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusOK, &LoginResponse{
		Token:    token,
		Jwt:      jwtToken,
		Identity: session.Identity{ID: user.ID, Name: user.Username},
	})
}

func SimpleLogoutHandler(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.AbortWithStatus(http.StatusNoContent)
}
