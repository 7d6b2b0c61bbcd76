package avatar

import (
	"errors"
	"net/http"

	"caster/authz"
	"caster/bizerror"
	"caster/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var PathAvatars = "/v1/avatars"

func RegisterAvatarsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAvatars, middleWares...)
	g.GET(":id", authz.Filter(authz.AllowAnonymous()), handleDetailAvatar)
	g.POST(":id", authz.Filter(), handleCreateAvatar)
}

func handleDetailAvatar(c *gin.Context) {
	id := parseIdParam(c)
	data, err := DetailAvatarFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Data(http.StatusOK, "image/png", data)
}

func handleCreateAvatar(c *gin.Context) {
	id := parseIdParam(c)
	if err := CreateAvatarFunc(id, c.Request.Body, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusCreated)
}

func parseIdParam(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return id
}
