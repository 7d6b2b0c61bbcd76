package show

import (
	"errors"
	"net/http"

	"caster/authz"
	"caster/bizerror"
	"caster/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathShows = "/v1/shows"

func RegisterShowsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathShows, middleWares...)
	g.GET("", authz.Filter(authz.AllowAnonymous()), handleQueryShows)
	g.GET(":id", authz.Filter(authz.AllowAnonymous()), handleDetailShow)
	g.POST("", authz.Filter(), handleCreateShow)
	g.PUT(":id", authz.Filter(), handleUpdateShow)
	g.DELETE(":id", authz.Filter(), handleDeleteShow)
}

func handleQueryShows(c *gin.Context) {
	query := ShowQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	shows, err := QueryShowsFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, shows)
}

func handleDetailShow(c *gin.Context) {
	id := parseIdParam(c)
	s, err := DetailShowFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, s)
}

func handleCreateShow(c *gin.Context) {
	creation := ShowCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	s, err := CreateShowFunc(creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, s)
}

func handleUpdateShow(c *gin.Context) {
	id := parseIdParam(c)
	updating := ShowUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateShowFunc(id, updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDeleteShow(c *gin.Context) {
	id := parseIdParam(c)
	if err := DeleteShowFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func parseIdParam(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return id
}
