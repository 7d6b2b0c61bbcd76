package episode

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

var PathEpisodes = "/v1/episodes"

func RegisterEpisodesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathEpisodes, middleWares...)
	g.GET("", authz.Filter(authz.AllowAnonymous()), handleQueryEpisodes)
	g.GET(":id", authz.Filter(authz.AllowAnonymous()), handleDetailEpisode)
	g.POST("", authz.Filter(), handleCreateEpisode)
	g.PUT(":id", authz.Filter(), handleUpdateEpisode)
	g.DELETE(":id", authz.Filter(), handleDeleteEpisode)
}

func handleQueryEpisodes(c *gin.Context) {
	query := EpisodeQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	episodes, err := QueryEpisodesFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, episodes)
}

func handleDetailEpisode(c *gin.Context) {
	id := parseIdParam(c)
	e, err := DetailEpisodeFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, e)
}

func handleCreateEpisode(c *gin.Context) {
	creation := EpisodeCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	e, err := CreateEpisodeFunc(creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, e)
}

func handleUpdateEpisode(c *gin.Context) {
	id := parseIdParam(c)
	updating := EpisodeUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateEpisodeFunc(id, updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDeleteEpisode(c *gin.Context) {
	id := parseIdParam(c)
	if err := DeleteEpisodeFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
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
