package account

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

var PathProfiles = "/v1/profiles"

func RegisterProfilesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathProfiles, middleWares...)
	g.GET("", authz.Filter(authz.AllowAnonymous()), handleQueryProfiles)
	g.GET(":id", authz.Filter(authz.AllowAnonymous()), handleDetailProfile)
	g.POST("", authz.Filter(), handleCreateProfile)
	g.PUT(":id", authz.Filter(), handleUpdateProfile)
	g.DELETE(":id", authz.Filter(), handleDeleteProfile)
}

func handleQueryProfiles(c *gin.Context) {
	query := ProfileQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	profiles, err := QueryProfilesFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, profiles)
}

func handleDetailProfile(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	profile, err := DetailProfileFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, profile)
}

func handleCreateProfile(c *gin.Context) {
	creation := ProfileCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	profile, err := CreateProfileFunc(creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, profile)
}

func handleUpdateProfile(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	updating := ProfileUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateProfileFunc(id, updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDeleteProfile(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	if err := DeleteProfileFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
