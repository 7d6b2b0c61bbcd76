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

var (
	PathUsers      = "/v1/users"
	PathBasicAuths = "/v1/basic-auths"
)

func RegisterUsersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathUsers, middleWares...)
	g.POST("", authz.Filter(authz.AllowAnonymous()), handleSignupUser)
	g.GET(":id", authz.Filter(), handleDetailUser)
	g.PUT(":id", authz.Filter(), handleUpdateUser)

	b := r.Group(PathBasicAuths, middleWares...)
	b.PUT("", authz.Filter(), handleUpdateBasicAuthSecret)
}

func handleSignupUser(c *gin.Context) {
	signup := UserSignup{}
	if err := c.ShouldBindBodyWith(&signup, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	info, err := SignupUserFunc(signup)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, info)
}

func handleDetailUser(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	info, err := DetailUserFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, info)
}

func handleUpdateUser(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	updating := UserUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateUserFunc(id, updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleUpdateBasicAuthSecret(c *gin.Context) {
	updating := BasicAuthUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateBasicAuthSecretFunc(updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}
