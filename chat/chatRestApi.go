package chat

import (
	"errors"
	"io"
	"net/http"

	"caster/authz"
	"caster/bizerror"
	"caster/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathMessages = "/v1/messages"

func RegisterChatRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathMessages, middleWares...)
	g.POST("", authz.Filter(), handleSendMessage)
	g.GET("", authz.Filter(), handleStreamMessages)
}

func handleSendMessage(c *gin.Context) {
	m := MessageSend{}
	if err := c.ShouldBindBodyWith(&m, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := SendMessageFunc(m, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusCreated)
}

// handleStreamMessages serves the episode channel as a server-sent event
// stream until the client disconnects.
func handleStreamMessages(c *gin.Context) {
	episodeId, err := types.ParseID(c.Query("episodeId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid episodeId '" + c.Query("episodeId") + "'")})
	}

	subscription, err := SubscribeFunc(episodeId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	defer subscription.Close()

	c.Stream(func(w io.Writer) bool {
		select {
		case message, open := <-subscription.C:
			if !open {
				return false
			}
			c.SSEvent("message", message)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
