package websocket

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"EchoVerse/controllers"
)

func Register(r *gin.Engine, d controllers.Dispatcher, log *zap.Logger) {
	r.GET("/ws/chat", controllers.ChatWS(d, log))
}
