package chat

import (
	"github.com/gin-gonic/gin"

	"EchoVerse/controllers"
)

func Register(r *gin.Engine, d controllers.Dispatcher) {
	r.POST("/chat", controllers.Chat(d))
}
