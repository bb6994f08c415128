package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"EchoVerse/controllers"
	"EchoVerse/pkg/reminder"
	"EchoVerse/pkg/store"

	chatRoutes "EchoVerse/routes/chat"
	dataRoutes "EchoVerse/routes/data"
	reminderRoutes "EchoVerse/routes/reminders"
	uploadsRoutes "EchoVerse/routes/uploads"
	websocketRoutes "EchoVerse/routes/websocket"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Dispatcher controllers.Dispatcher
	Store      store.Store
	Reminders  *reminder.Scheduler
	Uploads    *controllers.UploadController
	StaticDir  string
	Logger     *zap.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "EchoVerse assistant backend running"})
	})

	chatRoutes.Register(r, d.Dispatcher)
	websocketRoutes.Register(r, d.Dispatcher, d.Logger)
	uploadsRoutes.Register(r, d.Uploads, d.StaticDir)
	reminderRoutes.Register(r, d.Reminders)
	dataRoutes.Register(r, d.Store)
}
