package reminders

import (
	"github.com/gin-gonic/gin"

	"EchoVerse/controllers"
	"EchoVerse/pkg/reminder"
)

func Register(r *gin.Engine, sched *reminder.Scheduler) {
	ctrl := controllers.NewReminderController(sched)

	r.GET("/dashboard", ctrl.Dashboard)
	r.GET("/reminders-due", ctrl.Due)
	r.POST("/reminders-ack", ctrl.Ack)
}
