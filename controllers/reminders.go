package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"EchoVerse/models"
	"EchoVerse/pkg/reminder"
)

type ReminderController struct {
	sched *reminder.Scheduler
	now   func() time.Time
}

func NewReminderController(sched *reminder.Scheduler) *ReminderController {
	return &ReminderController{sched: sched, now: func() time.Time { return time.Now().UTC() }}
}

// Dashboard handles GET /dashboard: every reminder, delivered or not.
func (ctrl *ReminderController) Dashboard(c *gin.Context) {
	items, err := ctrl.sched.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []models.Reminder{}
	}
	c.JSON(http.StatusOK, items)
}

// Due handles GET /reminders-due. Polling never marks anything delivered.
func (ctrl *ReminderController) Due(c *gin.Context) {
	due, err := ctrl.sched.ListDue(c.Request.Context(), ctrl.now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, due)
}

type ackRequest struct {
	ID            string `json:"id"`
	SnoozeMinutes *int   `json:"snooze_minutes"`
}

// Ack handles POST /reminders-ack. A malformed body or an unknown id is a
// no-op that still reports ok.
func (ctrl *ReminderController) Ack(c *gin.Context) {
	var body ackRequest
	_ = c.ShouldBindJSON(&body)

	if err := ctrl.sched.Acknowledge(c.Request.Context(), body.ID, body.SnoozeMinutes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
