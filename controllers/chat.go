package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"EchoVerse/pkg/dispatch"
)

// Dispatcher answers one chat message.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) (dispatch.Response, error)
}

type chatRequest struct {
	Message      string `json:"message"`
	Language     string `json:"language"`
	Mode         string `json:"mode"`
	VoiceEnabled bool   `json:"voice_enabled"`
}

func (r chatRequest) toDispatch() dispatch.Request {
	lang := strings.ToLower(strings.TrimSpace(r.Language))
	if lang == "" {
		lang = "auto"
	}
	mode := strings.ToLower(strings.TrimSpace(r.Mode))
	if mode == "" {
		mode = "default"
	}
	return dispatch.Request{
		Message:      r.Message,
		Language:     lang,
		Mode:         mode,
		VoiceEnabled: r.VoiceEnabled,
	}
}

// Chat handles POST /chat. An empty body is an empty message.
func Chat(d Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body chatRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}
		}

		resp, err := d.Dispatch(c.Request.Context(), body.toDispatch())
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
