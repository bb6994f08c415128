package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"EchoVerse/models"
)

// DataStore is the part of the content store the export and wipe
// endpoints use.
type DataStore interface {
	LoadHistory(ctx context.Context) ([]models.Message, error)
	Reset(ctx context.Context) error
}

// ExportData handles GET /export-data as a JSON attachment.
func ExportData(store DataStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		hist, err := store.LoadHistory(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if hist == nil {
			hist = []models.Message{}
		}
		c.Header("Content-Disposition", "attachment; filename=chat_history.json")
		c.JSON(http.StatusOK, hist)
	}
}

// DeleteData handles DELETE /delete-data: history, reminders and both
// uploaded bodies are wiped.
func DeleteData(store DataStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Reset(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
