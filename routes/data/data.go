package data

import (
	"github.com/gin-gonic/gin"

	"EchoVerse/controllers"
	"EchoVerse/pkg/store"
)

func Register(r *gin.Engine, s store.Store) {
	r.GET("/export-data", controllers.ExportData(s))
	r.DELETE("/delete-data", controllers.DeleteData(s))
}
