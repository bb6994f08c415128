package uploads

import (
	"github.com/gin-gonic/gin"

	"EchoVerse/controllers"
)

// Register mounts the upload endpoints and the static directory that
// serves rendered audio.
func Register(r *gin.Engine, ctrl *controllers.UploadController, staticDir string) {
	r.Static("/static", staticDir)
	r.POST("/upload-doc", ctrl.UploadDoc)
	r.POST("/upload-image", ctrl.UploadImage)
}
