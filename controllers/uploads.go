package controllers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"EchoVerse/pkg/services"
	utils "EchoVerse/pkg/utills"
)

const (
	summaryPrompt      = "Summarize in 5 bullets:\n"
	summaryInputRunes  = 2000
	maxUploadBytes     = 32 << 20
	msgDocumentStored  = "✅ Document uploaded"
	msgImageProcessed  = "✅ Image processed"
	errNoFileUploaded  = "No file uploaded"
	errUnsupportedFile = "Unsupported file"
	errFileTooLarge    = "File too large"
)

var errUploadTooLarge = errors.New("upload exceeds size limit")

// Summarizer produces the upload analysis; it always returns text.
type Summarizer interface {
	Complete(ctx context.Context, prompt string) string
}

// ContentWriter replaces the singleton document and image text.
type ContentWriter interface {
	SaveDocument(ctx context.Context, body string) error
	SaveImageText(ctx context.Context, body string) error
}

type UploadController struct {
	store    ContentWriter
	llm      Summarizer
	ocr      services.ImageReader
	maxBytes int64
	log      *zap.Logger
}

func NewUploadController(store ContentWriter, llm Summarizer, ocr services.ImageReader, log *zap.Logger) *UploadController {
	return &UploadController{
		store:    store,
		llm:      llm,
		ocr:      ocr,
		maxBytes: maxUploadBytes,
		log:      log.With(zap.String("component", "uploads")),
	}
}

// UploadDoc handles POST /upload-doc.
func (ctrl *UploadController) UploadDoc(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoFileUploaded})
		return
	}
	if !services.SupportedDocument(fh.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errUnsupportedFile})
		return
	}
	data, err := readUpload(fh, ctrl.maxBytes)
	if errors.Is(err, errUploadTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errFileTooLarge})
		return
	}
	if err != nil {
		ctrl.fail(c, "read document", err)
		return
	}

	text, err := services.ExtractDocument(fh.Filename, data)
	if errors.Is(err, services.ErrUnsupportedFile) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errUnsupportedFile})
		return
	}
	if err != nil {
		ctrl.fail(c, "extract document", err)
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.store.SaveDocument(ctx, text); err != nil {
		ctrl.fail(c, "save document", err)
		return
	}
	analysis := ctrl.llm.Complete(ctx, summaryPrompt+utils.TruncateRunes(text, summaryInputRunes))
	c.JSON(http.StatusOK, gin.H{"message": msgDocumentStored, "analysis": analysis})
}

// UploadImage handles POST /upload-image.
func (ctrl *UploadController) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoFileUploaded})
		return
	}
	data, err := readUpload(fh, ctrl.maxBytes)
	if errors.Is(err, errUploadTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errFileTooLarge})
		return
	}
	if err != nil {
		ctrl.fail(c, "read image", err)
		return
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": errUnsupportedFile})
		return
	}

	ctx := c.Request.Context()
	text, err := ctrl.ocr.ReadText(ctx, data, mt.String())
	if err != nil {
		ctrl.fail(c, "ocr", err)
		return
	}
	if err := ctrl.store.SaveImageText(ctx, text); err != nil {
		ctrl.fail(c, "save image text", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgImageProcessed, "ocr_text": text})
}

func (ctrl *UploadController) fail(c *gin.Context, op string, err error) {
	ctrl.log.Error(op+" failed", zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// readUpload reads at most limit bytes; one byte more is errUploadTooLarge.
func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errUploadTooLarge
	}
	return data, nil
}
