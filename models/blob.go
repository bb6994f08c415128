package models

const (
	BlobDocument  = "document"
	BlobImageText = "image_text"
)

// Blob holds a singleton text body (uploaded document text or OCR text)
// for the database-backed store.
type Blob struct {
	Key  string `gorm:"primaryKey;size:32"`
	Body string `gorm:"type:longtext"`
}
