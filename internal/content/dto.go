package content

import "time"

type completeRequest struct {
	ObjectPath  string `json:"objectPath"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Visibility  string `json:"visibility"`
	Title       string `json:"title"`
}

type completeResponse struct {
	ObjectPath string `json:"objectPath"`
	ContentID  string `json:"contentId,omitempty"`
	Message    string `json:"message"`
	Warning    string `json:"warning,omitempty"`
}

// RecordResponse is the outward-facing representation of a content record.
type RecordResponse struct {
	ContentID   string    `json:"contentId"`
	ObjectPath  string    `json:"objectPath"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	Visibility  string    `json:"visibility"`
	Title       string    `json:"title,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toResponse(rec Record) RecordResponse {
	return RecordResponse{
		ContentID:   rec.ID,
		ObjectPath:  rec.ObjectPath,
		FileName:    rec.FileName,
		ContentType: rec.ContentType,
		SizeBytes:   rec.SizeBytes,
		Visibility:  rec.Visibility,
		Title:       rec.Title,
		CreatedAt:   rec.CreatedAt,
	}
}
