package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/cxde-rxnin/carekeep/internal/domain"
)

// UploadDocument attaches a file to a patient record. customName is
// optional; when empty the server picks the stored name from the
// uploaded filename.
func (c *Client) UploadDocument(ctx context.Context, patientID, fileName string, file io.Reader, customName string) (*domain.Document, error) {
	fields := map[string]string{
		"patientId":  patientID,
		"customName": customName,
	}

	var out domain.Document
	if err := c.upload(ctx, "/documents/upload", fields, "file", fileName, file, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PatientDocuments(ctx context.Context, patientID string) ([]domain.Document, error) {
	var out []domain.Document
	if err := c.do(ctx, http.MethodGet, "/documents/patient/"+patientID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DownloadDocument fetches one document as a binary payload.
func (c *Client) DownloadDocument(ctx context.Context, id string) (*Blob, error) {
	return c.blob(ctx, "/documents/"+id)
}
