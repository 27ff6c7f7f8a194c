package backend

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"almacen-front/internal/domain/albaran"
	appErrors "almacen-front/pkg/errors"
)

// UploadOCR submits an image or PDF for extraction, tagged with the session
// key so the resulting provisional note belongs to this client. PDF uploads
// are validated locally before spending the OCR round trip.
func (c *Client) UploadOCR(ctx context.Context, filename string, content []byte, sessionKey string) (*albaran.OcrResult, error) {
	if isPDF(filename, content) {
		pages, err := api.PageCount(bytes.NewReader(content), nil)
		if err != nil || pages == 0 {
			return nil, appErrors.NewAppError("INVALID_UPLOAD", appErrors.ErrInvalidUpload.Error(), err)
		}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.WriteField("session_key", sessionKey); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/albaranes/ocr", nil), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out albaran.OcrResult
	if err := c.execute(req, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []albaran.OcrItem{}
	}
	return &out, nil
}

func isPDF(filename string, content []byte) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return true
	}
	return bytes.HasPrefix(content, []byte("%PDF"))
}
