// Package classifier talks to the external disease-classification model.
// The model itself is opaque to this service: bytes in, label out.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Classifier labels raw image bytes with a disease name.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (string, error)
}

const requestTimeout = 30 * time.Second

// HTTPClassifier posts images to a model server and reads back the label.
type HTTPClassifier struct {
	url    string
	client *http.Client
}

func NewHTTP(url string) *HTTPClassifier {
	return &HTTPClassifier{
		url:    url,
		client: &http.Client{Timeout: requestTimeout},
	}
}

var _ Classifier = (*HTTPClassifier)(nil)

// Classify sends the image as a multipart upload and decodes {"disease": ...}.
func (c *HTTPClassifier) Classify(ctx context.Context, image []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "image")
	if err != nil {
		return "", fmt.Errorf("build classifier request: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("build classifier request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return "", fmt.Errorf("build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("classifier returned %d: %s", resp.StatusCode, msg)
	}

	var out struct {
		Disease string `json:"disease"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode classifier response: %w", err)
	}
	if out.Disease == "" {
		return "", fmt.Errorf("classifier returned an empty label")
	}
	return out.Disease, nil
}
