// Package upload posts images to a content store's multipart media endpoint.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// Client submits models.MediaUpload values as multipart form posts with the
// fields refId, ref, field and files.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient constructs an upload client for endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
	}
}

// Upload sends one file. Any failure is returned as *utils.StoreError.
func (c *Client) Upload(ctx context.Context, up models.MediaUpload) error {
	body, contentType, err := encode(up)
	if err != nil {
		return &utils.StoreError{Op: "upload", Kind: string(up.Field), Input: up.Filename, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return &utils.StoreError{Op: "upload", Kind: string(up.Field), Input: up.Filename, Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &utils.StoreError{Op: "upload", Kind: string(up.Field), Input: up.Filename, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &utils.StoreError{
			Op:    "upload",
			Kind:  string(up.Field),
			Input: up.Filename,
			Err:   fmt.Errorf("status %d: %s", resp.StatusCode, string(msg)),
		}
	}

	log.Info().
		Str("field", string(up.Field)).
		Str("filename", up.Filename).
		Int("ref_id", up.RefID).
		Int("size", len(up.Data)).
		Msg("Uploaded media")
	return nil
}

func encode(up models.MediaUpload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"refId", strconv.Itoa(up.RefID)},
		{"ref", up.Ref},
		{"field", string(up.Field)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	ct := up.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, up.Filename))
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(up.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
