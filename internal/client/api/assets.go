package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/common"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// payloadField is the multipart part carrying the JSON snapshot; image parts
// are named image_<itemID> so the server can re-associate them.
const payloadField = "payload"

func imageField(itemID int64) string {
	return fmt.Sprintf("image_%d", itemID)
}

// doMultipart posts the snapshot plus its image assets as one multipart
// request. Assets are read from disk at send time; the caller keeps
// ownership of the temporary files.
func (c *HTTPClient) doMultipart(ctx context.Context, path string, snapshot models.Snapshot, assets []Asset, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormField(payloadField)
	if err != nil {
		return fmt.Errorf("create payload part: %w", err)
	}
	if err := json.NewEncoder(part).Encode(snapshot); err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	for _, a := range assets {
		if err := attachFile(w, imageField(a.ItemID), a.Path); err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorTransport, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func attachFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open asset %s: %w", path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create asset part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy asset %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) UploadItemImage(ctx context.Context, itemID int64, path string) (string, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := attachFile(w, "image", path); err != nil {
		return "", "", err
	}
	if err := w.Close(); err != nil {
		return "", "", fmt.Errorf("finish multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/api/items/%d/image", c.baseURL, itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", common.ErrorTransport, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", "", err
	}

	var out imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}
	return out.ImageURL, out.Checkpoint, nil
}

// DownloadImage streams the asset behind ref into destDir. The ref may be an
// absolute URL or a server-relative path. Transport failures are retried
// with a short fibonacci backoff; downloads are idempotent GETs.
func (c *HTTPClient) DownloadImage(ctx context.Context, ref string, destDir string) (string, error) {
	url := ref
	if !strings.Contains(ref, "://") {
		url = c.baseURL + "/" + strings.TrimLeft(ref, "/")
	}

	var path string
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := c.downloadOnce(ctx, url, destDir)
		if err != nil {
			if errors.Is(err, common.ErrorTransport) {
				return retry.RetryableError(err)
			}
			return err
		}
		path = p
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (c *HTTPClient) downloadOnce(ctx context.Context, url, destDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorTransport, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	dst := filepath.Join(destDir, uuid.NewString()+filepath.Ext(url))
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w: %v", common.ErrorTransport, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("close %s: %w", dst, err)
	}
	return dst, nil
}
