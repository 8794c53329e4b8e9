package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/common"
)

// HTTPClient implements Client over the backend's JSON API. It is safe for
// concurrent use; the credential may be swapped while requests are in flight.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu         sync.RWMutex // guards credential and kind
	credential string
	kind       string
}

// NewHTTPClient returns a gateway for the API at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetCredential(credential, kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = credential
	c.kind = kind
}

type sessionResponse struct {
	Token      string `json:"token"`
	TokenKind  string `json:"tokenKind"`
	Checkpoint string `json:"checkpoint"`
}

type profileResponse struct {
	Email      string `json:"email"`
	Checkpoint string `json:"checkpoint"`
}

type exchangeResponse struct {
	Items      []models.ClothingItem `json:"items"`
	Outfits    []models.Outfit       `json:"outfits"`
	Checkpoint string                `json:"checkpoint"`
}

type itemResponse struct {
	Item       models.ClothingItem `json:"item"`
	Checkpoint string              `json:"checkpoint"`
}

type outfitResponse struct {
	Outfit     models.Outfit `json:"outfit"`
	Checkpoint string        `json:"checkpoint"`
}

type markerResponse struct {
	Checkpoint string `json:"checkpoint"`
}

type imageResponse struct {
	ImageURL   string `json:"imageUrl"`
	Checkpoint string `json:"checkpoint"`
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/api/auth/register", email, password)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/api/auth/login", email, password)
}

func (c *HTTPClient) authenticate(ctx context.Context, path, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var resp sessionResponse
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	kind := resp.TokenKind
	if kind == "" {
		kind = common.CredentialKindBearer
	}
	return &Session{Token: resp.Token, Kind: kind, Marker: resp.Checkpoint}, nil
}

func (c *HTTPClient) FetchProfile(ctx context.Context) (*Profile, error) {
	var resp profileResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &Profile{Email: resp.Email, Marker: resp.Checkpoint}, nil
}

func (c *HTTPClient) Exchange(ctx context.Context, direction models.Direction, snapshot models.Snapshot, assets []Asset) (*models.Snapshot, string, error) {
	path := "/api/sync?direction=" + direction.String()

	var resp exchangeResponse
	var err error
	if len(assets) > 0 {
		err = c.doMultipart(ctx, path, snapshot, assets, &resp)
	} else {
		err = c.doJSON(ctx, http.MethodPost, path, snapshot, &resp)
	}
	if err != nil {
		return nil, "", err
	}
	return &models.Snapshot{Items: resp.Items, Outfits: resp.Outfits}, resp.Checkpoint, nil
}

func (c *HTTPClient) CreateItem(ctx context.Context, item *models.ClothingItem) (*models.ClothingItem, string, error) {
	var resp itemResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/items", item, &resp); err != nil {
		return nil, "", err
	}
	return &resp.Item, resp.Checkpoint, nil
}

func (c *HTTPClient) UpdateItem(ctx context.Context, item *models.ClothingItem) (*models.ClothingItem, string, error) {
	var resp itemResponse
	path := fmt.Sprintf("/api/items/%d", item.ID)
	if err := c.doJSON(ctx, http.MethodPut, path, item, &resp); err != nil {
		return nil, "", err
	}
	return &resp.Item, resp.Checkpoint, nil
}

func (c *HTTPClient) DeleteItem(ctx context.Context, id int64) (string, error) {
	var resp markerResponse
	path := fmt.Sprintf("/api/items/%d", id)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Checkpoint, nil
}

func (c *HTTPClient) SetFavorite(ctx context.Context, id int64, favorite bool) (string, error) {
	var resp markerResponse
	path := fmt.Sprintf("/api/items/%d/favorite", id)
	body := map[string]bool{"favorite": favorite}
	if err := c.doJSON(ctx, http.MethodPut, path, body, &resp); err != nil {
		return "", err
	}
	return resp.Checkpoint, nil
}

func (c *HTTPClient) CreateOutfit(ctx context.Context, outfit *models.Outfit) (*models.Outfit, string, error) {
	var resp outfitResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/outfits", outfit, &resp); err != nil {
		return nil, "", err
	}
	return &resp.Outfit, resp.Checkpoint, nil
}

func (c *HTTPClient) UpdateOutfit(ctx context.Context, outfit *models.Outfit) (*models.Outfit, string, error) {
	var resp outfitResponse
	path := fmt.Sprintf("/api/outfits/%d", outfit.ID)
	if err := c.doJSON(ctx, http.MethodPut, path, outfit, &resp); err != nil {
		return nil, "", err
	}
	return &resp.Outfit, resp.Checkpoint, nil
}

func (c *HTTPClient) DeleteOutfit(ctx context.Context, id int64) (string, error) {
	var resp markerResponse
	path := fmt.Sprintf("/api/outfits/%d", id)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Checkpoint, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorTransport, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) setAuth(req *http.Request) {
	c.mu.RLock()
	credential, kind := c.credential, c.kind
	c.mu.RUnlock()

	if credential == "" {
		return
	}
	if kind == "" {
		kind = common.CredentialKindBearer
	}
	// "bearer" -> "Bearer <token>"
	req.Header.Set("Authorization", strings.ToUpper(kind[:1])+kind[1:]+" "+credential)
}

// checkStatus maps a non-2xx response onto the error taxonomy. 401/403 are
// authentication rejections; anything else carries the server's own message.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := readErrorMessage(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, msg)
	}
	return fmt.Errorf("%w: %s", common.ErrorRejected, msg)
}

func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return "no details"
	}

	var wire struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &wire) == nil && wire.Error != "" {
		return wire.Error
	}
	return strings.TrimSpace(string(data))
}
