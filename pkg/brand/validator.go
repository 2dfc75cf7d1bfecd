package brand

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Validator checks a brand candidate against an external registry.
type Validator interface {
	Validate(ctx context.Context, name string) (bool, error)
	Healthcheck(ctx context.Context) error
}

// HTTPValidator talks to a brand registry service over REST.
type HTTPValidator struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPValidator(baseURL, apiKey string) *HTTPValidator {
	return &HTTPValidator{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type lookupResponse struct {
	Exists bool `json:"exists"`
}

// Validate returns whether the registry knows the brand name.
func (v *HTTPValidator) Validate(ctx context.Context, name string) (bool, error) {
	endpoint := fmt.Sprintf("%s/v1/brands/lookup?name=%s", v.baseURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create validation request: %w", err)
	}
	if v.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("brand registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("brand registry returned status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode registry response: %w", err)
	}
	return body.Exists, nil
}

func (v *HTTPValidator) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/v1/health", nil)
	if err != nil {
		return err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("brand registry is not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("brand registry health returned status %d", resp.StatusCode)
	}
	return nil
}
