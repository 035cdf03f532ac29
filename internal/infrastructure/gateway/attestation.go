package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"payroll-chain.backend/internal/config"
)

// AttestationClient polls the attestation service for signed burn messages.
type AttestationClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAttestationClient creates an attestation client from configuration.
func NewAttestationClient(cfg config.AttestationConfig) *AttestationClient {
	return &AttestationClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Attestation is a signed burn message ready for delivery on the
// destination chain.
type Attestation struct {
	Message     string `json:"message"`
	Attestation string `json:"attestation"`
}

// GetAttestation fetches the signed message for a burn message hash.
// ready is false while the service has not finished signing; the caller
// polls until ready or its attempt budget runs out.
func (c *AttestationClient) GetAttestation(ctx context.Context, messageHash string) (att *Attestation, ready bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/attestations/"+messageHash, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create attestation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("attestation request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// The service returns 404 until it has observed the burn.
	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("attestation service returned %d", resp.StatusCode),
		}
	}

	var out struct {
		Status      string `json:"status"`
		Message     string `json:"message"`
		Attestation string `json:"attestation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("decode attestation response: %w", err)
	}

	if out.Status != "complete" || out.Attestation == "" {
		return nil, false, nil
	}
	return &Attestation{Message: out.Message, Attestation: out.Attestation}, true, nil
}
