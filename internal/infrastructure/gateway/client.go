package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"payroll-chain.backend/internal/config"
	domainerrors "payroll-chain.backend/internal/domain/errors"
	"payroll-chain.backend/internal/metrics"
	"payroll-chain.backend/pkg/logger"
)

// Client talks to the managed payments gateway. All outbound calls pass
// through a shared rate limiter because the provider throttles at about
// 35 requests per second across the whole account.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a gateway client from configuration.
func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// APIError is a non-2xx response from the gateway.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Recipient is an off-chain payout destination registered with the gateway.
type Recipient struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Wallet is a managed on-chain wallet provisioned by the gateway.
type Wallet struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

// Payout is a custodial USDC disbursement.
type Payout struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Balance is a token amount held on a single chain.
type Balance struct {
	Chain  string `json:"chain"`
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

// ContractCallResult is the gateway's acknowledgement of a submitted
// contract write. MessageHash is only present for messenger burns.
type ContractCallResult struct {
	TxHash      string `json:"txHash"`
	MessageHash string `json:"messageHash,omitempty"`
}

// UserOperation is the gateway's handle on a sponsored operation.
type UserOperation struct {
	OperationHash string `json:"operationHash"`
	Status        string `json:"status"`
}

// OperationEstimate carries fee figures for a not-yet-submitted operation.
type OperationEstimate struct {
	GasLimit     string `json:"gasLimit"`
	GasPriceWei  string `json:"gasPriceWei"`
	TotalFeeWei  string `json:"totalFeeWei"`
	TotalFeeEth  string `json:"totalFeeEth"`
	PolicyStatus string `json:"policyStatus"`
}

// OperationReceipt is the final on-chain outcome of a sponsored operation.
type OperationReceipt struct {
	OperationHash string `json:"operationHash"`
	TxHash        string `json:"txHash"`
	Success       bool   `json:"success"`
	ActualFeeWei  string `json:"actualFeeWei"`
}

// CreateRecipient registers a payout recipient keyed by email.
func (c *Client) CreateRecipient(ctx context.Context, name, email string) (*Recipient, error) {
	var out Recipient
	err := c.doJSON(ctx, http.MethodPost, "/v1/recipients", map[string]string{
		"name":  name,
		"email": email,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateWallet provisions a managed wallet for the given reference.
func (c *Client) CreateWallet(ctx context.Context, externalRef string) (*Wallet, error) {
	var out Wallet
	err := c.doJSON(ctx, http.MethodPost, "/v1/wallets", map[string]string{
		"externalRef": externalRef,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePayout submits a custodial USDC payout to a registered recipient.
// The gateway settles asynchronously and reports terminal state by webhook.
func (c *Client) CreatePayout(ctx context.Context, recipientRef, amount, chain string) (*Payout, error) {
	var out Payout
	err := c.doJSON(ctx, http.MethodPost, "/v1/payouts", map[string]string{
		"recipientId": recipientRef,
		"amount":      amount,
		"currency":    "USDC",
		"chain":       chain,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetWalletBalances fetches token balances for a managed wallet.
func (c *Client) GetWalletBalances(ctx context.Context, walletRef string) ([]Balance, error) {
	var out struct {
		Balances []Balance `json:"balances"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/v1/wallets/"+walletRef+"/balances", nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Balances, nil
}

// ExecuteContractCall submits a contract write from a managed wallet.
func (c *Client) ExecuteContractCall(ctx context.Context, walletRef, chain, to, data, value string) (*ContractCallResult, error) {
	var out ContractCallResult
	err := c.doJSON(ctx, http.MethodPost, "/v1/wallets/"+walletRef+"/contract-calls", map[string]string{
		"chain": chain,
		"to":    to,
		"data":  data,
		"value": value,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SponsorUserOperation submits a gas-sponsored operation under a policy.
func (c *Client) SponsorUserOperation(ctx context.Context, walletRef, chain, to, data, value, policyID string) (*UserOperation, error) {
	var out UserOperation
	err := c.doJSON(ctx, http.MethodPost, "/v1/user-operations/sponsor", map[string]string{
		"walletId": walletRef,
		"chain":    chain,
		"to":       to,
		"data":     data,
		"value":    value,
		"policyId": policyID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EstimateUserOperation prices a sponsored operation without submitting it.
func (c *Client) EstimateUserOperation(ctx context.Context, walletRef, chain, to, data, value string) (*OperationEstimate, error) {
	var out OperationEstimate
	err := c.doJSON(ctx, http.MethodPost, "/v1/user-operations/estimate", map[string]string{
		"walletId": walletRef,
		"chain":    chain,
		"to":       to,
		"data":     data,
		"value":    value,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitUserOperation submits a previously estimated fee-abstracted
// operation where the wallet pays gas in USDC. maxFeeUSDC caps the USDC
// permit the gateway may charge for gas.
func (c *Client) SubmitUserOperation(ctx context.Context, walletRef, chain, to, data, value, maxFeeUSDC string) (*UserOperation, error) {
	var out UserOperation
	err := c.doJSON(ctx, http.MethodPost, "/v1/user-operations", map[string]string{
		"walletId":   walletRef,
		"chain":      chain,
		"to":         to,
		"data":       data,
		"value":      value,
		"payGasWith": "USDC",
		"maxFeeUsdc": maxFeeUSDC,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUserOperationReceipt fetches the receipt for a sponsored operation.
// Returns nil when the operation has not landed yet.
func (c *Client) GetUserOperationReceipt(ctx context.Context, operationHash string) (*OperationReceipt, error) {
	var out OperationReceipt
	err := c.doJSON(ctx, http.MethodGet, "/v1/user-operations/"+operationHash+"/receipt", nil, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// GetNativeTokenPriceUSD fetches the gateway's spot price for a chain's
// native token, used to convert wei fees into USDC.
func (c *Client) GetNativeTokenPriceUSD(ctx context.Context, chain string) (string, error) {
	var out struct {
		Chain    string `json:"chain"`
		PriceUSD string `json:"priceUsd"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/v1/prices/native?chain="+chain, nil, &out)
	if err != nil {
		return "", err
	}
	return out.PriceUSD, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("gateway rate limiter: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal gateway request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error(ctx, "gateway request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("gateway request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	logger.Debug(ctx, "gateway request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))
	metrics.GatewayRequestDuration.
		WithLabelValues(method, strconv.Itoa(resp.StatusCode)).
		Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode gateway response: %w", err)
		}
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
	}
	var parsed struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if len(data) > 0 && json.Unmarshal(data, &parsed) == nil && parsed.Error.Message != "" {
		apiErr.Code = parsed.Error.Code
		apiErr.Message = parsed.Error.Message
	}

	if apiErr.Code == "INSUFFICIENT_BALANCE" {
		return fmt.Errorf("%w: %s", domainerrors.ErrInsufficientBalance, apiErr.Message)
	}
	return apiErr
}
