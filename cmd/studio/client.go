package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ASHISH26940/asmr-studio-api/pkg/promptgen"
	"github.com/ASHISH26940/asmr-studio-api/pkg/services"
)

// APIError is a non-2xx answer from the studio API.
type APIError struct {
	StatusCode     int
	Message        string
	RequiredAmount float64
	WalletBalance  float64
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// PaymentRequired reports whether the server refused for lack of funds.
func (e *APIError) PaymentRequired() bool {
	return e.StatusCode == http.StatusPaymentRequired
}

type envelope struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	Data           json.RawMessage `json:"data"`
	Error          json.RawMessage `json:"error"`
	WalletBalance  float64         `json:"walletBalance"`
	RequiredAmount float64         `json:"requiredAmount"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 3 * time.Minute},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s %s (status %d): %w", method, path, resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if len(env.Error) > 0 && string(env.Error) != "null" {
			msg += ": " + string(env.Error)
		}
		return &APIError{
			StatusCode:     resp.StatusCode,
			Message:        msg,
			RequiredAmount: env.RequiredAmount,
			WalletBalance:  env.WalletBalance,
		}
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &out)
	return out.Token, err
}

type EnhanceResponse struct {
	EnhancedPrompts []promptgen.PromptItem `json:"enhancedPrompts"`
	SessionID       string                 `json:"sessionId"`
}

func (c *Client) Enhance(ctx context.Context, idea string) (*EnhanceResponse, error) {
	var out EnhanceResponse
	if err := c.do(ctx, http.MethodPost, "/api/enhance", map[string]string{"prompt": idea}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Wallet(ctx context.Context) (*services.Wallet, error) {
	var out services.Wallet
	if err := c.do(ctx, http.MethodGet, "/api/wallet", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

func (c *Client) Checkout(ctx context.Context, tier string) (*CheckoutResponse, error) {
	var out CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/api/payments/checkout", map[string]string{"priceId": tier}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyCheckout(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/api/payments/verify", map[string]string{"sessionId": sessionID}, nil)
}

type VideoResponse struct {
	VideoID      string `json:"videoId"`
	PredictionID string `json:"predictionId"`
	Status       string `json:"status"`
}

func (c *Client) CreateVideo(ctx context.Context, enhanced, original string) (*VideoResponse, error) {
	var out VideoResponse
	body := map[string]string{"enhancedPrompt": enhanced, "originalPrompt": original}
	if err := c.do(ctx, http.MethodPost, "/api/videos", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Prediction(ctx context.Context, id string) (*services.PredictionStatus, error) {
	var out services.PredictionStatus
	if err := c.do(ctx, http.MethodGet, "/api/predictions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
