// internal/services/payment_service.go
package services

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

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/riteshop/riteshop-backend/internal/config"
)

// PayPalOrder is the slice of the PayPal checkout order response the
// frontend needs to drive the approval flow.
type PayPalOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href   string `json:"href"`
		Rel    string `json:"rel"`
		Method string `json:"method"`
	} `json:"links,omitempty"`
}

// PayPalClient talks to the PayPal checkout REST API (v2). Access tokens are
// fetched with client credentials and cached until shortly before expiry.
type PayPalClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalClient(cfg *config.Config) *PayPalClient {
	return &PayPalClient{
		baseURL:      strings.TrimRight(cfg.Payment.PayPalBaseURL, "/"),
		clientID:     cfg.Payment.PayPalClientID,
		clientSecret: cfg.Payment.PayPalClientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateTransaction opens a CAPTURE-intent checkout order for the given
// total in USD.
func (c *PayPalClient) CreateTransaction(ctx context.Context, total float64) (*PayPalOrder, error) {
	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": "USD",
					"value":         fmt.Sprintf("%.2f", total),
				},
			},
		},
	}

	var order PayPalOrder
	if err := c.post(ctx, "/v2/checkout/orders", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CapturePayment captures an approved checkout order.
func (c *PayPalClient) CapturePayment(ctx context.Context, paypalOrderID string) (*PayPalOrder, error) {
	var order PayPalOrder
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", paypalOrderID)
	if err := c.post(ctx, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *PayPalClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	token, err := c.accessTokenFor(ctx)
	if err != nil {
		return err
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode paypal request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to build paypal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paypal returned %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode paypal response: %w", err)
	}
	return nil
}

func (c *PayPalClient) accessTokenFor(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("failed to build paypal token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal returned %d: %s", resp.StatusCode, string(raw))
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to decode paypal token response: %w", err)
	}

	c.accessToken = token.AccessToken
	// Refresh a minute early so a token never expires mid-request.
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

// StripeGateway wraps the Stripe payment-intent API for card checkouts.
type StripeGateway struct{}

func NewStripeGateway(cfg *config.Config) *StripeGateway {
	stripe.Key = cfg.Payment.StripeSecretKey
	return &StripeGateway{}
}

// CreateIntent opens a payment intent for the order total. Stripe amounts
// are in cents.
func (g *StripeGateway) CreateIntent(total float64, metadata map[string]string) (*PaymentIntentResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(total * 100)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// IntentSucceeded reports whether the payment intent has settled.
func (g *StripeGateway) IntentSucceeded(paymentIntentID string) (bool, error) {
	pi, err := paymentintent.Get(paymentIntentID, nil)
	if err != nil {
		return false, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}
	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}
