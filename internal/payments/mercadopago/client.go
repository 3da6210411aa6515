package mercadopago

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

const DefaultBaseURL = "https://api.mercadopago.com"

// Config carries the gateway credentials and callback endpoints.
type Config struct {
	BaseURL         string
	AccessToken     string
	BackURL         string
	NotificationURL string
	Timeout         time.Duration
}

// Client talks to the Mercado Pago REST API for preference creation and
// payment-status lookup.
type Client struct {
	http *resty.Client
	cfg  Config
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Accept", "application/json")

	return &Client{http: client, cfg: cfg}
}

type preferenceItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type preferenceRequest struct {
	Items             []preferenceItem `json:"items"`
	ExternalReference string           `json:"external_reference"`
	NotificationURL   string           `json:"notification_url,omitempty"`
	BackURLs          map[string]string `json:"back_urls,omitempty"`
	Payer             preferencePayer  `json:"payer"`
}

type preferencePayer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone struct {
		Number string `json:"number"`
	} `json:"phone"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

func (c *Client) CreatePreference(ctx context.Context, order domain.Order, items []domain.Item) (*ports.Preference, error) {
	body := preferenceRequest{
		ExternalReference: order.Number,
		NotificationURL:   c.cfg.NotificationURL,
	}
	if c.cfg.BackURL != "" {
		body.BackURLs = map[string]string{"success": c.cfg.BackURL, "failure": c.cfg.BackURL, "pending": c.cfg.BackURL}
	}
	body.Payer.Name = order.CustomerName
	body.Payer.Email = order.CustomerEmail
	body.Payer.Phone.Number = order.CustomerPhone

	for _, item := range items {
		body.Items = append(body.Items, preferenceItem{
			ID:        item.ProductID,
			Title:     item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: float64(item.UnitPriceCents) / 100,
		})
	}
	// Shipping is charged as its own line so the preference total matches
	// the order total fixed at creation.
	if order.ShippingCents > 0 {
		body.Items = append(body.Items, preferenceItem{
			ID:        "shipping",
			Title:     "Shipping",
			Quantity:  1,
			UnitPrice: float64(order.ShippingCents) / 100,
		})
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/checkout/preferences")
	if err != nil {
		return nil, fmt.Errorf("%w: create preference: %v", ports.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode() >= 500 {
		return nil, fmt.Errorf("%w: create preference returned status %d", ports.ErrGatewayUnavailable, resp.StatusCode())
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("create preference rejected with status %d: %s", resp.StatusCode(), resp.Body())
	}

	var parsed preferenceResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("parse preference response: %w", err)
	}
	if parsed.ID == "" || parsed.InitPoint == "" {
		return nil, fmt.Errorf("incomplete preference response: %s", resp.Body())
	}

	return &ports.Preference{ID: parsed.ID, RedirectURL: parsed.InitPoint}, nil
}

type paymentResponse struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	StatusDetail      string      `json:"status_detail"`
	ExternalReference string      `json:"external_reference"`
}

func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*ports.PaymentLookup, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/v1/payments/" + paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: payment lookup: %v", ports.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode() >= 500 {
		return nil, fmt.Errorf("%w: payment lookup returned status %d", ports.ErrGatewayUnavailable, resp.StatusCode())
	}
	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("payment %s not found at gateway", paymentID)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("payment lookup rejected with status %d: %s", resp.StatusCode(), resp.Body())
	}

	var parsed paymentResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("parse payment response: %w", err)
	}

	return &ports.PaymentLookup{
		PaymentID:         parsed.ID.String(),
		Status:            ports.ParsePaymentStatus(parsed.Status),
		StatusDetail:      parsed.StatusDetail,
		ExternalReference: parsed.ExternalReference,
	}, nil
}
