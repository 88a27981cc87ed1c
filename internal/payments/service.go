// Package payments is a thin pass-through to Stripe: the backend never
// stores card data, it only brokers intents and customers for the client.
package payments

import (
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// Gateway abstracts the Stripe calls the service performs.
type Gateway interface {
	CreatePaymentIntent(amount int64, currency string, customerID string) (*stripe.PaymentIntent, error)
	ConfirmPaymentIntent(id, paymentMethodID string) (*stripe.PaymentIntent, error)
	CreatePaymentMethod(token string) (*stripe.PaymentMethod, error)
	CreateCustomer(email, name string) (*stripe.Customer, error)
}

// StripeGateway talks to the real Stripe API.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway constructs a gateway bound to the given secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreatePaymentIntent(amount int64, currency string, customerID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	return g.api.PaymentIntents.New(params)
}

func (g *StripeGateway) ConfirmPaymentIntent(id, paymentMethodID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	}
	return g.api.PaymentIntents.Confirm(id, params)
}

func (g *StripeGateway) CreatePaymentMethod(token string) (*stripe.PaymentMethod, error) {
	return g.api.PaymentMethods.New(&stripe.PaymentMethodParams{
		Type: stripe.String("card"),
		Card: &stripe.PaymentMethodCardParams{Token: stripe.String(token)},
	})
}

func (g *StripeGateway) CreateCustomer(email, name string) (*stripe.Customer, error) {
	return g.api.Customers.New(&stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	})
}

// Service validates inputs before handing them to the gateway.
type Service struct {
	gateway Gateway
}

func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// Intent is the trimmed response shape returned to clients.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

func intentFrom(pi *stripe.PaymentIntent) Intent {
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
}

func (s *Service) CreateIntent(amount int64, currency, customerID string) (Intent, error) {
	if amount <= 0 {
		return Intent{}, fmt.Errorf("payments: amount must be positive")
	}
	if currency == "" {
		currency = "usd"
	}
	pi, err := s.gateway.CreatePaymentIntent(amount, currency, customerID)
	if err != nil {
		return Intent{}, fmt.Errorf("payments: create intent: %w", err)
	}
	return intentFrom(pi), nil
}

func (s *Service) ConfirmIntent(id, paymentMethodID string) (Intent, error) {
	if id == "" {
		return Intent{}, fmt.Errorf("payments: intent id is required")
	}
	pi, err := s.gateway.ConfirmPaymentIntent(id, paymentMethodID)
	if err != nil {
		return Intent{}, fmt.Errorf("payments: confirm intent: %w", err)
	}
	return intentFrom(pi), nil
}

func (s *Service) CreateMethod(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("payments: card token is required")
	}
	pm, err := s.gateway.CreatePaymentMethod(token)
	if err != nil {
		return "", fmt.Errorf("payments: create method: %w", err)
	}
	return pm.ID, nil
}

func (s *Service) CreateCustomer(email, name string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("payments: email is required")
	}
	cu, err := s.gateway.CreateCustomer(email, name)
	if err != nil {
		return "", fmt.Errorf("payments: create customer: %w", err)
	}
	return cu.ID, nil
}
