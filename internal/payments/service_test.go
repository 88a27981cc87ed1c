package payments

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

type fakeGateway struct {
	lastAmount   int64
	lastCurrency string
	lastCustomer string
	confirmedID  string
	err          error
}

func (f *fakeGateway) CreatePaymentIntent(amount int64, currency string, customerID string) (*stripe.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastAmount, f.lastCurrency, f.lastCustomer = amount, currency, customerID
	return &stripe.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret",
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
		Amount:       amount,
		Currency:     stripe.Currency(currency),
	}, nil
}

func (f *fakeGateway) ConfirmPaymentIntent(id, paymentMethodID string) (*stripe.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.confirmedID = id
	return &stripe.PaymentIntent{ID: id, Status: stripe.PaymentIntentStatusSucceeded}, nil
}

func (f *fakeGateway) CreatePaymentMethod(token string) (*stripe.PaymentMethod, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentMethod{ID: "pm_123"}, nil
}

func (f *fakeGateway) CreateCustomer(email, name string) (*stripe.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.Customer{ID: "cus_123"}, nil
}

func TestCreateIntentDefaultsCurrency(t *testing.T) {
	gw := &fakeGateway{}
	service := NewService(gw)

	intent, err := service.CreateIntent(2500, "", "cus_9")
	require.NoError(t, err)
	assert.Equal(t, "usd", gw.lastCurrency)
	assert.Equal(t, "cus_9", gw.lastCustomer)
	assert.Equal(t, int64(2500), intent.Amount)
	assert.NotEmpty(t, intent.ClientSecret)
}

func TestCreateIntentRejectsNonPositiveAmount(t *testing.T) {
	service := NewService(&fakeGateway{})

	_, err := service.CreateIntent(0, "usd", "")
	assert.Error(t, err)
}

func TestConfirmIntent(t *testing.T) {
	gw := &fakeGateway{}
	service := NewService(gw)

	intent, err := service.ConfirmIntent("pi_42", "pm_1")
	require.NoError(t, err)
	assert.Equal(t, "pi_42", gw.confirmedID)
	assert.Equal(t, string(stripe.PaymentIntentStatusSucceeded), intent.Status)

	_, err = service.ConfirmIntent("", "")
	assert.Error(t, err)
}

func TestGatewayErrorsPropagate(t *testing.T) {
	service := NewService(&fakeGateway{err: errors.New("stripe down")})

	_, err := service.CreateIntent(100, "usd", "")
	assert.ErrorContains(t, err, "stripe down")

	_, err = service.CreateCustomer("user@example.com", "User")
	assert.ErrorContains(t, err, "stripe down")
}
