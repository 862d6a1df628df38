package payments

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
	pkgstripe "github.com/medimall/medimall-backend/pkg/stripe"
)

const metadataEmailKey = "email"

var minorUnitsPerMajor = decimal.NewFromInt(100)

// Intent is the provider-side view of a payment intent that this service relies on.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
	Created      time.Time
	Email        string
}

// Broker creates and looks up provider payment intents. It never persists anything.
type Broker interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, email string) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
}

// IntentAPI is the subset of the Stripe payment intent API the broker needs.
type IntentAPI interface {
	Create(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
	Retrieve(ctx context.Context, id string, params *stripe.PaymentIntentRetrieveParams) (*stripe.PaymentIntent, error)
}

type stripeBroker struct {
	api      IntentAPI
	currency string
}

// NewStripeBroker builds a broker that settles every intent in the client's fixed currency.
func NewStripeBroker(client *pkgstripe.Client) Broker {
	if client.API() == nil {
		return nil
	}
	return NewBrokerWithAPI(client.API().V1PaymentIntents, client.Currency())
}

// NewBrokerWithAPI builds a broker over an arbitrary intent API.
func NewBrokerWithAPI(api IntentAPI, currency string) Broker {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &stripeBroker{api: api, currency: currency}
}

// ToMinorUnits converts a major-unit amount to the provider's integer minor units,
// rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitsPerMajor).Round(0).IntPart()
}

func (b *stripeBroker) CreateIntent(ctx context.Context, amount decimal.Decimal, email string) (*Intent, error) {
	minor := ToMinorUnits(amount)
	if minor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(minor),
		Currency: stripe.String(b.currency),
	}
	params.AddMetadata(metadataEmailKey, email)

	pi, err := b.api.Create(ctx, params)
	if err != nil {
		return nil, mapProviderError(err, "create payment intent")
	}
	return intentFromStripe(pi), nil
}

func (b *stripeBroker) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}
	pi, err := b.api.Retrieve(ctx, id, &stripe.PaymentIntentRetrieveParams{})
	if err != nil {
		return nil, mapProviderError(err, "retrieve payment intent")
	}
	return intentFromStripe(pi), nil
}

func mapProviderError(err error, op string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.HTTPStatusCode == http.StatusNotFound:
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "payment intent not found")
		case stripeErr.Type == stripe.ErrorTypeInvalidRequest:
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, pkgstripe.ErrorMessage(err))
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op+": "+pkgstripe.ErrorMessage(err))
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	if pi == nil {
		return nil
	}
	out := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Email:        pi.Metadata[metadataEmailKey],
	}
	if pi.Created > 0 {
		out.Created = time.Unix(pi.Created, 0).UTC()
	}
	return out
}
