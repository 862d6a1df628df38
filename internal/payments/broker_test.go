package payments

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/medimall/medimall-backend/pkg/config"
	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
	pkgstripe "github.com/medimall/medimall-backend/pkg/stripe"
)

type stubIntentAPI struct {
	newParams *stripe.PaymentIntentCreateParams
	newErr    error
	getErr    error
	intent    *stripe.PaymentIntent
}

func (s *stubIntentAPI) Create(_ context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	s.newParams = params
	if s.newErr != nil {
		return nil, s.newErr
	}
	return &stripe.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret_abc",
		Amount:       *params.Amount,
		Currency:     stripe.Currency(*params.Currency),
		Metadata:     params.Metadata,
		Created:      1700000000,
	}, nil
}

func (s *stubIntentAPI) Retrieve(_ context.Context, id string, _ *stripe.PaymentIntentRetrieveParams) (*stripe.PaymentIntent, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.intent, nil
}

func TestToMinorUnits(t *testing.T) {
	t.Parallel()

	cases := map[string]int64{
		"19.99":  1999,
		"0.015":  2,
		"10":     1000,
		"0.004":  0,
		"12.345": 1235,
	}
	for in, want := range cases {
		assert.Equal(t, want, ToMinorUnits(decimal.RequireFromString(in)), in)
	}
}

func TestCreateIntentFixedCurrencyAndMetadata(t *testing.T) {
	t.Parallel()
	api := &stubIntentAPI{}
	broker := NewBrokerWithAPI(api, "")

	intent, err := broker.CreateIntent(context.Background(), decimal.RequireFromString("19.99"), "u@x.com")
	require.NoError(t, err)

	assert.EqualValues(t, 1999, *api.newParams.Amount)
	assert.Equal(t, "usd", *api.newParams.Currency)
	assert.Equal(t, "u@x.com", api.newParams.Metadata["email"])
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, "u@x.com", intent.Email)
	assert.EqualValues(t, 1700000000, intent.Created.Unix())
}

func TestCreateIntentRejectsNonPositive(t *testing.T) {
	t.Parallel()
	api := &stubIntentAPI{}
	broker := NewBrokerWithAPI(api, "usd")

	_, err := broker.CreateIntent(context.Background(), decimal.Zero, "u@x.com")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Nil(t, api.newParams)
}

func TestProviderErrorsMapToCodes(t *testing.T) {
	t.Parallel()

	broker := NewBrokerWithAPI(&stubIntentAPI{newErr: errors.New("connection reset")}, "usd")
	_, err := broker.CreateIntent(context.Background(), decimal.NewFromInt(5), "u@x.com")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
	assert.Contains(t, pkgerrors.As(err).Message(), "connection reset")

	missing := &stripe.Error{HTTPStatusCode: http.StatusNotFound, Msg: "No such payment_intent"}
	broker = NewBrokerWithAPI(&stubIntentAPI{getErr: missing}, "usd")
	_, err = broker.RetrieveIntent(context.Background(), "pi_missing")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestNewStripeBrokerUsesClientAPI(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewStripeBroker(nil))

	client, err := pkgstripe.NewClient(context.Background(), config.StripeConfig{APIKey: "sk_test_123", Env: "test"}, nil)
	require.NoError(t, err)
	broker, ok := NewStripeBroker(client).(*stripeBroker)
	require.True(t, ok)
	assert.Same(t, client.API().V1PaymentIntents, broker.api)
	assert.Equal(t, "usd", broker.currency)
}
