package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/medimall/medimall-backend/pkg/config"
	"github.com/medimall/medimall-backend/pkg/logger"
)

// keyPrefixes lists the secret and restricted key prefixes each mode accepts.
var keyPrefixes = map[string][]string{
	"test": {"sk_test_", "rk_test_"},
	"live": {"sk_live_", "rk_live_"},
}

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errInvalidStripeEnv = errors.New(`stripe environment must be "test" or "live"`)
)

// Client holds the Stripe API client and the settings shared by every payment
// intent call.
type Client struct {
	api      *stripe.Client
	mode     string
	currency string
}

func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	mode := cfg.Environment()
	prefixes, ok := keyPrefixes[mode]
	if !ok {
		return nil, errInvalidStripeEnv
	}

	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	if !hasAnyPrefix(key, prefixes) {
		return nil, fmt.Errorf("stripe %s mode requires a %s key", mode, strings.Join(prefixes, " or "))
	}

	c := &Client{api: stripe.NewClient(key), mode: mode, currency: cfg.NormalizedCurrency()}
	logg.Info(logg.WithFields(ctx, map[string]any{"stripe_mode": mode, "currency": c.currency}), "stripe client initialized")
	return c, nil
}

// API returns the underlying Stripe API client.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// Mode reports "test" or "live".
func (c *Client) Mode() string {
	if c == nil {
		return ""
	}
	return c.mode
}

// Currency is the fixed settlement currency for every intent.
func (c *Client) Currency() string {
	if c == nil || c.currency == "" {
		return string(stripe.CurrencyUSD)
	}
	return c.currency
}

// ErrorMessage prefers the provider's user-facing message over the raw error text.
func ErrorMessage(err error) string {
	var stripeErr *stripe.Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &stripeErr) && strings.TrimSpace(stripeErr.Msg) != "":
		return stripeErr.Msg
	default:
		return err.Error()
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
