package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleNone, role)

	_, err = ParseRole("superuser")
	require.Error(t, err)
}

func TestRoleNormalize(t *testing.T) {
	assert.Equal(t, RoleNone, Role("").Normalize())
	assert.Equal(t, RoleNone, Role("root").Normalize())
	assert.Equal(t, RoleSeller, RoleSeller.Normalize())
}

func TestPaymentStatusTerminal(t *testing.T) {
	assert.True(t, PaymentStatusPaid.IsTerminal())
	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.Equal(t, PaymentStatusPending, PaymentStatus("success").Normalize())
	assert.Equal(t, PaymentStatusPending, PaymentStatus("").Normalize())
	assert.Equal(t, PaymentStatusPaid, PaymentStatusPaid.Normalize())
}

func TestOutboxEventAggregates(t *testing.T) {
	for _, e := range OutboxEventTypes() {
		assert.True(t, e.IsValid())
		assert.True(t, e.Aggregate().IsValid(), e)
	}
	assert.Equal(t, AggregatePaymentIntent, EventPaymentUnrecorded.Aggregate())
	assert.Equal(t, AggregatePaymentRecord, EventPaymentPaid.Aggregate())
	assert.False(t, OutboxEventType("order_created").IsValid())
	assert.Empty(t, OutboxEventType("order_created").Aggregate())
}
