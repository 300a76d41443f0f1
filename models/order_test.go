package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		allowed []OrderStatus
	}{
		{OrderStatusPending, []OrderStatus{OrderStatusApproved, OrderStatusRejected}},
		{OrderStatusApproved, []OrderStatus{OrderStatusDelivering}},
		{OrderStatusDelivering, []OrderStatus{OrderStatusDelivered}},
		{OrderStatusRejected, nil},
		{OrderStatusDelivered, nil},
		{OrderStatusCancelled, nil},
	}

	all := []OrderStatus{
		OrderStatusPending, OrderStatusApproved, OrderStatusRejected,
		OrderStatusDelivering, OrderStatusDelivered, OrderStatusCancelled,
	}

	for _, tc := range cases {
		t.Run(string(tc.from), func(t *testing.T) {
			assert.ElementsMatch(t, tc.allowed, NextStatuses(tc.from))
			// Only the documented targets are reachable in one transition.
			for _, target := range all {
				want := false
				for _, a := range tc.allowed {
					if a == target {
						want = true
					}
				}
				assert.Equal(t, want, tc.from.CanTransitionTo(target), "%s -> %s", tc.from, target)
			}
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusRejected.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusApproved.IsTerminal())
	assert.False(t, OrderStatusDelivering.IsTerminal())
}

func TestInvalidTransitionErrorNamesLegalStates(t *testing.T) {
	err := &InvalidTransitionError{From: OrderStatusApproved, To: OrderStatusDelivered}
	assert.Contains(t, err.Error(), "delivering")
	assert.Contains(t, err.Error(), "approved")

	err = &InvalidTransitionError{From: OrderStatusDelivered, To: OrderStatusPending}
	assert.Equal(t, "delivered orders cannot be changed", err.Error())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("Approved")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusApproved, status)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)
}

func TestParsePaymentMethod(t *testing.T) {
	method, err := ParsePaymentMethod("COD")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCOD, method)

	method, err = ParsePaymentMethod("vnpay")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodVNPay, method)

	_, err = ParsePaymentMethod("paypal")
	assert.Error(t, err)
}
