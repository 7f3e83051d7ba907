package reconcile

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payment-router/internal/domain"
)

var testVariants = []string{"COMPLETED", "PENDING", "REJECTED", "processing", "incoming_payment_waiting"}

var testMapping = map[string]domain.PayoutStatus{
	"COMPLETED":                domain.PayoutSuccess,
	"PENDING":                  domain.PayoutPending,
	"REJECTED":                 domain.PayoutFailed,
	"processing":               domain.PayoutPending,
	"incoming_payment_waiting": domain.PayoutPending,
}

func TestPayoutTable_TotalOverDeclaredVariants(t *testing.T) {
	table, err := NewPayoutStatusTable("wise", testVariants, testMapping)
	require.NoError(t, err)

	for _, v := range testVariants {
		s, err := table.Map(v)
		require.NoError(t, err, "variant %q must be mapped", v)
		// Idempotent and deterministic.
		again, err := table.Map(v)
		require.NoError(t, err)
		assert.Equal(t, s, again)
	}
}

func TestPayoutTable_ConstructionRejectsPartialMapping(t *testing.T) {
	partial := map[string]domain.PayoutStatus{"COMPLETED": domain.PayoutSuccess}
	_, err := NewPayoutStatusTable("wise", testVariants, partial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no canonical mapping")
}

func TestPayoutTable_ConstructionRejectsUndeclaredKey(t *testing.T) {
	extra := map[string]domain.PayoutStatus{}
	for k, v := range testMapping {
		extra[k] = v
	}
	extra["MYSTERY"] = domain.PayoutSuccess
	_, err := NewPayoutStatusTable("wise", testVariants, extra)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared status")
}

func TestPayoutTable_ScenarioMappings(t *testing.T) {
	table, err := NewPayoutStatusTable("wise", testVariants, testMapping)
	require.NoError(t, err)

	cases := map[string]domain.PayoutStatus{
		"COMPLETED":                domain.PayoutSuccess,
		"REJECTED":                 domain.PayoutFailed,
		"PENDING":                  domain.PayoutPending,
		"processing":               domain.PayoutPending,
		"incoming_payment_waiting": domain.PayoutPending,
	}
	for variant, want := range cases {
		got, err := table.Map(variant)
		require.NoError(t, err)
		assert.Equal(t, want, got, "variant %q", variant)
	}

	// An intermediate status must never claim a terminal outcome.
	got, err := table.Map("incoming_payment_waiting")
	require.NoError(t, err)
	assert.False(t, got.Terminal())
}

func TestPayoutTable_UnmappedInputErrors(t *testing.T) {
	table, err := NewPayoutStatusTable("wise", testVariants, testMapping)
	require.NoError(t, err)

	_, err = table.Map("SOMETHING_NEW")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnmappedStatus)
}

func TestPayoutTable_CountsReconciliations(t *testing.T) {
	table, err := NewPayoutStatusTable("metrics-test", testVariants, testMapping)
	require.NoError(t, err)

	before := testutil.ToFloat64(GetReconciledTotal().WithLabelValues("metrics-test", "payout", "success"))
	_, err = table.Map("COMPLETED")
	require.NoError(t, err)
	after := testutil.ToFloat64(GetReconciledTotal().WithLabelValues("metrics-test", "payout", "success"))
	assert.Equal(t, before+1, after)
}

func TestPaymentAndRefundTables(t *testing.T) {
	payments, err := NewPaymentStatusTable("paypal",
		[]string{"CREATED", "VOIDED"},
		map[string]domain.PaymentStatus{
			"CREATED": domain.PaymentAuthorized,
			"VOIDED":  domain.PaymentVoided,
		})
	require.NoError(t, err)
	s, err := payments.Map("CREATED")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentAuthorized, s)

	refunds, err := NewRefundStatusTable("paypal",
		[]string{"COMPLETED", "PENDING"},
		map[string]domain.RefundStatus{
			"COMPLETED": domain.RefundSuccess,
			"PENDING":   domain.RefundPending,
		})
	require.NoError(t, err)
	r, err := refunds.Map("COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundSuccess, r)
}
