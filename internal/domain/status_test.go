package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayoutStatusTerminal(t *testing.T) {
	assert.True(t, PayoutSuccess.Terminal())
	assert.True(t, PayoutFailed.Terminal())
	assert.False(t, PayoutPending.Terminal())
	assert.False(t, PayoutRequiresCreation.Terminal())
	assert.False(t, PayoutRequiresFulfillment.Terminal())
}

func TestPaymentStatusTerminal(t *testing.T) {
	assert.True(t, PaymentCharged.Terminal())
	assert.True(t, PaymentVoided.Terminal())
	assert.True(t, PaymentFailed.Terminal())
	// Authorized still awaits capture or void.
	assert.False(t, PaymentAuthorized.Terminal())
	assert.False(t, PaymentPending.Terminal())
}

func TestRefundStatusTerminal(t *testing.T) {
	assert.True(t, RefundSuccess.Terminal())
	assert.True(t, RefundFailure.Terminal())
	assert.False(t, RefundPending.Terminal())
}

func TestLegalTypeFor(t *testing.T) {
	assert.Equal(t, LegalPrivate, LegalTypeFor(EntityIndividual))
	assert.Equal(t, LegalPrivate, LegalTypeFor(EntityPersonal))
	assert.Equal(t, LegalPrivate, LegalTypeFor(EntityNonProfit))
	assert.Equal(t, LegalBusiness, LegalTypeFor(EntityCompany))
	assert.Equal(t, LegalBusiness, LegalTypeFor(EntityPublicSector))
	assert.Equal(t, LegalBusiness, LegalTypeFor(EntityBusiness))
}

func TestBankDetailsVariant(t *testing.T) {
	assert.Equal(t, BankDetailIBAN, BankDetails{IBAN: "DE89370400440532013000", BIC: "COBADEFFXXX"}.Variant())
	assert.Equal(t, BankDetailSortCode, BankDetails{SortCode: "231470", AccountNumber: "28821822"}.Variant())
	assert.Equal(t, BankDetailSwift, BankDetails{SwiftCode: "BOFAUS3N"}.Variant())
	assert.Equal(t, BankDetailNone, BankDetails{}.Variant())
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "requires_fulfillment", PayoutRequiresFulfillment.String())
	assert.Equal(t, "charged", PaymentCharged.String())
	assert.Equal(t, "failure", RefundFailure.String())
	assert.Equal(t, "payout_status(99)", PayoutStatus(99).String())
}
