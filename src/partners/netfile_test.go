package partners

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/mapletax/backend/src/models"
)

func validRequest() models.SubmissionRequest {
	return models.SubmissionRequest{
		TaxYear: 2024,
		Taxpayer: models.TaxpayerInfo{
			FirstName: "Jordan",
			LastName:  "Chen",
			SIN:       "123456789",
			Province:  models.ProvinceON,
		},
		Income:        models.IncomeBreakdown{Employment: 50000, Total: 50000},
		TaxableIncome: 50000,
		TotalTax:      7669.25,
		TotalPaid:     8000,
		RefundOrOwing: 330.75,
	}
}

func TestNetfileValidateFiling(t *testing.T) {
	p := NewNetfileProvider(NewMemoryStore())

	resp, err := p.ValidateFiling(validRequest())
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Errors)

	bad := validRequest()
	bad.Taxpayer.SIN = "12345"
	bad.Taxpayer.Province = ""
	resp, err = p.ValidateFiling(bad)
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Len(t, resp.Errors, 2)
}

func TestNetfileSubmitAndCheckStatus(t *testing.T) {
	store := NewMemoryStore()
	p := NewNetfileProvider(store)

	resp, err := p.SubmitFiling(validRequest())
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, StatusAccepted, resp.Status)
	assert.True(t, strings.HasPrefix(resp.ConfirmationNumber, "NF-2024-"))

	status, err := p.CheckStatus(resp.ConfirmationNumber)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, status.Status)
	assert.Equal(t, resp.ConfirmationNumber, status.ConfirmationNumber)

	require.NoError(t, store.UpdateStatus(resp.ConfirmationNumber, StatusProcessing))
	status, err = p.CheckStatus(resp.ConfirmationNumber)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, status.Status)
}

func TestNetfileSubmitInvalidFiling(t *testing.T) {
	p := NewNetfileProvider(NewMemoryStore())

	bad := validRequest()
	bad.Taxpayer.FirstName = ""
	bad.Taxpayer.LastName = ""
	resp, err := p.SubmitFiling(bad)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, StatusRejected, resp.Status)
	assert.NotEmpty(t, resp.Errors)
	assert.Empty(t, resp.ConfirmationNumber)
}

func TestNetfileOwingWarning(t *testing.T) {
	p := NewNetfileProvider(NewMemoryStore())

	req := validRequest()
	req.TotalPaid = 5000
	req.RefundOrOwing = -2669.25
	resp, err := p.SubmitFiling(req)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "balance owing")
}

func TestCheckStatusUnknownConfirmation(t *testing.T) {
	p := NewNetfileProvider(NewMemoryStore())
	_, err := p.CheckStatus("NF-2024-NOPE")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestGetProvider(t *testing.T) {
	p, err := GetProvider("netfile", NewMemoryStore())
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = GetProvider("efile-direct", NewMemoryStore())
	assert.Error(t, err)
}
