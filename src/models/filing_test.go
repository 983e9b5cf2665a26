package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilingDefaults(t *testing.T) {
	f := NewFiling(42, 2024)

	assert.NotEmpty(t, f.ID)
	assert.Equal(t, int64(42), f.UserID)
	assert.Equal(t, 2024, f.TaxYear)
	assert.Equal(t, StatusNotStarted, f.Status)
	assert.Empty(t, f.T4Slips)
	assert.Empty(t, f.RRSPContributions)
}

func TestAddRecordAssignsID(t *testing.T) {
	f := NewFiling(1, 2024)

	id, err := f.AddRecord(ListT4, []byte(`{"employerName":"Acme Corp","employmentIncome":50000}`))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Len(t, f.T4Slips, 1)
	assert.Equal(t, id, f.T4Slips[0].ID)
	assert.Equal(t, "Acme Corp", f.T4Slips[0].EmployerName)
	assert.Equal(t, 50000.0, f.T4Slips[0].EmploymentIncome)
}

func TestAddRecordIgnoresClientSuppliedID(t *testing.T) {
	f := NewFiling(1, 2024)

	id, err := f.AddRecord(ListRRSP, []byte(`{"id":"client-chosen","institution":"Big Bank","amount":4000}`))
	require.NoError(t, err)
	assert.NotEqual(t, "client-chosen", id)
	assert.Equal(t, id, f.RRSPContributions[0].ID)
}

func TestAddRecordInvalidPayload(t *testing.T) {
	f := NewFiling(1, 2024)

	_, err := f.AddRecord(ListT4, []byte(`{not json`))
	assert.Error(t, err)
	assert.Empty(t, f.T4Slips)
}

func TestAddRecordUnknownList(t *testing.T) {
	f := NewFiling(1, 2024)

	_, err := f.AddRecord(RecordList("t9999"), []byte(`{}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown record list")
}

func TestUpdateRecordReplacesAndKeepsID(t *testing.T) {
	f := NewFiling(1, 2024)
	id, err := f.AddRecord(ListDonations, []byte(`{"charityName":"Food Bank","amount":250}`))
	require.NoError(t, err)

	err = f.UpdateRecord(ListDonations, id, []byte(`{"charityName":"Food Bank","amount":300}`))
	require.NoError(t, err)

	require.Len(t, f.CharitableDonations, 1)
	assert.Equal(t, id, f.CharitableDonations[0].ID)
	assert.Equal(t, 300.0, f.CharitableDonations[0].Amount)
}

func TestUpdateRecordNotFound(t *testing.T) {
	f := NewFiling(1, 2024)

	err := f.UpdateRecord(ListT5, "missing-id", []byte(`{"interest":100}`))
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRemoveRecord(t *testing.T) {
	f := NewFiling(1, 2024)
	firstID, err := f.AddRecord(ListMedical, []byte(`{"description":"Dental","amount":800}`))
	require.NoError(t, err)
	secondID, err := f.AddRecord(ListMedical, []byte(`{"description":"Prescriptions","amount":150}`))
	require.NoError(t, err)

	err = f.RemoveRecord(ListMedical, firstID)
	require.NoError(t, err)

	require.Len(t, f.MedicalExpenses, 1)
	assert.Equal(t, secondID, f.MedicalExpenses[0].ID)

	err = f.RemoveRecord(ListMedical, firstID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestIsValidProvince(t *testing.T) {
	assert.True(t, IsValidProvince(ProvinceON))
	assert.True(t, IsValidProvince(ProvinceNU))
	assert.False(t, IsValidProvince(Province("XX")))
	assert.False(t, IsValidProvince(Province("")))
	assert.False(t, IsValidProvince(Province("on")))
}
