package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Province codes for the thirteen Canadian provinces and territories.
type Province string

const (
	ProvinceAB Province = "AB"
	ProvinceBC Province = "BC"
	ProvinceMB Province = "MB"
	ProvinceNB Province = "NB"
	ProvinceNL Province = "NL"
	ProvinceNS Province = "NS"
	ProvinceNT Province = "NT"
	ProvinceNU Province = "NU"
	ProvinceON Province = "ON"
	ProvincePE Province = "PE"
	ProvinceQC Province = "QC"
	ProvinceSK Province = "SK"
	ProvinceYT Province = "YT"
)

var validProvinces = map[Province]bool{
	ProvinceAB: true, ProvinceBC: true, ProvinceMB: true, ProvinceNB: true,
	ProvinceNL: true, ProvinceNS: true, ProvinceNT: true, ProvinceNU: true,
	ProvinceON: true, ProvincePE: true, ProvinceQC: true, ProvinceSK: true,
	ProvinceYT: true,
}

// IsValidProvince reports whether p is one of the thirteen province/territory codes.
func IsValidProvince(p Province) bool {
	return validProvinces[p]
}

type MaritalStatus string

const (
	MaritalSingle    MaritalStatus = "single"
	MaritalMarried   MaritalStatus = "married"
	MaritalCommonLaw MaritalStatus = "common_law"
	MaritalDivorced  MaritalStatus = "divorced"
	MaritalSeparated MaritalStatus = "separated"
	MaritalWidowed   MaritalStatus = "widowed"
)

type FilingStatus string

const (
	StatusNotStarted FilingStatus = "not_started"
	StatusInProgress FilingStatus = "in_progress"
	StatusSubmitted  FilingStatus = "submitted"
	StatusAccepted   FilingStatus = "accepted"
)

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
}

type PersonalInfo struct {
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	SIN           string        `json:"sin"`
	DateOfBirth   string        `json:"dateOfBirth"` // YYYY-MM-DD
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Province      Province      `json:"province"`
	MaritalStatus MaritalStatus `json:"maritalStatus"`
	Address       Address       `json:"address"`
}

// T4Slip is an employment income slip.
type T4Slip struct {
	ID                  string  `json:"id"`
	EmployerName        string  `json:"employerName"`
	EmploymentIncome    float64 `json:"employmentIncome"`
	IncomeTaxDeducted   float64 `json:"incomeTaxDeducted"`
	CPPContributions    float64 `json:"cppContributions"`
	EIPremiums          float64 `json:"eiPremiums"`
	UnionDues           float64 `json:"unionDues"`
	CharitableDonations float64 `json:"charitableDonations"`
}

// T4ASlip covers pension, commission and other income.
type T4ASlip struct {
	ID                      string  `json:"id"`
	PayerName               string  `json:"payerName"`
	PensionIncome           float64 `json:"pensionIncome"`
	LumpSumPayments         float64 `json:"lumpSumPayments"`
	SelfEmployedCommissions float64 `json:"selfEmployedCommissions"`
	IncomeTaxDeducted       float64 `json:"incomeTaxDeducted"`
	OtherIncome             float64 `json:"otherIncome"`
}

// T4ESlip reports employment insurance and other benefits.
type T4ESlip struct {
	ID                string  `json:"id"`
	BenefitAmount     float64 `json:"benefitAmount"`
	IncomeTaxDeducted float64 `json:"incomeTaxDeducted"`
	AmountRepaid      float64 `json:"amountRepaid"`
}

// T5Slip reports investment income.
type T5Slip struct {
	ID                   string  `json:"id"`
	PayerName            string  `json:"payerName"`
	Dividends            float64 `json:"dividends"`
	Interest             float64 `json:"interest"`
	CapitalGainsDividends float64 `json:"capitalGainsDividends"`
	ForeignIncome        float64 `json:"foreignIncome"`
	ForeignTaxPaid       float64 `json:"foreignTaxPaid"`
}

// T3Slip reports trust income allocations.
type T3Slip struct {
	ID                        string  `json:"id"`
	TrustName                 string  `json:"trustName"`
	CapitalGains              float64 `json:"capitalGains"`
	EligibleDividends         float64 `json:"eligibleDividends"`
	OtherDividends            float64 `json:"otherDividends"`
	ForeignBusinessIncome     float64 `json:"foreignBusinessIncome"`
	ForeignNonBusinessIncome  float64 `json:"foreignNonBusinessIncome"`
	OtherIncome               float64 `json:"otherIncome"`
}

// T2202Slip certifies tuition fees and enrolment months.
type T2202Slip struct {
	ID              string  `json:"id"`
	InstitutionName string  `json:"institutionName"`
	EligibleFees    float64 `json:"eligibleFees"`
	MonthsPartTime  int     `json:"monthsPartTime"`
	MonthsFullTime  int     `json:"monthsFullTime"`
}

// T4RIFSlip reports retirement income fund payments.
type T4RIFSlip struct {
	ID                string  `json:"id"`
	PayerName         string  `json:"payerName"`
	RetirementIncome  float64 `json:"retirementIncome"`
	IncomeTaxDeducted float64 `json:"incomeTaxDeducted"`
}

// T5008Slip reports a securities disposition.
type T5008Slip struct {
	ID                  string  `json:"id"`
	SecurityDescription string  `json:"securityDescription"`
	Proceeds            float64 `json:"proceeds"`
	CostBase            float64 `json:"costBase"`
	RealizedGain        float64 `json:"realizedGain"`
}

type ContributorRole string

const (
	ContributorSelf    ContributorRole = "self"
	ContributorSpousal ContributorRole = "spousal"
)

type RRSPContribution struct {
	ID          string          `json:"id"`
	Institution string          `json:"institution"`
	Amount      float64         `json:"amount"`
	Contributor ContributorRole `json:"contributor"`
}

type CharitableDonation struct {
	ID                 string  `json:"id"`
	CharityName        string  `json:"charityName"`
	RegistrationNumber string  `json:"registrationNumber"`
	Amount             float64 `json:"amount"`
	DonationType       string  `json:"donationType"`
}

type MedicalExpense struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Beneficiary string  `json:"beneficiary"` // self, spouse, dependant
}

// Home office claim methods. The flat-rate method credits a fixed amount per
// day worked from home; the detailed method is accepted but not computed.
const (
	HomeOfficeFlatRate = "flat_rate"
	HomeOfficeDetailed = "detailed"
)

// DeductionFields are the scalar (non-list) deduction and income inputs of a filing.
type DeductionFields struct {
	SelfEmploymentIncome float64 `json:"selfEmploymentIncome"`
	OtherIncome          float64 `json:"otherIncome"`
	ChildcareExpenses    float64 `json:"childcareExpenses"`
	HomeOfficeDays       int     `json:"homeOfficeDays"`
	HomeOfficeMethod     string  `json:"homeOfficeMethod"`
	MovingExpenses       float64 `json:"movingExpenses"`
	StudentLoanInterest  float64 `json:"studentLoanInterest"`
	ProfessionalDues     float64 `json:"professionalDues"`
}

type UploadedDocument struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Filing is the aggregate root: one per user per tax year. Summary and
// ConfirmationNumber stay empty until the filing is successfully submitted.
type Filing struct {
	ID                 string       `json:"id"`
	UserID             int64        `json:"userId"`
	TaxYear            int          `json:"taxYear"`
	Status             FilingStatus `json:"status"`
	PersonalInfo       PersonalInfo `json:"personalInfo"`
	DeductionFields

	T4Slips    []T4Slip    `json:"t4Slips"`
	T4ASlips   []T4ASlip   `json:"t4aSlips"`
	T4ESlips   []T4ESlip   `json:"t4eSlips"`
	T5Slips    []T5Slip    `json:"t5Slips"`
	T3Slips    []T3Slip    `json:"t3Slips"`
	T2202Slips []T2202Slip `json:"t2202Slips"`
	T4RIFSlips []T4RIFSlip `json:"t4rifSlips"`
	T5008Slips []T5008Slip `json:"t5008Slips"`

	RRSPContributions   []RRSPContribution   `json:"rrspContributions"`
	CharitableDonations []CharitableDonation `json:"charitableDonations"`
	MedicalExpenses     []MedicalExpense     `json:"medicalExpenses"`

	Documents []UploadedDocument `json:"documents"`

	Summary            *TaxSummary `json:"summary,omitempty"`
	ConfirmationNumber string      `json:"confirmationNumber,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewFiling creates an empty in-progress filing for the given user and year.
func NewFiling(userID int64, taxYear int) *Filing {
	now := time.Now().UTC()
	return &Filing{
		ID:        uuid.NewString(),
		UserID:    userID,
		TaxYear:   taxYear,
		Status:    StatusNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RecordList identifies one of the filing's slip or deduction lists.
type RecordList string

const (
	ListT4        RecordList = "t4"
	ListT4A       RecordList = "t4a"
	ListT4E       RecordList = "t4e"
	ListT5        RecordList = "t5"
	ListT3        RecordList = "t3"
	ListT2202     RecordList = "t2202"
	ListT4RIF     RecordList = "t4rif"
	ListT5008     RecordList = "t5008"
	ListRRSP      RecordList = "rrsp"
	ListDonations RecordList = "donations"
	ListMedical   RecordList = "medical"
)

var ErrRecordNotFound = fmt.Errorf("record not found")

// addRecord decodes payload into a fresh record of type T, assigns a generated
// id and appends it to list.
func addRecord[T any](list *[]T, payload []byte, setID func(*T, string)) (string, error) {
	var rec T
	if err := json.Unmarshal(payload, &rec); err != nil {
		return "", fmt.Errorf("invalid record payload: %w", err)
	}
	id := uuid.NewString()
	setID(&rec, id)
	*list = append(*list, rec)
	return id, nil
}

func updateRecord[T any](list []T, id string, payload []byte, getID func(*T) string, setID func(*T, string)) error {
	for i := range list {
		if getID(&list[i]) != id {
			continue
		}
		var rec T
		if err := json.Unmarshal(payload, &rec); err != nil {
			return fmt.Errorf("invalid record payload: %w", err)
		}
		setID(&rec, id)
		list[i] = rec
		return nil
	}
	return ErrRecordNotFound
}

func removeRecord[T any](list *[]T, id string, getID func(*T) string) error {
	for i := range *list {
		if getID(&(*list)[i]) == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return nil
		}
	}
	return ErrRecordNotFound
}

// AddRecord appends a record decoded from payload to the named list and
// returns the generated record id.
func (f *Filing) AddRecord(list RecordList, payload []byte) (string, error) {
	switch list {
	case ListT4:
		return addRecord(&f.T4Slips, payload, func(r *T4Slip, id string) { r.ID = id })
	case ListT4A:
		return addRecord(&f.T4ASlips, payload, func(r *T4ASlip, id string) { r.ID = id })
	case ListT4E:
		return addRecord(&f.T4ESlips, payload, func(r *T4ESlip, id string) { r.ID = id })
	case ListT5:
		return addRecord(&f.T5Slips, payload, func(r *T5Slip, id string) { r.ID = id })
	case ListT3:
		return addRecord(&f.T3Slips, payload, func(r *T3Slip, id string) { r.ID = id })
	case ListT2202:
		return addRecord(&f.T2202Slips, payload, func(r *T2202Slip, id string) { r.ID = id })
	case ListT4RIF:
		return addRecord(&f.T4RIFSlips, payload, func(r *T4RIFSlip, id string) { r.ID = id })
	case ListT5008:
		return addRecord(&f.T5008Slips, payload, func(r *T5008Slip, id string) { r.ID = id })
	case ListRRSP:
		return addRecord(&f.RRSPContributions, payload, func(r *RRSPContribution, id string) { r.ID = id })
	case ListDonations:
		return addRecord(&f.CharitableDonations, payload, func(r *CharitableDonation, id string) { r.ID = id })
	case ListMedical:
		return addRecord(&f.MedicalExpenses, payload, func(r *MedicalExpense, id string) { r.ID = id })
	default:
		return "", fmt.Errorf("unknown record list: %s", list)
	}
}

// UpdateRecord replaces the record with the given id in the named list.
func (f *Filing) UpdateRecord(list RecordList, id string, payload []byte) error {
	switch list {
	case ListT4:
		return updateRecord(f.T4Slips, id, payload, func(r *T4Slip) string { return r.ID }, func(r *T4Slip, id string) { r.ID = id })
	case ListT4A:
		return updateRecord(f.T4ASlips, id, payload, func(r *T4ASlip) string { return r.ID }, func(r *T4ASlip, id string) { r.ID = id })
	case ListT4E:
		return updateRecord(f.T4ESlips, id, payload, func(r *T4ESlip) string { return r.ID }, func(r *T4ESlip, id string) { r.ID = id })
	case ListT5:
		return updateRecord(f.T5Slips, id, payload, func(r *T5Slip) string { return r.ID }, func(r *T5Slip, id string) { r.ID = id })
	case ListT3:
		return updateRecord(f.T3Slips, id, payload, func(r *T3Slip) string { return r.ID }, func(r *T3Slip, id string) { r.ID = id })
	case ListT2202:
		return updateRecord(f.T2202Slips, id, payload, func(r *T2202Slip) string { return r.ID }, func(r *T2202Slip, id string) { r.ID = id })
	case ListT4RIF:
		return updateRecord(f.T4RIFSlips, id, payload, func(r *T4RIFSlip) string { return r.ID }, func(r *T4RIFSlip, id string) { r.ID = id })
	case ListT5008:
		return updateRecord(f.T5008Slips, id, payload, func(r *T5008Slip) string { return r.ID }, func(r *T5008Slip, id string) { r.ID = id })
	case ListRRSP:
		return updateRecord(f.RRSPContributions, id, payload, func(r *RRSPContribution) string { return r.ID }, func(r *RRSPContribution, id string) { r.ID = id })
	case ListDonations:
		return updateRecord(f.CharitableDonations, id, payload, func(r *CharitableDonation) string { return r.ID }, func(r *CharitableDonation, id string) { r.ID = id })
	case ListMedical:
		return updateRecord(f.MedicalExpenses, id, payload, func(r *MedicalExpense) string { return r.ID }, func(r *MedicalExpense, id string) { r.ID = id })
	default:
		return fmt.Errorf("unknown record list: %s", list)
	}
}

// RemoveRecord deletes the record with the given id from the named list.
func (f *Filing) RemoveRecord(list RecordList, id string) error {
	switch list {
	case ListT4:
		return removeRecord(&f.T4Slips, id, func(r *T4Slip) string { return r.ID })
	case ListT4A:
		return removeRecord(&f.T4ASlips, id, func(r *T4ASlip) string { return r.ID })
	case ListT4E:
		return removeRecord(&f.T4ESlips, id, func(r *T4ESlip) string { return r.ID })
	case ListT5:
		return removeRecord(&f.T5Slips, id, func(r *T5Slip) string { return r.ID })
	case ListT3:
		return removeRecord(&f.T3Slips, id, func(r *T3Slip) string { return r.ID })
	case ListT2202:
		return removeRecord(&f.T2202Slips, id, func(r *T2202Slip) string { return r.ID })
	case ListT4RIF:
		return removeRecord(&f.T4RIFSlips, id, func(r *T4RIFSlip) string { return r.ID })
	case ListT5008:
		return removeRecord(&f.T5008Slips, id, func(r *T5008Slip) string { return r.ID })
	case ListRRSP:
		return removeRecord(&f.RRSPContributions, id, func(r *RRSPContribution) string { return r.ID })
	case ListDonations:
		return removeRecord(&f.CharitableDonations, id, func(r *CharitableDonation) string { return r.ID })
	case ListMedical:
		return removeRecord(&f.MedicalExpenses, id, func(r *MedicalExpense) string { return r.ID })
	default:
		return fmt.Errorf("unknown record list: %s", list)
	}
}
