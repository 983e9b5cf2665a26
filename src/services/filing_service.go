package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/mapletax/backend/src/database"
	"github.com/username/mapletax/backend/src/logger"
	"github.com/username/mapletax/backend/src/models"
	"github.com/username/mapletax/backend/src/processors"
	"github.com/username/mapletax/backend/src/security/validation"
)

const (
	ckSummary     = "summary_user_%d_year_%d"
	ckSuggestions = "suggestions_user_%d_year_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type filingServiceImpl struct {
	calculator  processors.TaxCalculator
	validator   processors.CrossValidator
	ruleEngine  processors.SuggestionEngine
	resultCache *cache.Cache
}

func NewFilingService(
	calculator processors.TaxCalculator,
	validator processors.CrossValidator,
	ruleEngine processors.SuggestionEngine,
	resultCache *cache.Cache,
) FilingService {
	return &filingServiceImpl{
		calculator:  calculator,
		validator:   validator,
		ruleEngine:  ruleEngine,
		resultCache: resultCache,
	}
}

func (s *filingServiceImpl) GetOrCreateFiling(userID int64, taxYear int) (*models.Filing, error) {
	filing, err := s.loadFiling(userID, taxYear)
	if err == nil {
		return filing, nil
	}
	if err != ErrFilingNotFound {
		return nil, err
	}

	filing = models.NewFiling(userID, taxYear)
	if err := s.SaveFiling(filing); err != nil {
		return nil, err
	}
	logger.L.Info("Created new filing", "userID", userID, "taxYear", taxYear)
	return filing, nil
}

func (s *filingServiceImpl) loadFiling(userID int64, taxYear int) (*models.Filing, error) {
	var data string
	err := database.DB.QueryRow(
		`SELECT data FROM filings WHERE user_id = ? AND tax_year = ?`, userID, taxYear).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrFilingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying filing for userID %d year %d: %w", userID, taxYear, err)
	}

	var filing models.Filing
	if err := json.Unmarshal([]byte(data), &filing); err != nil {
		return nil, fmt.Errorf("error unmarshaling filing for userID %d year %d: %w", userID, taxYear, err)
	}
	return &filing, nil
}

func (s *filingServiceImpl) SaveFiling(filing *models.Filing) error {
	filing.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(filing)
	if err != nil {
		return fmt.Errorf("error marshaling filing %s: %w", filing.ID, err)
	}

	_, err = database.DB.Exec(`INSERT INTO filings (id, user_id, tax_year, status, confirmation_number, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, tax_year) DO UPDATE SET
			status = excluded.status,
			confirmation_number = excluded.confirmation_number,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		filing.ID, filing.UserID, filing.TaxYear, string(filing.Status),
		filing.ConfirmationNumber, string(data), filing.CreatedAt, filing.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error saving filing %s: %w", filing.ID, err)
	}

	s.InvalidateUserCache(filing.UserID)
	return nil
}

// mutateFiling loads the filing, applies fn and saves the result. Submitted
// filings are immutable.
func (s *filingServiceImpl) mutateFiling(userID int64, taxYear int, fn func(*models.Filing) error) (*models.Filing, error) {
	filing, err := s.GetOrCreateFiling(userID, taxYear)
	if err != nil {
		return nil, err
	}
	if filing.Status == models.StatusSubmitted || filing.Status == models.StatusAccepted {
		return nil, ErrFilingSubmitted
	}
	if err := fn(filing); err != nil {
		return nil, err
	}
	if filing.Status == models.StatusNotStarted {
		filing.Status = models.StatusInProgress
	}
	if err := s.SaveFiling(filing); err != nil {
		return nil, err
	}
	return filing, nil
}

func (s *filingServiceImpl) UpdatePersonalInfo(userID int64, taxYear int, info models.PersonalInfo) (*models.Filing, error) {
	info.FirstName = validation.StripUnprintable(info.FirstName)
	info.LastName = validation.StripUnprintable(info.LastName)
	if info.Province != "" && !models.IsValidProvince(info.Province) {
		return nil, fmt.Errorf("invalid province: %s", info.Province)
	}
	return s.mutateFiling(userID, taxYear, func(f *models.Filing) error {
		f.PersonalInfo = info
		return nil
	})
}

func (s *filingServiceImpl) UpdateDeductionFields(userID int64, taxYear int, fields models.DeductionFields) (*models.Filing, error) {
	return s.mutateFiling(userID, taxYear, func(f *models.Filing) error {
		f.DeductionFields = fields
		return nil
	})
}

func (s *filingServiceImpl) AddRecord(userID int64, taxYear int, list models.RecordList, payload []byte) (*models.Filing, error) {
	return s.mutateFiling(userID, taxYear, func(f *models.Filing) error {
		if _, err := f.AddRecord(list, payload); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		return nil
	})
}

func (s *filingServiceImpl) UpdateRecord(userID int64, taxYear int, list models.RecordList, recordID string, payload []byte) (*models.Filing, error) {
	return s.mutateFiling(userID, taxYear, func(f *models.Filing) error {
		err := f.UpdateRecord(list, recordID, payload)
		if err == models.ErrRecordNotFound {
			return err
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		return nil
	})
}

func (s *filingServiceImpl) RemoveRecord(userID int64, taxYear int, list models.RecordList, recordID string) (*models.Filing, error) {
	return s.mutateFiling(userID, taxYear, func(f *models.Filing) error {
		return f.RemoveRecord(list, recordID)
	})
}

func (s *filingServiceImpl) CalculateSummary(userID int64, taxYear int) (*models.TaxSummary, error) {
	cacheKey := fmt.Sprintf(ckSummary, userID, taxYear)
	if cached, found := s.resultCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for tax summary", "userID", userID, "taxYear", taxYear)
		summary := cached.(models.TaxSummary)
		return &summary, nil
	}

	filing, err := s.GetOrCreateFiling(userID, taxYear)
	if err != nil {
		return nil, err
	}
	summary := s.calculator.Calculate(filing)
	s.resultCache.Set(cacheKey, summary, DefaultCacheExpiration)
	return &summary, nil
}

func (s *filingServiceImpl) GetSuggestions(userID int64, taxYear int) ([]models.Suggestion, error) {
	cacheKey := fmt.Sprintf(ckSuggestions, userID, taxYear)
	if cached, found := s.resultCache.Get(cacheKey); found {
		return cached.([]models.Suggestion), nil
	}

	filing, err := s.GetOrCreateFiling(userID, taxYear)
	if err != nil {
		return nil, err
	}
	suggestions := s.ruleEngine.Evaluate(processors.AggregateTotals(filing))
	s.resultCache.Set(cacheKey, suggestions, DefaultCacheExpiration)
	return suggestions, nil
}

func (s *filingServiceImpl) CrossCheckDocument(userID int64, taxYear int, doc models.ExtractedDocumentData) (*models.ValidationResult, error) {
	filing, err := s.GetOrCreateFiling(userID, taxYear)
	if err != nil {
		return nil, err
	}
	result := s.validator.CrossCheckDocument(doc, filing)
	return &result, nil
}

func (s *filingServiceImpl) ValidateAllDocuments(userID int64, taxYear int, docs []models.ExtractedDocumentData) ([]models.Suggestion, error) {
	filing, err := s.GetOrCreateFiling(userID, taxYear)
	if err != nil {
		return nil, err
	}
	return s.validator.ValidateAllDocuments(docs, filing), nil
}

// InvalidateUserCache clears cached derived results for a user, forcing a
// recalculation on the next request.
func (s *filingServiceImpl) InvalidateUserCache(userID int64) {
	for key := range s.resultCache.Items() {
		var cachedUser int64
		var year int
		if n, err := fmt.Sscanf(key, "summary_user_%d_year_%d", &cachedUser, &year); err == nil && n == 2 && cachedUser == userID {
			s.resultCache.Delete(key)
			continue
		}
		if n, err := fmt.Sscanf(key, "suggestions_user_%d_year_%d", &cachedUser, &year); err == nil && n == 2 && cachedUser == userID {
			s.resultCache.Delete(key)
		}
	}
}
