package partners

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/username/mapletax/backend/src/models"
)

// SQLiteStore persists submission records in the submissions table so
// confirmation numbers survive a restart.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Save(rec SubmissionRecord) error {
	requestJSON, err := json.Marshal(rec.Request)
	if err != nil {
		return fmt.Errorf("error marshaling submission request: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO submissions (confirmation_number, request, status, submitted_at, last_updated)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ConfirmationNumber, string(requestJSON), rec.Status, rec.SubmittedAt, rec.LastUpdated)
	if err != nil {
		return fmt.Errorf("error inserting submission %s: %w", rec.ConfirmationNumber, err)
	}
	return nil
}

func (s *SQLiteStore) Get(confirmationNumber string) (*SubmissionRecord, error) {
	var rec SubmissionRecord
	var requestJSON string
	err := s.db.QueryRow(`SELECT confirmation_number, request, status, submitted_at, last_updated
		FROM submissions WHERE confirmation_number = ?`, confirmationNumber).
		Scan(&rec.ConfirmationNumber, &requestJSON, &rec.Status, &rec.SubmittedAt, &rec.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying submission %s: %w", confirmationNumber, err)
	}
	var req models.SubmissionRequest
	if err := json.Unmarshal([]byte(requestJSON), &req); err != nil {
		return nil, fmt.Errorf("error unmarshaling submission request: %w", err)
	}
	rec.Request = req
	return &rec, nil
}

func (s *SQLiteStore) UpdateStatus(confirmationNumber, status string) error {
	res, err := s.db.Exec(`UPDATE submissions SET status = ?, last_updated = ? WHERE confirmation_number = ?`,
		status, time.Now().UTC(), confirmationNumber)
	if err != nil {
		return fmt.Errorf("error updating submission status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}
