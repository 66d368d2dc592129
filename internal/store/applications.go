package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Application is a snapshot of one job assistant run.
type Application struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	ResumeID         *int64    `json:"resume_id,omitempty"`
	JobURL           string    `json:"job_url,omitempty"`
	JobTitle         string    `json:"job_title"`
	Company          string    `json:"company"`
	Location         string    `json:"location,omitempty"`
	JobDescription   string    `json:"job_description"`
	ExtractionMethod string    `json:"extraction_method,omitempty"`
	MatchScore       int       `json:"match_score"`
	MatchSummary     string    `json:"match_summary"`
	Strengths        []string  `json:"strengths"`
	Gaps             []string  `json:"gaps"`
	TailoredResume   string    `json:"tailored_resume,omitempty"`
	CoverLetter      string    `json:"cover_letter,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

const applicationColumns = `id, user_id, resume_id, job_url, job_title, company, location, job_description, extraction_method,
    match_score, match_summary, strengths, gaps, tailored_resume, cover_letter, created_at`

func scanApplication(row rowScanner) (*Application, error) {
	var (
		a         Application
		resumeID  sql.NullInt64
		strengths string
		gaps      string
	)
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&resumeID,
		&a.JobURL,
		&a.JobTitle,
		&a.Company,
		&a.Location,
		&a.JobDescription,
		&a.ExtractionMethod,
		&a.MatchScore,
		&a.MatchSummary,
		&strengths,
		&gaps,
		&a.TailoredResume,
		&a.CoverLetter,
		&a.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if resumeID.Valid {
		id := resumeID.Int64
		a.ResumeID = &id
	}
	a.Strengths = decodeList(strengths)
	a.Gaps = decodeList(gaps)
	return &a, nil
}

func encodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(raw string) []string {
	items := []string{}
	_ = json.Unmarshal([]byte(raw), &items)
	if items == nil {
		items = []string{}
	}
	return items
}

func (s *Store) SaveApplication(ctx context.Context, a Application) (*Application, error) {
	a.CreatedAt = now()
	err := s.db.QueryRowContext(ctx, s.q(`
INSERT INTO applications (user_id, resume_id, job_url, job_title, company, location, job_description, extraction_method,
    match_score, match_summary, strengths, gaps, tailored_resume, cover_letter, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`), a.UserID, a.ResumeID, a.JobURL, a.JobTitle, a.Company, a.Location, a.JobDescription, a.ExtractionMethod,
		a.MatchScore, a.MatchSummary, encodeList(a.Strengths), encodeList(a.Gaps), a.TailoredResume, a.CoverLetter, a.CreatedAt).Scan(&a.ID)
	if err != nil {
		return nil, err
	}
	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.Gaps == nil {
		a.Gaps = []string{}
	}
	return &a, nil
}

// ListApplications returns a page of the user's applications, newest first,
// and the total count.
func (s *Store) ListApplications(ctx context.Context, userID int64, limit, offset int) ([]Application, int, error) {
	limit = clampLimit(limit, 20, 100)
	offset = clampOffset(offset)

	var total int
	if err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM applications WHERE user_id = ?`), userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, s.q(`
SELECT `+applicationColumns+`
FROM applications
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`), userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, *a)
	}
	return apps, total, rows.Err()
}

func (s *Store) GetApplication(ctx context.Context, userID, id int64) (*Application, error) {
	return scanApplication(s.db.QueryRowContext(ctx, s.q(`SELECT `+applicationColumns+` FROM applications WHERE id = ? AND user_id = ?`), id, userID))
}

func (s *Store) DeleteApplication(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM applications WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
