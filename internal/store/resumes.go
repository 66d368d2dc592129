package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/baxromumarov/upfolio/internal/ai"
)

type ResumeStatus string

const (
	StatusDraft     ResumeStatus = "draft"
	StatusPublished ResumeStatus = "published"
	StatusArchived  ResumeStatus = "archived"
)

type ResumeAction string

const (
	ActionPublish   ResumeAction = "publish"
	ActionUnpublish ResumeAction = "unpublish"
	ActionArchive   ResumeAction = "archive"
	ActionRestore   ResumeAction = "restore"
)

// Resume is one version of a user's résumé. Exactly one of the three flags
// is set; Status derives from them.
type Resume struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	Version     int           `json:"version"`
	Content     ai.ResumeData `json:"content"`
	SourceFile  string        `json:"source_file,omitempty"`
	IsDraft     bool          `json:"is_draft"`
	IsPublished bool          `json:"is_published"`
	IsArchived  bool          `json:"is_archived"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
}

func (r Resume) Status() ResumeStatus {
	switch {
	case r.IsArchived:
		return StatusArchived
	case r.IsPublished:
		return StatusPublished
	default:
		return StatusDraft
	}
}

// transition returns the status reached by applying action to from. changed
// is false when the action is a no-op (publishing a published version).
func transition(from ResumeStatus, action ResumeAction) (to ResumeStatus, changed bool, err error) {
	switch action {
	case ActionPublish:
		switch from {
		case StatusDraft:
			return StatusPublished, true, nil
		case StatusPublished:
			return StatusPublished, false, nil
		}
	case ActionUnpublish:
		if from == StatusPublished {
			return StatusDraft, true, nil
		}
	case ActionArchive:
		if from == StatusDraft || from == StatusPublished {
			return StatusArchived, true, nil
		}
	case ActionRestore:
		if from == StatusArchived {
			return StatusDraft, true, nil
		}
	}
	return from, false, fmt.Errorf("%s %s resume: %w", action, from, ErrInvalidTransition)
}

func flags(status ResumeStatus) (draft, published, archived bool) {
	return status == StatusDraft, status == StatusPublished, status == StatusArchived
}

const resumeColumns = `id, user_id, version, content, source_file, is_draft, is_published, is_archived, created_at, updated_at, published_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (*Resume, error) {
	var (
		r           Resume
		content     string
		publishedAt sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Version, &content, &r.SourceFile,
		&r.IsDraft, &r.IsPublished, &r.IsArchived, &r.CreatedAt, &r.UpdatedAt, &publishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(content), &r.Content); err != nil {
		return nil, fmt.Errorf("decode resume %d: %w", r.ID, err)
	}
	r.PublishedAt = timePtr(publishedAt)
	return &r, nil
}

// CreateResume stores data as a new draft with the user's next version
// number.
func (s *Store) CreateResume(ctx context.Context, userID int64, data ai.ResumeData, sourceFile string) (*Resume, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode resume: %w", err)
	}

	var created *Resume
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx, s.q(`SELECT COALESCE(MAX(version), 0) + 1 FROM resumes WHERE user_id = ?`), userID).Scan(&next); err != nil {
			return err
		}
		ts := now()
		r := &Resume{
			UserID:     userID,
			Version:    next,
			Content:    data,
			SourceFile: sourceFile,
			IsDraft:    true,
			CreatedAt:  ts,
			UpdatedAt:  ts,
		}
		err := tx.QueryRowContext(ctx, s.q(`
INSERT INTO resumes (user_id, version, content, source_file, is_draft, is_published, is_archived, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`), userID, next, string(content), sourceFile, true, false, false, ts, ts).Scan(&r.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("resume version %d: %w", next, ErrConflict)
			}
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) GetResume(ctx context.Context, userID, id int64) (*Resume, error) {
	return scanResume(s.db.QueryRowContext(ctx, s.q(`SELECT `+resumeColumns+` FROM resumes WHERE id = ? AND user_id = ?`), id, userID))
}

func (s *Store) ListResumes(ctx context.Context, userID int64, includeArchived bool) ([]Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE user_id = ?`
	if !includeArchived {
		query += ` AND is_archived = ?`
	}
	query += ` ORDER BY version DESC`

	args := []any{userID}
	if !includeArchived {
		args = append(args, false)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resumes := []Resume{}
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, *r)
	}
	return resumes, rows.Err()
}

// UpdateResumeContent replaces the content of a draft or published version.
func (s *Store) UpdateResumeContent(ctx context.Context, userID, id int64, data ai.ResumeData) (*Resume, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode resume: %w", err)
	}

	var updated *Resume
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		r, err := scanResume(tx.QueryRowContext(ctx, s.q(`SELECT `+resumeColumns+` FROM resumes WHERE id = ? AND user_id = ?`), id, userID))
		if err != nil {
			return err
		}
		if r.IsArchived {
			return fmt.Errorf("edit archived resume: %w", ErrInvalidTransition)
		}
		ts := now()
		if _, err := tx.ExecContext(ctx, s.q(`UPDATE resumes SET content = ?, updated_at = ? WHERE id = ?`), string(content), ts, id); err != nil {
			return err
		}
		r.Content = data
		r.UpdatedAt = ts
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) PublishResume(ctx context.Context, userID, id int64) (*Resume, error) {
	return s.applyTransition(ctx, userID, id, ActionPublish)
}

func (s *Store) UnpublishResume(ctx context.Context, userID, id int64) (*Resume, error) {
	return s.applyTransition(ctx, userID, id, ActionUnpublish)
}

func (s *Store) ArchiveResume(ctx context.Context, userID, id int64) (*Resume, error) {
	return s.applyTransition(ctx, userID, id, ActionArchive)
}

func (s *Store) RestoreResume(ctx context.Context, userID, id int64) (*Resume, error) {
	return s.applyTransition(ctx, userID, id, ActionRestore)
}

// TransitionResume applies action by name; the HTTP layer routes through it.
func (s *Store) TransitionResume(ctx context.Context, userID, id int64, action ResumeAction) (*Resume, error) {
	switch action {
	case ActionPublish, ActionUnpublish, ActionArchive, ActionRestore:
		return s.applyTransition(ctx, userID, id, action)
	default:
		return nil, fmt.Errorf("unknown resume action %q: %w", action, ErrInvalidTransition)
	}
}

func (s *Store) applyTransition(ctx context.Context, userID, id int64, action ResumeAction) (*Resume, error) {
	var result *Resume
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		r, err := scanResume(tx.QueryRowContext(ctx, s.q(`SELECT `+resumeColumns+` FROM resumes WHERE id = ? AND user_id = ?`), id, userID))
		if err != nil {
			return err
		}
		to, changed, err := transition(r.Status(), action)
		if err != nil {
			return err
		}
		if !changed {
			result = r
			return nil
		}

		ts := now()
		if to == StatusPublished {
			// at most one published version per user
			if _, err := tx.ExecContext(ctx, s.q(`
UPDATE resumes
SET is_published = ?, is_draft = ?, updated_at = ?
WHERE user_id = ? AND is_published = ? AND id <> ?
`), false, true, ts, userID, true, id); err != nil {
				return err
			}
		}

		draft, published, archived := flags(to)
		publishedAt := r.PublishedAt
		if to == StatusPublished {
			publishedAt = &ts
		}
		if _, err := tx.ExecContext(ctx, s.q(`
UPDATE resumes
SET is_draft = ?, is_published = ?, is_archived = ?, published_at = ?, updated_at = ?
WHERE id = ?
`), draft, published, archived, publishedAt, ts, id); err != nil {
			return err
		}

		r.IsDraft, r.IsPublished, r.IsArchived = draft, published, archived
		r.PublishedAt = publishedAt
		r.UpdatedAt = ts
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) DeleteResume(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM resumes WHERE id = ? AND user_id = ?`), id, userID)
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

func (s *Store) GetPublishedResume(ctx context.Context, userID int64) (*Resume, error) {
	return scanResume(s.db.QueryRowContext(ctx, s.q(`SELECT `+resumeColumns+` FROM resumes WHERE user_id = ? AND is_published = ?`), userID, true))
}

// GetLatestResume returns the newest non-archived version.
func (s *Store) GetLatestResume(ctx context.Context, userID int64) (*Resume, error) {
	return scanResume(s.db.QueryRowContext(ctx, s.q(`
SELECT `+resumeColumns+`
FROM resumes
WHERE user_id = ? AND is_archived = ?
ORDER BY version DESC
LIMIT 1
`), userID, false))
}
