package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baxromumarov/upfolio/internal/ai"
)

// Profile is a user's public page: their published résumé.
type Profile struct {
	Username    string        `json:"username"`
	Name        string        `json:"name"`
	Headline    string        `json:"headline,omitempty"`
	Resume      ai.ResumeData `json:"resume"`
	ResumeID    int64         `json:"resume_id"`
	Version     int           `json:"version"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
}

// ProfileSummary is a directory entry.
type ProfileSummary struct {
	Username    string     `json:"username"`
	Name        string     `json:"name"`
	Headline    string     `json:"headline,omitempty"`
	Skills      []string   `json:"skills,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

const profileSelect = `
SELECT u.username, u.name, r.id, r.version, r.content, r.published_at
FROM users u
JOIN resumes r ON r.user_id = u.id AND r.is_published = ?`

func scanProfile(row rowScanner) (*Profile, error) {
	var (
		p           Profile
		content     string
		publishedAt sql.NullTime
	)
	if err := row.Scan(&p.Username, &p.Name, &p.ResumeID, &p.Version, &content, &publishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(content), &p.Resume); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", p.Username, err)
	}
	if p.Name == "" {
		p.Name = p.Resume.Name
	}
	p.Headline = p.Resume.Headline
	p.PublishedAt = timePtr(publishedAt)
	return &p, nil
}

// ListProfiles returns users with a published résumé, most recently
// published first, and the total count.
func (s *Store) ListProfiles(ctx context.Context, limit, offset int) ([]ProfileSummary, int, error) {
	limit = clampLimit(limit, 20, 100)
	offset = clampOffset(offset)

	var total int
	if err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM resumes WHERE is_published = ?`), true).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, s.q(profileSelect+`
ORDER BY r.published_at DESC, r.id DESC
LIMIT ? OFFSET ?
`), true, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := []ProfileSummary{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, ProfileSummary{
			Username:    p.Username,
			Name:        p.Name,
			Headline:    p.Headline,
			Skills:      p.Resume.Skills,
			PublishedAt: p.PublishedAt,
		})
	}
	return profiles, total, rows.Err()
}

func (s *Store) GetProfile(ctx context.Context, username string) (*Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx, s.q(profileSelect+`
WHERE u.username = ?
`), true, strings.ToLower(strings.TrimSpace(username))))
}
