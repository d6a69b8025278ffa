package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chaptermatic/chaptermatic-server/internal/domain"
	"github.com/chaptermatic/chaptermatic-server/internal/store"
)

// videoChapterColumns is the ordered list of columns selected in video chapter queries.
// Must match the scan order in scanVideoChapter.
const videoChapterColumns = `id, source_url, video_id, title, chapters, created_at`

// scanVideoChapter scans a sql.Row (or sql.Rows via its Scan method) into a domain.VideoChapter.
func scanVideoChapter(scanner interface{ Scan(dest ...any) error }) (*domain.VideoChapter, error) {
	var vc domain.VideoChapter

	var (
		chaptersJSON string
		createdAt    string
	)

	err := scanner.Scan(
		&vc.ID,
		&vc.SourceURL,
		&vc.VideoID,
		&vc.Title,
		&chaptersJSON,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(chaptersJSON), &vc.Chapters); err != nil {
		return nil, fmt.Errorf("decode chapters for %s: %w", vc.ID, err)
	}

	vc.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &vc, nil
}

// CreateVideoChapter inserts a saved chapter set and indexes it.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateVideoChapter(ctx context.Context, vc *domain.VideoChapter) error {
	if vc.CreatedAt.IsZero() {
		vc.CreatedAt = time.Now()
	}

	chaptersJSON, err := json.Marshal(vc.Chapters)
	if err != nil {
		return fmt.Errorf("encode chapters: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO video_chapters (`+videoChapterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		vc.ID,
		vc.SourceURL,
		vc.VideoID,
		vc.Title,
		string(chaptersJSON),
		formatTime(vc.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := s.searchIndexer.IndexVideoChapter(ctx, vc); err != nil {
		s.logger.Warn("failed to index video chapter", "id", vc.ID, "error", err)
	}

	return nil
}

// GetVideoChapter retrieves a saved chapter set by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetVideoChapter(ctx context.Context, id string) (*domain.VideoChapter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+videoChapterColumns+` FROM video_chapters WHERE id = ?`, id)

	vc, err := scanVideoChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return vc, nil
}

// ListVideoChapters returns saved chapter sets newest first using keyset pagination.
// The cursor encodes the "created_at|id" of the last item on the previous page.
func (s *Store) ListVideoChapters(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.VideoChapter], error) {
	params.Validate()

	cursor, err := store.DecodeTimeCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	total, err := s.CountVideoChapters(ctx)
	if err != nil {
		return nil, err
	}

	// Fetch limit+1 rows to determine hasMore.
	var rows *sql.Rows
	if cursor == nil {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+videoChapterColumns+` FROM video_chapters
			ORDER BY created_at DESC, id DESC
			LIMIT ?`, params.Limit+1)
	} else {
		cursorTime := formatTime(cursor.Time)
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+videoChapterColumns+` FROM video_chapters
			WHERE (created_at < ? OR (created_at = ? AND id < ?))
			ORDER BY created_at DESC, id DESC
			LIMIT ?`, cursorTime, cursorTime, cursor.ID, params.Limit+1)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectVideoChapters(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > params.Limit
	if hasMore {
		items = items[:params.Limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = store.EncodeTimeCursor(last.CreatedAt, last.ID)
	}

	return &store.PaginatedResult[*domain.VideoChapter]{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
		Total:      total,
	}, nil
}

// ListAllVideoChapters returns every saved chapter set, newest first.
func (s *Store) ListAllVideoChapters(ctx context.Context) ([]*domain.VideoChapter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+videoChapterColumns+` FROM video_chapters ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectVideoChapters(rows)
}

// DeleteVideoChapter removes a saved chapter set and its index entry.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteVideoChapter(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM video_chapters WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := s.searchIndexer.DeleteVideoChapter(ctx, id); err != nil {
		s.logger.Warn("failed to remove video chapter from index", "id", id, "error", err)
	}

	return nil
}

// CountVideoChapters returns the number of saved chapter sets.
func (s *Store) CountVideoChapters(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM video_chapters`).Scan(&count)
	return count, err
}

func collectVideoChapters(rows *sql.Rows) ([]*domain.VideoChapter, error) {
	items := []*domain.VideoChapter{}
	for rows.Next() {
		vc, err := scanVideoChapter(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, vc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
