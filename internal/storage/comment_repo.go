package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type CommentRepo struct {
	db DBTX
}

const commentColumns = `id, post_id, author_id, author_name, author_initials, author_photo, content, timestamp, likes`

func (r *CommentRepo) Insert(ctx context.Context, c Comment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO comments (`+commentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.PostID, c.AuthorID, c.AuthorName, c.AuthorInitials, nullString(c.AuthorPhoto), c.Content,
		toMillis(c.Timestamp), c.Likes)
	if err != nil {
		return fmt.Errorf("comment insert: %w", err)
	}
	return nil
}

func (r *CommentRepo) Get(ctx context.Context, postID, id string) (*Comment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE post_id = ? AND id = ?`, postID, id)
	return scanComment(row)
}

func (r *CommentRepo) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+commentColumns+` FROM comments WHERE post_id = ? ORDER BY timestamp ASC, id ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("comment list: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("comment list rows: %w", err)
	}
	return out, nil
}

func (r *CommentRepo) UpdateLikes(ctx context.Context, postID, id string, likes int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE comments SET likes = ? WHERE post_id = ? AND id = ?`, likes, postID, id)
	if err != nil {
		return fmt.Errorf("comment update likes: %w", err)
	}
	return nil
}

func (r *CommentRepo) CountByPost(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT post_id, COUNT(*) FROM comments GROUP BY post_id`)
	if err != nil {
		return nil, fmt.Errorf("comment count: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			postID string
			n      int
		)
		if err := rows.Scan(&postID, &n); err != nil {
			return nil, fmt.Errorf("comment count scan: %w", err)
		}
		out[postID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("comment count rows: %w", err)
	}
	return out, nil
}

func scanComment(row scanner) (*Comment, error) {
	var (
		c     Comment
		photo sql.NullString
		ts    int64
	)
	if err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.AuthorInitials, &photo, &c.Content, &ts, &c.Likes); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("comment scan: %w", err)
	}
	c.AuthorPhoto = stringPtr(photo)
	c.Timestamp = fromMillis(ts)
	return &c, nil
}
