package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type PostRepo struct {
	db DBTX
}

const postColumns = `id, author_id, author_name, author_initials, author_level, author_badge, content, type,
	media_url, achievement_title, achievement_points, likes, shares, created_at`

func (r *PostRepo) Insert(ctx context.Context, p Post) error {
	var achTitle string
	var achPoints int
	if p.Achievement != nil {
		achTitle, achPoints = p.Achievement.Title, p.Achievement.Points
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Author.ID, p.Author.Name, p.Author.Initials, p.Author.Level, p.Author.Badge, p.Content, p.Type,
		p.MediaURL, achTitle, achPoints, p.Likes, p.Shares, toMillis(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("post insert: %w", err)
	}
	for _, uid := range p.LikedBy {
		if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO post_likes (post_id, user_id) VALUES (?, ?)`, p.ID, uid); err != nil {
			return fmt.Errorf("post like insert: %w", err)
		}
	}
	return nil
}

func (r *PostRepo) Get(ctx context.Context, id string) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if err != nil || p == nil {
		return p, err
	}
	likes, err := r.likes(ctx, id)
	if err != nil {
		return nil, err
	}
	p.LikedBy = likes[id]
	return p, nil
}

func (r *PostRepo) List(ctx context.Context) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("post list: %w", err)
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("post list rows: %w", err)
	}
	// Close before the second query so a single-connection tx is not held by two cursors.
	rows.Close()

	likes, err := r.likes(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].LikedBy = likes[out[i].ID]
	}
	return out, nil
}

func (r *PostRepo) HasLike(ctx context.Context, postID, userID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT 1 FROM post_likes WHERE post_id = ? AND user_id = ? LIMIT 1`, postID, userID)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("post has like: %w", err)
	}
	return true, nil
}

func (r *PostRepo) AddLike(ctx context.Context, postID, userID string) error {
	res, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO post_likes (post_id, user_id) VALUES (?, ?)`, postID, userID)
	if err != nil {
		return fmt.Errorf("post add like: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE posts SET likes = likes + 1 WHERE id = ?`, postID); err != nil {
		return fmt.Errorf("post increment likes: %w", err)
	}
	return nil
}

func (r *PostRepo) RemoveLike(ctx context.Context, postID, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID)
	if err != nil {
		return fmt.Errorf("post remove like: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE posts SET likes = MAX(likes - 1, 0) WHERE id = ?`, postID); err != nil {
		return fmt.Errorf("post decrement likes: %w", err)
	}
	return nil
}

// likes maps post id to liking user ids, for one post or (postID == "") all posts.
func (r *PostRepo) likes(ctx context.Context, postID string) (map[string][]string, error) {
	query := `SELECT post_id, user_id FROM post_likes ORDER BY post_id, user_id`
	var args []any
	if postID != "" {
		query = `SELECT post_id, user_id FROM post_likes WHERE post_id = ? ORDER BY user_id`
		args = append(args, postID)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("post likes: %w", err)
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var pid, uid string
		if err := rows.Scan(&pid, &uid); err != nil {
			return nil, fmt.Errorf("post likes scan: %w", err)
		}
		out[pid] = append(out[pid], uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("post likes rows: %w", err)
	}
	return out, nil
}

func scanPost(row scanner) (*Post, error) {
	var (
		p         Post
		achTitle  string
		achPoints int
		createdAt int64
	)
	if err := row.Scan(
		&p.ID, &p.Author.ID, &p.Author.Name, &p.Author.Initials, &p.Author.Level, &p.Author.Badge, &p.Content, &p.Type,
		&p.MediaURL, &achTitle, &achPoints, &p.Likes, &p.Shares, &createdAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("post scan: %w", err)
	}
	if achTitle != "" {
		p.Achievement = &PostAchievement{Title: achTitle, Points: achPoints}
	}
	p.CreatedAt = fromMillis(createdAt)
	return &p, nil
}
