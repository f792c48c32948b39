package engine

import (
	"context"
	"regexp"
	"strings"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

type PostInput struct {
	Content  string
	Type     PostType
	MediaURL string
	// Achievement fields apply to achievement posts only.
	AchievementTitle  string
	AchievementPoints int
}

// FeedItem is a post as seen by one viewer.
type FeedItem struct {
	storage.Post
	Liked        bool `json:"liked"`
	CommentCount int  `json:"commentCount"`
}

// CreatePost publishes a post under a snapshot of the author's current standing.
func (s *Service) CreatePost(ctx context.Context, userID string, in PostInput) (*storage.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrContentRequired
	}
	if !in.Type.IsValid() {
		in.Type = PostTip
	}

	var p storage.Post
	err := s.update(ctx, func(r storage.Repos, out *outbox) error {
		u, err := s.getUser(ctx, r, userID)
		if err != nil {
			return err
		}
		p = storage.Post{
			ID: s.ids.NewID(),
			Author: storage.PostAuthor{
				ID:       u.ID,
				Name:     u.Name,
				Initials: u.Initials,
				Level:    u.Level,
				Badge:    u.Badge,
			},
			Content:   content,
			Type:      string(in.Type),
			CreatedAt: s.now(),
		}
		if url := strings.TrimSpace(in.MediaURL); url != "" && in.Type == PostVideo {
			p.MediaURL = url
		}
		if title := strings.TrimSpace(in.AchievementTitle); title != "" && in.Type == PostAchievement {
			p.Achievement = &storage.PostAchievement{Title: title, Points: clampZero(in.AchievementPoints)}
		}
		return r.Posts.Insert(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Feed returns every post newest first, flagged with the viewer's likes.
func (s *Service) Feed(ctx context.Context, viewerID string) ([]FeedItem, error) {
	r := s.store.Repos()
	posts, err := r.Posts.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := r.Comments.CountByPost(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]FeedItem, 0, len(posts))
	for _, p := range posts {
		item := FeedItem{Post: p, CommentCount: counts[p.ID]}
		for _, uid := range p.LikedBy {
			if uid == viewerID {
				item.Liked = true
				break
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// ToggleLike likes or unlikes a post and reports the resulting state.
func (s *Service) ToggleLike(ctx context.Context, userID, postID string) (liked bool, likes int, err error) {
	err = s.store.WithTx(ctx, func(r storage.Repos) error {
		p, err := r.Posts.Get(ctx, postID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrNotFound
		}
		has, err := r.Posts.HasLike(ctx, postID, userID)
		if err != nil {
			return err
		}
		if has {
			err = r.Posts.RemoveLike(ctx, postID, userID)
		} else {
			err = r.Posts.AddLike(ctx, postID, userID)
		}
		if err != nil {
			return err
		}
		p, err = r.Posts.Get(ctx, postID)
		if err != nil {
			return err
		}
		liked, likes = !has, p.Likes
		return nil
	})
	return liked, likes, err
}

// AddComment appends a comment under the commenter's current name and photo.
func (s *Service) AddComment(ctx context.Context, userID, postID, content string) (*storage.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}
	var c storage.Comment
	err := s.store.WithTx(ctx, func(r storage.Repos) error {
		p, err := r.Posts.Get(ctx, postID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrNotFound
		}
		u, err := s.getUser(ctx, r, userID)
		if err != nil {
			return err
		}
		c = storage.Comment{
			ID:             s.ids.NewID(),
			PostID:         postID,
			AuthorID:       u.ID,
			AuthorName:     u.Name,
			AuthorInitials: u.Initials,
			AuthorPhoto:    u.ProfilePhoto,
			Content:        content,
			Timestamp:      s.now(),
		}
		return r.Comments.Insert(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComments returns a post's comments oldest first.
func (s *Service) ListComments(ctx context.Context, postID string) ([]storage.Comment, error) {
	return s.store.Repos().Comments.ListByPost(ctx, postID)
}

// UpdateCommentLikes sets a comment's like count.
func (s *Service) UpdateCommentLikes(ctx context.Context, postID, commentID string, likes int) error {
	if likes < 0 {
		return &ValidationError{Field: "likes", Reason: "must not be negative"}
	}
	return s.store.WithTx(ctx, func(r storage.Repos) error {
		c, err := r.Comments.Get(ctx, postID, commentID)
		if err != nil {
			return err
		}
		if c == nil {
			return ErrNotFound
		}
		return r.Comments.UpdateLikes(ctx, postID, commentID, likes)
	})
}

var youTubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
}

// YouTubeVideoID extracts the video id from watch, short, embed and /v/ links.
func YouTubeVideoID(url string) (string, bool) {
	for _, re := range youTubePatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}
