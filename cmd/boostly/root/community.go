package root

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/ui"
)

func newPostCmd(a *app) *cobra.Command {
	var kind, media, achievement string
	var achievementPoints int
	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Share a tip, achievement, motivation or video",
		Args:  exactlyOne("content"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := svc.CreatePost(ctx, u.ID, engine.PostInput{
				Content:           args[0],
				Type:              engine.PostType(strings.ToLower(strings.TrimSpace(kind))),
				MediaURL:          media,
				AchievementTitle:  achievement,
				AchievementPoints: achievementPoints,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconSparkle+" Posted"), ui.Muted.Render(p.Type))
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", "tip", "Post type (tip|achievement|motivation|video)")
	cmd.Flags().StringVar(&media, "media", "", "Video URL (video posts)")
	cmd.Flags().StringVar(&achievement, "achievement", "", "Achievement title (achievement posts)")
	cmd.Flags().IntVar(&achievementPoints, "achievement-points", 0, "Achievement points (achievement posts)")
	return cmd
}

// feedMarkdown lays the feed out as markdown for glamour.
func feedMarkdown(items []engine.FeedItem, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Community\n\n")
	if len(items) == 0 {
		b.WriteString("_No posts yet._\n")
		return b.String()
	}
	for i, it := range items {
		fmt.Fprintf(&b, "## %d. %s · Level %d %s\n\n", i+1, it.Author.Name, it.Author.Level, it.Author.Badge)
		fmt.Fprintf(&b, "*%s · %s*\n\n", it.Type, ago(now, it.CreatedAt))
		b.WriteString(it.Content + "\n\n")
		if it.Achievement != nil {
			fmt.Fprintf(&b, "> 🏆 **%s** (+%d pts)\n\n", it.Achievement.Title, it.Achievement.Points)
		}
		if it.MediaURL != "" {
			if id, ok := engine.YouTubeVideoID(it.MediaURL); ok {
				fmt.Fprintf(&b, "▶ https://www.youtube.com/watch?v=%s\n\n", id)
			} else {
				fmt.Fprintf(&b, "▶ %s\n\n", it.MediaURL)
			}
		}
		heart := "♡"
		if it.Liked {
			heart = "♥"
		}
		fmt.Fprintf(&b, "%s %d · 💬 %d\n\n---\n\n", heart, it.Likes, it.CommentCount)
	}
	return b.String()
}

func ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func newFeedCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the community feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			items, err := svc.Feed(ctx, u.ID)
			if err != nil {
				return err
			}
			md := feedMarkdown(items, time.Now())
			if !raw {
				md = renderMarkdown(md)
			}
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without rendering")
	return cmd
}

func postID(ctx context.Context, svc *engine.Service, userID, ref string) (string, error) {
	items, err := svc.Feed(ctx, userID)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return resolveRef(ref, ids)
}

func newLikeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "like <n|id>",
		Short: "Like or unlike a post",
		Args:  exactlyOne("post"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := postID(ctx, svc, u.ID, args[0])
			if err != nil {
				return err
			}
			liked, likes, err := svc.ToggleLike(ctx, u.ID, id)
			if err != nil {
				return err
			}
			verb := "Unliked"
			if liked {
				verb = ui.IconHeart + " Liked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, ui.Muted.Render(fmt.Sprintf("(%d likes)", likes)))
			return nil
		},
	}
}

func newCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <n|id> <content>",
		Short: "Comment on a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := postID(ctx, svc, u.ID, args[0])
			if err != nil {
				return err
			}
			if _, err := svc.AddComment(ctx, u.ID, id, args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconChat+" Commented"))
			return nil
		},
	}
}

func newCommentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comments <n|id>",
		Short: "Show a post's comments",
		Args:  exactlyOne("post"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := postID(ctx, svc, u.ID, args[0])
			if err != nil {
				return err
			}
			comments, err := svc.ListComments(ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(comments) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No comments."))
				return nil
			}
			now := time.Now()
			for _, c := range comments {
				fmt.Fprintf(out, "%s %s %s\n  %s\n", ui.Key.Render(c.AuthorInitials), c.AuthorName, ui.Muted.Render(ago(now, c.Timestamp)), c.Content)
			}
			return nil
		},
	}
}
