package engine

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/events"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

type SignupInput struct {
	Name     string `validate:"required,max=80"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Initials takes the first letter of up to the first two words, upper-cased.
func Initials(name string) string {
	var b strings.Builder
	for i, word := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newUser returns the zero-progression record every account starts with.
func (s *Service) newUser(id, name, email string) storage.User {
	now := s.now()
	return storage.User{
		ID:           id,
		Name:         name,
		Email:        email,
		Initials:     Initials(name),
		Avatar:       DefaultAvatar,
		Level:        1,
		Badge:        DefaultBadge,
		Rank:         DefaultRank,
		PreviousRank: DefaultRank,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Signup registers an account, creates its user record and logs it in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*storage.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var user storage.User
	err = s.update(ctx, func(r storage.Repos, out *outbox) error {
		existing, err := r.Accounts.GetByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailTaken
		}

		id := s.ids.NewID()
		acct := storage.Account{ID: id, Email: in.Email, PasswordHash: string(hash), Name: in.Name, CreatedAt: s.now()}
		if err := r.Accounts.Insert(ctx, acct); err != nil {
			return err
		}
		user = s.newUser(id, in.Name, in.Email)
		if err := r.Users.Insert(ctx, user); err != nil {
			return err
		}
		if err := r.Auth.Set(ctx, storage.AuthState{Email: in.Email, IsAuthenticated: true}); err != nil {
			return err
		}
		out.add(events.LoggedIn{UserID: id, Email: in.Email})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("account created")
	return &user, nil
}

// Authenticate checks credentials without touching the session.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*storage.Account, error) {
	acct, err := s.store.Repos().Accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return acct, nil
}

// Login authenticates and records the local session.
func (s *Service) Login(ctx context.Context, email, password string) (*storage.User, error) {
	acct, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	var user *storage.User
	err = s.update(ctx, func(r storage.Repos, out *outbox) error {
		if err := r.Auth.Set(ctx, storage.AuthState{Email: acct.Email, IsAuthenticated: true}); err != nil {
			return err
		}
		user, err = s.ensureUser(ctx, r, acct)
		if err != nil {
			return err
		}
		out.add(events.LoggedIn{UserID: acct.ID, Email: acct.Email})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Logout clears the local session. Logging out twice is not an error.
func (s *Service) Logout(ctx context.Context) error {
	return s.update(ctx, func(r storage.Repos, out *outbox) error {
		st, err := r.Auth.Get(ctx)
		if err != nil {
			return err
		}
		if err := r.Auth.Clear(ctx); err != nil {
			return err
		}
		if st != nil && st.IsAuthenticated {
			out.add(events.LoggedOut{Email: st.Email})
		}
		return nil
	})
}

// CurrentUser resolves the local session to its user record.
func (s *Service) CurrentUser(ctx context.Context) (*storage.User, error) {
	st, err := s.store.Repos().Auth.Get(ctx)
	if err != nil {
		return nil, err
	}
	if st == nil || !st.IsAuthenticated {
		return nil, ErrNotAuthenticated
	}
	return s.UserForAccount(ctx, st.Email)
}

// UserForAccount loads the user owning email, recreating a missing user record.
func (s *Service) UserForAccount(ctx context.Context, email string) (*storage.User, error) {
	var user *storage.User
	err := s.store.WithTx(ctx, func(r storage.Repos) error {
		acct, err := r.Accounts.GetByEmail(ctx, normalizeEmail(email))
		if err != nil {
			return err
		}
		if acct == nil {
			return ErrNotAuthenticated
		}
		user, err = s.ensureUser(ctx, r, acct)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, userID string) (*storage.User, error) {
	return s.getUser(ctx, s.store.Repos(), userID)
}

func (s *Service) ensureUser(ctx context.Context, r storage.Repos, acct *storage.Account) (*storage.User, error) {
	u, err := r.Users.Get(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}
	s.log.Warn("user record missing, recreating default")
	nu := s.newUser(acct.ID, acct.Name, acct.Email)
	if err := r.Users.Insert(ctx, nu); err != nil {
		return nil, err
	}
	return &nu, nil
}
