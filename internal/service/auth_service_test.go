package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/featureflags"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userRepoStub struct {
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	getProfileFn    func(ctx context.Context, userID uint) (*models.Profile, error)
	createFn        func(ctx context.Context, user *models.User) error
	updateProfileFn func(ctx context.Context, profile *models.Profile) error
	countFn         func(ctx context.Context) (int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.getProfileFn(ctx, userID)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return s.updateProfileFn(ctx, profile)
}
func (s *userRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(context.Context, uint) (*models.User, error) { return nil, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		getProfileFn:    func(context.Context, uint) (*models.Profile, error) { return nil, nil },
		createFn:        func(_ context.Context, u *models.User) error { u.ID = 1; return nil },
		updateProfileFn: func(context.Context, *models.Profile) error { return nil },
		countFn:         func(context.Context) (int64, error) { return 0, nil },
	}
}

type tokenRepoStub struct {
	getOrCreateFn func(ctx context.Context, userID uint) (*models.AuthToken, error)
	getByKeyFn    func(ctx context.Context, key string) (*models.AuthToken, error)
}

func (s *tokenRepoStub) GetOrCreate(ctx context.Context, userID uint) (*models.AuthToken, error) {
	return s.getOrCreateFn(ctx, userID)
}
func (s *tokenRepoStub) GetByKey(ctx context.Context, key string) (*models.AuthToken, error) {
	return s.getByKeyFn(ctx, key)
}

func noopTokenRepo() *tokenRepoStub {
	return &tokenRepoStub{
		getOrCreateFn: func(_ context.Context, userID uint) (*models.AuthToken, error) {
			return &models.AuthToken{Key: strings.Repeat("ab", 20), UserID: userID}, nil
		},
		getByKeyFn: func(context.Context, string) (*models.AuthToken, error) { return nil, nil },
	}
}

type mailRecorder struct {
	mu   sync.Mutex
	jobs [][2]string
}

func (m *mailRecorder) Enqueue(email, username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, [2]string{email, username})
	return true
}

func (m *mailRecorder) recorded() [][2]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][2]string, len(m.jobs))
	copy(out, m.jobs)
	return out
}

func testAuthService(users *userRepoStub, tokens *tokenRepoStub, mail MailEnqueuer, flags string) *AuthService {
	return NewAuthService(users, tokens, mail, featureflags.NewManager(flags), &config.Config{
		JWTSecret: "test-secret",
	})
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "str0ngpass",
		PasswordConfirm: "str0ngpass",
	}
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	t.Run("success issues all three credentials and queues mail", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		var created *models.User
		users.createFn = func(_ context.Context, u *models.User) error {
			u.ID = 42
			created = u
			return nil
		}
		mail := &mailRecorder{}
		svc := testAuthService(users, noopTokenRepo(), mail, "welcome_email=on")

		user, pair, err := svc.Register(context.Background(), validRegisterInput())
		require.NoError(t, err)
		assert.Equal(t, uint(42), user.ID)

		// The stored password is a bcrypt hash, never the plaintext.
		require.NotNil(t, created)
		assert.NotEqual(t, "str0ngpass", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("str0ngpass")))

		assert.Len(t, pair.Token, 40)
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
		assert.NotEqual(t, pair.Access, pair.Refresh)

		require.Len(t, mail.recorded(), 1)
		assert.Equal(t, [2]string{"alice@example.com", "alice"}, mail.recorded()[0])
	})

	t.Run("welcome mail respects the feature flag", func(t *testing.T) {
		t.Parallel()
		mail := &mailRecorder{}
		svc := testAuthService(noopUserRepo(), noopTokenRepo(), mail, "welcome_email=off")

		_, _, err := svc.Register(context.Background(), validRegisterInput())
		require.NoError(t, err)
		assert.Empty(t, mail.recorded())
	})

	t.Run("password mismatch never reaches the repository", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.createFn = func(context.Context, *models.User) error {
			t.Fatal("Create must not be called")
			return nil
		}
		svc := testAuthService(users, noopTokenRepo(), nil, "")

		in := validRegisterInput()
		in.PasswordConfirm = "different0ne"
		_, _, err := svc.Register(context.Background(), in)
		require.Error(t, err)
		assert.True(t, models.IsValidation(err))
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		svc := testAuthService(noopUserRepo(), noopTokenRepo(), nil, "")

		tests := []struct {
			name   string
			mutate func(*RegisterInput)
		}{
			{name: "no username", mutate: func(in *RegisterInput) { in.Username = "" }},
			{name: "no email", mutate: func(in *RegisterInput) { in.Email = "" }},
			{name: "no password", mutate: func(in *RegisterInput) { in.Password = "" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := validRegisterInput()
				tt.mutate(&in)
				_, _, err := svc.Register(context.Background(), in)
				require.Error(t, err)
				assert.True(t, models.IsValidation(err))
			})
		}
	})

	t.Run("duplicate user surfaces the repository validation error", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.createFn = func(context.Context, *models.User) error {
			return models.NewValidationError("A user with this username or email already exists")
		}
		svc := testAuthService(users, noopTokenRepo(), nil, "")

		_, _, err := svc.Register(context.Background(), validRegisterInput())
		require.Error(t, err)
		assert.True(t, models.IsValidation(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("str0ngpass"), bcrypt.MinCost)
	require.NoError(t, err)

	knownUser := func() *userRepoStub {
		users := noopUserRepo()
		users.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
			if username == "alice" {
				return &models.User{ID: 7, Username: "alice", Password: string(hash)}, nil
			}
			return nil, nil
		}
		return users
	}

	t.Run("success re-uses the opaque key", func(t *testing.T) {
		t.Parallel()
		tokens := noopTokenRepo()
		tokens.getOrCreateFn = func(_ context.Context, userID uint) (*models.AuthToken, error) {
			return &models.AuthToken{Key: "feedfacefeedfacefeedfacefeedfacefeedface", UserID: userID}, nil
		}
		svc := testAuthService(knownUser(), tokens, nil, "")

		user, pair, err := svc.Login(context.Background(), "alice", "str0ngpass")
		require.NoError(t, err)
		assert.Equal(t, uint(7), user.ID)
		assert.Equal(t, "feedfacefeedfacefeedfacefeedfacefeedface", pair.Token)
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
	})

	t.Run("missing fields are a validation error, not unauthorized", func(t *testing.T) {
		t.Parallel()
		svc := testAuthService(knownUser(), noopTokenRepo(), nil, "")

		_, _, err := svc.Login(context.Background(), "", "str0ngpass")
		require.Error(t, err)
		assert.True(t, models.IsValidation(err))

		_, _, err = svc.Login(context.Background(), "alice", "")
		require.Error(t, err)
		assert.True(t, models.IsValidation(err))
	})

	t.Run("unknown user and bad password are indistinguishable", func(t *testing.T) {
		t.Parallel()
		svc := testAuthService(knownUser(), noopTokenRepo(), nil, "")

		_, _, err := svc.Login(context.Background(), "nobody", "str0ngpass")
		require.Error(t, err)
		assert.True(t, models.IsUnauthorized(err))

		_, _, err = svc.Login(context.Background(), "alice", "wr0ngpass")
		require.Error(t, err)
		assert.True(t, models.IsUnauthorized(err))
	})
}

func TestAuthService_Tokens(t *testing.T) {
	t.Parallel()

	svc := testAuthService(noopUserRepo(), noopTokenRepo(), nil, "")

	t.Run("issued tokens round-trip with the right type", func(t *testing.T) {
		t.Parallel()
		access, refresh, err := svc.IssueTokenPair(7, "alice")
		require.NoError(t, err)

		ac, err := svc.ParseToken(access)
		require.NoError(t, err)
		assert.Equal(t, uint(7), ac.UserID)
		assert.Equal(t, "alice", ac.Username)
		assert.Equal(t, "access", ac.TokenType)

		rc, err := svc.ParseToken(refresh)
		require.NoError(t, err)
		assert.Equal(t, "refresh", rc.TokenType)
	})

	t.Run("refresh mints a new access token", func(t *testing.T) {
		t.Parallel()
		_, refresh, err := svc.IssueTokenPair(7, "alice")
		require.NoError(t, err)

		access, err := svc.Refresh(refresh)
		require.NoError(t, err)

		claims, err := svc.ParseToken(access)
		require.NoError(t, err)
		assert.Equal(t, "access", claims.TokenType)
		assert.Equal(t, uint(7), claims.UserID)
	})

	t.Run("refresh rejects an access token", func(t *testing.T) {
		t.Parallel()
		access, _, err := svc.IssueTokenPair(7, "alice")
		require.NoError(t, err)

		_, err = svc.Refresh(access)
		require.Error(t, err)
		assert.True(t, models.IsUnauthorized(err))
	})

	t.Run("refresh rejects garbage", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Refresh("not-a-jwt")
		require.Error(t, err)
		assert.True(t, models.IsUnauthorized(err))
	})

	t.Run("tokens signed with another secret are rejected", func(t *testing.T) {
		t.Parallel()
		other := testAuthService(noopUserRepo(), noopTokenRepo(), nil, "")
		other.config = &config.Config{JWTSecret: "other-secret"}

		access, _, err := other.IssueTokenPair(7, "alice")
		require.NoError(t, err)

		_, err = svc.ParseToken(access)
		require.Error(t, err)
		assert.True(t, models.IsUnauthorized(err))
	})
}
