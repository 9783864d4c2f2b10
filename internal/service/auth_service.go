// Package service contains the application's business logic, sitting between
// HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 30 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// MailEnqueuer accepts welcome-mail jobs. Satisfied by *mailer.Queue.
type MailEnqueuer interface {
	Enqueue(email, username string) bool
}

// AuthService implements registration, login, and token issuance.
type AuthService struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	mail   MailEnqueuer
	flags  *featureflags.Manager
	config *config.Config
}

// NewAuthService wires an AuthService from its dependencies. mail may be nil
// when no queue is running (tests, the bot process).
func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	mail MailEnqueuer,
	flags *featureflags.Manager,
	cfg *config.Config,
) *AuthService {
	return &AuthService{users: users, tokens: tokens, mail: mail, flags: flags, config: cfg}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// TokenPair bundles every credential issued on signup and login: the
// persistent opaque key plus the short-lived JWT pair.
type TokenPair struct {
	Token   string `json:"token"`
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// Register validates the input, creates the user with its profile, issues
// all three credentials, and queues the welcome e-mail. The mail job is
// fire-and-forget: a full queue never fails the registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, *TokenPair, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, nil, models.NewValidationError("Username, email, and password are required")
	}
	if in.Password != in.PasswordConfirm {
		return nil, nil, models.NewValidationError("Passwords do not match")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueCredentials(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if s.mail != nil && s.flags.Enabled("welcome_email", user.ID) {
		s.mail.Enqueue(user.Email, user.Username)
	}

	return user, pair, nil
}

// Login authenticates by username and password. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, *TokenPair, error) {
	if username == "" || password == "" {
		return nil, nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, nil, models.NewUnauthorizedError("Invalid credentials")
	}

	pair, err := s.issueCredentials(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// issueCredentials returns the user's stable opaque token alongside a fresh
// JWT pair.
func (s *AuthService) issueCredentials(ctx context.Context, user *models.User) (*TokenPair, error) {
	opaque, err := s.tokens.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	access, refresh, err := s.IssueTokenPair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Token: opaque.Key, Refresh: refresh, Access: access}, nil
}

// IssueTokenPair signs a fresh access and refresh token for the user.
func (s *AuthService) IssueTokenPair(userID uint, username string) (access, refresh string, err error) {
	access, err = s.signToken(userID, username, tokenTypeAccess, accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.signToken(userID, username, tokenTypeRefresh, refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token itself is not rotated.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.ParseToken(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.TokenType != tokenTypeRefresh {
		return "", models.NewUnauthorizedError("Token is not a refresh token")
	}
	return s.signToken(claims.UserID, claims.Username, tokenTypeAccess, accessTokenTTL)
}

// TokenClaims is the validated, decoded form of an issued JWT.
type TokenClaims struct {
	UserID    uint
	Username  string
	TokenType string
}

// ParseToken verifies the signature and standard claims of an issued JWT and
// returns its decoded claims. Any failure maps to Unauthorized.
func (s *AuthService) ParseToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer("inkwell-api"),
		jwt.WithAudience("inkwell-client"),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, models.NewUnauthorizedError("Invalid token structure - missing subject")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	username, _ := claims["username"].(string)
	tokenType, _ := claims["token_type"].(string)

	return &TokenClaims{
		UserID:    uint(userID),
		Username:  username,
		TokenType: tokenType,
	}, nil
}

// signToken builds and signs one HS256 token.
func (s *AuthService) signToken(userID uint, username, tokenType string, ttl time.Duration) (string, error) {
	if s.config.JWTSecret == "" {
		return "", models.NewInternalError(fmt.Errorf("JWT secret not configured"))
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        strconv.FormatUint(uint64(userID), 10),
		"username":   username,
		"token_type": tokenType,
		"iss":        "inkwell-api",
		"aud":        "inkwell-client",
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
		"nbf":        now.Unix(),
		"jti":        generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return signed, nil
}

// generateJTI creates a unique token identifier.
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
