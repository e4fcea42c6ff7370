package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"blog/internal/models"
	"blog/internal/repositories"
	"blog/internal/validation"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Username        string `json:"username" form:"username" validate:"required,min=4,max=25,username"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Remember bool   `json:"remember" form:"remember"`
}

// Token is a signed identity token and how long the client should keep it.
// Persistent tokens belong in a cookie that outlives the browser session.
type Token struct {
	Value      string
	ExpiresAt  time.Time
	Persistent bool
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo      repositories.UserRepository
	validator     *validation.Validator
	publisher     EventPublisher
	jwtSecret     []byte
	tokenDurat    time.Duration // lifetime of a session token
	rememberDurat time.Duration // lifetime of a "remember me" token
	now           func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, v *validation.Validator, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		validator:     v,
		jwtSecret:     []byte(jwtSecret),
		tokenDurat:    24 * time.Hour,
		rememberDurat: 30 * 24 * time.Hour,
		now:           time.Now,
	}
}

// WithTokenDurations overrides the session and remember-me token lifetimes.
func (s *AuthService) WithTokenDurations(session, remember time.Duration) *AuthService {
	if session > 0 {
		s.tokenDurat = session
	}
	if remember > 0 {
		s.rememberDurat = remember
	}
	return s
}

// WithPublisher sets the broker that receives user.registered events.
func (s *AuthService) WithPublisher(p EventPublisher) *AuthService {
	s.publisher = p
	return s
}

// RegisterUser validates the form, hashes the password and saves the new user.
func (s *AuthService) RegisterUser(in RegisterInput) (*models.User, error) {
	errs := s.validator.Struct(in)
	if errs == nil {
		errs = validation.FieldErrors{}
	}
	if err := checkUnique(s.userRepo, s.validator, errs, in.Username, in.Email, nil); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, models.NewFieldErrors(errs)
	}

	hashedPassword, err := hashPassword(s.validator, in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashedPassword,
		LastSeen: s.now(),
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, models.NewConflictError("Username or email already registered", err)
		}
		return nil, models.NewInternalError(fmt.Errorf("failed to register user: %w", err))
	}

	publishEvent(s.publisher, EventUserRegistered, map[string]interface{}{
		"userID":   user.ID,
		"username": user.Username,
	})
	return user, nil
}

// LoginUser checks the credentials and issues an identity token.
// Unknown email and wrong password fail with the same error.
func (s *AuthService) LoginUser(in LoginInput) (*models.User, *Token, error) {
	if errs := s.validator.Struct(in); errs != nil {
		return nil, nil, models.NewFieldErrors(errs)
	}

	user, err := s.userRepo.GetByEmail(in.Email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, models.NewInternalError(err)
		}
		return nil, nil, models.NewUnauthorizedError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, nil, models.NewUnauthorizedError("invalid credentials")
	}

	token, err := s.IssueToken(user, in.Remember)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// IssueToken signs an identity token for user.
func (s *AuthService) IssueToken(user *models.User, remember bool) (*Token, error) {
	now := s.now()
	lifetime := s.tokenDurat
	if remember {
		lifetime = s.rememberDurat
	}
	expiresAt := now.Add(lifetime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"remember": remember,
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("failed to generate token: %w", err))
	}

	return &Token{Value: tokenString, ExpiresAt: expiresAt, Persistent: remember}, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// Authenticate resolves an identity token to the user it was issued for.
func (s *AuthService) Authenticate(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token: missing subject")
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject %q: %w", sub, err)
	}

	user, err := s.userRepo.GetByID(uint(id))
	if err != nil {
		return nil, fmt.Errorf("token user: %w", err)
	}
	return user, nil
}

// TouchLastSeen stamps the principal's last activity and persists it at once.
// Two concurrent requests may race; the later stamp simply wins.
func (s *AuthService) TouchLastSeen(user *models.User) error {
	seen := s.now()
	if err := s.userRepo.UpdateLastSeen(user.ID, seen); err != nil {
		log.Printf("Error stamping last seen for user %d: %v", user.ID, err)
		return err
	}
	user.LastSeen = seen
	return nil
}
