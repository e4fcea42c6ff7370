package services_test

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"blog/internal/models"
	"blog/internal/repositories"
	"blog/internal/services"
	"blog/internal/validation"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a testify mock of repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastSeen(id uint, seen time.Time) error {
	args := m.Called(id, seen)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// recordingPublisher collects published routing keys.
type recordingPublisher struct {
	keys []string
	err  error
}

func (p *recordingPublisher) PublishEvent(routingKey string, payload map[string]interface{}) error {
	p.keys = append(p.keys, routingKey)
	return p.err
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

const testSecret = "test_secret"

func newAuthService(repo repositories.UserRepository) *services.AuthService {
	return services.NewAuthService(repo, validation.New("en"), testSecret)
}

func notFound(what string) error {
	return fmt.Errorf("user with %s not found: %w", what, repositories.ErrNotFound)
}

func validRegistration() services.RegisterInput {
	return services.RegisterInput{
		Username:        "newuser",
		Email:           "new@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	}
}

func TestAuthService_RegisterUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		publisher := &recordingPublisher{}
		authService := newAuthService(mockRepo).WithPublisher(publisher)

		mockRepo.On("GetByUsername", "newuser").Return(nil, notFound("username newuser")).Once()
		mockRepo.On("GetByEmail", "new@example.com").Return(nil, notFound("email new@example.com")).Once()
		mockRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
			args.Get(0).(*models.User).ID = 7
		}).Return(nil).Once()

		user, err := authService.RegisterUser(validRegistration())
		require.NoError(t, err)
		assert.Equal(t, uint(7), user.ID)
		assert.Equal(t, "newuser", user.Username)
		assert.NotEqual(t, "password123", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
		assert.False(t, user.LastSeen.IsZero())
		assert.Equal(t, []string{services.EventUserRegistered}, publisher.keys)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := newAuthService(mockRepo)

		mockRepo.On("GetByUsername", "newuser").Return(&models.User{Username: "newuser"}, nil).Once()
		mockRepo.On("GetByEmail", "new@example.com").Return(nil, notFound("email")).Once()

		user, err := authService.RegisterUser(validRegistration())
		assert.Nil(t, user)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
		assert.Equal(t, "That username newuser is taken. Please choose a different one.", appErr.Fields["username"])
		assert.NotContains(t, appErr.Fields, "email")
		mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := newAuthService(mockRepo)

		mockRepo.On("GetByUsername", "newuser").Return(nil, notFound("username")).Once()
		mockRepo.On("GetByEmail", "new@example.com").Return(&models.User{Email: "new@example.com"}, nil).Once()

		_, err := authService.RegisterUser(validRegistration())
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "A user with email new@example.com already exists", appErr.Fields["email"])
	})

	t.Run("RuleFailuresSkipLookups", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := newAuthService(mockRepo)

		_, err := authService.RegisterUser(services.RegisterInput{
			Username:        "1bad",
			Email:           "not-an-email",
			Password:        "123",
			ConfirmPassword: "321",
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Username must have only letters, numbers, dots or underscores", appErr.Fields["username"])
		assert.Equal(t, "Invalid email address.", appErr.Fields["email"])
		assert.Equal(t, "Field must be at least 6 characters long.", appErr.Fields["password"])
		assert.Equal(t, "Field must be equal to password.", appErr.Fields["confirm_password"])
		mockRepo.AssertNotCalled(t, "GetByUsername", mock.Anything)
		mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything)
	})

	t.Run("UsernameLength", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByEmail", "new@example.com").Return(nil, notFound("email"))
		authService := newAuthService(mockRepo)

		for _, name := range []string{"abc", "abcdefghijklmnopqrstuvwxyz"} {
			in := validRegistration()
			in.Username = name
			_, err := authService.RegisterUser(in)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "Field must be between 4 and 25 characters long.", appErr.Fields["username"], name)
		}
	})

	t.Run("DuplicateOnInsertIsConflict", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := newAuthService(mockRepo)

		mockRepo.On("GetByUsername", "newuser").Return(nil, notFound("username")).Once()
		mockRepo.On("GetByEmail", "new@example.com").Return(nil, notFound("email")).Once()
		mockRepo.On("Create", mock.Anything).Return(fmt.Errorf("failed to create user: %w", repositories.ErrDuplicate)).Once()

		_, err := authService.RegisterUser(validRegistration())
		assert.True(t, models.IsCode(err, models.CodeConflict))
	})

	t.Run("LookupFailureIsInternal", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := newAuthService(mockRepo)

		mockRepo.On("GetByUsername", "newuser").Return(nil, fmt.Errorf("connection refused")).Once()

		_, err := authService.RegisterUser(validRegistration())
		assert.True(t, models.IsCode(err, models.CodeInternal))
	})
}

func TestAuthService_LoginUser(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correctpassword"), bcrypt.MinCost)
	existingUser := &models.User{
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}
	existingUser.ID = 42

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := newAuthService(mockRepo).WithTokenDurations(time.Hour, 48*time.Hour)
		mockRepo.On("GetByEmail", "test@example.com").Return(existingUser, nil).Once()

		user, token, err := authService.LoginUser(services.LoginInput{Email: "test@example.com", Password: "correctpassword"})
		require.NoError(t, err)
		assert.Equal(t, existingUser.ID, user.ID)
		require.NotNil(t, token)
		assert.NotEmpty(t, token.Value)
		assert.False(t, token.Persistent)
		assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)

		claims, err := authService.ValidateToken(token.Value)
		require.NoError(t, err)
		assert.Equal(t, "42", claims["sub"])
		assert.Equal(t, "testuser", claims["username"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("RememberMeIsPersistent", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := newAuthService(mockRepo).WithTokenDurations(time.Hour, 48*time.Hour)
		mockRepo.On("GetByEmail", "test@example.com").Return(existingUser, nil).Once()

		_, token, err := authService.LoginUser(services.LoginInput{Email: "test@example.com", Password: "correctpassword", Remember: true})
		require.NoError(t, err)
		assert.True(t, token.Persistent)
		assert.WithinDuration(t, time.Now().Add(48*time.Hour), token.ExpiresAt, 5*time.Second)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := newAuthService(mockRepo)
		mockRepo.On("GetByEmail", "test@example.com").Return(existingUser, nil).Once()

		user, token, err := authService.LoginUser(services.LoginInput{Email: "test@example.com", Password: "wrongpassword"})
		assert.Nil(t, user)
		assert.Nil(t, token)
		assert.True(t, models.IsCode(err, models.CodeUnauthorized))
	})

	t.Run("UnknownEmailMatchesWrongPassword", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := newAuthService(mockRepo)
		mockRepo.On("GetByEmail", "nobody@example.com").Return(nil, notFound("email")).Once()

		_, _, err := authService.LoginUser(services.LoginInput{Email: "nobody@example.com", Password: "whatever"})
		require.Error(t, err)
		assert.True(t, models.IsCode(err, models.CodeUnauthorized))
		assert.Equal(t, "invalid credentials", err.Error())
	})

	t.Run("MissingFields", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := newAuthService(mockRepo)

		_, _, err := authService.LoginUser(services.LoginInput{})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
		assert.Equal(t, "This field is required.", appErr.Fields["email"])
		assert.Equal(t, "This field is required.", appErr.Fields["password"])
		mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything)
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newAuthService(new(MockUserRepository))

	t.Run("ValidToken", func(t *testing.T) {
		user := &models.User{Username: "validuser"}
		user.ID = 3
		token, err := authService.IssueToken(user, false)
		require.NoError(t, err)

		claims, err := authService.ValidateToken(token.Value)
		require.NoError(t, err)
		assert.Equal(t, "3", claims["sub"])
		assert.Equal(t, false, claims["remember"])
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "3",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		tokenString, _ := token.SignedString([]byte(testSecret))

		claims, err := authService.ValidateToken(tokenString)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "3",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		tokenString, _ := token.SignedString([]byte("another_secret"))

		_, err := authService.ValidateToken(tokenString)
		assert.Error(t, err)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := authService.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	users := repositories.NewMockUserRepository()
	authService := newAuthService(users)
	user := &models.User{Username: "reader", Email: "reader@example.com", Password: "x"}
	require.NoError(t, users.Create(user))

	token, err := authService.IssueToken(user, true)
	require.NoError(t, err)

	got, err := authService.Authenticate(token.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "reader", got.Username)

	ghost := &models.User{Username: "ghost"}
	ghost.ID = user.ID + 100
	ghostToken, err := authService.IssueToken(ghost, false)
	require.NoError(t, err)
	_, err = authService.Authenticate(ghostToken.Value)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noSubString, _ := noSub.SignedString([]byte(testSecret))
	_, err = authService.Authenticate(noSubString)
	assert.Error(t, err)
}

func TestAuthService_TouchLastSeen(t *testing.T) {
	t.Run("PersistsStamp", func(t *testing.T) {
		users := repositories.NewMockUserRepository()
		authService := newAuthService(users)
		user := &models.User{Username: "walker", Email: "walker@example.com", LastSeen: time.Now().Add(-24 * time.Hour)}
		require.NoError(t, users.Create(user))
		before := user.LastSeen

		require.NoError(t, authService.TouchLastSeen(user))
		assert.True(t, user.LastSeen.After(before))

		stored, err := users.GetByID(user.ID)
		require.NoError(t, err)
		assert.True(t, stored.LastSeen.Equal(user.LastSeen))
	})

	t.Run("StoreFailureLeavesUserUntouched", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := newAuthService(mockRepo)
		user := &models.User{Username: "walker"}
		user.ID = 9
		mockRepo.On("UpdateLastSeen", uint(9), mock.AnythingOfType("time.Time")).Return(fmt.Errorf("db down")).Once()

		assert.Error(t, authService.TouchLastSeen(user))
		assert.True(t, user.LastSeen.IsZero())
	})
}

func TestAuthService_TokenSubjectIsDecimalID(t *testing.T) {
	authService := newAuthService(new(MockUserRepository))
	user := &models.User{Username: "big"}
	user.ID = 123456
	token, err := authService.IssueToken(user, false)
	require.NoError(t, err)

	claims, err := authService.ValidateToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(123456), claims["sub"])
}

func TestAuthService_RegisterUser_PasswordTooLong(t *testing.T) {
	cases := map[string]string{
		"TooManyCharacters": strings.Repeat("p", 73),
		"TooManyBytes":      strings.Repeat("ж", 40),
	}
	for name, password := range cases {
		t.Run(name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			authService := newAuthService(mockRepo)
			mockRepo.On("GetByUsername", "newuser").Return(nil, notFound("username"))
			mockRepo.On("GetByEmail", "new@example.com").Return(nil, notFound("email"))

			in := validRegistration()
			in.Password = password
			in.ConfirmPassword = password
			_, err := authService.RegisterUser(in)

			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
			assert.Equal(t, "Field must be at most 72 characters long.", appErr.Fields["password"])
			mockRepo.AssertNotCalled(t, "Create", mock.Anything)
		})
	}
}
