package services

import (
	"context"
	"errors"
	"fmt"

	"simple-chats/config"
	"simple-chats/internal/domain/user"
	"simple-chats/internal/email"
	"simple-chats/internal/repository"
	chats_errors "simple-chats/pkg/errors"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	minNameLength     = 3
	maxNameLength     = 25
)

var validate = validator.New()

// AuthService covers registration, credential checks and the password
// reset flow. All validation happens before any write.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
	mailer   email.Mailer
	baseURL  string
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenService, mailer email.Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		baseURL:  cfg.BaseURL,
	}
}

type RegisterInput struct {
	Email     string
	Username  string
	Name      string
	Password1 string
	Password2 string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	if err := validateEmail(in.Email); err != nil {
		return user.User{}, err
	}
	if len(in.Name) < minNameLength || len(in.Name) > maxNameLength {
		return user.User{}, chats_errors.NewValidationError(
			fmt.Sprintf("Please, input name with a length between %d and %d chars", minNameLength, maxNameLength))
	}
	if err := validatePasswordPair(in.Password1, in.Password2); err != nil {
		return user.User{}, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return user.User{}, chats_errors.NewValidationError("User with such an email has been registered!")
	} else if !errors.Is(err, chats_errors.ErrNotFound) {
		return user.User{}, err
	}
	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return user.User{}, chats_errors.NewValidationError("This username is busy! Try putting another one")
	} else if !errors.Is(err, chats_errors.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := hashPassword(in.Password2)
	if err != nil {
		return user.User{}, err
	}

	newUser := user.User{
		Email:        in.Email,
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		return user.User{}, err
	}
	return newUser, nil
}

// Authenticate looks the user up by email and checks the password.
// A missing user and a wrong password fail differently because the web
// layer flashes different messages for them.
func (s *AuthService) Authenticate(ctx context.Context, emailAddr, password string) (user.User, error) {
	u, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return user.User{}, err
	}
	if err := comparePassword(u.PasswordHash, password); err != nil {
		return user.User{}, chats_errors.ErrUnauthorized
	}
	return u, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SendResetEmail issues a reset token for the owner of the address and
// mails the reset link.
func (s *AuthService) SendResetEmail(ctx context.Context, emailAddr string) error {
	if err := validateEmail(emailAddr); err != nil {
		return err
	}
	u, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	token, err := s.tokens.IssueResetToken(u.ID)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Dear %s,\n\nTo reset your password, follow the link:\n%s/authentication/reset_password/%s\n\nIf you have not requested a reset, just ignore this message.",
		u.Name, s.baseURL, token)
	return s.mailer.Send(u.Email, "Simple chats reset password", body)
}

// UserByResetToken resolves a reset token back to its user. The error
// distinguishes expired from invalid; a token whose user no longer
// exists fails with ErrNotFound.
func (s *AuthService) UserByResetToken(ctx context.Context, token string) (user.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return user.User{}, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) ResetPassword(ctx context.Context, userID int64, password1, password2 string) error {
	if err := validatePasswordPair(password1, password2); err != nil {
		return err
	}
	hash, err := hashPassword(password2)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, userID, hash)
}

func validateEmail(emailAddr string) error {
	if err := validate.Var(emailAddr, "required,email"); err != nil {
		return chats_errors.NewValidationError("Please, input the correct e-mail")
	}
	return nil
}

func validatePasswordPair(password1, password2 string) error {
	if password1 != password2 {
		return chats_errors.NewValidationError("Given passwords do not match")
	}
	if len(password2) < minPasswordLength {
		return chats_errors.NewValidationError(
			fmt.Sprintf("Password must contain at least %d characters", minPasswordLength))
	}
	return nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
