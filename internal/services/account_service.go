package services

import (
	"errors"
	"log"

	"blog/internal/models"
	"blog/internal/repositories"
	"blog/internal/validation"
)

// UpdateAccountInput is the profile form. A blank password keeps the current one.
type UpdateAccountInput struct {
	Username        string `json:"username" form:"username" validate:"required,min=4,max=25,username"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	AboutMe         string `json:"about_me" form:"about_me"`
	Password        string `json:"password" form:"password" validate:"omitempty,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"eqfield=Password"`
}

// AccountService handles profile changes of the current principal.
type AccountService struct {
	userRepo  repositories.UserRepository
	avatars   *AvatarService
	validator *validation.Validator
}

// NewAccountService creates a new AccountService.
func NewAccountService(userRepo repositories.UserRepository, avatars *AvatarService, v *validation.Validator) *AccountService {
	return &AccountService{
		userRepo:  userRepo,
		avatars:   avatars,
		validator: v,
	}
}

// AvatarURL is the public path of the principal's current avatar.
func (s *AccountService) AvatarURL(user *models.User) string {
	return s.avatars.URL(user.ImageFile)
}

// UpdateAccount applies the profile form to principal and returns the saved
// user. The previous avatar file is left on disk.
func (s *AccountService) UpdateAccount(principal *models.User, in UpdateAccountInput, avatar *AvatarUpload) (*models.User, error) {
	if principal == nil {
		return nil, models.NewUnauthorizedError("login required")
	}

	errs := s.validator.Struct(in)
	if errs == nil {
		errs = validation.FieldErrors{}
	}
	if err := checkUnique(s.userRepo, s.validator, errs, in.Username, in.Email, principal); err != nil {
		return nil, err
	}
	if avatar != nil {
		if _, ok := AllowedExtension(avatar.Filename); !ok {
			errs.Add("picture", s.validator.Message(validation.KeyPictureType))
		}
	}
	if len(errs) > 0 {
		return nil, models.NewFieldErrors(errs)
	}

	updated := *principal
	if avatar != nil {
		filename, err := s.avatars.Save(*avatar)
		if err != nil {
			if errors.Is(err, ErrInvalidImage) {
				return nil, models.NewFieldErrors(validation.FieldErrors{
					"picture": s.validator.Message(validation.KeyPictureInvalid),
				})
			}
			return nil, models.NewInternalError(err)
		}
		log.Printf("Saved avatar %s for user %d", filename, principal.ID)
		updated.ImageFile = filename
	}

	updated.Username = in.Username
	updated.Email = in.Email
	updated.AboutMe = in.AboutMe
	if in.Password != "" {
		hashedPassword, err := hashPassword(s.validator, in.Password)
		if err != nil {
			return nil, err
		}
		updated.Password = hashedPassword
	}

	if err := s.userRepo.Update(&updated); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, models.NewConflictError("Username or email already registered", err)
		}
		return nil, models.NewInternalError(err)
	}
	return &updated, nil
}
