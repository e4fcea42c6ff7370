package services

import (
	"errors"

	"blog/internal/models"
	"blog/internal/repositories"
	"blog/internal/validation"
)

// checkUnique looks up username and email in the store and records a field
// error for each one already held by someone other than self. Fields that
// already failed a rule are not looked up. The check is not a reservation;
// the unique indexes catch the race with a concurrent insert.
func checkUnique(repo repositories.UserRepository, v *validation.Validator, errs validation.FieldErrors, username, email string, self *models.User) error {
	if _, failed := errs["username"]; !failed && (self == nil || username != self.Username) {
		taken, err := isTaken(repo.GetByUsername(username))
		if err != nil {
			return err
		}
		if taken {
			errs.Add("username", v.Message(validation.KeyUsernameTaken, username))
		}
	}
	if _, failed := errs["email"]; !failed && (self == nil || email != self.Email) {
		taken, err := isTaken(repo.GetByEmail(email))
		if err != nil {
			return err
		}
		if taken {
			errs.Add("email", v.Message(validation.KeyEmailTaken, email))
		}
	}
	return nil
}

func isTaken(user *models.User, err error) (bool, error) {
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, models.NewInternalError(err)
	}
	return user != nil, nil
}
