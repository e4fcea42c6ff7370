package validation

// Messages maps a rule key to its message template.
type Messages map[string]string

// Message keys used outside struct-tag rules.
const (
	KeyUsernameTaken   = "username.taken"
	KeyEmailTaken      = "email.taken"
	KeyPictureType     = "picture.type"
	KeyPictureInvalid  = "picture.invalid"
	KeyPasswordTooLong = "password.max"
	KeyAccountCreated  = "flash.account_created"
	KeyAccountUpdated  = "flash.account_updated"
	KeyLoggedIn        = "flash.logged_in"
	KeyLoggedOut       = "flash.logged_out"
	KeyLoginFailed     = "flash.login_failed"
	KeyLoginRequired   = "flash.login_required"
	KeyPostCreated     = "flash.post_created"
	KeyPostUpdated     = "flash.post_updated"
	KeyPostDeleted     = "flash.post_deleted"
	KeyPostForbidden   = "post.forbidden"
	KeyPostNotFound    = "post.not_found"
	KeyDeleteNeedsPOST = "post.delete_method"
)

// English is the default message table.
var English = Messages{
	"required":                 "This field is required.",
	"email":                    "Invalid email address.",
	"eqfield":                  "Field must be equal to %s.",
	"username.min":             "Field must be between 4 and 25 characters long.",
	"username.max":             "Field must be between 4 and 25 characters long.",
	"username.username":        "Username must have only letters, numbers, dots or underscores",
	"password.min":             "Field must be at least 6 characters long.",
	KeyPasswordTooLong:         "Field must be at most 72 characters long.",
	"confirm_password.eqfield": "Field must be equal to password.",
	KeyUsernameTaken:           "That username %s is taken. Please choose a different one.",
	KeyEmailTaken:              "A user with email %s already exists",
	KeyPictureType:             "File does not have an approved extension: jpg, jpeg, png",
	KeyPictureInvalid:          "File is not a readable image.",
	KeyAccountCreated:          "Account created for %s!",
	KeyAccountUpdated:          "Account updated for %s!",
	KeyLoggedIn:                "You have been logged in!",
	KeyLoggedOut:               "You have been logged out",
	KeyLoginFailed:             "Login unsuccessful. Please check username and password",
	KeyLoginRequired:           "Please log in to access this page.",
	KeyPostCreated:             "Your post has been created!",
	KeyPostUpdated:             "Your post has been updated!",
	KeyPostDeleted:             "Your post has been deleted!",
	KeyPostForbidden:           "You can only change your own posts.",
	KeyPostNotFound:            "Post not found.",
	KeyDeleteNeedsPOST:         "Posts can only be deleted with POST.",
}

// Ukrainian overrides the messages the site originally showed in Ukrainian.
// Keys it does not define fall back to English.
var Ukrainian = Messages{
	"required":          "Це поле обовязкове",
	"username.min":      "Це поле має бути довжиною між 4 та 25 символів",
	"username.max":      "Це поле має бути довжиною між 4 та 25 символів",
	"password.min":      "Це поле має бути довжиною більше 6 символів",
	KeyPasswordTooLong:  "Це поле має бути довжиною не більше 72 символів",
	KeyEmailTaken:       "Користувач з таким емейлом %s вже існує",
	"username.username": "Username must have only letters, numbers, dots or underscores",
}

// MessagesFor returns the table for locale merged over English.
func MessagesFor(locale string) Messages {
	merged := make(Messages, len(English))
	for k, v := range English {
		merged[k] = v
	}
	if locale == "uk" {
		for k, v := range Ukrainian {
			merged[k] = v
		}
	}
	return merged
}
