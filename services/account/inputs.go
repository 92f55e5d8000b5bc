package account

import (
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// ProfileInput carries optional profile changes. Empty fields are left as
// they are.
type ProfileInput struct {
	Name  string `json:"name"`
	Bio   string `json:"bio"`
	Photo string `json:"photo"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r ChangePasswordInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

type ForgotPasswordInput struct {
	Email string `json:"email"`
}

type ResetPasswordInput struct {
	Password string `json:"password"`
}

func validEmail(email string) bool {
	return validation.Validate(email, is.Email) == nil
}

func longEnough(password string, minLen int) bool {
	return utf8.RuneCountInString(password) >= minLen
}

// maxPasswordBytes is the most bcrypt will hash.
const maxPasswordBytes = 72

func shortEnough(password string) bool {
	return len(password) <= maxPasswordBytes
}

func trim(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}
