package app

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"quiz-runner/internal/domain"
)

var validate = validator.New()

// NormalizeUser trims the names and checks that a first name remains.
func NormalizeUser(u domain.User) (domain.User, error) {
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	if err := validate.Struct(u); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrInvalidUser, err)
	}
	return u, nil
}
