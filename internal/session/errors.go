package session

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned by Require when nobody is logged in.
var ErrNotAuthenticated = errors.New("not authenticated")

type DuplicateUserError struct {
	Username string
}

func (e *DuplicateUserError) Error() string {
	return fmt.Sprintf("user %q already exists", e.Username)
}

// InvalidCredentialsError deliberately does not say whether the username or
// the password was wrong.
type InvalidCredentialsError struct{}

func (e *InvalidCredentialsError) Error() string {
	return "invalid username or password"
}
