package cognito

import "errors"

// Sentinel errors for Cognito operations.
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotConfirmed      = errors.New("user not confirmed")
	ErrTooManyRequests       = errors.New("too many requests")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrPasswordResetRequired = errors.New("password reset required")
	ErrInvalidParameter      = errors.New("invalid parameter")
)

// Retryable reports whether a failed authentication may succeed by trying
// again later, as opposed to needing new credentials.
func Retryable(err error) bool {
	return errors.Is(err, ErrTooManyRequests)
}
