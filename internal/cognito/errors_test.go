package cognito

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
)

func TestMapAWSError(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"UserNotFoundException", ErrUserNotFound},
		{"UserNotConfirmedException", ErrUserNotConfirmed},
		{"TooManyRequestsException", ErrTooManyRequests},
		{"NotAuthorizedException", ErrNotAuthorized},
		{"PasswordResetRequiredException", ErrPasswordResetRequired},
		{"InvalidParameterException", ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := mapAWSError(&smithy.GenericAPIError{Code: tt.code, Message: "boom"})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMapAWSError_Unknown(t *testing.T) {
	orig := &smithy.GenericAPIError{Code: "InternalErrorException", Message: "boom"}
	err := mapAWSError(orig)

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected wrapped smithy.APIError, got %v", err)
	}
	if apiErr.ErrorCode() != "InternalErrorException" {
		t.Errorf("code: got %q", apiErr.ErrorCode())
	}
}

func TestMapAWSError_NonAPIError(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := mapAWSError(cause)
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(fmt.Errorf("slow down: %w", ErrTooManyRequests)) {
		t.Error("expected throttling to be retryable")
	}
	if Retryable(ErrNotAuthorized) {
		t.Error("expected not authorized to be final")
	}
}
