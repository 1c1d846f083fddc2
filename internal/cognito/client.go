package cognito

import "context"

// Client defines the Cognito operations needed to obtain API tokens.
type Client interface {
	Login(ctx context.Context, input LoginInput) (AuthOutput, error)
	RefreshTokens(ctx context.Context, input RefreshInput) (AuthOutput, error)
}

// LoginInput contains the parameters for logging in a user.
type LoginInput struct {
	Username string
	Password string
}

// AuthOutput contains tokens returned after successful authentication.
// RefreshToken is empty on a refresh response.
type AuthOutput struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}

// RefreshInput contains the parameters for refreshing tokens.
type RefreshInput struct {
	Username     string
	RefreshToken string
}
