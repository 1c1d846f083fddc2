package credentials

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jaekwang-park/todo-client/internal/cognito"
)

type CognitoTokenConfig struct {
	Client   cognito.Client
	Username string
	Password string
	// Leeway renews the token this long before it expires.
	Leeway time.Duration
	Now    func() time.Time
	Logger *slog.Logger
}

// CognitoToken sends a Cognito ID token as a bearer token. It logs in on first
// use, refreshes before expiry and falls back to a fresh login when the
// refresh token is rejected.
type CognitoToken struct {
	client   cognito.Client
	username string
	password string
	leeway   time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu           sync.Mutex
	idToken      string
	refreshToken string
	expiry       time.Time
}

func NewCognitoToken(cfg CognitoTokenConfig) *CognitoToken {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	leeway := cfg.Leeway
	if leeway <= 0 {
		leeway = time.Minute
	}
	return &CognitoToken{
		client:   cfg.Client,
		username: cfg.Username,
		password: cfg.Password,
		leeway:   leeway,
		now:      now,
		logger:   logger,
	}
}

func (c *CognitoToken) Apply(ctx context.Context, req *http.Request) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// Token returns a valid ID token, renewing it when needed.
func (c *CognitoToken) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.idToken != "" && c.now().Add(c.leeway).Before(c.expiry) {
		return c.idToken, nil
	}

	if c.refreshToken != "" {
		out, err := c.client.RefreshTokens(ctx, cognito.RefreshInput{
			Username:     c.username,
			RefreshToken: c.refreshToken,
		})
		if err == nil {
			c.store(out)
			return c.idToken, nil
		}
		if cognito.Retryable(err) {
			return "", fmt.Errorf("failed to refresh token: %w", err)
		}
		c.logger.WarnContext(ctx, "token refresh rejected, logging in again", "error", err)
	}

	out, err := c.client.Login(ctx, cognito.LoginInput{
		Username: c.username,
		Password: c.password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to log in: %w", err)
	}
	c.store(out)
	return c.idToken, nil
}

func (c *CognitoToken) store(out cognito.AuthOutput) {
	c.idToken = out.IDToken
	// refresh responses do not rotate the refresh token
	if out.RefreshToken != "" {
		c.refreshToken = out.RefreshToken
	}

	c.expiry = tokenExpiry(out.IDToken)
	if c.expiry.IsZero() {
		c.expiry = c.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
}

// tokenExpiry reads the exp claim without verifying the signature; the token
// was just issued to us by Cognito and is only forwarded.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
