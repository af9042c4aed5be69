package auth

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/labelspy/labelspy-backend/pkg/config"
	pkgerrors "github.com/labelspy/labelspy-backend/pkg/errors"
)

// Identity holds the claims extracted from a verified ID token.
type Identity struct {
	UID   string
	Email string
}

// TokenVerifier validates a bearer token and returns the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

// Verifier validates Firebase ID tokens through the Admin SDK. Verification
// is fully delegated to the SDK: no local key handling, no caching, no retry.
type Verifier struct {
	client *fbauth.Client
}

// NewVerifier initializes the Firebase Admin app and its auth client.
func NewVerifier(ctx context.Context, cfg config.GCPConfig) (*Verifier, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("gcp project id is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase auth client: %w", err)
	}

	return &Verifier{client: client}, nil
}

// Verify checks the token signature, expiry, and revocation state, and maps
// any failure to an unauthorized error carrying the SDK's reason.
func (v *Verifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	if v == nil || v.client == nil {
		return Identity{}, pkgerrors.New(pkgerrors.CodeInternal, "token verifier not configured")
	}

	trimmed := strings.TrimSpace(idToken)
	if trimmed == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	token, err := v.client.VerifyIDToken(ctx, trimmed)
	if err != nil {
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, fmt.Sprintf("invalid or expired token: %v", err))
	}

	identity := Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	return identity, nil
}
