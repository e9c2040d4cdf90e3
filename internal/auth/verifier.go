// Package auth verifies Firebase ID tokens presented to /process-video.
package auth

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseAuth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// TokenClaims identifies the verified caller.
type TokenClaims struct {
	UID   string
	Email string
}

// TokenVerifier checks a raw ID token. RequireAuth depends on this rather
// than on Firebase so handlers can be tested without network access.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*TokenClaims, error)
}

// idTokenChecker is the slice of *firebaseAuth.Client used here.
type idTokenChecker interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseAuth.Token, error)
}

// FirebaseVerifier is the TokenVerifier backed by the Firebase Admin SDK.
type FirebaseVerifier struct {
	client idTokenChecker
}

// NewFirebaseVerifier creates a verifier for projectID. opts are passed to the
// Firebase app, so the service can reuse the credentials it uploads with;
// with no opts the SDK falls back to Application Default Credentials.
func NewFirebaseVerifier(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirebaseVerifier, error) {
	if projectID == "" {
		return nil, errors.New("firebase project ID is required")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

// VerifyIDToken rejects expired, malformed or foreign-project tokens and maps
// the rest to TokenClaims.
func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify firebase id token: %w", err)
	}
	return claimsFromToken(tok), nil
}

func claimsFromToken(tok *firebaseAuth.Token) *TokenClaims {
	email, _ := tok.Claims["email"].(string)
	return &TokenClaims{UID: tok.UID, Email: email}
}
