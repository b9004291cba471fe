package auth

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go"
	fbAuth "firebase.google.com/go/auth"
	"google.golang.org/api/option"
)

// IDTokenVerifier is the part of the Firebase auth client we use.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbAuth.Token, error)
}

// InitFirebaseAuth initializes a Firebase Admin SDK auth client from a
// service account file, falling back to GOOGLE_APPLICATION_CREDENTIALS.
// Returns nil if no credentials are configured.
func InitFirebaseAuth(ctx context.Context, credFile string) (*fbAuth.Client, error) {
	if credFile == "" {
		credFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if credFile == "" {
		return nil, nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return client, nil
}

// FirebaseVerifier accepts Firebase ID tokens of registered users.
type FirebaseVerifier struct {
	client IDTokenVerifier
	repo   Repository
}

func NewFirebaseVerifier(client IDTokenVerifier, repo Repository) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, repo: repo}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if v.client == nil {
		return nil, ErrFirebaseDisabled
	}
	fb, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	user, err := v.repo.GetUserByFirebaseUID(ctx, fb.UID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrInactiveUser
	}
	id := &Identity{UserID: user.ID.String(), Role: user.Role, TokenID: fb.UID}
	if a, err := v.repo.GetAdminByUserID(ctx, user.ID); err == nil {
		id.AdminID = a.ID.String()
	}
	return id, nil
}
