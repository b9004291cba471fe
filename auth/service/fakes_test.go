package service

import (
	"context"
	"errors"

	fbAuth "firebase.google.com/go/auth"
	"github.com/google/uuid"
	authpkg "github.com/mikios34/customer-admin/auth"
	"github.com/mikios34/customer-admin/entity"
)

type fakeRepo struct {
	users  []*entity.User
	admins map[uuid.UUID]*entity.Admin
}

func (r *fakeRepo) find(match func(u *entity.User) bool) (*entity.User, error) {
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, authpkg.ErrUserNotFound
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email })
}

func (r *fakeRepo) GetUserByFirebaseUID(_ context.Context, uid string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == uid })
}

func (r *fakeRepo) GetUserByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

func (r *fakeRepo) GetAdminByUserID(_ context.Context, userID uuid.UUID) (*entity.Admin, error) {
	if a, ok := r.admins[userID]; ok {
		return a, nil
	}
	return nil, authpkg.ErrUserNotFound
}

type fakeFirebase struct {
	uids map[string]string
}

func (f *fakeFirebase) VerifyIDToken(_ context.Context, idToken string) (*fbAuth.Token, error) {
	uid, ok := f.uids[idToken]
	if !ok {
		return nil, errors.New("token signature invalid")
	}
	return &fbAuth.Token{UID: uid}, nil
}

// brokenTokens fails every revocation lookup.
type brokenTokens struct{ authpkg.TokenStore }

func (brokenTokens) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("dial tcp 127.0.0.1:6379: connection refused")
}
