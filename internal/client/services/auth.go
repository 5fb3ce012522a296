// Package services contains application services for the jobmarket client.
// This file defines the authentication service: register, login, logout and
// the liveness probe, plus the locally remembered email of the last session.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/jobmarket/internal/client/client"
	"github.com/dmitrijs2005/jobmarket/internal/client/repositories/metadata"
)

const lastEmailKey = "last_email"

// AuthService defines authentication operations for the CLI.
type AuthService interface {
	Register(ctx context.Context, email string, password []byte, role string) error
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context)
	Ping(ctx context.Context) error
	LastEmail(ctx context.Context) string
}

type authService struct {
	client client.Client
	meta   metadata.Repository
}

// NewAuthService binds the API client and the device-wide metadata namespace.
func NewAuthService(c client.Client, meta metadata.Repository) AuthService {
	return &authService{client: c, meta: meta}
}

func (a *authService) Register(ctx context.Context, email string, password []byte, role string) error {
	if _, err := a.client.Register(ctx, email, string(password), role); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

// Login opens a session. The email is remembered for the next prompt; failing
// to store it does not fail the login.
func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	if err := a.client.Login(ctx, email, string(password)); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	_ = a.meta.Set(ctx, lastEmailKey, []byte(email))
	return nil
}

// Logout drops the session tokens. Locally stored visitor data stays.
func (a *authService) Logout(ctx context.Context) {
	a.client.Logout()
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) LastEmail(ctx context.Context) string {
	v, err := a.meta.Get(ctx, lastEmailKey)
	if err != nil {
		return ""
	}
	return string(v)
}
