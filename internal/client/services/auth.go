// Package services contains application services for the qaforum client.
// This file defines the authentication service: sign-in, registration and
// sign-out on top of the session store.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/qaforum/internal/client/client"
	"github.com/dmitrijs2005/qaforum/internal/client/models"
	"github.com/dmitrijs2005/qaforum/internal/client/session"
	"github.com/dmitrijs2005/qaforum/internal/logging"
	"github.com/go-playground/validator/v10"
)

// ErrNotVerified means the server issued a token that it then refused to
// verify.
var ErrNotVerified = errors.New("session could not be verified")

// Sessions is the part of *session.Store the services use.
type Sessions interface {
	Login(ctx context.Context, token string) (bool, error)
	Logout(ctx context.Context)
	Current() session.Session
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - SignIn: exchange username and password for a token and start a session.
//   - Register: create an account and start a session with the issued token.
//   - Logout: end the session locally.
//
// SignIn and Register return only after the session reflects the server's
// verdict on the new token.
type AuthService interface {
	SignIn(ctx context.Context, creds models.Credentials) (session.Session, error)
	Register(ctx context.Context, reg models.Registration) (session.Session, error)
	Logout(ctx context.Context)
}

type authService struct {
	client   client.Client
	sessions Sessions
	validate *validator.Validate
	log      logging.Logger
}

func NewAuthService(c client.Client, sessions Sessions, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{
		client:   c,
		sessions: sessions,
		validate: newValidator(),
		log:      log.With("service", "auth"),
	}
}

func (a *authService) SignIn(ctx context.Context, creds models.Credentials) (session.Session, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := check(a.validate, creds); err != nil {
		return session.Session{}, err
	}

	token, err := a.client.SignIn(ctx, creds)
	if err != nil {
		return session.Session{}, fmt.Errorf("sign in: %w", err)
	}
	return a.start(ctx, token)
}

func (a *authService) Register(ctx context.Context, reg models.Registration) (session.Session, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Username = strings.TrimSpace(reg.Username)
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	if err := check(a.validate, reg); err != nil {
		return session.Session{}, err
	}

	token, err := a.client.Register(ctx, reg)
	if err != nil {
		return session.Session{}, fmt.Errorf("register: %w", err)
	}
	a.log.Info(ctx, "account created", "username", reg.Username)
	return a.start(ctx, token)
}

func (a *authService) Logout(ctx context.Context) {
	a.sessions.Logout(ctx)
}

func (a *authService) start(ctx context.Context, token string) (session.Session, error) {
	ok, err := a.sessions.Login(ctx, token)
	if err != nil {
		return session.Session{}, err
	}
	if !ok {
		return session.Session{}, ErrNotVerified
	}
	return a.sessions.Current(), nil
}
