// ABOUTME: Resolves the user id that scopes every field operation
// ABOUTME: Static, environment and chained providers; callers pass the result explicitly

package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrNoUser is returned when no provider knows who is signed in.
var ErrNoUser = errors.New("no signed-in user")

// Provider resolves the current user id.
type Provider interface {
	UserID(ctx context.Context) (string, error)
}

// Static always returns the same user id. An empty value means signed out.
type Static string

// UserID implements Provider.
func (s Static) UserID(context.Context) (string, error) {
	id := strings.TrimSpace(string(s))
	if id == "" {
		return "", ErrNoUser
	}
	return id, nil
}

// Env reads the user id from an environment variable.
type Env string

// DefaultEnv is the variable consulted by Env("").
const DefaultEnv = "CROPFIT_USER"

// UserID implements Provider.
func (e Env) UserID(context.Context) (string, error) {
	key := string(e)
	if key == "" {
		key = DefaultEnv
	}
	id := strings.TrimSpace(os.Getenv(key))
	if id == "" {
		return "", fmt.Errorf("%s not set: %w", key, ErrNoUser)
	}
	return id, nil
}

// Chain tries each provider in order and returns the first user id found.
type Chain []Provider

// UserID implements Provider.
func (c Chain) UserID(ctx context.Context) (string, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		id, err := p.UserID(ctx)
		if err == nil && id != "" {
			return id, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if err != nil && !errors.Is(err, ErrNoUser) {
			log.Debug("identity provider failed", "provider", fmt.Sprintf("%T", p), "err", err)
		}
	}
	return "", ErrNoUser
}
