package services

import (
	"context"
	"os"
	"strings"
)

// CredentialProvider hands out the completion API key. It is asked once per
// advisory call so rotated keys apply to the next request.
type CredentialProvider interface {
	APIKey(ctx context.Context) (string, error)
}

// EnvCredentialProvider reads the first non-empty variable of Keys from the
// process environment at call time.
type EnvCredentialProvider struct {
	Keys []string
}

func (p EnvCredentialProvider) APIKey(_ context.Context) (string, error) {
	for _, k := range p.Keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v, nil
		}
	}
	return "", ErrMissingCredential
}

// StaticCredential always returns the same key.
type StaticCredential string

func (s StaticCredential) APIKey(_ context.Context) (string, error) {
	if s == "" {
		return "", ErrMissingCredential
	}
	return string(s), nil
}
