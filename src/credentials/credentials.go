// Package credentials resolves the Gemini API key at invocation time.
//
// The key can live in the function's environment, in SSM Parameter Store or in
// Secrets Manager. Whatever the backend, a Provider returns the raw key or an
// error; it never logs the value.
package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/ssm"

	"github.com/dgimmler/gemini-proxy/src/config"
)

// ErrMissing is returned when the configured key does not exist or is empty.
var ErrMissing = errors.New("API key is not set")

// Provider resolves the credential for one invocation. Implementations must be
// safe for concurrent use.
type Provider interface {
	Resolve(ctx context.Context) (string, error)
	// Name identifies the backend in logs.
	Name() string
}

// FromConfig builds the provider selected by cfg.CredentialSource.
func FromConfig(cfg config.Config) (Provider, error) {
	switch cfg.CredentialSource {
	case "", config.SourceEnv:
		return NewEnv(cfg.CredentialName), nil
	case config.SourceSSM:
		sess, err := newSession(cfg.Region)
		if err != nil {
			return nil, err
		}
		return NewSSM(ssm.New(sess), cfg.CredentialName), nil
	case config.SourceSecretsManager:
		sess, err := newSession(cfg.Region)
		if err != nil {
			return nil, err
		}
		return NewSecretsManager(secretsmanager.New(sess), cfg.CredentialName, cfg.CredentialField), nil
	default:
		return nil, fmt.Errorf("unknown credential source %q", cfg.CredentialSource)
	}
}

func newSession(region string) (*session.Session, error) {
	awsCfg := &aws.Config{}
	if region != "" {
		awsCfg.Region = aws.String(region)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return sess, nil
}
