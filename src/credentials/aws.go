package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
)

// SSM reads the key from a Parameter Store parameter, decrypting SecureString
// values.
type SSM struct {
	svc       ssmiface.SSMAPI
	parameter string
}

func NewSSM(svc ssmiface.SSMAPI, parameter string) *SSM {
	return &SSM{svc: svc, parameter: parameter}
}

func (s *SSM) Name() string { return "ssm" }

func (s *SSM) Resolve(ctx context.Context) (string, error) {
	out, err := s.svc.GetParameterWithContext(ctx, &ssm.GetParameterInput{
		Name:           aws.String(s.parameter),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		if isCode(err, ssm.ErrCodeParameterNotFound) {
			return "", fmt.Errorf("%w in parameter %s", ErrMissing, s.parameter)
		}
		return "", fmt.Errorf("get parameter %s: %w", s.parameter, err)
	}
	if out.Parameter == nil || aws.StringValue(out.Parameter.Value) == "" {
		return "", fmt.Errorf("%w in parameter %s", ErrMissing, s.parameter)
	}
	return aws.StringValue(out.Parameter.Value), nil
}

// SecretsManager reads the key from the SecretString of a secret. A plaintext
// secret is the key itself; a key/value (JSON object) secret holds the key
// under field.
type SecretsManager struct {
	svc      secretsmanageriface.SecretsManagerAPI
	secretID string
	field    string
}

func NewSecretsManager(svc secretsmanageriface.SecretsManagerAPI, secretID, field string) *SecretsManager {
	return &SecretsManager{svc: svc, secretID: secretID, field: field}
}

func (s *SecretsManager) Name() string { return "secretsmanager" }

func (s *SecretsManager) Resolve(ctx context.Context) (string, error) {
	out, err := s.svc.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretID),
	})
	if err != nil {
		if isCode(err, secretsmanager.ErrCodeResourceNotFoundException) {
			return "", fmt.Errorf("%w in secret %s", ErrMissing, s.secretID)
		}
		return "", fmt.Errorf("get secret %s: %w", s.secretID, err)
	}
	v := aws.StringValue(out.SecretString)
	var fields map[string]any
	if err := json.Unmarshal([]byte(v), &fields); err == nil {
		v, _ = fields[s.field].(string)
		if v == "" {
			return "", fmt.Errorf("%w in secret %s field %s", ErrMissing, s.secretID, s.field)
		}
	}
	if v == "" {
		return "", fmt.Errorf("%w in secret %s", ErrMissing, s.secretID)
	}
	return v, nil
}

func isCode(err error, code string) bool {
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == code
}
