package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// AWSSource loads credentials from AWS Secrets Manager. The secret value is
// the same JSON document the file source uses: {key, secret, passphrase, api_uri}.
type AWSSource struct {
	client     *secretsmanager.Client
	secretName string
}

// NewAWSSource builds a Secrets Manager-backed source for the given region
// and secret name.
func NewAWSSource(ctx context.Context, region, secretName string) (*AWSSource, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &AWSSource{
		client:     secretsmanager.NewFromConfig(cfg),
		secretName: secretName,
	}, nil
}

// Load fetches and decodes the secret. A missing secret maps to
// ErrNotConfigured, matching the file source's semantics.
func (s *AWSSource) Load(ctx context.Context) (*Credentials, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretName),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: secret %q not found", ErrNotConfigured, s.secretName)
		}
		return nil, fmt.Errorf("fetch secret %q: %w", s.secretName, err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &creds); err != nil {
		return nil, fmt.Errorf("invalid secret format for %q: %w", s.secretName, err)
	}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("secret %q: %w", s.secretName, err)
	}
	return &creds, nil
}
