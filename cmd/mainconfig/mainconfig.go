// Package mainconfig holds AWS wiring shared by the API server and the Lambda.
package mainconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/nomad-detailing/internal/config"
)

// LoadAWSConfig loads the SDK config for cfg.AWSRegion. Static keys are used
// only when both halves are set; otherwise the default chain applies.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	region := strings.TrimSpace(cfg.AWSRegion)
	if region == "" {
		return aws.Config{}, fmt.Errorf("mainconfig: AWS_REGION is empty")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if key, secret := strings.TrimSpace(cfg.AWSAccessKeyID), strings.TrimSpace(cfg.AWSSecretAccessKey); key != "" && secret != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("mainconfig: load aws config: %w", err)
	}
	return awsCfg, nil
}

// SESOptions points the SES client at AWS_ENDPOINT_OVERRIDE (LocalStack).
func SESOptions(cfg *appconfig.Config) []func(*sesv2.Options) {
	endpoint := strings.TrimSpace(cfg.AWSEndpointOverride)
	if endpoint == "" {
		return nil
	}
	return []func(*sesv2.Options){func(o *sesv2.Options) { o.BaseEndpoint = aws.String(endpoint) }}
}

// NewSESClient builds an SES v2 client for cfg.
func NewSESClient(ctx context.Context, cfg *appconfig.Config) (*sesv2.Client, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return sesv2.NewFromConfig(awsCfg, SESOptions(cfg)...), nil
}
