package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// LoadAwsConfig resolves AWS credentials from the default chain, pinned to
// the archive's region
func LoadAwsConfig(ctx context.Context, cfg *S3Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
}
