package awsclient

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

const (
	// GlobalRegion hosts the Budgets and Cost Explorer endpoints.
	GlobalRegion = "us-east-1"
)

type Settings struct {
	Profile string
	Region  string
}

// LoadConfig resolves SDK configuration for the given profile and region
// and makes sure credentials can actually be retrieved.
func LoadConfig(ctx context.Context, s Settings) (awssdk.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(GlobalRegion),
	}
	if s.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(s.Profile))
	}
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awssdk.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	// Test the credentials
	if _, err = awsCfg.Credentials.Retrieve(ctx); err != nil {
		return awssdk.Config{}, fmt.Errorf("invalid AWS credentials for profile %q: %w", s.Profile, err)
	}

	return awsCfg, nil
}
