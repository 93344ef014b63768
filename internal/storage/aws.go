// Package storage holds the AWS-backed pieces of the service: client
// construction from the shared config chain and the S3 snapshot exporter.
package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AWSClients bundles the SDK clients built from one aws.Config.
type AWSClients struct {
	DynamoDB *dynamodb.Client
	S3       *s3.Client
	Region   string
}

// NewAWSClients loads the default credential chain for region. A non-empty
// profile selects a shared-config profile; empty uses the ambient chain
// (env vars, IAM role on ECS).
func NewAWSClients(ctx context.Context, region, profile string) (*AWSClients, error) {
	var cfg aws.Config
	var err error

	if profile != "" {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &AWSClients{
		DynamoDB: dynamodb.NewFromConfig(cfg),
		S3:       s3.NewFromConfig(cfg),
		Region:   region,
	}, nil
}
