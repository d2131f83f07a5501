// Package archive writes completed call artifacts to S3 for long-term
// retention. The rest of the system treats archiving as best-effort: a failed
// upload is logged, never fatal.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"influencerflow/types"
)

// Config holds the archive bucket settings. Region and Profile are optional
// and fall back to the standard AWS config chain.
type Config struct {
	Bucket       string
	Prefix       string
	Region       string
	Profile      string
	UsePathStyle bool
}

// ConfigFromEnv reads S3_BUCKET, S3_PREFIX, S3_REGION, S3_PROFILE and
// S3_USE_PATH_STYLE. An empty bucket means archiving is disabled.
func ConfigFromEnv() Config {
	return Config{
		Bucket:       os.Getenv("S3_BUCKET"),
		Prefix:       os.Getenv("S3_PREFIX"),
		Region:       os.Getenv("S3_REGION"),
		Profile:      os.Getenv("S3_PROFILE"),
		UsePathStyle: os.Getenv("S3_USE_PATH_STYLE") == "true",
	}
}

// Archive uploads call artifacts as JSON objects.
type Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an Archive from the AWS default configuration chain. Returns
// (nil, nil) when no bucket is configured so callers can skip archiving.
func New(ctx context.Context, cfg Config) (*Archive, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &Archive{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// ArchiveCallArtifacts uploads the artifacts for one call, at most once per
// call id: an existing object is left alone.
func (a *Archive) ArchiveCallArtifacts(ctx context.Context, artifacts types.CallArtifacts) error {
	key := a.key(artifacts.CallID)

	exists, err := a.exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check existing archive: %w", err)
	}
	if exists {
		log.Printf("📦 Call %s already archived, skipping", artifacts.CallID)
		return nil
	}

	payload, err := json.Marshal(artifacts)
	if err != nil {
		return fmt.Errorf("failed to marshal artifacts: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload artifacts: %w", err)
	}
	log.Printf("📦 Archived call %s to s3://%s/%s", artifacts.CallID, a.bucket, key)
	return nil
}

func (a *Archive) key(callID string) string {
	if a.prefix != "" {
		return fmt.Sprintf("%s/calls/%s.json", a.prefix, callID)
	}
	return fmt.Sprintf("calls/%s.json", callID)
}

func (a *Archive) exists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return false, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return false, nil
	}
	return false, err
}
