package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds explicit construction parameters for the S3 backend.
// Credentials fall back to the default AWS chain when unset.
type S3Config struct {
	Bucket    string `json:"bucket" yaml:"bucket"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"` // optional; e.g. MinIO
	PathStyle bool   `json:"path_style,omitempty" yaml:"path_style,omitempty"`
}

// S3 loads fixture resources from objects in a single bucket.
// Object keys are <prefix><name>.json.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 creates an S3 loader from cfg.
func NewS3(ctx context.Context, cfg S3Config, optFns ...func(*s3.Options)) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	opts := append([]func(*s3.Options){func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}, optFns...)
	client := s3.NewFromConfig(awsCfg, opts...)
	return NewS3FromClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewS3FromClient wraps an existing client.
func NewS3FromClient(client *s3.Client, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// S3ConfigFromEnv reads the S3 backend settings from the environment.
//
//	GLUCOSIM_FIXTURES_S3_BUCKET=<bucket> (required)
//	GLUCOSIM_FIXTURES_S3_PREFIX=<key prefix>
//	GLUCOSIM_FIXTURES_S3_REGION=<region> (default us-east-1)
//	GLUCOSIM_FIXTURES_S3_ENDPOINT=<url> (optional, for MinIO)
//	GLUCOSIM_FIXTURES_S3_PATH_STYLE=true|false
func S3ConfigFromEnv() S3Config {
	return S3Config{
		Bucket:    os.Getenv("GLUCOSIM_FIXTURES_S3_BUCKET"),
		Prefix:    os.Getenv("GLUCOSIM_FIXTURES_S3_PREFIX"),
		Region:    os.Getenv("GLUCOSIM_FIXTURES_S3_REGION"),
		Endpoint:  os.Getenv("GLUCOSIM_FIXTURES_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("GLUCOSIM_FIXTURES_S3_PATH_STYLE"), "true"),
	}
}

// Driver returns DriverS3.
func (s *S3) Driver() Driver { return DriverS3 }

func (s *S3) key(name string) string {
	return s.prefix + fileName(name)
}

// Load fetches the object for name.
func (s *S3) Load(ctx context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, fmt.Errorf("invalid resource name %q", name)
	}

	key := s.key(name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, key, err)
	}
	return data, nil
}

// Put uploads data as the object for name.
func (s *S3) Put(ctx context.Context, name string, data []byte) error {
	if !validName(name) {
		return fmt.Errorf("invalid resource name %q", name)
	}
	key := s.key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// List returns the names of all fixture objects under the prefix.
func (s *S3) List(ctx context.Context) ([]string, error) {
	var names []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &s.bucket, Prefix: &s.prefix, ContinuationToken: token})
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range out.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			if strings.Contains(rel, "/") {
				continue
			}
			if n, ok := resourceName(rel); ok {
				names = append(names, n)
			}
		}
		if out.IsTruncated != nil && *out.IsTruncated && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Strings(names)
	return names, nil
}

// isS3NotFound reports whether err means the object does not exist.
func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
