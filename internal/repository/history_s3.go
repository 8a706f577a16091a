package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/windoze95/shopcompare-api/internal/config"
)

// S3API is the subset of the S3 client the history store uses.
type S3API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3HistoryRepository stores the history as a JSON object in a bucket.
type S3HistoryRepository struct {
	client    S3API
	uploader  *manager.Uploader
	bucket    string
	namespace string
}

// NewS3Client creates an S3 client from the AWS settings.
// When an access key and secret are provided, static credentials are used;
// otherwise the default credential chain applies (IAM role, instance
// profile, etc.).
func NewS3Client(ctx context.Context, vars config.AWSVars) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(vars.Region),
	}

	if vars.AccessKeyID != "" && vars.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			vars.AccessKeyID,
			vars.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// NewS3HistoryRepository creates an S3HistoryRepository.
func NewS3HistoryRepository(client S3API, bucket, namespace string) *S3HistoryRepository {
	return &S3HistoryRepository{
		client:    client,
		uploader:  manager.NewUploader(client),
		bucket:    bucket,
		namespace: namespace,
	}
}

// HistoryObjectKey returns the object key holding a namespace's history.
func HistoryObjectKey(namespace string) string {
	return fmt.Sprintf("search-history/%s.json", namespace)
}

// LoadTerms downloads and decodes the history object.
func (r *S3HistoryRepository) LoadTerms(ctx context.Context) ([]string, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(HistoryObjectKey(r.namespace)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, notFound(r.namespace)
		}
		return nil, fmt.Errorf("failed to get history from S3: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read history from S3: %w", err)
	}
	return decodeTerms(data)
}

// SaveTerms uploads the history object, replacing any previous version.
func (r *S3HistoryRepository) SaveTerms(ctx context.Context, terms []string) error {
	data, err := encodeTerms(terms)
	if err != nil {
		return err
	}

	_, err = r.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(HistoryObjectKey(r.namespace)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload history to S3: %w", err)
	}
	return nil
}
