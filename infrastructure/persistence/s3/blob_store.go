// Package s3 implements the blob store on Amazon S3.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ahkneemay/application/ports"
	pkgerrors "ahkneemay/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Client is the subset of the S3 API used by BlobStore
type Client interface {
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeletePublicAccessBlock(ctx context.Context, params *s3.DeletePublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.DeletePublicAccessBlockOutput, error)
}

// Presigner signs download requests
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// BlobStore implements ports.BlobStore on S3
type BlobStore struct {
	client    Client
	presigner Presigner
	region    string
	logger    *zap.Logger
}

// NewBlobStore creates an S3-backed blob store. presigner may be nil when
// signed URLs are not used.
func NewBlobStore(client Client, presigner Presigner, region string, logger *zap.Logger) *BlobStore {
	return &BlobStore{
		client:    client,
		presigner: presigner,
		region:    region,
		logger:    logger,
	}
}

// NewBlobStoreFromClient wires the presigner from a concrete client
func NewBlobStoreFromClient(client *s3.Client, region string, logger *zap.Logger) *BlobStore {
	return NewBlobStore(client, s3.NewPresignClient(client), region, logger)
}

// CreateBucket creates a bucket in the store's region that honors
// public-read object ACLs: object-writer ownership, no public access block.
func (s *BlobStore) CreateBucket(ctx context.Context, bucket string) (string, error) {
	input := &s3.CreateBucketInput{
		Bucket:          aws.String(bucket),
		ObjectOwnership: types.ObjectOwnershipObjectWriter,
	}
	// us-east-1 rejects an explicit location constraint
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	out, err := s.client.CreateBucket(ctx, input)
	if err != nil {
		return "", s.translate("CreateBucket", bucket, err)
	}

	if _, err := s.client.DeletePublicAccessBlock(ctx, &s3.DeletePublicAccessBlockInput{
		Bucket: aws.String(bucket),
	}); err != nil {
		return "", s.translate("DeletePublicAccessBlock", bucket, err)
	}

	s.logger.Info("Bucket created", zap.String("bucket", bucket))
	if out == nil {
		return "", nil
	}
	return aws.ToString(out.Location), nil
}

// PutObject uploads an object
func (s *BlobStore) PutObject(ctx context.Context, obj ports.Object) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(obj.Bucket),
		Key:         aws.String(obj.Key),
		Body:        obj.Body,
		ContentType: aws.String(obj.ContentType),
	}
	if obj.ContentLength > 0 {
		input.ContentLength = aws.Int64(obj.ContentLength)
	}
	if obj.ACL != "" {
		input.ACL = types.ObjectCannedACL(obj.ACL)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return s.translate("PutObject", obj.Bucket, err)
	}
	return nil
}

// DeleteObject removes an object
func (s *BlobStore) DeleteObject(ctx context.Context, bucket, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return s.translate("DeleteObject", bucket, err)
	}
	return nil
}

// PresignGetObject returns a signed GET URL valid for ttl
func (s *BlobStore) PresignGetObject(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if s.presigner == nil {
		return "", pkgerrors.NewStoreError("PresignGetObject", fmt.Errorf("presigning is not configured"))
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", s.translate("PresignGetObject", bucket, err)
	}
	return req.URL, nil
}

// translate maps S3 errors onto application errors
func (s *BlobStore) translate(op, bucket string, err error) error {
	if op == "CreateBucket" && isBucketExists(err) {
		return pkgerrors.NewConflictError(pkgerrors.CodeBucketExists,
			fmt.Sprintf("bucket %s already exists", bucket)).WithCause(err)
	}

	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("bucket", bucket),
		zap.Error(err),
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields, zap.String("error_code", apiErr.ErrorCode()))
	}
	s.logger.Error("S3 operation failed", fields...)

	return pkgerrors.NewStoreError(op, err)
}

func isBucketExists(err error) bool {
	var owned *types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return true
	}
	var exists *types.BucketAlreadyExists
	if errors.As(err, &exists) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return true
		}
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusConflict {
		return true
	}
	return false
}

var _ ports.BlobStore = (*BlobStore)(nil)
