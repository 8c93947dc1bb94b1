package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/linkfeed/configs"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// R2Storage keeps media in a Cloudflare R2 bucket through its S3 API.
type R2Storage struct {
	client    s3API
	bucket    string
	folder    string
	publicURL string
}

func NewR2Storage(ctx context.Context, r2 cfg.R2) (*R2Storage, error) {
	if r2.AccountID == "" || r2.BucketName == "" || r2.PublicURL == "" {
		return nil, errors.New("R2 storage is not configured")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2.AccessKey, r2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	})

	return newR2Storage(client, r2), nil
}

func newR2Storage(client s3API, r2 cfg.R2) *R2Storage {
	return &R2Storage{
		client:    client,
		bucket:    r2.BucketName,
		folder:    r2.Folder,
		publicURL: strings.TrimRight(r2.PublicURL, "/"),
	}
}

func (r *R2Storage) Store(ctx context.Context, name, contentType string, data []byte) (*StoredObject, error) {
	key := path.Join(r.folder, name)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &StoredObject{
		Path:       r.publicURL + "/" + key,
		ExternalID: key,
	}, nil
}

func (r *R2Storage) Delete(ctx context.Context, externalID string) error {
	if externalID == "" {
		return nil
	}

	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(externalID),
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
