package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/linkfeed/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	ls, err := NewLocalStorage(dir)
	require.NoError(t, err)

	obj, err := ls.Store(context.Background(), "abc.png", "image/png", pngData)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", obj.Path)
	assert.Empty(t, obj.ExternalID)

	data, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, pngData, data)

	_, err = ls.Store(context.Background(), "../escape.png", "image/png", pngData)
	assert.Error(t, err)

	assert.NoError(t, ls.Delete(context.Background(), ""))
}

type fakeS3 struct {
	put     []*s3.PutObjectInput
	deleted []string
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = append(f.put, params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestR2Storage(t *testing.T) {
	client := &fakeS3{}
	r2 := newR2Storage(client, cfg.R2{
		BucketName: "media",
		PublicURL:  "https://pub.example.r2.dev/",
		Folder:     "linkfeed",
	})

	obj, err := r2.Store(context.Background(), "abc.png", "image/png", pngData)
	require.NoError(t, err)
	assert.Equal(t, "https://pub.example.r2.dev/linkfeed/abc.png", obj.Path)
	assert.Equal(t, "linkfeed/abc.png", obj.ExternalID)

	require.Len(t, client.put, 1)
	assert.Equal(t, "media", aws.ToString(client.put[0].Bucket))
	assert.Equal(t, "image/png", aws.ToString(client.put[0].ContentType))

	require.NoError(t, r2.Delete(context.Background(), obj.ExternalID))
	assert.Equal(t, []string{"linkfeed/abc.png"}, client.deleted)

	require.NoError(t, r2.Delete(context.Background(), ""))
	assert.Len(t, client.deleted, 1)
}

func TestR2StorageErrors(t *testing.T) {
	r2 := newR2Storage(&fakeS3{err: errors.New("access denied")}, cfg.R2{BucketName: "media", PublicURL: "https://pub"})

	_, err := r2.Store(context.Background(), "a.png", "image/png", pngData)
	assert.Error(t, err)
	assert.Error(t, r2.Delete(context.Background(), "a.png"))

	_, err = NewR2Storage(context.Background(), cfg.R2{})
	assert.Error(t, err)
}
