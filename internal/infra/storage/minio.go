package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// BucketMirror copies every generated report into a MinIO/S3 bucket.
type BucketMirror struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

// NewBucketMirror connects to MinIO and makes sure the bucket exists.
func NewBucketMirror(ctx context.Context, endpoint, region, bucket, accessKey, secretKey, prefix string, useSSL bool) (*BucketMirror, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &BucketMirror{client: cli, bucketName: bucket, prefix: prefix}, nil
}

func (m *BucketMirror) key(filename string) string {
	if m.prefix == "" {
		return filename
	}
	return path.Join(m.prefix, filename)
}

// Put uploads one report and returns its object URL.
func (m *BucketMirror) Put(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	key := m.key(filename)
	_, err := m.client.PutObject(ctx, m.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType: docxContentType,
	})
	if err != nil {
		return "", fmt.Errorf("mirror put %s: %w", key, err)
	}
	// public URL when the bucket is public; private buckets need presigning
	return fmt.Sprintf("%s/%s/%s", m.client.EndpointURL().String(), m.bucketName, key), nil
}

// Remove deletes the mirrored copy of a report.
func (m *BucketMirror) Remove(ctx context.Context, filename string) error {
	key := m.key(filename)
	if err := m.client.RemoveObject(ctx, m.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("mirror remove %s: %w", key, err)
	}
	return nil
}

// Check verifies the bucket is reachable.
func (m *BucketMirror) Check(ctx context.Context) error {
	ok, err := m.client.BucketExists(ctx, m.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s missing", m.bucketName)
	}
	return nil
}
