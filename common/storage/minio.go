// Package storage is the object store client for the photo bucket. Keys are
// owned by this layer; a key that already exists is rejected, never
// overwritten.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/taller/photovault/common/config"
	"github.com/taller/photovault/common/logger"
)

// ErrKeyExists is returned by Put when the storage key is already taken.
var ErrKeyExists = errors.New("storage key already exists")

// PutResult describes a stored blob
type PutResult struct {
	Key       string
	PublicURL string
}

// Client wraps the S3-compatible object store for the photo bucket
type Client struct {
	mc     *minio.Client
	cfg    *config.Config
	bucket string
	log    *logger.Logger
}

// New creates the object store client and ensures the bucket exists
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Client, error) {
	mc, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	c := &Client{
		mc:     mc,
		cfg:    cfg,
		bucket: cfg.Storage.Bucket,
		log:    log,
	}

	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info("object store ready", "endpoint", cfg.Storage.Endpoint, "bucket", c.bucket)

	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", c.bucket, err)
	}
	if exists {
		return nil
	}

	if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", c.bucket, err)
	}

	c.log.Info("created storage bucket", "bucket", c.bucket)
	return nil
}

// Put stores a blob under key. Returns ErrKeyExists if the key is taken.
func (c *Client) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (PutResult, error) {
	// The bucket rejects collisions rather than overwriting. StatObject
	// first; the window between stat and put is closed by the caller's
	// collision-resistant key generation.
	_, err := c.mc.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return PutResult{}, ErrKeyExists
	}
	if resp := minio.ToErrorResponse(err); resp.Code != "NoSuchKey" {
		return PutResult{}, fmt.Errorf("stat object %s: %w", key, err)
	}

	_, err = c.mc.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return PutResult{}, fmt.Errorf("put object %s: %w", key, err)
	}

	return PutResult{
		Key:       key,
		PublicURL: c.cfg.PublicURL(key),
	}, nil
}

// Remove deletes blobs by key. Missing keys are not an error.
func (c *Client) Remove(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("remove object %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Open streams a stored blob, used by the archive download.
func (c *Client) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return obj, nil
}
