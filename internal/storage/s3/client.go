// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/internetofwater/sparqlbuddy/internal/config"
	"github.com/internetofwater/sparqlbuddy/internal/opentelemetry"
	"github.com/internetofwater/sparqlbuddy/internal/storage"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

var _ storage.ResultStorage = MinioClientWrapper{}

// Wrapper to allow us to extend the minio client struct with new methods
type MinioClientWrapper struct {
	// Base client for accessing minio
	Client *minio.Client
	// Default bucket to use for operations.
	// Specified here to avoid having to pass it as a parameter to every operation
	// since we are only using one bucket
	DefaultBucket string
}

type S3Prefix = string

// NewMinioClientWrapper sets up a minio client for the configured server
func NewMinioClientWrapper(mcfg config.MinioConfig) (*MinioClientWrapper, error) {

	var endpoint string

	if mcfg.Port == 0 {
		endpoint = mcfg.Address
	} else {
		endpoint = fmt.Sprintf("%s:%d", mcfg.Address, mcfg.Port)
	}

	options := &minio.Options{
		Creds:  credentials.NewStaticV4(mcfg.Accesskey, mcfg.Secretkey, ""),
		Secure: mcfg.SSL,
	}
	if mcfg.Region == "" {
		log.Info("Minio client created with no region set")
	} else {
		options.Region = mcfg.Region
	}

	minioClient, err := minio.New(endpoint, options)
	return &MinioClientWrapper{Client: minioClient, DefaultBucket: mcfg.Bucket}, err
}

// Create the default bucket
func (m *MinioClientWrapper) MakeDefaultBucket() error {
	exists, err := m.Client.BucketExists(context.Background(), m.DefaultBucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.Client.MakeBucket(context.Background(), m.DefaultBucket, minio.MakeBucketOptions{})
}

// Store bytes into the minio store. Rendered pages are served as html
func (m MinioClientWrapper) Store(objectPath S3Prefix, data io.Reader) error {
	span, ctx := opentelemetry.SubSpanFromCtx(context.Background())
	defer span.End()

	options := minio.PutObjectOptions{}
	if strings.HasSuffix(objectPath, ".html") {
		options.ContentType = "text/html; charset=utf-8"
	}
	_, err := m.Client.PutObject(ctx, m.DefaultBucket, objectPath, data, -1, options)
	return err
}

func (m MinioClientWrapper) Exists(objectPath S3Prefix) (bool, error) {
	_, err := m.Client.StatObject(context.Background(), m.DefaultBucket, objectPath, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	// This is a string from the s3 spec, not an arbitrary magic val
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, err
}

// ListDir returns the names of the objects directly under a prefix
func (m MinioClientWrapper) ListDir(prefix S3Prefix) (storage.Set, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	set := make(storage.Set)
	objectCh := m.Client.ListObjects(context.Background(), m.DefaultBucket, minio.ListObjectsOptions{Prefix: prefix})
	for object := range objectCh {
		if object.Err != nil {
			return nil, object.Err
		}
		if strings.HasSuffix(object.Key, "/") {
			continue
		}
		set.Add(path.Base(object.Key))
	}
	return set, nil
}
