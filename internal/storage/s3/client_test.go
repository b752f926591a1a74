// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/internetofwater/sparqlbuddy/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestClientFromConfig(t *testing.T) {
	wrapper, err := NewMinioClientWrapper(config.MinioConfig{
		Address:   "127.0.0.1",
		Port:      9000,
		Accesskey: "minioadmin",
		Secretkey: "minioadmin",
		Bucket:    "sparqlbuddy",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	require.Equal(t, "sparqlbuddy", wrapper.DefaultBucket)
	require.Equal(t, "127.0.0.1:9000", wrapper.Client.EndpointURL().Host)
}

type S3ClientSuite struct {
	suite.Suite
	minioContainer MinioContainer
}

func (suite *S3ClientSuite) SetupSuite() {
	minioContainer, err := NewMinioContainerFromConfig(MinioContainerConfig{
		Username:      "minioadmin",
		Password:      "minioadmin",
		DefaultBucket: "sparqlbuddy",
	})
	suite.Require().NoError(err)
	suite.minioContainer = minioContainer
}

func (suite *S3ClientSuite) TearDownSuite() {
	c := *suite.minioContainer.Container
	suite.Require().NoError(c.Terminate(context.Background()))
}

func (suite *S3ClientSuite) TestStoreAndGet() {
	t := suite.T()
	client := suite.minioContainer.ClientWrapper

	exists, err := client.Exists("results/paris.rq.html")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, client.Store("results/paris.rq.html", strings.NewReader("<html></html>")))

	exists, err = client.Exists("results/paris.rq.html")
	require.NoError(t, err)
	require.True(t, exists)

	object, err := client.Client.GetObject(context.Background(), client.DefaultBucket, "results/paris.rq.html", minio.GetObjectOptions{})
	require.NoError(t, err)
	defer func() { _ = object.Close() }()
	data, err := io.ReadAll(object)
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(data))

	info, err := client.Client.StatObject(context.Background(), client.DefaultBucket, "results/paris.rq.html", minio.StatObjectOptions{})
	require.NoError(t, err)
	require.Equal(t, "text/html; charset=utf-8", info.ContentType)

	listed, err := client.ListDir("results")
	require.NoError(t, err)
	require.True(t, listed.Contains("paris.rq.html"))
}

func (suite *S3ClientSuite) TestListDirSkipsNestedPrefixes() {
	t := suite.T()
	client := suite.minioContainer.ClientWrapper

	require.NoError(t, client.Store("pages/berlin.rq.html", strings.NewReader("<table></table>")))
	require.NoError(t, client.Store("pages/old/berlin.rq.html", strings.NewReader("<table></table>")))

	listed, err := client.ListDir("pages")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.True(t, listed.Contains("berlin.rq.html"))
}

func TestS3ClientSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping minio container tests in short mode")
	}
	suite.Run(t, new(S3ClientSuite))
}
