// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// A struct to represent the minio container
type MinioContainer struct {
	// the container itself. used for testcontainer cleanup
	Container *testcontainers.Container
	Hostname  string
	APIPort   int
	// the client wrapper pointed at this container
	ClientWrapper *MinioClientWrapper
}

type MinioContainerConfig struct {
	Username string
	Password string
	// the name of the default bucket in minio for all operations
	DefaultBucket string
	// leave blank to let docker pick a name
	ContainerName string
}

// Spin up a local minio container and create its default bucket
func NewMinioContainerFromConfig(config MinioContainerConfig) (MinioContainer, error) {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForHTTP("/minio/health/live").WithPort("9000"),
		Env: map[string]string{
			"MINIO_ROOT_USER":     config.Username,
			"MINIO_ROOT_PASSWORD": config.Password,
		},
		Cmd: []string{"server", "/data"},
	}

	if config.ContainerName != "" {
		req.Name = config.ContainerName
	}

	genericContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return MinioContainer{}, fmt.Errorf("generic container: %w", err)
	}

	hostname, err := genericContainer.Host(ctx)
	if err != nil {
		return MinioContainer{}, fmt.Errorf("get hostname: %w", err)
	}

	apiPort, err := genericContainer.MappedPort(ctx, "9000/tcp")
	if err != nil {
		return MinioContainer{}, fmt.Errorf("get api port: %w", err)
	}

	mc, err := minio.New(fmt.Sprintf("%s:%d", hostname, apiPort.Int()), &minio.Options{
		Creds:  credentials.NewStaticV4(config.Username, config.Password, ""),
		Secure: false,
	})
	if err != nil {
		return MinioContainer{}, fmt.Errorf("minio client: %w", err)
	}

	wrapper := &MinioClientWrapper{Client: mc, DefaultBucket: config.DefaultBucket}
	if err := wrapper.MakeDefaultBucket(); err != nil {
		return MinioContainer{}, fmt.Errorf("make bucket: %w", err)
	}

	return MinioContainer{
		Container:     &genericContainer,
		ClientWrapper: wrapper,
		Hostname:      hostname,
		APIPort:       apiPort.Int(),
	}, nil
}
