// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package config

import "time"

// The top level config for all sparqlbuddy operations
type BuddyConfig struct {
	Sparql SparqlConfig
	Paths  PathConfig
	Minio  MinioConfig
}

// The config for the sparql endpoint and how queries are sent to it
type SparqlConfig struct {
	Endpoint string `arg:"--endpoint,env:SPARQL_ENDPOINT" help:"the SPARQL endpoint to query" default:"http://dbpedia.org/sparql"`
	// the wait budget for a single query before it is abandoned
	Timeout  time.Duration `arg:"--timeout" help:"how long to wait for a single query" default:"60s"`
	Username string        `arg:"--sparql-username,env:SPARQL_USERNAME" help:"username for basic auth against the endpoint"`
	Password string        `arg:"--sparql-password,env:SPARQL_PASSWORD" help:"password for basic auth against the endpoint"`
	// the namespace that quick keyword searches build resource IRIs under
	ResourceNamespace string `arg:"--resource-namespace" help:"namespace used to build resource IRIs in quick search" default:"http://dbpedia.org/resource/"`
}

// Where abbreviations and stored queries are read from
type PathConfig struct {
	PrefixFile string `arg:"--prefixes,env:SPARQLBUDDY_PREFIXES" help:"csv file mapping abbreviations to namespace IRIs" default:"./prefixes.csv"`
	QueryDir   string `arg:"--queries,env:SPARQLBUDDY_QUERIES" help:"directory of stored query files" default:"./queries/"`
	QueryGlob  string `arg:"--query-glob" help:"only list stored queries whose name matches this glob"`
}

// The config for minio/s3 operations
type MinioConfig struct {
	Address   string `arg:"--address" help:"The address of the s3 server" default:"127.0.0.1"` // The address of the minio server
	Port      int    `arg:"--port" default:"9000"`
	Accesskey string `arg:"--s3-access-key,env:S3_ACCESS_KEY" help:"Access Key (i.e. username)" default:"minioadmin"` // Access Key (i.e. username)
	Secretkey string `arg:"--s3-secret-key,env:S3_SECRET_KEY" help:"Secret Key (i.e. password)" default:"minioadmin"` // Secret Key (i.e. password)
	Bucket    string `arg:"--bucket" help:"The s3 bucket to store rendered results in" default:"sparqlbuddy"`         // The configuration bucket
	Region    string `arg:"--region" help:"region for the s3 server"`                                                 // region for the minio server
	SSL       bool   `arg:"--ssl" help:"Use SSL when connecting to s3"`
}

// Authenticate reports whether basic auth credentials were supplied
func (s SparqlConfig) Authenticate() bool {
	return s.Username != "" || s.Password != ""
}
