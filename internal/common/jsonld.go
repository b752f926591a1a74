// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"encoding/json"
	"fmt"

	"github.com/piprate/json-gold/ld"
	log "github.com/sirupsen/logrus"
)

// NewJsonldProcessor builds the JSON-LD processor and sets the options object
// so that graphs returned by the endpoint can be serialized as nquads.
// Remote contexts are fetched with the sparql http client
func NewJsonldProcessor() (*ld.JsonLdProcessor, *ld.JsonLdOptions) {
	processor := ld.NewJsonLdProcessor()
	options := ld.NewJsonLdOptions("")
	options.DocumentLoader = ld.NewCachingDocumentLoader(ld.NewDefaultDocumentLoader(NewSparqlHttpClient()))
	options.ProcessingMode = ld.JsonLd_1_1
	options.Format = "application/nquads"
	return processor, options
}

func JsonldToNQ(jsonld []byte, processor *ld.JsonLdProcessor, options *ld.JsonLdOptions) (string, error) {
	var deserializeInterface interface{}
	err := json.Unmarshal(jsonld, &deserializeInterface)
	if err != nil {
		log.Error("Error when transforming JSON-LD document to interface:", err)
		return "", err
	}

	nquads, err := processor.ToRDF(deserializeInterface, options)
	if err != nil {
		log.Error("Error when transforming JSON-LD document to RDF:", err)
		return "", err
	}

	asString, ok := nquads.(string)
	if !ok {
		return "", fmt.Errorf("expected nquads as a string but got %T", nquads)
	}
	return asString, nil
}
