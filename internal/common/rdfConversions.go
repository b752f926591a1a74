// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"fmt"
	"strings"

	"github.com/knakk/rdf"
	"github.com/tidwall/gjson"
)

// Convert an RDF/JSON document (subject -> predicate -> [object]) into
// N-Triples. This is the shape Virtuoso returns for CONSTRUCT and DESCRIBE
// queries when asked for JSON
func RdfJsonToNTriples(rdfJson []byte) (string, error) {
	if !gjson.ValidBytes(rdfJson) {
		return "", fmt.Errorf("graph response is not valid json")
	}

	var builder strings.Builder
	var conversionErr error

	gjson.ParseBytes(rdfJson).ForEach(func(subjectKey, predicates gjson.Result) bool {
		subject, err := subjectTerm(subjectKey.String())
		if err != nil {
			conversionErr = err
			return false
		}
		predicates.ForEach(func(predicateKey, objects gjson.Result) bool {
			predicate, err := rdf.NewIRI(predicateKey.String())
			if err != nil {
				conversionErr = fmt.Errorf("invalid predicate %q: %w", predicateKey.String(), err)
				return false
			}
			objects.ForEach(func(_, object gjson.Result) bool {
				objectTerm, err := objectTerm(object)
				if err != nil {
					conversionErr = err
					return false
				}
				triple := rdf.Triple{Subj: subject, Pred: predicate, Obj: objectTerm}
				builder.WriteString(triple.Serialize(rdf.NTriples))
				return true
			})
			return conversionErr == nil
		})
		return conversionErr == nil
	})

	if conversionErr != nil {
		return "", conversionErr
	}
	return builder.String(), nil
}

func subjectTerm(value string) (rdf.Subject, error) {
	if strings.HasPrefix(value, "_:") {
		return rdf.NewBlank(strings.TrimPrefix(value, "_:"))
	}
	iri, err := rdf.NewIRI(value)
	if err != nil {
		return nil, fmt.Errorf("invalid subject %q: %w", value, err)
	}
	return iri, nil
}

func objectTerm(object gjson.Result) (rdf.Object, error) {
	value := object.Get("value").String()
	switch object.Get("type").String() {
	case "uri":
		iri, err := rdf.NewIRI(value)
		if err != nil {
			return nil, fmt.Errorf("invalid object iri %q: %w", value, err)
		}
		return iri, nil
	case "bnode":
		return rdf.NewBlank(strings.TrimPrefix(value, "_:"))
	case "literal", "typed-literal":
		if lang := object.Get("lang").String(); lang != "" {
			return rdf.NewLangLiteral(value, lang)
		}
		if datatype := object.Get("datatype").String(); datatype != "" {
			datatypeIRI, err := rdf.NewIRI(datatype)
			if err != nil {
				return nil, fmt.Errorf("invalid datatype %q: %w", datatype, err)
			}
			return rdf.NewTypedLiteral(value, datatypeIRI), nil
		}
		return rdf.NewLiteral(value)
	default:
		return nil, fmt.Errorf("unknown object type %q", object.Get("type").String())
	}
}
