// Copyright 2015-2017 Piprate Limited
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package quads bridges jsonld datasets and the cayleygraph quad model, so
// ToRDF output can feed cayley-family stores and their data can enter
// FromRDF.
package quads

import (
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/calverite/jsonld/jsonld"
)

// FromDataset converts a jsonld dataset into cayley quads, default graph
// first.
func FromDataset(ds *jsonld.Dataset) []quad.Quad {
	rval := make([]quad.Quad, 0)
	for _, q := range ds.Quads() {
		var label quad.Value
		if q.Graph != nil {
			label = termToValue(q.Graph)
		}
		rval = append(rval, quad.Quad{
			Subject:   termToValue(q.Subject),
			Predicate: termToValue(q.Predicate),
			Object:    termToValue(q.Object),
			Label:     label,
		})
	}
	return rval
}

// ToDataset converts cayley quads into a jsonld dataset, grouping them by
// label.
func ToDataset(quads []quad.Quad) *jsonld.Dataset {
	ds := jsonld.NewDataset()
	for _, q := range quads {
		graphName := "@default"
		if q.Label != nil {
			graphName = graphNameOf(q.Label)
		}
		converted := jsonld.NewQuad(
			valueToTerm(q.Subject),
			valueToTerm(q.Predicate),
			valueToTerm(q.Object),
			graphName,
		)
		ds.Graphs[graphName] = append(ds.Graphs[graphName], converted)
	}
	return ds
}

func termToValue(t jsonld.Term) quad.Value {
	switch v := t.(type) {
	case *jsonld.IRI:
		return quad.IRI(v.Val)
	case *jsonld.BlankNode:
		return quad.BNode(strings.TrimPrefix(v.ID, "_:"))
	case *jsonld.Literal:
		switch {
		case v.Language != "":
			return quad.LangString{Value: quad.String(v.Val), Lang: v.Language}
		case v.Datatype != "" && v.Datatype != jsonld.XSDString:
			return quad.TypedString{Value: quad.String(v.Val), Type: quad.IRI(v.Datatype)}
		default:
			return quad.String(v.Val)
		}
	}
	return nil
}

func valueToTerm(v quad.Value) jsonld.Term {
	switch value := v.(type) {
	case quad.IRI:
		return jsonld.NewIRI(string(value))
	case quad.BNode:
		return jsonld.NewBlankNode("_:" + string(value))
	case quad.LangString:
		return jsonld.NewLiteral(string(value.Value), jsonld.RDFLangString, value.Lang)
	case quad.TypedString:
		return jsonld.NewLiteral(string(value.Value), string(value.Type), "")
	case quad.String:
		return jsonld.NewLiteral(string(value), jsonld.XSDString, "")
	default:
		if v == nil {
			return nil
		}
		return jsonld.NewLiteral(v.String(), jsonld.XSDString, "")
	}
}

func graphNameOf(v quad.Value) string {
	switch value := v.(type) {
	case quad.IRI:
		return string(value)
	case quad.BNode:
		return "_:" + string(value)
	default:
		return v.String()
	}
}
