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

package jsonld

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToRDF deserializes the expanded input into an RDF dataset: one graph per
// node map graph, rdf:first/rdf:rest chains for lists, canonical XSD
// lexical forms for numbers and booleans.
func (e *Engine) ToRDF(input interface{}, opts *Options) (*Dataset, error) {
	namer := NewBlankNodeNamer("_:b")

	nodeMap := map[string]interface{}{
		"@default": make(map[string]interface{}),
	}
	if err := e.GenerateNodeMap(input, nodeMap, "@default", namer); err != nil {
		return nil, err
	}

	dataset := NewDataset()
	for graphName, graphVal := range nodeMap {
		if IsRelativeIRI(graphName) {
			continue
		}
		graph := graphVal.(map[string]interface{})
		dataset.Graphs[graphName] = e.graphToRDF(graphName, graph, namer, opts)
	}
	return dataset, nil
}

// graphToRDF emits the quads of one graph of the node map.
func (e *Engine) graphToRDF(graphName string, graph map[string]interface{},
	namer *BlankNodeNamer, opts *Options) []*Quad {

	var first = NewIRI(RDFFirst)
	var rest = NewIRI(RDFRest)

	quads := make([]*Quad, 0)
	for _, id := range GetSortedKeys(graph) {
		if IsRelativeIRI(id) {
			continue
		}
		node := graph[id].(map[string]interface{})
		for _, property := range OrderedKeys(node) {
			var values []interface{}
			switch {
			case property == "@type":
				values = node["@type"].([]interface{})
				property = RDFType
			case IsKeyword(property):
				continue
			case strings.HasPrefix(property, "_:") && !opts.ProduceGeneralizedRdf:
				continue
			case IsRelativeIRI(property):
				continue
			default:
				values = node[property].([]interface{})
			}

			var subject Term
			if strings.HasPrefix(id, "_:") {
				subject = NewBlankNode(id)
			} else {
				subject = NewIRI(id)
			}

			var predicate Term
			if strings.HasPrefix(property, "_:") {
				predicate = NewBlankNode(property)
			} else {
				predicate = NewIRI(property)
			}

			for _, item := range values {
				var object Term
				object, quads = e.objectToRDF(item, namer, graphName, quads, first, rest, opts)
				if object != nil {
					quads = append(quads, NewQuad(subject, predicate, object, graphName))
				}
			}
		}
	}

	// drop statements with malformed terms
	valid := make([]*Quad, 0, len(quads))
	for _, q := range quads {
		if q.Valid() {
			valid = append(valid, q)
		}
	}
	return valid
}

// objectToRDF converts an expanded value to an RDF term, appending any
// quads (list cells, compound literals) the conversion produces.
func (e *Engine) objectToRDF(item interface{}, namer *BlankNodeNamer, graphName string,
	quads []*Quad, first, rest *IRI, opts *Options) (Term, []*Quad) {

	if IsValue(item) {
		itemMap := item.(map[string]interface{})
		value := itemMap["@value"]
		datatype, _ := itemMap["@type"].(string)

		if datatype == "@json" {
			datatype = RDFJSONLiteral
		}

		booleanVal, isBool := value.(bool)
		floatVal, isFloat := value.(float64)
		if !isBool && !isFloat {
			// json.Number shows up when the document was decoded with
			// UseNumber; treat it like a float64
			if number, isNumber := value.(json.Number); isNumber {
				var floatErr error
				floatVal, floatErr = number.Float64()
				isFloat = floatErr == nil
			}
		}
		isInteger := isFloat && floatVal == math.Trunc(floatVal) && !math.IsInf(floatVal, 0)

		switch {
		case isBool:
			if datatype == "" {
				datatype = XSDBoolean
			}
			return NewLiteral(strconv.FormatBool(booleanVal), datatype, ""), quads

		case isFloat && (!isInteger || datatype == XSDDouble):
			if datatype == "" {
				datatype = XSDDouble
			}
			return NewLiteral(CanonicalDouble(floatVal), datatype, ""), quads

		case isFloat:
			if datatype == "" {
				datatype = XSDInteger
			}
			return NewLiteral(strconv.FormatInt(int64(floatVal), 10), datatype, ""), quads
		}

		langVal, hasLang := itemMap["@language"]
		dirVal, hasDir := itemMap["@direction"]

		if hasDir && opts.RDFDirection == RDFDirectionI18N {
			lang := ""
			if hasLang {
				lang = strings.ToLower(langVal.(string))
			}
			dt := fmt.Sprintf("%s%s_%s", I18NNS, lang, dirVal)
			return NewLiteral(value.(string), dt, ""), quads
		}

		if hasDir && opts.RDFDirection == RDFDirectionCompound {
			// a compound literal is a fresh blank node carrying rdf:value,
			// rdf:language and rdf:direction
			literalNode := NewBlankNode(namer.Issue(""))
			quads = append(quads, NewQuad(literalNode, NewIRI(RDFValue),
				NewLiteral(value.(string), XSDString, ""), graphName))
			if hasLang {
				quads = append(quads, NewQuad(literalNode, NewIRI(RDFLanguage),
					NewLiteral(strings.ToLower(langVal.(string)), XSDString, ""), graphName))
			}
			quads = append(quads, NewQuad(literalNode, NewIRI(RDFDirection),
				NewLiteral(dirVal.(string), XSDString, ""), graphName))
			return literalNode, quads
		}

		if hasLang {
			if datatype == "" {
				datatype = RDFLangString
			}
			return NewLiteral(value.(string), datatype, langVal.(string)), quads
		}

		if datatype == RDFJSONLiteral {
			serialized, err := json.Marshal(value)
			if err != nil {
				return NewLiteral("JSON serialization error: "+err.Error(), datatype, ""), quads
			}
			return NewLiteral(string(serialized), datatype, ""), quads
		}

		strVal, isString := value.(string)
		if !isString {
			return nil, quads
		}
		if datatype == "" {
			datatype = XSDString
		}
		return NewLiteral(strVal, datatype, ""), quads
	}

	if IsList(item) {
		return e.listToRDF(item.(map[string]interface{})["@list"].([]interface{}),
			namer, graphName, quads, first, rest, opts)
	}

	// node reference or bare IRI string
	var id string
	if itemMap, isMap := item.(map[string]interface{}); isMap {
		id, _ = itemMap["@id"].(string)
		if IsRelativeIRI(id) {
			return nil, quads
		}
	} else {
		id = item.(string)
	}
	if strings.HasPrefix(id, "_:") {
		return NewBlankNode(id), quads
	}
	return NewIRI(id), quads
}

// listToRDF materializes a list as an rdf:first/rdf:rest chain, one blank
// node per cons cell.
func (e *Engine) listToRDF(list []interface{}, namer *BlankNodeNamer, graphName string,
	quads []*Quad, first, rest *IRI, opts *Options) (Term, []*Quad) {

	nilIRI := NewIRI(RDFNil)

	if len(list) == 0 {
		return nilIRI, quads
	}

	head := NewBlankNode(namer.Issue(""))
	var subject Term = head

	for i, entry := range list {
		var object Term
		object, quads = e.objectToRDF(entry, namer, graphName, quads, first, rest, opts)
		if object != nil {
			quads = append(quads, NewQuad(subject, first, object, graphName))
		}

		var next Term = nilIRI
		if i < len(list)-1 {
			next = NewBlankNode(namer.Issue(""))
		}
		quads = append(quads, NewQuad(subject, rest, next, graphName))
		subject = next
	}

	return head, quads
}
