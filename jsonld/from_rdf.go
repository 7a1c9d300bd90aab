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
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// usageEntry tracks one reference to a node so list chains can be
// reconstructed.
type usageEntry struct {
	node     *rdfNode
	property string
	value    map[string]interface{}
}

// rdfNode is a node under construction during RDF-to-JSON-LD conversion.
type rdfNode struct {
	values map[string]interface{}
	usages []*usageEntry
}

func newRDFNode(id string) *rdfNode {
	return &rdfNode{
		values: map[string]interface{}{"@id": id},
		usages: make([]*usageEntry, 0),
	}
}

// isWellFormedListNode reports whether the node has exactly the shape of an
// rdf:List cons cell: a single rdf:first, a single rdf:rest, an optional
// rdf:List type, nothing else. A node missing either list property is not a
// cons cell and stays an ordinary node.
func (n *rdfNode) isWellFormedListNode() bool {
	first, hasFirst := n.values[RDFFirst].([]interface{})
	rest, hasRest := n.values[RDFRest].([]interface{})
	if !hasFirst || !hasRest || len(first) != 1 || len(rest) != 1 {
		return false
	}

	keys := 3 // @id, rdf:first, rdf:rest
	if v, hasType := n.values["@type"]; hasType {
		keys++
		vList, isList := v.([]interface{})
		if !isList || len(vList) != 1 || vList[0] != RDFList {
			return false
		}
	}
	return keys >= len(n.values)
}

func (n *rdfNode) serialize() map[string]interface{} {
	rval := make(map[string]interface{}, len(n.values))
	for k, v := range n.values {
		rval[k] = v
	}
	return rval
}

func referencedOnce(node *rdfNode, refs map[string]*usageEntry) bool {
	usage, present := refs[node.values["@id"].(string)]
	return present && usage != nil
}

// FromRDF serializes an RDF dataset into expanded JSON-LD: rdf:type quads
// become @type, literals become value objects and well-formed rdf:List
// chains are folded back into @list arrays.
func (e *Engine) FromRDF(dataset *Dataset, opts *Options) ([]interface{}, error) {
	defaultGraph := make(map[string]*rdfNode)
	graphMap := map[string]map[string]*rdfNode{"@default": defaultGraph}
	referencedOnceMap := make(map[string]*usageEntry)
	var compoundNodes []string

	for name, graph := range dataset.Graphs {
		nodeMap, present := graphMap[name]
		if !present {
			nodeMap = make(map[string]*rdfNode)
			graphMap[name] = nodeMap
		}

		if _, present := defaultGraph[name]; name != "@default" && !present {
			defaultGraph[name] = newRDFNode(name)
		}

		for _, quad := range graph {
			subject := quad.Subject.Value()
			predicate := quad.Predicate.Value()
			object := quad.Object

			node, present := nodeMap[subject]
			if !present {
				node = newRDFNode(subject)
				nodeMap[subject] = node
			}

			objectIsResource := IsTermIRI(object) || IsTermBlankNode(object)
			if _, containsObject := nodeMap[object.Value()]; objectIsResource && !containsObject {
				nodeMap[object.Value()] = newRDFNode(object.Value())
			}

			if predicate == RDFType && objectIsResource && !opts.UseRdfType {
				MergeValue(node.values, "@type", object.Value())
				continue
			}

			if opts.RDFDirection == RDFDirectionCompound && predicate == RDFDirection {
				compoundNodes = append(compoundNodes, subject)
			}

			value, err := e.termToValue(object, opts)
			if err != nil {
				return nil, err
			}

			MergeValue(node.values, predicate, value)

			if objectIsResource {
				// rdf:nil usages are tracked per graph for list folding
				if object.Value() == RDFNil {
					n := nodeMap[object.Value()]
					n.usages = append(n.usages, &usageEntry{node: node, property: predicate, value: value})
				} else if _, present := referencedOnceMap[object.Value()]; present {
					referencedOnceMap[object.Value()] = nil
				} else {
					referencedOnceMap[object.Value()] = &usageEntry{node: node, property: predicate, value: value}
				}
			}
		}
	}

	// fold compound literals back into value objects
	if opts.RDFDirection == RDFDirectionCompound {
		for _, graph := range graphMap {
			for _, id := range compoundNodes {
				usage, present := referencedOnceMap[id]
				if !present || usage == nil {
					continue
				}
				node, present := graph[id]
				if !present {
					continue
				}
				value := usage.value
				firstString := func(property string) (string, bool) {
					entries, _ := node.values[property].([]interface{})
					if len(entries) != 1 {
						return "", false
					}
					entryMap, _ := entries[0].(map[string]interface{})
					s, isString := entryMap["@value"].(string)
					return s, isString
				}
				literalValue, hasValue := firstString(RDFValue)
				direction, hasDirection := firstString(RDFDirection)
				if !hasValue || !hasDirection {
					continue
				}
				delete(value, "@id")
				value["@value"] = literalValue
				if language, hasLanguage := firstString(RDFLanguage); hasLanguage {
					value["@language"] = language
				}
				value["@direction"] = direction
				delete(graph, id)
			}
		}
	}

	// fold well-formed list chains into @list arrays
	for _, graph := range graphMap {
		nilNode, present := graph[RDFNil]
		if !present {
			continue
		}
		for _, usage := range nilNode.usages {
			node := usage.node
			property := usage.property
			head := usage.value

			list := make([]interface{}, 0)
			listNodes := make([]string, 0)
			for property == RDFRest && referencedOnce(node, referencedOnceMap) && node.isWellFormedListNode() {
				list = append(list, node.values[RDFFirst].([]interface{})[0])
				listNodes = append(listNodes, node.values["@id"].(string))

				nodeUsage := referencedOnceMap[node.values["@id"].(string)]
				node = nodeUsage.node
				property = nodeUsage.property
				head = nodeUsage.value

				if !IsBlankNodeObject(node.values) {
					break
				}
			}

			delete(head, "@id")
			// the chain was walked tail-first
			for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
				list[i], list[j] = list[j], list[i]
			}
			head["@list"] = list
			for _, nodeID := range listNodes {
				delete(graph, nodeID)
			}
		}
	}

	result := make([]interface{}, 0)
	ids := make([]string, 0, len(defaultGraph))
	for k := range defaultGraph {
		ids = append(ids, k)
	}
	sort.Strings(ids)

	for _, subject := range ids {
		node := defaultGraph[subject]
		if subjectMap, containsSubj := graphMap[subject]; containsSubj && subject != "@default" {
			// named graph: emit its nodes under @graph
			graph := make([]interface{}, 0)
			keys := make([]string, 0, len(subjectMap))
			for k := range subjectMap {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, s := range keys {
				n := subjectMap[s]
				if _, containsID := n.values["@id"]; containsID && len(n.values) == 1 {
					continue
				}
				graph = append(graph, n.serialize())
			}
			node.values["@graph"] = graph
		}
		if _, containsID := node.values["@id"]; containsID && len(node.values) == 1 {
			continue
		}
		result = append(result, node.serialize())
	}

	return result, nil
}

var (
	patternInteger = regexp.MustCompile(`^[\-+]?\d+$`)
	patternDouble  = regexp.MustCompile(`^(\+|-)?(\d+(\.\d*)?|\.\d+)([Ee](\+|-)?\d+)?$`)
)

// termToValue converts an RDF term in object position to a JSON-LD value.
func (e *Engine) termToValue(t Term, opts *Options) (map[string]interface{}, error) {
	if IsTermIRI(t) || IsTermBlankNode(t) {
		return map[string]interface{}{"@id": t.Value()}, nil
	}

	literal := t.(*Literal)
	rval := map[string]interface{}{"@value": literal.Value()}

	switch {
	case literal.Language != "":
		rval["@language"] = literal.Language

	case opts.RDFDirection == RDFDirectionI18N && strings.HasPrefix(literal.Datatype, I18NNS):
		langDir := literal.Datatype[len(I18NNS):]
		underscore := strings.Index(langDir, "_")
		if underscore == -1 {
			return nil, NewError(InvalidBaseDirection, literal.Datatype)
		}
		if lang := langDir[:underscore]; lang != "" {
			rval["@language"] = lang
		}
		rval["@direction"] = langDir[underscore+1:]

	case literal.Datatype == RDFJSONLiteral:
		var decoded interface{}
		if err := json.Unmarshal([]byte(literal.Val), &decoded); err != nil {
			return nil, NewError(ParseError, fmt.Errorf("invalid JSON literal: %w", err))
		}
		rval["@value"] = decoded
		rval["@type"] = "@json"

	default:
		datatype := literal.Datatype
		value := literal.Val
		if opts.UseNativeTypes {
			switch {
			case datatype == XSDString:
				// plain string, no annotation
			case datatype == XSDBoolean:
				switch value {
				case "true":
					rval["@value"] = true
				case "false":
					rval["@value"] = false
				default:
					rval["@type"] = datatype
				}
			case (datatype == XSDInteger && patternInteger.MatchString(value)) ||
				(datatype == XSDDouble && patternDouble.MatchString(value)):
				d, _ := strconv.ParseFloat(value, 64)
				if !math.IsNaN(d) && !math.IsInf(d, 0) {
					if datatype == XSDInteger {
						i := int64(d)
						if strconv.FormatInt(i, 10) == value {
							rval["@value"] = i
						}
					} else {
						rval["@value"] = d
					}
				}
			default:
				rval["@type"] = datatype
			}
		} else if datatype != XSDString {
			rval["@type"] = datatype
		}
	}

	return rval, nil
}
