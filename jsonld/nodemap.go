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
	"fmt"
	"strings"
)

// GenerateNodeMap collects the node objects of an expanded document into
// graphMap, a mapping from graph name to node id to node object, starting in
// activeGraph. Blank node identifiers are relabelled through the namer.
func (e *Engine) GenerateNodeMap(element interface{}, graphMap map[string]interface{},
	activeGraph string, namer *BlankNodeNamer) error {

	builder := &nodeMapBuilder{graphs: graphMap, namer: namer}
	return builder.walk(element, attachment{graph: activeGraph})
}

// nodeMapBuilder owns the graph map and blank node namer of one node-map
// construction run.
type nodeMapBuilder struct {
	graphs map[string]interface{}
	namer  *BlankNodeNamer
}

// attachment says where a traversed element hangs off the document: the
// active graph, the parent node and property (empty at the top level), an
// in-progress list to append to instead, or a reverse reference to plant on
// the visited node itself.
type attachment struct {
	graph      string
	subject    map[string]interface{}
	property   string
	list       *[]interface{}
	reverseRef map[string]interface{}
}

func (b *nodeMapBuilder) walk(element interface{}, at attachment) error {
	switch elem := element.(type) {
	case []interface{}:
		for _, item := range elem {
			if err := b.walk(item, at); err != nil {
				return err
			}
		}
		return nil
	case map[string]interface{}:
		switch {
		case IsValue(elem):
			b.attachValue(elem, at)
			return nil
		case IsList(elem):
			return b.buildList(elem["@list"].([]interface{}), at)
		default:
			return b.buildNode(elem, at)
		}
	default:
		return fmt.Errorf("expected map or list in node map generation, got %T", element)
	}
}

// attach adds a finished value to its place: the in-progress list when one
// is open, otherwise the parent subject, de-duplicated.
func (b *nodeMapBuilder) attach(value interface{}, at attachment) {
	if at.list != nil {
		*at.list = append(*at.list, value)
		return
	}
	if at.subject != nil && at.property != "" {
		AddValue(at.subject, at.property, value, true, false)
	}
}

func (b *nodeMapBuilder) attachValue(value map[string]interface{}, at attachment) {
	if typeStr, isString := value["@type"].(string); isString && strings.HasPrefix(typeStr, "_:") {
		value["@type"] = b.namer.Issue(typeStr)
	}
	b.attach(value, at)
}

// buildList collects the converted list entries into a fresh list object
// and attaches it where the list appeared.
func (b *nodeMapBuilder) buildList(entries []interface{}, at attachment) error {
	collected := make([]interface{}, 0, len(entries))
	inner := at
	inner.list = &collected
	for _, entry := range entries {
		if err := b.walk(entry, inner); err != nil {
			return err
		}
	}
	b.attach(map[string]interface{}{"@list": collected}, at)
	return nil
}

// buildNode registers a node object in its graph and recurses into its
// content.
func (b *nodeMapBuilder) buildNode(elem map[string]interface{}, at attachment) error {
	id := b.nodeID(elem)
	node := b.node(at.graph, id)

	switch {
	case at.reverseRef != nil:
		// a reverse walk plants the referencing node on the target
		AddValue(node, at.property, at.reverseRef, true, false)
	case at.property != "":
		b.attach(map[string]interface{}{"@id": id}, at)
	}

	if typeVal, hasType := elem["@type"]; hasType {
		AddValue(node, "@type", b.renamedTypes(Arrayify(typeVal)), true, false)
	}

	if elemIdx, hasIndex := elem["@index"]; hasIndex {
		if nodeIdx, found := node["@index"]; found && nodeIdx != elemIdx {
			return NewError(ConflictingIndexes, "conflicting @index property detected")
		}
		node["@index"] = elemIdx
	}

	if reverseVal, hasReverse := elem["@reverse"]; hasReverse {
		ref := map[string]interface{}{"@id": id}
		for property, values := range reverseVal.(map[string]interface{}) {
			for _, v := range values.([]interface{}) {
				err := b.walk(v, attachment{graph: at.graph, property: property, reverseRef: ref})
				if err != nil {
					return err
				}
			}
		}
	}

	if graphVal, hasGraph := elem["@graph"]; hasGraph {
		// the node names a graph of its own
		if err := b.walk(graphVal, attachment{graph: id}); err != nil {
			return err
		}
	}

	if includedVal, hasIncluded := elem["@included"]; hasIncluded {
		if err := b.walk(includedVal, attachment{graph: at.graph}); err != nil {
			return err
		}
	}

	for _, property := range OrderedKeys(elem) {
		switch property {
		case "@id", "@type", "@index", "@reverse", "@graph", "@included":
			continue
		}
		value := elem[property]

		if strings.HasPrefix(property, "_:") {
			property = b.namer.Issue(property)
		}
		if _, found := node[property]; !found {
			node[property] = []interface{}{}
		}
		err := b.walk(value, attachment{graph: at.graph, subject: node, property: property})
		if err != nil {
			return err
		}
	}

	return nil
}

// nodeID returns the node's identifier, minting or relabelling a blank node
// identifier as needed.
func (b *nodeMapBuilder) nodeID(elem map[string]interface{}) string {
	id, hasID := elem["@id"].(string)
	switch {
	case !hasID:
		return b.namer.Issue("")
	case strings.HasPrefix(id, "_:"):
		return b.namer.Issue(id)
	default:
		return id
	}
}

// node returns the node object for id in the named graph, creating both on
// first sight.
func (b *nodeMapBuilder) node(graphName string, id string) map[string]interface{} {
	graph := b.graph(graphName)
	if existing, found := graph[id]; found {
		return existing.(map[string]interface{})
	}
	node := map[string]interface{}{"@id": id}
	graph[id] = node
	return node
}

func (b *nodeMapBuilder) graph(name string) map[string]interface{} {
	if existing, found := b.graphs[name]; found {
		return existing.(map[string]interface{})
	}
	graph := make(map[string]interface{})
	b.graphs[name] = graph
	return graph
}

func (b *nodeMapBuilder) renamedTypes(types []interface{}) []interface{} {
	renamed := make([]interface{}, len(types))
	for i, t := range types {
		typeStr := t.(string)
		if strings.HasPrefix(typeStr, "_:") {
			typeStr = b.namer.Issue(typeStr)
		}
		renamed[i] = typeStr
	}
	return renamed
}

// MergeNodeMaps flattens a per-graph node map into a single map containing
// every node of every graph, keyed by id.
func MergeNodeMaps(graphMap map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{})
	for _, graphName := range GetSortedKeys(graphMap) {
		graph := graphMap[graphName].(map[string]interface{})
		for _, id := range GetSortedKeys(graph) {
			node := graph[id].(map[string]interface{})
			if existing, present := merged[id]; present {
				existingMap := existing.(map[string]interface{})
				for _, property := range OrderedKeys(node) {
					if property == "@id" {
						continue
					}
					AddValue(existingMap, property, node[property], true, false)
				}
			} else {
				merged[id] = CloneDocument(node)
			}
		}
	}
	return merged
}

// RelabelBlankNodes regenerates blank node labels in namer issue order,
// producing stable output regardless of input labels.
func RelabelBlankNodes(element interface{}, namer *BlankNodeNamer) interface{} {
	switch v := element.(type) {
	case []interface{}:
		for i, item := range v {
			v[i] = RelabelBlankNodes(item, namer)
		}
		return v
	case map[string]interface{}:
		for _, key := range OrderedKeys(v) {
			v[key] = RelabelBlankNodes(v[key], namer)
		}
		return v
	case string:
		if strings.HasPrefix(v, "_:") {
			return namer.Issue(v)
		}
		return v
	default:
		return element
	}
}
