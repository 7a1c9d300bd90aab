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
	"strings"
)

// Engine implements the JSON-LD document-rewriting algorithms. Its methods
// operate on expanded form; the Processor façade drives them.
type Engine struct{}

// NewEngine creates an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Processor exposes the JSON-LD API operations: Expand, Compact, Flatten,
// Frame, ToRDF and FromRDF.
type Processor struct{}

// NewProcessor creates a Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

var rdfCodecs = map[string]Serializer{
	"application/n-quads": &NQuadsCodec{},
	"application/nquads":  &NQuadsCodec{},
}

// Expand expands the given document (a parsed JSON value or an IRI string)
// and returns the expanded form as an array.
func (p *Processor) Expand(input interface{}, opts *Options) ([]interface{}, error) {
	if opts == nil {
		opts = NewOptions("")
	}
	return p.expand(input, opts)
}

func (p *Processor) expand(input interface{}, opts *Options) ([]interface{}, error) {
	var remoteContext string

	// an IRI input is dereferenced first
	if iri, isString := input.(string); isString && strings.Contains(iri, ":") {
		rd, err := opts.DocumentLoader.LoadDocument(iri)
		if err != nil {
			return nil, err
		}
		if rd.Document == nil {
			return nil, NewError(LoadingDocumentFailed, iri)
		}
		input = rd.Document

		// a base set in options overrides the document URL
		if opts.Base == "" {
			opts = opts.Copy()
			opts.Base = rd.DocumentURL
		}
		remoteContext = rd.ContextURL
	}

	activeCtx := NewActiveContext(opts)

	if opts.ExpandContext != nil {
		exCtx := opts.ExpandContext
		if exCtxMap, isMap := exCtx.(map[string]interface{}); isMap {
			if ctx, hasCtx := exCtxMap["@context"]; hasCtx {
				exCtx = ctx
			}
		}
		var err error
		if activeCtx, err = activeCtx.Parse(exCtx); err != nil {
			return nil, err
		}
	}

	if remoteContext != "" {
		var err error
		if activeCtx, err = activeCtx.Parse(remoteContext); err != nil {
			return nil, err
		}
	}

	engine := NewEngine()
	expanded, err := engine.Expand(activeCtx, "", input, opts)
	if err != nil {
		return nil, err
	}

	// final cleanup: unwrap a lone @graph, normalize to an array
	expandedMap, isMap := expanded.(map[string]interface{})
	if isMap && len(expandedMap) == 0 {
		expanded = nil
	}
	if graph, hasGraph := expandedMap["@graph"]; isMap && hasGraph && len(expandedMap) == 1 {
		expanded = graph
	} else if expanded == nil {
		expanded = make([]interface{}, 0)
	}

	if expandedList, isList := expanded.([]interface{}); isList {
		return expandedList, nil
	}
	return []interface{}{expanded}, nil
}

// Compact compacts the given document using the context.
func (p *Processor) Compact(input interface{}, context interface{},
	opts *Options) (map[string]interface{}, error) {

	if opts == nil {
		opts = NewOptions("")
	}

	expanded, err := p.expand(input, opts)
	if err != nil {
		return nil, err
	}

	if contextMap, isMap := context.(map[string]interface{}); isMap {
		if innerCtx, hasCtx := contextMap["@context"]; hasCtx {
			context = innerCtx
		}
	}
	activeCtx, err := NewActiveContext(opts).Parse(context)
	if err != nil {
		return nil, err
	}

	engine := NewEngine()
	compacted, err := engine.Compact(activeCtx, "", expanded, opts.CompactArrays)
	if err != nil {
		return nil, err
	}

	// a non-empty top-level array is wrapped in an aliased @graph
	if compactedList, isList := compacted.([]interface{}); isList {
		if len(compactedList) == 0 {
			compacted = make(map[string]interface{})
		} else {
			graphAlias, err := activeCtx.CompactIRI("@graph", nil, true, false)
			if err != nil {
				return nil, err
			}
			compacted = map[string]interface{}{graphAlias: compacted}
		}
	}

	contextMap, _ := context.(map[string]interface{})
	contextList, _ := context.([]interface{})
	contextString, _ := context.(string)
	contextIsNotEmpty := len(contextMap) > 0 || len(contextList) > 0 || contextString != ""
	if compactedMap, isMap := compacted.(map[string]interface{}); contextIsNotEmpty && isMap {
		compactedMap["@context"] = context
	}

	return compacted.(map[string]interface{}), nil
}

// Flatten collects all nodes of the document into a single map and, when a
// context is given, compacts the result.
func (p *Processor) Flatten(input interface{}, context interface{}, opts *Options) (interface{}, error) {
	if opts == nil {
		opts = NewOptions("")
	}

	expanded, err := p.expand(input, opts)
	if err != nil {
		return nil, err
	}

	if contextMap, isMap := context.(map[string]interface{}); isMap {
		if innerCtx, hasCtx := contextMap["@context"]; hasCtx {
			context = innerCtx
		}
	}

	namer := NewBlankNodeNamer("_:b")
	nodeMap := map[string]interface{}{
		"@default": make(map[string]interface{}),
	}
	engine := NewEngine()
	if err = engine.GenerateNodeMap(expanded, nodeMap, "@default", namer); err != nil {
		return nil, err
	}

	defaultGraph := nodeMap["@default"].(map[string]interface{})
	delete(nodeMap, "@default")

	// merge the named graphs into graph entries of the default graph
	for _, graphName := range GetSortedKeys(nodeMap) {
		graph := nodeMap[graphName].(map[string]interface{})
		var entry map[string]interface{}
		if existing, present := defaultGraph[graphName]; present {
			entry = existing.(map[string]interface{})
		} else {
			entry = map[string]interface{}{"@id": graphName}
			defaultGraph[graphName] = entry
		}
		if _, present := entry["@graph"]; !present {
			entry["@graph"] = make([]interface{}, 0)
		}
		for _, id := range GetSortedKeys(graph) {
			node := graph[id].(map[string]interface{})
			if _, present := node["@id"]; !(present && len(node) == 1) {
				entry["@graph"] = append(entry["@graph"].([]interface{}), node)
			}
		}
	}

	flattened := make([]interface{}, 0)
	for _, id := range GetSortedKeys(defaultGraph) {
		node := defaultGraph[id].(map[string]interface{})
		if _, present := node["@id"]; !(present && len(node) == 1) {
			flattened = append(flattened, node)
		}
	}

	if context == nil || len(flattened) == 0 {
		return flattened, nil
	}

	activeCtx, err := NewActiveContext(opts).Parse(context)
	if err != nil {
		return nil, err
	}
	compacted, err := engine.Compact(activeCtx, "", flattened, opts.CompactArrays)
	if err != nil {
		return nil, err
	}
	if _, isList := compacted.([]interface{}); !isList {
		compacted = []interface{}{compacted}
	}
	graphAlias, err := activeCtx.CompactIRI("@graph", nil, true, false)
	if err != nil {
		return nil, err
	}
	rval, err := activeCtx.Serialize()
	if err != nil {
		return nil, err
	}
	rval[graphAlias] = compacted
	return rval, nil
}

// Frame reshapes the document to match the given frame.
func (p *Processor) Frame(input interface{}, frame interface{}, opts *Options) (map[string]interface{}, error) {
	if opts == nil {
		opts = NewOptions("")
	}

	if frameStr, isString := frame.(string); isString && strings.Contains(frameStr, ":") {
		rd, err := opts.DocumentLoader.LoadDocument(frameStr)
		if err != nil {
			return nil, err
		}
		frame = rd.Document
	}
	if _, isMap := frame.(map[string]interface{}); isMap {
		frame = CloneDocument(frame)
	}
	frameMap, isMap := frame.(map[string]interface{})
	if !isMap {
		return nil, NewError(InvalidFrame, "frame must be an object")
	}

	expandedInput, err := p.Expand(input, opts)
	if err != nil {
		return nil, err
	}

	// the frame expands in frame mode, without the expand context
	frameOpts := opts.Copy()
	frameOpts.ProcessingMode = JsonLd_1_1_Frame
	frameOpts.ExpandContext = nil
	expandedFrame, err := p.Expand(frame, frameOpts)
	if err != nil {
		return nil, err
	}

	engine := NewEngine()
	framed, err := engine.Frame(expandedInput, expandedFrame, opts)
	if err != nil {
		return nil, err
	}

	activeCtx, err := NewActiveContext(opts).Parse(frameMap["@context"])
	if err != nil {
		return nil, err
	}

	compacted, err := engine.Compact(activeCtx, "", framed, opts.CompactArrays)
	if err != nil {
		return nil, err
	}
	compactedList, isList := compacted.([]interface{})
	if !isList {
		compactedList = []interface{}{compacted}
	}
	graphAlias, err := activeCtx.CompactIRI("@graph", nil, true, false)
	if err != nil {
		return nil, err
	}
	rval, err := activeCtx.Serialize()
	if err != nil {
		return nil, err
	}

	bnodesToClear := pruneBlankNodeIDs(framed)

	if opts.OmitGraph && len(compactedList) == 1 {
		if single, isSingle := compactedList[0].(map[string]interface{}); isSingle {
			for k, v := range single {
				rval[k] = v
			}
			if _, err := RemovePreserve(activeCtx, rval, bnodesToClear, opts.CompactArrays); err != nil {
				return nil, err
			}
			return rval, nil
		}
	}

	rval[graphAlias] = compactedList
	if _, err := RemovePreserve(activeCtx, rval, bnodesToClear, opts.CompactArrays); err != nil {
		return nil, err
	}
	return rval, nil
}

// ToRDF converts the document to an RDF dataset, or to serialized RDF when
// the Format option names a registered codec.
func (p *Processor) ToRDF(input interface{}, opts *Options) (interface{}, error) {
	if opts == nil {
		opts = NewOptions("")
	}

	expandedInput, err := p.expand(input, opts)
	if err != nil {
		return nil, err
	}

	engine := NewEngine()
	dataset, err := engine.ToRDF(expandedInput, opts)
	if err != nil {
		return nil, err
	}

	if opts.UseNamespaces {
		var sources []map[string]interface{}
		if inputMap, isMap := input.(map[string]interface{}); isMap {
			sources = append(sources, inputMap)
		} else if inputList, isList := input.([]interface{}); isList {
			for _, entry := range inputList {
				if entryMap, isMap := entry.(map[string]interface{}); isMap {
					sources = append(sources, entryMap)
				}
			}
		}
		for _, source := range sources {
			if ctxVal, hasCtx := source["@context"]; hasCtx {
				if err := dataset.ParseContext(ctxVal, opts); err != nil {
					return nil, err
				}
			}
		}
	}

	if opts.Format != "" {
		codec, hasCodec := rdfCodecs[opts.Format]
		if !hasCodec {
			return nil, NewError(UnknownFormat, opts.Format)
		}
		return codec.Serialize(dataset)
	}
	return dataset, nil
}

// FromRDF converts an RDF dataset (or serialized RDF named by the
// InputFormat/Format option) to JSON-LD.
func (p *Processor) FromRDF(input interface{}, opts *Options) (interface{}, error) {
	if opts == nil {
		opts = NewOptions("")
	}

	var dataset *Dataset
	switch in := input.(type) {
	case *Dataset:
		dataset = in
	default:
		format := opts.Format
		if format == "" {
			format = opts.InputFormat
		}
		if format == "" {
			if _, isString := input.(string); isString {
				format = "application/n-quads"
			}
		}
		codec, hasCodec := rdfCodecs[format]
		if !hasCodec {
			return nil, NewError(UnknownFormat, format)
		}
		var err error
		if dataset, err = codec.Parse(input); err != nil {
			return nil, err
		}
	}

	engine := NewEngine()
	rval, err := engine.FromRDF(dataset, opts)
	if err != nil {
		return nil, err
	}

	switch opts.OutputForm {
	case "", "expanded":
		return rval, nil
	case "compacted":
		return p.Compact(rval, dataset.Context(), opts)
	case "flattened":
		return p.Flatten(rval, dataset.Context(), opts)
	default:
		return nil, NewError(InvalidInput, "unknown output form: "+opts.OutputForm)
	}
}
