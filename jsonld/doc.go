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

// Package jsonld implements a JSON-LD 1.1 processor: expansion, compaction,
// flattening, framing and bi-directional RDF conversion, with N-Quads as
// the serialized RDF format.
//
// The entry point is Processor:
//
//	proc := jsonld.NewProcessor()
//	opts := jsonld.NewOptions("")
//	expanded, err := proc.Expand(doc, opts)
//
// Documents are parsed JSON values (map[string]interface{},
// []interface{} and scalars). Remote documents and contexts are fetched
// through the DocumentLoader configured in Options.
package jsonld
