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

package jsonld_test

import (
	"strings"
	"testing"

	. "github.com/calverite/jsonld/jsonld"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinkHeader(t *testing.T) {
	header := `<http://json-ld.org/contexts/person.jsonld>; rel="http://www.w3.org/ns/json-ld#context"; type="application/ld+json"`

	parsed := ParseLinkHeader(header)
	entries := parsed["http://www.w3.org/ns/json-ld#context"]
	require.Len(t, entries, 1)
	assert.Equal(t, "http://json-ld.org/contexts/person.jsonld", entries[0]["target"])
	assert.Equal(t, "application/ld+json", entries[0]["type"])
}

func TestParseLinkHeader_MultipleEntries(t *testing.T) {
	header := `<http://example.com/a>; rel="alternate", <http://example.com/b>; rel="alternate"`

	parsed := ParseLinkHeader(header)
	entries := parsed["alternate"]
	require.Len(t, entries, 2)
	assert.Equal(t, "http://example.com/a", entries[0]["target"])
	assert.Equal(t, "http://example.com/b", entries[1]["target"])
}

func TestDocumentFromReader(t *testing.T) {
	doc, err := DocumentFromReader(strings.NewReader(`{"a": 1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, doc)

	_, err = DocumentFromReader(strings.NewReader(`{invalid`))
	require.Error(t, err)
	assert.True(t, IsError(err, LoadingDocumentFailed))
}

type countingLoader struct {
	loads int
	docs  map[string]interface{}
}

func (l *countingLoader) LoadDocument(u string) (*RemoteDocument, error) {
	l.loads++
	doc, present := l.docs[u]
	if !present {
		return nil, NewError(LoadingDocumentFailed, u)
	}
	return &RemoteDocument{DocumentURL: u, Document: doc}, nil
}

func TestCachingDocumentLoader(t *testing.T) {
	next := &countingLoader{docs: map[string]interface{}{
		"http://example.com/doc": map[string]interface{}{"a": float64(1)},
	}}
	loader := NewCachingDocumentLoader(next)

	doc, err := loader.LoadDocument("http://example.com/doc")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, doc.Document)

	_, err = loader.LoadDocument("http://example.com/doc")
	require.NoError(t, err)
	assert.Equal(t, 1, next.loads, "the second load must be served from cache")

	loader.AddDocument("http://example.com/other", map[string]interface{}{"b": float64(2)})
	doc, err = loader.LoadDocument("http://example.com/other")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"b": float64(2)}, doc.Document)
	assert.Equal(t, 1, next.loads)
}

func TestCachingDocumentLoader_PropagatesErrors(t *testing.T) {
	loader := NewCachingDocumentLoader(&countingLoader{docs: map[string]interface{}{}})
	_, err := loader.LoadDocument("http://example.com/missing")
	require.Error(t, err)
	assert.True(t, IsError(err, LoadingDocumentFailed))
}
