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
	"testing"

	. "github.com/calverite/jsonld/jsonld"
	"github.com/stretchr/testify/assert"
)

func TestParseIRI(t *testing.T) {
	parsed := ParseIRI("http://www.example.com/a/b?q=1#frag")

	assert.Equal(t, "http", parsed.Scheme)
	assert.Equal(t, "www.example.com", parsed.Authority)
	assert.Equal(t, "/a/b", parsed.Path)
	assert.Equal(t, "q=1", parsed.Query)
	assert.Equal(t, "frag", parsed.Fragment)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "http://example.com/b", Resolve("http://example.com/a", "b"))
	assert.Equal(t, "http://example.com/a/c", Resolve("http://example.com/a/b", "c"))
	assert.Equal(t, "http://example.com/c", Resolve("http://example.com/a/b", "../c"))
	assert.Equal(t, "http://other.org/x", Resolve("http://example.com/a", "http://other.org/x"))
	assert.Equal(t, "http://example.com/a?q=2", Resolve("http://example.com/a?q=1#f", "?q=2"))
	assert.Equal(t, "relative", Resolve("", "relative"))
	assert.Equal(t, "http://example.com/a", Resolve("http://example.com/a", ""))
}

func TestRelativize(t *testing.T) {
	assert.Equal(t, "../parent-node", Relativize(
		"http://json-ld.org/test-suite/tests/compact-0045-in.jsonld",
		"http://json-ld.org/test-suite/parent-node",
	))
	assert.Equal(t, "relative-url", Relativize(
		"http://example.com/",
		"http://example.com/relative-url",
	))
	assert.Equal(t, "../", Relativize(
		"http://json-ld.org/test-suite/tests/compact-0066-in.jsonld",
		"http://json-ld.org/test-suite/",
	))
	assert.Equal(t, "1", Relativize(
		"http://example.com/api/things/1",
		"http://example.com/api/things/1",
	))
	assert.Equal(t, "http://other.org/x", Relativize(
		"http://example.com/base",
		"http://other.org/x",
	))
}

func TestIsAbsoluteIRI(t *testing.T) {
	assert.True(t, IsAbsoluteIRI("http://example.com/"))
	assert.True(t, IsAbsoluteIRI("urn:uuid:1234"))
	assert.True(t, IsAbsoluteIRI("_:b0"))
	assert.False(t, IsAbsoluteIRI("relative/path"))
	assert.False(t, IsAbsoluteIRI(""))
}

func TestIsBlankNodeIdentifier(t *testing.T) {
	assert.True(t, IsBlankNodeIdentifier("_:b0"))
	assert.False(t, IsBlankNodeIdentifier("http://example.com/"))
}
