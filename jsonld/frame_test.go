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
	"github.com/stretchr/testify/require"
)

func frameTestInput() map[string]interface{} {
	return map[string]interface{}{
		"@context": map[string]interface{}{
			"ex":   "http://example.org/",
			"name": "http://example.org/name",
		},
		"@graph": []interface{}{
			map[string]interface{}{
				"@id":   "ex:alice",
				"@type": "ex:Person",
				"name":  "Alice",
			},
			map[string]interface{}{
				"@id":   "ex:book1",
				"@type": "ex:Book",
				"name":  "Some Book",
			},
		},
	}
}

func TestFrame_ByType(t *testing.T) {
	proc := NewProcessor()

	frame := map[string]interface{}{
		"@context": map[string]interface{}{
			"ex":   "http://example.org/",
			"name": "http://example.org/name",
		},
		"@type": "ex:Person",
		"name":  map[string]interface{}{},
	}

	framed, err := proc.Frame(frameTestInput(), frame, nil)
	require.NoError(t, err)

	graph, isList := framed["@graph"].([]interface{})
	require.True(t, isList, "expected @graph in framed output, got %v", framed)
	require.Len(t, graph, 1, "only the ex:Person node should match")

	person := graph[0].(map[string]interface{})
	assert.Equal(t, "ex:alice", person["@id"])
	assert.Equal(t, "ex:Person", person["@type"])
	assert.Equal(t, "Alice", person["name"])
}

func TestFrame_Wildcard(t *testing.T) {
	proc := NewProcessor()

	frame := map[string]interface{}{
		"@context": map[string]interface{}{
			"ex":   "http://example.org/",
			"name": "http://example.org/name",
		},
	}

	framed, err := proc.Frame(frameTestInput(), frame, nil)
	require.NoError(t, err)

	graph, isList := framed["@graph"].([]interface{})
	require.True(t, isList)
	assert.Len(t, graph, 2, "a wildcard frame matches every subject")
}

func TestFrame_Embedding(t *testing.T) {
	proc := NewProcessor()

	input := map[string]interface{}{
		"@context": map[string]interface{}{
			"ex":    "http://example.org/",
			"knows": map[string]interface{}{"@id": "http://example.org/knows", "@type": "@id"},
			"name":  "http://example.org/name",
		},
		"@graph": []interface{}{
			map[string]interface{}{
				"@id":   "ex:alice",
				"@type": "ex:Person",
				"name":  "Alice",
				"knows": "ex:bob",
			},
			map[string]interface{}{
				"@id":   "ex:bob",
				"@type": "ex:Person",
				"name":  "Bob",
			},
		},
	}

	frame := map[string]interface{}{
		"@context": map[string]interface{}{
			"ex":    "http://example.org/",
			"knows": map[string]interface{}{"@id": "http://example.org/knows", "@type": "@id"},
			"name":  "http://example.org/name",
		},
		"@id": "http://example.org/alice",
	}

	framed, err := proc.Frame(input, frame, nil)
	require.NoError(t, err)

	graph, isList := framed["@graph"].([]interface{})
	require.True(t, isList)
	require.Len(t, graph, 1)
	alice := graph[0].(map[string]interface{})

	// bob is embedded where alice references him
	bob, isMap := alice["knows"].(map[string]interface{})
	require.True(t, isMap, "expected embedded node, got %v", alice["knows"])
	assert.Equal(t, "Bob", bob["name"])
}

func TestFrame_EmbedNever(t *testing.T) {
	proc := NewProcessor()
	opts := NewOptions("")
	opts.Embed = EmbedNever

	input := map[string]interface{}{
		"@context": map[string]interface{}{
			"ex":    "http://example.org/",
			"knows": map[string]interface{}{"@id": "http://example.org/knows", "@type": "@id"},
			"name":  "http://example.org/name",
		},
		"@graph": []interface{}{
			map[string]interface{}{
				"@id":   "ex:alice",
				"name":  "Alice",
				"knows": "ex:bob",
			},
			map[string]interface{}{
				"@id":  "ex:bob",
				"name": "Bob",
			},
		},
	}

	frame := map[string]interface{}{
		"@context": map[string]interface{}{
			"ex":    "http://example.org/",
			"knows": map[string]interface{}{"@id": "http://example.org/knows", "@type": "@id"},
			"name":  "http://example.org/name",
		},
		"@id": "http://example.org/alice",
	}

	framed, err := proc.Frame(input, frame, opts)
	require.NoError(t, err)

	graph := framed["@graph"].([]interface{})
	require.Len(t, graph, 1)
	alice := graph[0].(map[string]interface{})
	assert.Equal(t, "ex:bob", alice["knows"], "with @never only a reference is emitted")
}

func TestFrame_Explicit(t *testing.T) {
	proc := NewProcessor()
	opts := NewOptions("")
	opts.Explicit = true

	input := map[string]interface{}{
		"@context": map[string]interface{}{
			"name": "http://example.org/name",
			"age":  "http://example.org/age",
		},
		"@id":  "http://example.org/alice",
		"name": "Alice",
		"age":  float64(30),
	}

	frame := map[string]interface{}{
		"@context": map[string]interface{}{
			"name": "http://example.org/name",
			"age":  "http://example.org/age",
		},
		"name": map[string]interface{}{},
	}

	framed, err := proc.Frame(input, frame, opts)
	require.NoError(t, err)

	graph := framed["@graph"].([]interface{})
	require.Len(t, graph, 1)
	node := graph[0].(map[string]interface{})
	assert.Equal(t, "Alice", node["name"])
	_, hasAge := node["age"]
	assert.False(t, hasAge, "explicit framing must drop properties not in the frame")
}

func TestFrame_Default(t *testing.T) {
	proc := NewProcessor()

	input := map[string]interface{}{
		"@context": map[string]interface{}{
			"name": "http://example.org/name",
			"age":  "http://example.org/age",
		},
		"@id":  "http://example.org/alice",
		"name": "Alice",
	}

	frame := map[string]interface{}{
		"@context": map[string]interface{}{
			"name": "http://example.org/name",
			"age":  "http://example.org/age",
		},
		"age": map[string]interface{}{
			"@default": "unknown",
		},
	}

	framed, err := proc.Frame(input, frame, nil)
	require.NoError(t, err)

	graph := framed["@graph"].([]interface{})
	require.Len(t, graph, 1)
	node := graph[0].(map[string]interface{})
	assert.Equal(t, "unknown", node["age"])
}

func TestFrame_RequireAll(t *testing.T) {
	proc := NewProcessor()

	input := map[string]interface{}{
		"@context": map[string]interface{}{
			"name": "http://example.org/name",
			"age":  "http://example.org/age",
		},
		"@graph": []interface{}{
			map[string]interface{}{
				"@id":  "http://example.org/alice",
				"name": "Alice",
				"age":  float64(30),
			},
			map[string]interface{}{
				"@id":  "http://example.org/bob",
				"name": "Bob",
			},
		},
	}

	frame := map[string]interface{}{
		"@context": map[string]interface{}{
			"name": "http://example.org/name",
			"age":  "http://example.org/age",
		},
		"name": map[string]interface{}{},
		"age":  map[string]interface{}{},
	}

	t.Run("requireAll matches only complete nodes", func(t *testing.T) {
		opts := NewOptions("")
		opts.RequireAll = true
		framed, err := proc.Frame(input, frame, opts)
		require.NoError(t, err)
		graph := framed["@graph"].([]interface{})
		require.Len(t, graph, 1)
		assert.Equal(t, "Alice", graph[0].(map[string]interface{})["name"])
	})

	t.Run("without requireAll any intersection matches", func(t *testing.T) {
		opts := NewOptions("")
		opts.RequireAll = false
		framed, err := proc.Frame(input, frame, opts)
		require.NoError(t, err)
		graph := framed["@graph"].([]interface{})
		assert.Len(t, graph, 2)
	})
}

func TestFrame_OmitGraph(t *testing.T) {
	proc := NewProcessor()
	opts := NewOptions("")
	opts.OmitGraph = true

	frame := map[string]interface{}{
		"@context": map[string]interface{}{
			"ex":   "http://example.org/",
			"name": "http://example.org/name",
		},
		"@type": "ex:Person",
	}

	framed, err := proc.Frame(frameTestInput(), frame, opts)
	require.NoError(t, err)

	_, hasGraph := framed["@graph"]
	assert.False(t, hasGraph, "omitGraph must unwrap a single match")
	assert.Equal(t, "Alice", framed["name"])
}

func TestGetFrameFlag(t *testing.T) {
	assert.True(t, GetFrameFlag(
		map[string]interface{}{"test": []interface{}{true, false}}, "test", false))

	assert.True(t, GetFrameFlag(
		map[string]interface{}{"test": map[string]interface{}{"@value": true}}, "test", false))

	assert.True(t, GetFrameFlag(
		map[string]interface{}{"test": map[string]interface{}{"@value": "true"}}, "test", false))

	assert.False(t, GetFrameFlag(
		map[string]interface{}{"test": map[string]interface{}{"@value": "false"}}, "test", true))

	assert.True(t, GetFrameFlag(
		map[string]interface{}{"test": true}, "test", false))

	assert.False(t, GetFrameFlag(
		map[string]interface{}{"test": "not_boolean"}, "test", false))
}

func TestFilterNode(t *testing.T) {
	node := map[string]interface{}{
		"@id":   "http://example.org/alice",
		"@type": []interface{}{"http://example.org/Person"},
		"http://example.org/name": []interface{}{
			map[string]interface{}{"@value": "Alice"},
		},
	}

	t.Run("type match", func(t *testing.T) {
		matched, err := FilterNode(node, map[string]interface{}{
			"@type": []interface{}{"http://example.org/Person"},
		}, false)
		require.NoError(t, err)
		assert.True(t, matched)
	})

	t.Run("type mismatch", func(t *testing.T) {
		matched, err := FilterNode(node, map[string]interface{}{
			"@type": []interface{}{"http://example.org/Book"},
		}, false)
		require.NoError(t, err)
		assert.False(t, matched)
	})

	t.Run("type wildcard", func(t *testing.T) {
		matched, err := FilterNode(node, map[string]interface{}{
			"@type": []interface{}{map[string]interface{}{}},
		}, false)
		require.NoError(t, err)
		assert.True(t, matched)
	})

	t.Run("wildcard", func(t *testing.T) {
		matched, err := FilterNode(node, map[string]interface{}{}, false)
		require.NoError(t, err)
		assert.True(t, matched)
	})

	t.Run("duck typing", func(t *testing.T) {
		matched, err := FilterNode(node, map[string]interface{}{
			"http://example.org/name": []interface{}{map[string]interface{}{}},
		}, true)
		require.NoError(t, err)
		assert.True(t, matched)
	})
}
