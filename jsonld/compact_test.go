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

func TestCompact_Simple(t *testing.T) {
	proc := NewProcessor()

	context := map[string]interface{}{
		"name": "http://schema.org/name",
	}
	expanded := []interface{}{
		map[string]interface{}{
			"http://schema.org/name": []interface{}{
				map[string]interface{}{"@value": "Alice"},
			},
		},
	}

	compacted, err := proc.Compact(expanded, context, nil)
	require.NoError(t, err)

	assert.Equal(t, "Alice", compacted["name"])
	assert.Equal(t, context, compacted["@context"])
}

func TestCompact_LanguageContainer(t *testing.T) {
	proc := NewProcessor()

	context := map[string]interface{}{
		"label": map[string]interface{}{
			"@id":        "http://schema.org/name",
			"@container": "@language",
		},
	}
	expanded := []interface{}{
		map[string]interface{}{
			"http://schema.org/name": []interface{}{
				map[string]interface{}{"@value": "Hi", "@language": "en"},
				map[string]interface{}{"@value": "Hola", "@language": "es"},
			},
		},
	}

	compacted, err := proc.Compact(expanded, context, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"en": "Hi",
		"es": "Hola",
	}, compacted["label"])
}

func TestCompact_ListContainer(t *testing.T) {
	proc := NewProcessor()

	context := map[string]interface{}{
		"items": map[string]interface{}{
			"@id":        "http://example.com/items",
			"@container": "@list",
		},
	}
	expanded := []interface{}{
		map[string]interface{}{
			"http://example.com/items": []interface{}{
				map[string]interface{}{
					"@list": []interface{}{
						map[string]interface{}{"@value": float64(1)},
						map[string]interface{}{"@value": float64(2)},
					},
				},
			},
		},
	}

	compacted, err := proc.Compact(expanded, context, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{float64(1), float64(2)}, compacted["items"])
}

func TestCompact_SetContainerKeepsArrays(t *testing.T) {
	proc := NewProcessor()

	context := map[string]interface{}{
		"tag": map[string]interface{}{
			"@id":        "http://example.com/tag",
			"@container": "@set",
		},
	}
	expanded := []interface{}{
		map[string]interface{}{
			"http://example.com/tag": []interface{}{
				map[string]interface{}{"@value": "solo"},
			},
		},
	}

	compacted, err := proc.Compact(expanded, context, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"solo"}, compacted["tag"])
}

func TestCompact_IDContainer(t *testing.T) {
	proc := NewProcessor()

	context := map[string]interface{}{
		"@version": float64(1.1),
		"post": map[string]interface{}{
			"@id":        "http://example.com/post",
			"@container": "@id",
		},
	}
	expanded := []interface{}{
		map[string]interface{}{
			"http://example.com/post": []interface{}{
				map[string]interface{}{
					"@id": "http://example.com/posts/1",
					"http://example.com/title": []interface{}{
						map[string]interface{}{"@value": "First"},
					},
				},
			},
		},
	}

	compacted, err := proc.Compact(expanded, context, nil)
	require.NoError(t, err)

	postMap, isMap := compacted["post"].(map[string]interface{})
	require.True(t, isMap, "expected an id map, got %v", compacted["post"])
	entry, isMap := postMap["http://example.com/posts/1"].(map[string]interface{})
	require.True(t, isMap)
	assert.Equal(t, "First", entry["http://example.com/title"])
}

func TestCompact_RoundTripThroughExpansion(t *testing.T) {
	proc := NewProcessor()

	context := map[string]interface{}{
		"name": "http://schema.org/name",
		"knows": map[string]interface{}{
			"@id":   "http://schema.org/knows",
			"@type": "@id",
		},
	}
	doc := map[string]interface{}{
		"@context": context,
		"@id":      "http://example.com/alice",
		"name":     "Alice",
		"knows":    "http://example.com/bob",
	}

	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)

	compacted, err := proc.Compact(expanded, context, nil)
	require.NoError(t, err)

	reExpanded, err := proc.Expand(compacted, nil)
	require.NoError(t, err)
	assert.Equal(t, expanded, reExpanded)
}

func TestCompact_CompactArraysDisabled(t *testing.T) {
	proc := NewProcessor()
	opts := NewOptions("")
	opts.CompactArrays = false

	context := map[string]interface{}{
		"name": "http://schema.org/name",
	}
	expanded := []interface{}{
		map[string]interface{}{
			"http://schema.org/name": []interface{}{
				map[string]interface{}{"@value": "Alice"},
			},
		},
	}

	compacted, err := proc.Compact(expanded, context, opts)
	require.NoError(t, err)

	// with compactArrays off the result keeps its @graph wrapper and arrays
	graph, isList := compacted["@graph"].([]interface{})
	require.True(t, isList, "expected @graph wrapper, got %v", compacted)
	require.Len(t, graph, 1)
	node := graph[0].(map[string]interface{})
	assert.Equal(t, []interface{}{"Alice"}, node["name"])
}

func TestCompact_TypeCoercedIRI(t *testing.T) {
	proc := NewProcessor()

	context := map[string]interface{}{
		"homepage": map[string]interface{}{
			"@id":   "http://schema.org/url",
			"@type": "@id",
		},
	}
	expanded := []interface{}{
		map[string]interface{}{
			"http://schema.org/url": []interface{}{
				map[string]interface{}{"@id": "http://example.com/"},
			},
		},
	}

	compacted, err := proc.Compact(expanded, context, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/", compacted["homepage"])
}

func TestCompact_GraphContainer(t *testing.T) {
	proc := NewProcessor()

	context := map[string]interface{}{
		"@version": float64(1.1),
		"claims": map[string]interface{}{
			"@id":        "http://example.com/claims",
			"@container": "@graph",
		},
		"name": "http://schema.org/name",
	}
	expanded := []interface{}{
		map[string]interface{}{
			"http://example.com/claims": []interface{}{
				map[string]interface{}{
					"@graph": []interface{}{
						map[string]interface{}{
							"http://schema.org/name": []interface{}{
								map[string]interface{}{"@value": "Claim"},
							},
						},
					},
				},
			},
		},
	}

	compacted, err := proc.Compact(expanded, context, nil)
	require.NoError(t, err)

	claim, isMap := compacted["claims"].(map[string]interface{})
	require.True(t, isMap, "expected compacted graph content, got %v", compacted["claims"])
	assert.Equal(t, "Claim", claim["name"])
}
