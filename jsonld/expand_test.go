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

func TestExpand_Simple(t *testing.T) {
	proc := NewProcessor()

	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"name": "http://schema.org/name",
		},
		"name": "Alice",
	}

	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)

	assert.Equal(t, []interface{}{
		map[string]interface{}{
			"http://schema.org/name": []interface{}{
				map[string]interface{}{"@value": "Alice"},
			},
		},
	}, expanded)
}

func TestExpand_Idempotent(t *testing.T) {
	proc := NewProcessor()

	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"name": "http://schema.org/name",
			"knows": map[string]interface{}{
				"@id":   "http://schema.org/knows",
				"@type": "@id",
			},
		},
		"@id":   "http://example.com/alice",
		"name":  "Alice",
		"knows": "http://example.com/bob",
	}

	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	twice, err := proc.Expand(expanded, nil)
	require.NoError(t, err)
	assert.Equal(t, expanded, twice)
}

func TestExpand_LanguageMap(t *testing.T) {
	proc := NewProcessor()

	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"label": map[string]interface{}{
				"@id":        "http://schema.org/name",
				"@container": "@language",
			},
		},
		"label": map[string]interface{}{
			"en": "Hi",
			"es": "Hola",
		},
	}

	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	require.Len(t, expanded, 1)

	values := expanded[0].(map[string]interface{})["http://schema.org/name"].([]interface{})
	assert.ElementsMatch(t, []interface{}{
		map[string]interface{}{"@value": "Hi", "@language": "en"},
		map[string]interface{}{"@value": "Hola", "@language": "es"},
	}, values)
}

func TestExpand_ListOfLists(t *testing.T) {
	proc := NewProcessor()

	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"items": map[string]interface{}{
				"@id":        "http://example.com/items",
				"@container": "@list",
			},
		},
		"items": []interface{}{
			[]interface{}{float64(1)},
		},
	}

	_, err := proc.Expand(doc, nil)
	require.Error(t, err)
	assert.True(t, IsError(err, ListOfLists))
}

func TestExpand_ValueObjectErrors(t *testing.T) {
	proc := NewProcessor()

	t.Run("language and type conflict", func(t *testing.T) {
		doc := map[string]interface{}{
			"http://example.com/prop": map[string]interface{}{
				"@value":    "v",
				"@type":     "http://example.com/type",
				"@language": "en",
			},
		}
		_, err := proc.Expand(doc, nil)
		require.Error(t, err)
		assert.True(t, IsError(err, InvalidValueObject))
	})

	t.Run("unknown keys in value object", func(t *testing.T) {
		doc := map[string]interface{}{
			"http://example.com/prop": map[string]interface{}{
				"@value":                   "v",
				"http://example.com/other": "x",
			},
		}
		_, err := proc.Expand(doc, nil)
		require.Error(t, err)
		assert.True(t, IsError(err, InvalidValueObject))
	})

	t.Run("language-tagged non-string", func(t *testing.T) {
		doc := map[string]interface{}{
			"http://example.com/prop": map[string]interface{}{
				"@value":    float64(5),
				"@language": "en",
			},
		}
		_, err := proc.Expand(doc, nil)
		require.Error(t, err)
		assert.True(t, IsError(err, InvalidLanguageTaggedValue))
	})

	t.Run("typed value with relative IRI type", func(t *testing.T) {
		doc := map[string]interface{}{
			"http://example.com/prop": map[string]interface{}{
				"@value": "v",
				"@type":  "relative",
			},
		}
		_, err := proc.Expand(doc, nil)
		require.Error(t, err)
		assert.True(t, IsError(err, InvalidTypedValue))
	})
}

func TestExpand_Reverse(t *testing.T) {
	proc := NewProcessor()

	doc := map[string]interface{}{
		"@id": "http://example.com/alice",
		"@reverse": map[string]interface{}{
			"http://example.com/knows": map[string]interface{}{
				"@id": "http://example.com/bob",
			},
		},
	}

	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	require.Len(t, expanded, 1)

	node := expanded[0].(map[string]interface{})
	reverse := node["@reverse"].(map[string]interface{})
	assert.Equal(t, []interface{}{
		map[string]interface{}{"@id": "http://example.com/bob"},
	}, reverse["http://example.com/knows"])
}

func TestExpand_Nest(t *testing.T) {
	proc := NewProcessor()

	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"@version": float64(1.1),
			"name":     "http://schema.org/name",
			"details":  "@nest",
		},
		"@id": "http://example.com/alice",
		"details": map[string]interface{}{
			"name": "Alice",
		},
	}

	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	require.Len(t, expanded, 1)

	node := expanded[0].(map[string]interface{})
	assert.Equal(t, []interface{}{
		map[string]interface{}{"@value": "Alice"},
	}, node["http://schema.org/name"])
}

func TestExpand_IndexMap(t *testing.T) {
	proc := NewProcessor()

	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"post": map[string]interface{}{
				"@id":        "http://example.com/post",
				"@container": "@index",
			},
		},
		"post": map[string]interface{}{
			"en": map[string]interface{}{"@id": "http://example.com/1"},
		},
	}

	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	require.Len(t, expanded, 1)

	values := expanded[0].(map[string]interface{})["http://example.com/post"].([]interface{})
	require.Len(t, values, 1)
	assert.Equal(t, map[string]interface{}{
		"@id":    "http://example.com/1",
		"@index": "en",
	}, values[0])
}

func TestExpand_TypeScopedContext(t *testing.T) {
	proc := NewProcessor()

	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"@version": float64(1.1),
			"Person": map[string]interface{}{
				"@id": "http://schema.org/Person",
				"@context": map[string]interface{}{
					"name": "http://schema.org/name",
				},
			},
		},
		"@type": "Person",
		"name":  "Alice",
	}

	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	require.Len(t, expanded, 1)

	node := expanded[0].(map[string]interface{})
	assert.Equal(t, []interface{}{"http://schema.org/Person"}, node["@type"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"@value": "Alice"},
	}, node["http://schema.org/name"])
}

func TestExpand_JSONLiteral(t *testing.T) {
	proc := NewProcessor()

	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"@version": float64(1.1),
			"config": map[string]interface{}{
				"@id":   "http://example.com/config",
				"@type": "@json",
			},
		},
		"config": map[string]interface{}{"b": float64(2), "a": float64(1)},
	}

	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	require.Len(t, expanded, 1)

	values := expanded[0].(map[string]interface{})["http://example.com/config"].([]interface{})
	require.Len(t, values, 1)
	assert.Equal(t, map[string]interface{}{
		"@value": map[string]interface{}{"a": float64(1), "b": float64(2)},
		"@type":  "@json",
	}, values[0])
}

func TestExpand_DropsFreeFloatingValues(t *testing.T) {
	proc := NewProcessor()

	expanded, err := proc.Expand(map[string]interface{}{
		"@value": "free-floating",
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, expanded)
}

func TestExpand_PropertyGenerators(t *testing.T) {
	opts := NewOptions("")
	opts.AllowPropertyGenerators = true
	proc := NewProcessor()

	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"name": map[string]interface{}{
				"@id": []interface{}{
					"http://schema.org/name",
					"http://xmlns.com/foaf/0.1/name",
				},
			},
		},
		"name": "Alice",
	}

	expanded, err := proc.Expand(doc, opts)
	require.NoError(t, err)
	require.Len(t, expanded, 1)

	node := expanded[0].(map[string]interface{})
	expected := []interface{}{map[string]interface{}{"@value": "Alice"}}
	assert.Equal(t, expected, node["http://schema.org/name"])
	assert.Equal(t, expected, node["http://xmlns.com/foaf/0.1/name"])
}
