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

func TestFlatten_NestedNode(t *testing.T) {
	proc := NewProcessor()

	expanded := []interface{}{
		map[string]interface{}{
			"@id": "http://example.com/a",
			"http://example.com/rel": []interface{}{
				map[string]interface{}{
					"@id": "http://example.com/b",
					"http://example.com/name": []interface{}{
						map[string]interface{}{"@value": "B"},
					},
				},
			},
		},
	}

	flattened, err := proc.Flatten(expanded, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []interface{}{
		map[string]interface{}{
			"@id": "http://example.com/a",
			"http://example.com/rel": []interface{}{
				map[string]interface{}{"@id": "http://example.com/b"},
			},
		},
		map[string]interface{}{
			"@id": "http://example.com/b",
			"http://example.com/name": []interface{}{
				map[string]interface{}{"@value": "B"},
			},
		},
	}, flattened)
}

func TestFlatten_LabelsBlankNodes(t *testing.T) {
	proc := NewProcessor()

	expanded := []interface{}{
		map[string]interface{}{
			"http://example.com/name": []interface{}{
				map[string]interface{}{"@value": "anonymous"},
			},
		},
	}

	flattened, err := proc.Flatten(expanded, nil, nil)
	require.NoError(t, err)

	list, isList := flattened.([]interface{})
	require.True(t, isList)
	require.Len(t, list, 1)
	node := list[0].(map[string]interface{})
	assert.Equal(t, "_:b0", node["@id"])
}

func TestFlatten_DeterministicAcrossKeyOrder(t *testing.T) {
	proc := NewProcessor()

	docA := map[string]interface{}{
		"@id": "http://example.com/x",
		"http://example.com/a": []interface{}{
			map[string]interface{}{"@value": "1"},
		},
		"http://example.com/b": []interface{}{
			map[string]interface{}{"@value": "2"},
		},
	}
	// same content, different construction order
	docB := map[string]interface{}{
		"http://example.com/b": []interface{}{
			map[string]interface{}{"@value": "2"},
		},
		"http://example.com/a": []interface{}{
			map[string]interface{}{"@value": "1"},
		},
		"@id": "http://example.com/x",
	}

	flatA, err := proc.Flatten([]interface{}{docA}, nil, nil)
	require.NoError(t, err)
	flatB, err := proc.Flatten([]interface{}{docB}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, flatA, flatB)
}

func TestFlatten_NamedGraphs(t *testing.T) {
	proc := NewProcessor()

	expanded := []interface{}{
		map[string]interface{}{
			"@id": "http://example.com/g1",
			"@graph": []interface{}{
				map[string]interface{}{
					"@id": "http://example.com/inner",
					"http://example.com/name": []interface{}{
						map[string]interface{}{"@value": "inner"},
					},
				},
			},
		},
	}

	flattened, err := proc.Flatten(expanded, nil, nil)
	require.NoError(t, err)

	list, isList := flattened.([]interface{})
	require.True(t, isList)
	require.Len(t, list, 1)
	graphNode := list[0].(map[string]interface{})
	assert.Equal(t, "http://example.com/g1", graphNode["@id"])
	innerNodes, isList := graphNode["@graph"].([]interface{})
	require.True(t, isList)
	require.Len(t, innerNodes, 1)
	assert.Equal(t, "http://example.com/inner", innerNodes[0].(map[string]interface{})["@id"])
}

func TestFlatten_WithContextCompacts(t *testing.T) {
	proc := NewProcessor()

	context := map[string]interface{}{
		"name": "http://example.com/name",
	}
	expanded := []interface{}{
		map[string]interface{}{
			"@id": "http://example.com/a",
			"http://example.com/name": []interface{}{
				map[string]interface{}{"@value": "A"},
			},
		},
	}

	flattened, err := proc.Flatten(expanded, context, nil)
	require.NoError(t, err)

	result, isMap := flattened.(map[string]interface{})
	require.True(t, isMap)
	graph, isList := result["@graph"].([]interface{})
	require.True(t, isList)
	require.Len(t, graph, 1)
	assert.Equal(t, "A", graph[0].(map[string]interface{})["name"])
}

func TestNodeMap_ConflictingIndexes(t *testing.T) {
	engine := NewEngine()
	namer := NewBlankNodeNamer("_:b")

	expanded := []interface{}{
		map[string]interface{}{
			"@id":    "http://example.com/a",
			"@index": "one",
		},
		map[string]interface{}{
			"@id":    "http://example.com/a",
			"@index": "two",
		},
	}

	nodeMap := map[string]interface{}{"@default": make(map[string]interface{})}
	err := engine.GenerateNodeMap(expanded, nodeMap, "@default", namer)
	require.Error(t, err)
	assert.True(t, IsError(err, ConflictingIndexes))
}

func TestNodeMap_NodeIDMatchesKey(t *testing.T) {
	engine := NewEngine()
	namer := NewBlankNodeNamer("_:b")

	expanded := []interface{}{
		map[string]interface{}{
			"@id": "http://example.com/a",
			"http://example.com/rel": []interface{}{
				map[string]interface{}{"@id": "_:someone"},
			},
		},
	}

	nodeMap := map[string]interface{}{"@default": make(map[string]interface{})}
	err := engine.GenerateNodeMap(expanded, nodeMap, "@default", namer)
	require.NoError(t, err)

	defaultGraph := nodeMap["@default"].(map[string]interface{})
	for id, nodeVal := range defaultGraph {
		node := nodeVal.(map[string]interface{})
		assert.Equal(t, id, node["@id"])
	}
}
