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
	"os"
	"sort"
	"strings"
)

// Arrayify returns v unchanged if it is an array, otherwise wraps it in a
// single-element array.
func Arrayify(v interface{}) []interface{} {
	if av, isArray := v.([]interface{}); isArray {
		return av
	}
	return []interface{}{v}
}

// IsValue returns true if the given value is a value object.
func IsValue(v interface{}) bool {
	vMap, isMap := v.(map[string]interface{})
	_, containsValue := vMap["@value"]
	return isMap && containsValue
}

// IsList returns true if the given value is a list object.
func IsList(v interface{}) bool {
	vMap, isMap := v.(map[string]interface{})
	_, containsList := vMap["@list"]
	return isMap && containsList
}

// IsNodeObject returns true if the given value is a node object: an object
// that is not a value, set or list object, with more than one key or no @id
// key (so an empty object counts as a node object).
func IsNodeObject(v interface{}) bool {
	vMap, isMap := v.(map[string]interface{})
	if !isMap {
		return false
	}
	_, containsValue := vMap["@value"]
	_, containsSet := vMap["@set"]
	_, containsList := vMap["@list"]
	_, containsID := vMap["@id"]
	if containsValue || containsSet || containsList {
		return false
	}
	return len(vMap) > 1 || !containsID
}

// IsNodeReference returns true if the given value is an object whose single
// key is @id.
func IsNodeReference(v interface{}) bool {
	vMap, isMap := v.(map[string]interface{})
	_, containsID := vMap["@id"]
	return isMap && len(vMap) == 1 && containsID
}

// IsGraphObject returns true if the given value is an object with an @graph
// entry and no keys beyond @graph, @id and @index.
func IsGraphObject(v interface{}) bool {
	vMap, isMap := v.(map[string]interface{})
	if !isMap {
		return false
	}
	if _, containsGraph := vMap["@graph"]; !containsGraph {
		return false
	}
	for k := range vMap {
		if k != "@id" && k != "@index" && k != "@graph" {
			return false
		}
	}
	return true
}

// IsSimpleGraphObject returns true for graph objects without an @id.
func IsSimpleGraphObject(v interface{}) bool {
	vMap, _ := v.(map[string]interface{})
	_, containsID := vMap["@id"]
	return IsGraphObject(v) && !containsID
}

// IsBlankNodeObject returns true if the given value stands for a blank node:
// either its @id is a blank node identifier, or it is a node object without
// an @id.
func IsBlankNodeObject(v interface{}) bool {
	vMap, isMap := v.(map[string]interface{})
	if !isMap {
		return false
	}
	if id, containsID := vMap["@id"]; containsID {
		idStr, isString := id.(string)
		return isString && strings.HasPrefix(idStr, "_:")
	}
	_, containsValue := vMap["@value"]
	_, containsSet := vMap["@set"]
	_, containsList := vMap["@list"]
	return len(vMap) == 0 || !(containsValue || containsSet || containsList)
}

func isEmptyObject(v interface{}) bool {
	vMap, isMap := v.(map[string]interface{})
	return isMap && len(vMap) == 0
}

// DeepCompare returns true if v1 and v2 are structurally equal. When
// listOrderMatters is false, arrays compare as multisets.
func DeepCompare(v1 interface{}, v2 interface{}, listOrderMatters bool) bool {
	if v1 == nil || v2 == nil {
		return v1 == nil && v2 == nil
	}

	m1, isMap1 := v1.(map[string]interface{})
	m2, isMap2 := v2.(map[string]interface{})
	l1, isList1 := v1.([]interface{})
	l2, isList2 := v2.([]interface{})
	switch {
	case isMap1 && isMap2:
		if len(m1) != len(m2) {
			return false
		}
		for key, val1 := range m1 {
			val2, present := m2[key]
			if !present || !DeepCompare(val1, val2, listOrderMatters) {
				return false
			}
		}
		return true
	case isList1 && isList2:
		if len(l1) != len(l2) {
			return false
		}
		if listOrderMatters {
			for i := range l1 {
				if !DeepCompare(l1[i], l2[i], true) {
					return false
				}
			}
			return true
		}
		// multiset comparison; track matched members of l2 so duplicates
		// cannot be matched twice
		matched := make([]bool, len(l2))
		for _, o1 := range l1 {
			found := false
			for j, o2 := range l2 {
				if !matched[j] && DeepCompare(o1, o2, false) {
					matched[j] = true
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		if v1 == v2 {
			return true
		}
		// tolerate json.Number vs float64 representations of the same number
		return normalizeScalar(v1) == normalizeScalar(v2)
	}
}

func normalizeScalar(v interface{}) string {
	floatVal, isFloat := v.(float64)
	if !isFloat {
		if number, isNumber := v.(json.Number); isNumber {
			if f, err := number.Float64(); err == nil {
				floatVal, isFloat = f, true
			}
		}
	}
	if isFloat {
		return fmt.Sprintf("%f", floatVal)
	}
	return fmt.Sprintf("%v", v)
}

func deepContains(values []interface{}, value interface{}) bool {
	for _, item := range values {
		if DeepCompare(item, value, false) {
			return true
		}
	}
	return false
}

// CompareValues compares two JSON-LD values for equality: equal primitives,
// value objects agreeing on @value/@type/@language/@index, or objects with
// the same @id.
func CompareValues(v1 interface{}, v2 interface{}) bool {
	v1Map, isV1Map := v1.(map[string]interface{})
	v2Map, isV2Map := v2.(map[string]interface{})

	if !isV1Map && !isV2Map && v1 == v2 {
		return true
	}

	if IsValue(v1) && IsValue(v2) &&
		v1Map["@value"] == v2Map["@value"] &&
		v1Map["@type"] == v2Map["@type"] &&
		v1Map["@language"] == v2Map["@language"] &&
		v1Map["@index"] == v2Map["@index"] {
		return true
	}

	id1, v1HasID := v1Map["@id"]
	id2, v2HasID := v2Map["@id"]
	return isV1Map && isV2Map && v1HasID && v2HasID && id1 == id2
}

// HasValue determines whether value already appears under the given property
// of subject.
func HasValue(subject interface{}, property string, value interface{}) bool {
	subjMap, isMap := subject.(map[string]interface{})
	if !isMap {
		return false
	}
	val, found := subjMap[property]
	if !found {
		return false
	}
	if IsList(val) {
		val = val.(map[string]interface{})["@list"]
	}
	if valArray, isArray := val.([]interface{}); isArray {
		for _, v := range valArray {
			if CompareValues(value, v) {
				return true
			}
		}
		return false
	}
	if _, isArray := value.([]interface{}); isArray {
		return false
	}
	return CompareValues(value, val)
}

// AddValue adds a value to subject[property]. Array values are added
// element-wise. propertyIsArray forces an array shape; allowDuplicate
// permits repeated values.
func AddValue(subject interface{}, property string, value interface{}, propertyIsArray, allowDuplicate bool) {
	subjMap, isMap := subject.(map[string]interface{})
	if !isMap {
		return
	}
	propVal, propertyFound := subjMap[property]

	if valueArray, isArray := value.([]interface{}); isArray {
		if len(valueArray) == 0 && propertyIsArray && !propertyFound {
			subjMap[property] = make([]interface{}, 0)
		}
		for _, v := range valueArray {
			AddValue(subject, property, v, propertyIsArray, allowDuplicate)
		}
		return
	}

	if propertyFound {
		hasValue := !allowDuplicate && HasValue(subject, property, value)

		valArray, isArray := propVal.([]interface{})
		if !isArray && (!hasValue || propertyIsArray) {
			valArray = []interface{}{propVal}
			subjMap[property] = valArray
		}
		if !hasValue {
			subjMap[property] = append(valArray, value)
		}
		return
	}

	if propertyIsArray {
		subjMap[property] = []interface{}{value}
	} else {
		subjMap[property] = value
	}
}

// MergeValue appends value to obj[key], skipping duplicates other than list
// objects.
func MergeValue(obj map[string]interface{}, key string, value interface{}) {
	if obj == nil {
		return
	}
	values, _ := obj[key].([]interface{})
	if values == nil {
		values = make([]interface{}, 0)
	}
	if key == "@list" || IsList(value) || !deepContains(values, value) {
		values = append(values, value)
	}
	obj[key] = values
}

// CloneDocument returns a structural copy of a parsed JSON document.
func CloneDocument(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		clone := make(map[string]interface{}, len(v))
		for k, item := range v {
			clone[k] = CloneDocument(item)
		}
		return clone
	case []interface{}:
		clone := make([]interface{}, 0, len(v))
		for _, item := range v {
			clone = append(clone, CloneDocument(item))
		}
		return clone
	default:
		return value
	}
}

// GetKeys returns the keys of the given object in map order.
func GetKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	return keys
}

// GetSortedKeys returns the keys of the given object sorted lexicographically.
func GetSortedKeys(m map[string]interface{}) []string {
	keys := GetKeys(m)
	sort.Strings(keys)
	return keys
}

func inArray(v interface{}, array []interface{}) bool {
	for _, x := range array {
		if v == x {
			return true
		}
	}
	return false
}

func inStrings(v string, values []string) bool {
	for _, x := range values {
		if v == x {
			return true
		}
	}
	return false
}

// CompareShortestLeast orders strings by length, then lexicographically.
func CompareShortestLeast(a string, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// ShortestLeast sorts a string slice using CompareShortestLeast.
type ShortestLeast []string

func (s ShortestLeast) Len() int           { return len(s) }
func (s ShortestLeast) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s ShortestLeast) Less(i, j int) bool { return CompareShortestLeast(s[i], s[j]) }

// PrintDocument prints a JSON-LD document to stdout. Debugging aid.
func PrintDocument(msg string, doc interface{}) {
	b, _ := json.MarshalIndent(doc, "", "  ")
	if msg != "" {
		_, _ = os.Stdout.WriteString(msg)
		_, _ = os.Stdout.WriteString("\n")
	}
	_, _ = os.Stdout.Write(b)
	_, _ = os.Stdout.WriteString("\n")
}
