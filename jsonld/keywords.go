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

import "sort"

var keywords = map[string]bool{
	"@annotation":  true,
	"@base":        true,
	"@container":   true,
	"@context":     true,
	"@default":     true,
	"@direction":   true,
	"@embed":       true,
	"@explicit":    true,
	"@first":       true,
	"@graph":       true,
	"@id":          true,
	"@import":      true,
	"@included":    true,
	"@index":       true,
	"@json":        true,
	"@language":    true,
	"@list":        true,
	"@nest":        true,
	"@none":        true,
	"@omitDefault": true,
	"@prefix":      true,
	"@preserve":    true,
	"@propagate":   true,
	"@protected":   true,
	"@requireAll":  true,
	"@reverse":     true,
	"@set":         true,
	"@type":        true,
	"@value":       true,
	"@version":     true,
	"@vocab":       true,
}

// IsKeyword returns whether the given value is a JSON-LD keyword.
func IsKeyword(key interface{}) bool {
	keyStr, isString := key.(string)
	return isString && keywords[keyStr]
}

// keywordRank fixes the relative order of keyword keys in processed and
// emitted objects. Keys absent from this table sort lexicographically after
// the ranked ones.
var keywordRank = map[string]int{
	"@base":      0,
	"@id":        1,
	"@value":     2,
	"@type":      3,
	"@language":  4,
	"@vocab":     5,
	"@container": 6,
	"@graph":     7,
	"@list":      8,
	"@set":       9,
	"@index":     10,
}

// OrderedKeys returns the keys of m in processing order: ranked keywords
// first, then all remaining keys lexicographically. Used wherever the
// algorithms demand deterministic iteration.
func OrderedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iRanked := keywordRank[keys[i]]
		rj, jRanked := keywordRank[keys[j]]
		if iRanked && jRanked {
			return ri < rj
		}
		if iRanked != jRanked {
			return iRanked
		}
		return keys[i] < keys[j]
	})
	return keys
}
