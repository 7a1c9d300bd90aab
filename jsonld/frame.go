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

import "strings"

type embedMode int

const (
	embedOnce embedMode = 1 + iota
	embedAlways
	embedNever
	embedLink
)

// embedEntry remembers where a node was embedded so a later match can evict
// it.
type embedEntry struct {
	parent   interface{}
	property string
}

// framingState carries the flags and embed bookkeeping of one framing run.
type framingState struct {
	embed        embedMode
	explicit     bool
	requireAll   bool
	omitDefault  bool
	uniqueEmbeds map[string]*embedEntry
	subjectStack []string
}

func newFramingState(opts *Options) (*framingState, error) {
	state := &framingState{
		embed:        embedOnce,
		uniqueEmbeds: make(map[string]*embedEntry),
		subjectStack: make([]string, 0),
	}
	if opts != nil {
		mode, err := parseEmbedMode(opts.Embed)
		if err != nil {
			return nil, err
		}
		state.embed = mode
		state.explicit = opts.Explicit
		state.requireAll = opts.RequireAll
		state.omitDefault = opts.OmitDefault
	}
	return state, nil
}

func parseEmbedMode(value string) (embedMode, error) {
	switch value {
	case "", EmbedOnce, EmbedLast:
		return embedOnce, nil
	case EmbedAlways:
		return embedAlways, nil
	case EmbedNever:
		return embedNever, nil
	case EmbedLink:
		return embedLink, nil
	default:
		return embedOnce, NewError(InvalidEmbedValue, value)
	}
}

// Frame frames the expanded input using the expanded frame, returning the
// framed output before compaction.
func (e *Engine) Frame(input interface{}, frame []interface{}, opts *Options) ([]interface{}, error) {
	namer := NewBlankNodeNamer("_:b")

	state, err := newFramingState(opts)
	if err != nil {
		return nil, err
	}

	nodes := map[string]interface{}{
		"@default": make(map[string]interface{}),
	}
	if err := e.GenerateNodeMap(input, nodes, "@default", namer); err != nil {
		return nil, err
	}
	nodeMap := nodes["@default"].(map[string]interface{})

	// an array frame contributes its first element
	var frameMap map[string]interface{}
	if len(frame) > 0 {
		var isMap bool
		if frameMap, isMap = frame[0].(map[string]interface{}); !isMap {
			return nil, NewError(InvalidFrame, "frame must be an object")
		}
	} else {
		frameMap = make(map[string]interface{})
	}

	framed, err := e.frameSubjects(state, nodeMap, nodeMap, frameMap, make([]interface{}, 0), "")
	if err != nil {
		return nil, err
	}
	return framed.([]interface{}), nil
}

func createsCircularReference(id string, state *framingState) bool {
	for _, i := range state.subjectStack {
		if i == id {
			return true
		}
	}
	return false
}

// frameSubjects frames the nodes in nodes that match frame, adding output to
// parent under property.
func (e *Engine) frameSubjects(state *framingState, nodes map[string]interface{},
	nodeMap map[string]interface{}, frame map[string]interface{}, parent interface{},
	property string) (interface{}, error) {

	// flags in the frame override the framing state
	embed, err := getFrameEmbed(frame, state.embed)
	if err != nil {
		return nil, err
	}
	explicitOn := GetFrameFlag(frame, "@explicit", state.explicit)
	requireAll := GetFrameFlag(frame, "@requireAll", state.requireAll)
	flags := map[string]interface{}{
		"@explicit": explicitOn,
		"@embed":    embed,
	}

	matches, err := FilterNodes(nodes, frame, requireAll)
	if err != nil {
		return nil, err
	}

	for _, id := range GetSortedKeys(matches) {
		output := map[string]interface{}{"@id": id}

		// @link emits a reference to an existing embed instead of re-framing
		if embed == embedLink {
			if _, containsID := state.uniqueEmbeds[id]; containsID {
				parent = addFrameOutput(parent, property, output)
				continue
			}
		}

		// each top-level match gets its own embed scope
		if property == "" {
			state.uniqueEmbeds = make(map[string]*embedEntry)
		}

		// @never applies to embedded nodes; top-level matches are always framed
		if (embed == embedNever && property != "") || createsCircularReference(id, state) {
			parent = addFrameOutput(parent, property, output)
			continue
		}

		if embed == embedOnce {
			if _, containsID := state.uniqueEmbeds[id]; containsID {
				// a previous embed wins; emit a reference only
				parent = addFrameOutput(parent, property, output)
				continue
			}
			state.uniqueEmbeds[id] = &embedEntry{parent: parent, property: property}
		} else if embed == embedAlways {
			if _, containsID := state.uniqueEmbeds[id]; containsID {
				removeEmbed(state, id)
			}
			state.uniqueEmbeds[id] = &embedEntry{parent: parent, property: property}
		}

		state.subjectStack = append(state.subjectStack, id)

		element := matches[id].(map[string]interface{})
		for _, prop := range OrderedKeys(element) {
			if IsKeyword(prop) {
				output[prop] = CloneDocument(element[prop])
				continue
			}

			framePropVal, containsProp := frame[prop]
			if explicitOn && !containsProp {
				continue
			}

			for _, item := range element[prop].([]interface{}) {
				itemMap, isMap := item.(map[string]interface{})
				listValue, hasList := itemMap["@list"]
				switch {
				case isMap && hasList:
					list := map[string]interface{}{"@list": make([]interface{}, 0)}
					addFrameOutput(output, prop, list)

					for _, listItem := range listValue.([]interface{}) {
						if IsNodeReference(listItem) {
							itemID := listItem.(map[string]interface{})["@id"].(string)
							tmp := map[string]interface{}{itemID: nodeMap[itemID]}
							subframe := flags
							if containsProp {
								if sf, isSubframe := framePropVal.([]interface{}); isSubframe && len(sf) > 0 {
									subframe, _ = sf[0].(map[string]interface{})
								}
							}
							if _, err := e.frameSubjects(state, tmp, nodeMap, subframe, list, "@list"); err != nil {
								return nil, err
							}
						} else {
							addFrameOutput(list, "@list", CloneDocument(listItem))
						}
					}
				case IsNodeReference(item):
					itemID := itemMap["@id"].(string)
					tmp := map[string]interface{}{itemID: nodeMap[itemID]}
					subframe := flags
					if containsProp {
						if sf, isSubframe := framePropVal.([]interface{}); isSubframe && len(sf) > 0 {
							subframe, _ = sf[0].(map[string]interface{})
						}
					}
					if _, err := e.frameSubjects(state, tmp, nodeMap, subframe, output, prop); err != nil {
						return nil, err
					}
				default:
					addFrameOutput(output, prop, CloneDocument(item))
				}
			}
		}

		// frame properties missing from the subject produce defaults
		for _, prop := range OrderedKeys(frame) {
			if IsKeyword(prop) {
				continue
			}
			pf, _ := frame[prop].([]interface{})
			var propertyFrame map[string]interface{}
			if len(pf) > 0 {
				propertyFrame, _ = pf[0].(map[string]interface{})
			}
			if propertyFrame == nil {
				propertyFrame = make(map[string]interface{})
			}

			omitDefaultOn := GetFrameFlag(propertyFrame, "@omitDefault", state.omitDefault)
			if _, hasProp := output[prop]; omitDefaultOn || hasProp {
				continue
			}
			var def interface{} = "@null"
			if defaultVal, hasDefault := propertyFrame["@default"]; hasDefault {
				def = CloneDocument(defaultVal)
			}
			if _, isList := def.([]interface{}); !isList {
				def = []interface{}{def}
			}
			output[prop] = []interface{}{
				map[string]interface{}{"@preserve": def},
			}
		}

		parent = addFrameOutput(parent, property, output)

		state.subjectStack = state.subjectStack[:len(state.subjectStack)-1]
	}

	return parent, nil
}

func getFrameValue(frame map[string]interface{}, name string) interface{} {
	value := frame[name]
	switch v := value.(type) {
	case []interface{}:
		if len(v) > 0 {
			value = v[0]
		}
	case map[string]interface{}:
		if inner, containsValue := v["@value"]; containsValue {
			value = inner
		}
	}
	return value
}

// GetFrameFlag reads a boolean framing flag from a frame, falling back to
// the given default.
func GetFrameFlag(frame map[string]interface{}, name string, theDefault bool) bool {
	value := frame[name]
	switch v := value.(type) {
	case []interface{}:
		if len(v) > 0 {
			value = v[0]
		}
	case map[string]interface{}:
		if inner, present := v["@value"]; present {
			value = inner
		}
	case bool:
		return v
	}
	if valueBool, isBool := value.(bool); isBool {
		return valueBool
	}
	if valueStr, isString := value.(string); isString {
		if valueStr == "true" {
			return true
		}
		if valueStr == "false" {
			return false
		}
	}
	return theDefault
}

func getFrameEmbed(frame map[string]interface{}, theDefault embedMode) (embedMode, error) {
	value := getFrameValue(frame, "@embed")
	if value == nil {
		return theDefault, nil
	}
	if boolVal, isBool := value.(bool); isBool {
		if boolVal {
			return embedOnce, nil
		}
		return embedNever, nil
	}
	if modeVal, isMode := value.(embedMode); isMode {
		return modeVal, nil
	}
	if stringVal, isString := value.(string); isString {
		return parseEmbedMode(stringVal)
	}
	return theDefault, NewError(InvalidEmbedValue, value)
}

// removeEmbed replaces an existing embed of id with a node reference and
// drops any embeds that dangled off it.
func removeEmbed(state *framingState, id string) {
	links := state.uniqueEmbeds
	embed := links[id]
	parent := embed.parent
	property := embed.property

	ref := map[string]interface{}{"@id": id}

	if parentMap, isMap := parent.(map[string]interface{}); isMap {
		newVals := make([]interface{}, 0)
		for _, v := range parentMap[property].([]interface{}) {
			if vMap, isMap := v.(map[string]interface{}); isMap && vMap["@id"] == id {
				newVals = append(newVals, ref)
			} else {
				newVals = append(newVals, v)
			}
		}
		parentMap[property] = newVals
	}
	removeDependents(links, id)
}

func removeDependents(embeds map[string]*embedEntry, id string) {
	for depID, entry := range embeds {
		parentMap, isMap := entry.parent.(map[string]interface{})
		if !isMap {
			continue
		}
		parentID, isString := parentMap["@id"].(string)
		if isString && parentID == id {
			delete(embeds, depID)
			removeDependents(embeds, depID)
		}
	}
}

// FilterNodes returns the nodes that match the given frame.
func FilterNodes(nodes map[string]interface{}, frame map[string]interface{},
	requireAll bool) (map[string]interface{}, error) {

	rval := make(map[string]interface{})
	for id, elementVal := range nodes {
		element, isMap := elementVal.(map[string]interface{})
		if !isMap {
			continue
		}
		matched, err := FilterNode(element, frame, requireAll)
		if err != nil {
			return nil, err
		}
		if matched {
			rval[id] = element
		}
	}
	return rval, nil
}

// FilterNode returns true if the node matches the frame: by @id, by @type
// intersection, or by duck typing on the frame's non-keyword properties
// (all of them when requireAll is set, any otherwise).
func FilterNode(node map[string]interface{}, frame map[string]interface{}, requireAll bool) (bool, error) {
	frameIDs := frame["@id"]
	types := frame["@type"]

	if frameIDs != nil {
		nodeID := node["@id"]
		if nodeID == nil {
			return false, nil
		}
		switch ids := frameIDs.(type) {
		case string:
			return DeepCompare(nodeID, ids, false), nil
		case []interface{}:
			for _, j := range ids {
				if isEmptyObject(j) {
					// a wildcard @id matches any identified node
					return true, nil
				}
				if DeepCompare(nodeID, j, false) {
					return true, nil
				}
			}
			return false, nil
		default:
			return false, NewError(InvalidFrame, "frame @id must be a string or array")
		}
	}

	if types != nil {
		typesList, isList := types.([]interface{})
		if !isList {
			return false, NewError(InvalidFrame, "frame @type must be an array")
		}
		nodeTypesVal, nodeHasType := node["@type"]
		var nodeTypes []interface{}
		if nodeHasType {
			if nodeTypes, isList = nodeTypesVal.([]interface{}); !isList {
				return false, NewError(InvalidFrame, "node @type must be an array")
			}
		}
		for _, i := range nodeTypes {
			for _, j := range typesList {
				if DeepCompare(i, j, false) {
					return true, nil
				}
			}
		}
		// a single empty object is the match-any-type wildcard
		if len(typesList) == 1 && isEmptyObject(typesList[0]) {
			return len(nodeTypes) > 0, nil
		}
		return false, nil
	}

	// duck typing on non-keyword frame properties
	total := 0
	matched := 0
	for _, key := range GetKeys(frame) {
		if IsKeyword(key) {
			continue
		}
		total++

		if _, nodeContainsKey := node[key]; nodeContainsKey {
			matched++
			continue
		}

		// a property frame with @default matches a missing property
		hasDefault := false
		if oList, isList := frame[key].([]interface{}); isList {
			for _, obj := range oList {
				if oMap, isMap := obj.(map[string]interface{}); isMap {
					if _, containsKey := oMap["@default"]; containsKey {
						hasDefault = true
					}
				}
			}
		}
		if hasDefault {
			matched++
			continue
		}

		if requireAll {
			return false, nil
		}
	}

	if total == 0 {
		// wildcard frame
		return true, nil
	}
	if requireAll {
		return matched == total, nil
	}
	return matched > 0, nil
}

// addFrameOutput adds framing output to parent under property.
func addFrameOutput(parent interface{}, property string, output interface{}) interface{} {
	if parentMap, isMap := parent.(map[string]interface{}); isMap {
		propVal, hasProperty := parentMap[property]
		if hasProperty {
			parentMap[property] = append(propVal.([]interface{}), output)
		} else {
			parentMap[property] = []interface{}{output}
		}
		return parentMap
	}
	return append(parent.([]interface{}), output)
}

// pruneBlankNodeIDs finds blank node identifiers referenced exactly once in
// the framed output; those labels carry no information and are dropped by
// RemovePreserve.
func pruneBlankNodeIDs(input interface{}) []string {
	counts := make(map[string]int)
	countBlankNodeIDs(input, counts)
	toClear := make([]string, 0)
	for id, count := range counts {
		if count == 1 {
			toClear = append(toClear, id)
		}
	}
	return toClear
}

func countBlankNodeIDs(input interface{}, counts map[string]int) {
	switch v := input.(type) {
	case []interface{}:
		for _, item := range v {
			countBlankNodeIDs(item, counts)
		}
	case map[string]interface{}:
		for key, value := range v {
			if key == "@id" {
				if id, isString := value.(string); isString && strings.HasPrefix(id, "_:") {
					counts[id]++
				}
				continue
			}
			countBlankNodeIDs(value, counts)
		}
	}
}

// RemovePreserve replaces @preserve wrappers with their contents as the
// final step of framing, replacing @null markers with JSON null and
// collapsing single-element arrays where the context permits.
func RemovePreserve(ctx *ActiveContext, input interface{}, bnodesToClear []string,
	compactArrays bool) (interface{}, error) {

	switch v := input.(type) {
	case []interface{}:
		output := make([]interface{}, 0)
		for _, i := range v {
			result, err := RemovePreserve(ctx, i, bnodesToClear, compactArrays)
			if err != nil {
				return nil, err
			}
			if result != nil {
				output = append(output, result)
			}
		}
		return output, nil

	case map[string]interface{}:
		if preserveVal, present := v["@preserve"]; present {
			if preserveVal == "@null" {
				return nil, nil
			}
			return preserveVal, nil
		}

		if _, hasValue := v["@value"]; hasValue {
			return input, nil
		}

		if listVal, hasList := v["@list"]; hasList {
			var err error
			if v["@list"], err = RemovePreserve(ctx, listVal, bnodesToClear, compactArrays); err != nil {
				return nil, err
			}
			return input, nil
		}

		idAlias, err := ctx.CompactIRI("@id", nil, true, false)
		if err != nil {
			return nil, err
		}
		if id, hasID := v[idAlias]; hasID {
			for _, bnode := range bnodesToClear {
				if id == bnode {
					delete(v, idAlias)
				}
			}
		}

		graphAlias, err := ctx.CompactIRI("@graph", nil, true, false)
		if err != nil {
			return nil, err
		}
		for prop, propVal := range v {
			result, err := RemovePreserve(ctx, propVal, bnodesToClear, compactArrays)
			if err != nil {
				return nil, err
			}
			resultList, isList := result.([]interface{})
			if compactArrays && isList && len(resultList) == 1 && prop != graphAlias &&
				!ctx.HasContainer(prop, "@list") && !ctx.HasContainer(prop, "@set") {
				result = resultList[0]
			}
			v[prop] = result
		}
		return input, nil
	}

	return input, nil
}
