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

// Compact compacts the given expanded element using the active context,
// according to the Compaction algorithm.
func (e *Engine) Compact(activeCtx *ActiveContext, activeProperty string, element interface{},
	compactArrays bool) (interface{}, error) {

	if elementList, isList := element.([]interface{}); isList {
		result := make([]interface{}, 0)
		for _, item := range elementList {
			compactedItem, err := e.Compact(activeCtx, activeProperty, item, compactArrays)
			if err != nil {
				return nil, err
			}
			if compactedItem != nil {
				result = append(result, compactedItem)
			}
		}
		if compactArrays && len(result) == 1 && len(activeCtx.Container(activeProperty)) == 0 {
			return result[0], nil
		}
		return result, nil
	}

	elem, isMap := element.(map[string]interface{})
	if !isMap {
		// scalars pass through
		return element, nil
	}

	// value compaction applies to value objects and node references only
	valueCompactable := IsValue(elem)
	if !valueCompactable {
		if _, containsID := elem["@id"]; containsID {
			valueCompactable = true
			for k := range elem {
				if k != "@id" && k != "@index" {
					valueCompactable = false
					break
				}
			}
		}
	}
	if valueCompactable {
		compactedValue, err := activeCtx.CompactValue(activeProperty, elem)
		if err != nil {
			return nil, err
		}
		_, isResultMap := compactedValue.(map[string]interface{})
		_, isResultList := compactedValue.([]interface{})
		if !isResultMap && !isResultList {
			return compactedValue, nil
		}
	}

	insideReverse := activeProperty == "@reverse"
	result := make(map[string]interface{})

	for _, expandedProperty := range OrderedKeys(elem) {
		expandedValue := elem[expandedProperty]

		if expandedProperty == "@id" || expandedProperty == "@type" {
			var compactedValue interface{}
			if expandedValueStr, isString := expandedValue.(string); isString {
				var err error
				compactedValue, err = activeCtx.CompactIRI(expandedValueStr, nil, expandedProperty == "@type", false)
				if err != nil {
					return nil, err
				}
			} else {
				types := make([]interface{}, 0)
				for _, expandedType := range expandedValue.([]interface{}) {
					compactedType, err := activeCtx.CompactIRI(expandedType.(string), nil, true, false)
					if err != nil {
						return nil, err
					}
					types = append(types, compactedType)
				}
				if len(types) == 1 {
					compactedValue = types[0]
				} else {
					compactedValue = types
				}
			}

			alias, err := activeCtx.CompactIRI(expandedProperty, nil, true, false)
			if err != nil {
				return nil, err
			}
			result[alias] = compactedValue
			continue
		}

		if expandedProperty == "@reverse" {
			compactedObject, err := e.Compact(activeCtx, "@reverse", expandedValue, compactArrays)
			if err != nil {
				return nil, err
			}
			compactedValue := compactedObject.(map[string]interface{})

			// hoist properties that compacted to reverse terms
			for _, property := range GetKeys(compactedValue) {
				if !activeCtx.IsReverseProperty(property) {
					continue
				}
				value := compactedValue[property]
				valueList, isList := value.([]interface{})
				if (activeCtx.HasContainer(property, "@set") || !compactArrays) && !isList {
					result[property] = []interface{}{value}
				}
				if _, present := result[property]; !present {
					result[property] = value
				} else {
					propertyList, isPropertyList := result[property].([]interface{})
					if !isPropertyList {
						propertyList = []interface{}{result[property]}
					}
					if isList {
						propertyList = append(propertyList, valueList...)
					} else {
						propertyList = append(propertyList, value)
					}
					result[property] = propertyList
				}
				delete(compactedValue, property)
			}

			if len(compactedValue) > 0 {
				alias, err := activeCtx.CompactIRI("@reverse", nil, true, false)
				if err != nil {
					return nil, err
				}
				result[alias] = compactedValue
			}
			continue
		}

		if expandedProperty == "@included" {
			compactedValue, err := e.Compact(activeCtx, "", expandedValue, compactArrays)
			if err != nil {
				return nil, err
			}
			alias, err := activeCtx.CompactIRI("@included", nil, true, false)
			if err != nil {
				return nil, err
			}
			result[alias] = compactedValue
			continue
		}

		if expandedProperty == "@index" && activeCtx.HasContainer(activeProperty, "@index") {
			continue
		}
		if expandedProperty == "@index" || expandedProperty == "@value" ||
			expandedProperty == "@language" || expandedProperty == "@direction" {
			alias, err := activeCtx.CompactIRI(expandedProperty, nil, true, false)
			if err != nil {
				return nil, err
			}
			result[alias] = expandedValue
			continue
		}

		// expanded values are always arrays by this point
		expandedValueList, _ := expandedValue.([]interface{})

		if len(expandedValueList) == 0 {
			itemActiveProperty, err := activeCtx.CompactIRI(expandedProperty, expandedValue, true, insideReverse)
			if err != nil {
				return nil, err
			}
			if existing, present := result[itemActiveProperty]; !present {
				result[itemActiveProperty] = make([]interface{}, 0)
			} else if _, isList := existing.([]interface{}); !isList {
				result[itemActiveProperty] = []interface{}{existing}
			}
		}

		for _, expandedItem := range expandedValueList {
			itemActiveProperty, err := activeCtx.CompactIRI(expandedProperty, expandedItem, true, insideReverse)
			if err != nil {
				return nil, err
			}
			container := activeCtx.Container(itemActiveProperty)
			asArray := !compactArrays || inStrings("@set", container)

			expandedItemMap, itemIsMap := expandedItem.(map[string]interface{})
			listVal, containsList := expandedItemMap["@list"]
			isListObject := itemIsMap && containsList

			if inStrings("@graph", container) && IsGraphObject(expandedItem) {
				if err := e.compactGraphItem(activeCtx, result, itemActiveProperty, container,
					expandedItemMap, compactArrays, asArray); err != nil {
					return nil, err
				}
				continue
			}

			elementToCompact := expandedItem
			if isListObject {
				elementToCompact = listVal
			}
			compactedItem, err := e.Compact(activeCtx, itemActiveProperty, elementToCompact, compactArrays)
			if err != nil {
				return nil, err
			}

			if isListObject {
				if _, isCompactedList := compactedItem.([]interface{}); !isCompactedList {
					compactedItem = []interface{}{compactedItem}
				}
				if !inStrings("@list", container) {
					listAlias, err := activeCtx.CompactIRI("@list", nil, true, false)
					if err != nil {
						return nil, err
					}
					wrapper := map[string]interface{}{listAlias: compactedItem}
					if indexVal, containsIndex := expandedItemMap["@index"]; containsIndex {
						indexAlias, err := activeCtx.CompactIRI("@index", nil, true, false)
						if err != nil {
							return nil, err
						}
						wrapper[indexAlias] = indexVal
					}
					compactedItem = wrapper
				} else if _, present := result[itemActiveProperty]; present {
					return nil, NewError(CompactionToListOfLists,
						"there cannot be two list objects associated with an active property that has a @list container")
				}
			}

			switch {
			case inStrings("@language", container) || inStrings("@index", container) ||
				inStrings("@id", container) || inStrings("@type", container):
				mapObject := ensureMapEntry(result, itemActiveProperty)

				var mapKey string
				switch {
				case inStrings("@language", container):
					if compactedItemMap, isMap := compactedItem.(map[string]interface{}); isMap {
						if itemValue, hasItemValue := compactedItemMap["@value"]; hasItemValue {
							compactedItem = itemValue
						}
					}
					if langVal, hasLang := expandedItemMap["@language"]; hasLang {
						mapKey = langVal.(string)
					}
				case inStrings("@index", container):
					if indexVal, hasIndex := expandedItemMap["@index"]; hasIndex {
						mapKey = indexVal.(string)
					}
				case inStrings("@id", container):
					if idVal, hasID := expandedItemMap["@id"]; hasID {
						if mapKey, err = activeCtx.CompactIRI(idVal.(string), nil, false, false); err != nil {
							return nil, err
						}
						// the identifier lives in the map key now
						idAlias, err := activeCtx.CompactIRI("@id", nil, true, false)
						if err != nil {
							return nil, err
						}
						if compactedItemMap, isMap := compactedItem.(map[string]interface{}); isMap {
							delete(compactedItemMap, idAlias)
						}
					}
				case inStrings("@type", container):
					typeAlias, err := activeCtx.CompactIRI("@type", nil, true, false)
					if err != nil {
						return nil, err
					}
					if types, hasType := expandedItemMap["@type"].([]interface{}); hasType && len(types) > 0 {
						if mapKey, err = activeCtx.CompactIRI(types[0].(string), nil, true, false); err != nil {
							return nil, err
						}
						// the first type lives in the map key now
						if compactedItemMap, isMap := compactedItem.(map[string]interface{}); isMap {
							switch typeEntry := compactedItemMap[typeAlias].(type) {
							case string:
								delete(compactedItemMap, typeAlias)
							case []interface{}:
								remaining := typeEntry[1:]
								if len(remaining) == 1 && compactArrays {
									compactedItemMap[typeAlias] = remaining[0]
								} else {
									compactedItemMap[typeAlias] = remaining
								}
							}
						}
					}
				}
				if mapKey == "" {
					if mapKey, err = activeCtx.CompactIRI("@none", nil, true, false); err != nil {
						return nil, err
					}
				}
				AddValue(mapObject, mapKey, compactedItem, asArray, true)

			default:
				_, isCompactedList := compactedItem.([]interface{})
				check := (!compactArrays || inStrings("@set", container) || inStrings("@list", container) ||
					expandedProperty == "@list" || expandedProperty == "@graph") && !isCompactedList
				if check {
					compactedItem = []interface{}{compactedItem}
				}
				if existing, present := result[itemActiveProperty]; !present {
					result[itemActiveProperty] = compactedItem
				} else {
					existingList, isList := existing.([]interface{})
					if !isList {
						existingList = []interface{}{existing}
					}
					if compactedList, isList := compactedItem.([]interface{}); isList {
						existingList = append(existingList, compactedList...)
					} else {
						existingList = append(existingList, compactedItem)
					}
					result[itemActiveProperty] = existingList
				}
			}
		}
	}

	return result, nil
}

// compactGraphItem compacts one graph object appearing under a term with a
// @graph container mapping.
func (e *Engine) compactGraphItem(activeCtx *ActiveContext, result map[string]interface{},
	itemActiveProperty string, container []string, expandedItemMap map[string]interface{},
	compactArrays, asArray bool) error {

	compactedItem, err := e.Compact(activeCtx, itemActiveProperty, expandedItemMap["@graph"], compactArrays)
	if err != nil {
		return err
	}

	switch {
	case inStrings("@id", container):
		mapObject := ensureMapEntry(result, itemActiveProperty)
		var mapKey string
		if idVal, hasID := expandedItemMap["@id"]; hasID {
			if mapKey, err = activeCtx.CompactIRI(idVal.(string), nil, false, false); err != nil {
				return err
			}
		} else if mapKey, err = activeCtx.CompactIRI("@none", nil, true, false); err != nil {
			return err
		}
		AddValue(mapObject, mapKey, compactedItem, asArray, true)

	case inStrings("@index", container) && IsSimpleGraphObject(expandedItemMap):
		mapObject := ensureMapEntry(result, itemActiveProperty)
		var mapKey string
		if indexVal, hasIndex := expandedItemMap["@index"]; hasIndex {
			mapKey = indexVal.(string)
		} else if mapKey, err = activeCtx.CompactIRI("@none", nil, true, false); err != nil {
			return err
		}
		AddValue(mapObject, mapKey, compactedItem, asArray, true)

	default:
		graphAlias, err := activeCtx.CompactIRI("@graph", nil, true, false)
		if err != nil {
			return err
		}
		_, hasID := expandedItemMap["@id"]
		_, hasIndex := expandedItemMap["@index"]
		needsWrap := hasID || hasIndex
		if compactedList, isList := compactedItem.([]interface{}); isList && len(compactedList) > 1 {
			needsWrap = true
		}
		if needsWrap {
			wrapper := map[string]interface{}{graphAlias: compactedItem}
			if idVal, ok := expandedItemMap["@id"]; ok {
				idAlias, err := activeCtx.CompactIRI("@id", nil, true, false)
				if err != nil {
					return err
				}
				cid, err := activeCtx.CompactIRI(idVal.(string), nil, false, false)
				if err != nil {
					return err
				}
				wrapper[idAlias] = cid
			}
			if indexVal, ok := expandedItemMap["@index"]; ok {
				indexAlias, err := activeCtx.CompactIRI("@index", nil, true, false)
				if err != nil {
					return err
				}
				wrapper[indexAlias] = indexVal
			}
			compactedItem = wrapper
		}
		AddValue(result, itemActiveProperty, compactedItem, asArray, true)
	}
	return nil
}

func ensureMapEntry(result map[string]interface{}, key string) map[string]interface{} {
	if existing, present := result[key]; present {
		if m, isMap := existing.(map[string]interface{}); isMap {
			return m
		}
	}
	m := make(map[string]interface{})
	result[key] = m
	return m
}
