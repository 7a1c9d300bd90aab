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
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// wellFormedLanguagePattern approximates BCP 47 well-formedness; failures
// are reported as warnings, not errors.
var wellFormedLanguagePattern = regexp.MustCompile(`^[a-zA-Z]{1,8}(-[a-zA-Z0-9]{1,8})*$`)

// Expand expands element according to the Expansion algorithm, returning an
// array of expanded objects, a single expanded object, or nil.
func (e *Engine) Expand(activeCtx *ActiveContext, activeProperty string, element interface{},
	opts *Options) (interface{}, error) {

	frameExpansion := opts.ProcessingMode == JsonLd_1_1_Frame
	if element == nil {
		return nil, nil
	}

	// framing is disabled inside @default values
	if activeProperty == "@default" {
		frameExpansion = false
	}

	switch elem := element.(type) {
	case []interface{}:
		resultList := make([]interface{}, 0)
		for _, item := range elem {
			v, err := e.Expand(activeCtx, activeProperty, item, opts)
			if err != nil {
				return nil, err
			}
			if activeProperty == "@list" || activeCtx.HasContainer(activeProperty, "@list") {
				_, isList := v.([]interface{})
				if isList || IsList(v) {
					return nil, NewError(ListOfLists, "lists of lists are not permitted")
				}
			}
			if v != nil {
				if vList, isList := v.([]interface{}); isList {
					resultList = append(resultList, vList...)
				} else {
					resultList = append(resultList, v)
				}
			}
		}
		return resultList, nil

	case map[string]interface{}:
		if ctx, hasContext := elem["@context"]; hasContext {
			newCtx, err := activeCtx.Parse(ctx)
			if err != nil {
				return nil, err
			}
			activeCtx = newCtx
		}

		// apply any type-scoped contexts, in lexicographical type order
		for _, key := range OrderedKeys(elem) {
			expandedProperty, err := activeCtx.ExpandIRI(key, false, true, nil, nil)
			if err != nil {
				return nil, err
			}
			if expandedProperty != "@type" {
				continue
			}
			types := make([]string, 0)
			for _, t := range Arrayify(elem[key]) {
				if typeStr, isString := t.(string); isString {
					types = append(types, typeStr)
				}
			}
			sort.Strings(types)
			for _, tt := range types {
				if td := activeCtx.Term(tt); td != nil && td.HasContext {
					newCtx, err := activeCtx.ParseScoped(td.Context)
					if err != nil {
						return nil, err
					}
					activeCtx = newCtx
				}
			}
		}

		expandedActiveProperty, err := activeCtx.ExpandIRI(activeProperty, false, true, nil, nil)
		if err != nil {
			return nil, err
		}

		resultMap := make(map[string]interface{})
		if err := e.expandObject(activeCtx, activeProperty, expandedActiveProperty, elem,
			resultMap, opts, frameExpansion); err != nil {
			return nil, err
		}

		if rval, hasValue := resultMap["@value"]; hasValue {
			if err := validateValueObject(resultMap, frameExpansion); err != nil {
				return nil, err
			}
			if rval == nil {
				// a null @value nullifies the whole object
				return nil, nil
			}
		} else if rtype, hasType := resultMap["@type"]; hasType {
			if _, isList := rtype.([]interface{}); !isList {
				resultMap["@type"] = []interface{}{rtype}
			}
		} else {
			rset, hasSet := resultMap["@set"]
			_, hasList := resultMap["@list"]
			if hasSet || hasList {
				maxSize := 1
				if _, hasIndex := resultMap["@index"]; hasIndex {
					maxSize = 2
				}
				if len(resultMap) > maxSize {
					return nil, NewError(InvalidSetOrListObject, "@set or @list may only contain @index")
				}
				if hasSet {
					return rset, nil
				}
			}
		}

		var result interface{} = resultMap
		if _, hasLanguage := resultMap["@language"]; hasLanguage && len(resultMap) == 1 {
			resultMap = nil
			result = nil
		}
		if activeProperty == "" || activeProperty == "@graph" {
			// drop free-floating values, empty objects and lone node references
			_, hasValue := resultMap["@value"]
			_, hasList := resultMap["@list"]
			_, hasID := resultMap["@id"]
			if resultMap != nil && (len(resultMap) == 0 || hasValue || hasList) {
				result = nil
			} else if resultMap != nil && !frameExpansion && hasID && len(resultMap) == 1 {
				result = nil
			}
		}
		return result, nil

	default:
		// scalars expand only in the scope of a property
		if activeProperty == "" || activeProperty == "@graph" {
			return nil, nil
		}
		return activeCtx.ExpandValue(activeProperty, element)
	}
}

// validateValueObject enforces the value-object invariants after all keys of
// an object have been expanded.
func validateValueObject(resultMap map[string]interface{}, frameExpansion bool) error {
	for key := range resultMap {
		switch key {
		case "@value", "@index", "@language", "@type", "@direction":
		default:
			return NewError(InvalidValueObject, "value object has unknown keys")
		}
	}
	_, hasLanguage := resultMap["@language"]
	_, hasDirection := resultMap["@direction"]
	typeValue, hasType := resultMap["@type"]
	if hasType && (hasLanguage || hasDirection) {
		return NewError(InvalidValueObject,
			"an element containing @value may not contain both @type and @language or @direction")
	}

	rval := resultMap["@value"]
	if hasLanguage {
		for _, v := range Arrayify(rval) {
			if _, isString := v.(string); !(isString || isEmptyObject(v)) {
				return NewError(InvalidLanguageTaggedValue, "only strings may be language-tagged")
			}
		}
	} else if hasType && typeValue != "@json" {
		for _, v := range Arrayify(typeValue) {
			vStr, isString := v.(string)
			wellFormed := isString && IsAbsoluteIRI(vStr) && !strings.HasPrefix(vStr, "_:")
			if !(isEmptyObject(v) && frameExpansion) && !wellFormed {
				return NewError(InvalidTypedValue,
					"an element containing @value and @type must have an absolute IRI for the value of @type")
			}
		}
	}
	return nil
}

func (e *Engine) expandObject(activeCtx *ActiveContext, activeProperty string, expandedActiveProperty string,
	elem map[string]interface{}, resultMap map[string]interface{}, opts *Options, frameExpansion bool) error {

	nests := make([]string, 0)

	for _, key := range OrderedKeys(elem) {
		value := elem[key]
		if key == "@context" {
			continue
		}

		expandedProperty, err := activeCtx.ExpandIRI(key, false, true, nil, nil)
		if err != nil {
			return err
		}
		var expandedValue interface{}

		// drop keys that expand neither to a keyword nor to an IRI
		if expandedProperty == "" || (!strings.Contains(expandedProperty, ":") && !IsKeyword(expandedProperty)) {
			continue
		}

		if IsKeyword(expandedProperty) {
			if expandedActiveProperty == "@reverse" {
				return NewError(InvalidReversePropertyMap, "a keyword cannot be used as a @reverse property")
			}
			if _, containsKey := resultMap[expandedProperty]; containsKey {
				return NewError(CollidingKeywords, expandedProperty+" already exists in result")
			}

			switch expandedProperty {
			case "@id":
				if valueStr, isString := value.(string); isString {
					if expandedValue, err = activeCtx.ExpandIRI(valueStr, true, false, nil, nil); err != nil {
						return err
					}
				} else if frameExpansion {
					switch v := value.(type) {
					case map[string]interface{}:
						if len(v) != 0 {
							return NewError(InvalidIDValue, "@id value must be an empty object for framing")
						}
						expandedValue = Arrayify(value)
					case []interface{}:
						expandedList := make([]interface{}, 0, len(v))
						for _, entry := range v {
							entryStr, isString := entry.(string)
							if !isString {
								return NewError(InvalidIDValue,
									"@id value must be a string, an array of strings or an empty object")
							}
							expanded, err := activeCtx.ExpandIRI(entryStr, true, false, nil, nil)
							if err != nil {
								return err
							}
							expandedList = append(expandedList, expanded)
						}
						expandedValue = expandedList
					default:
						return NewError(InvalidIDValue,
							"@id value must be a string, an array of strings or an empty object")
					}
				} else {
					return NewError(InvalidIDValue, "value of @id must be a string")
				}

			case "@type":
				switch v := value.(type) {
				case []interface{}:
					var expandedList []interface{}
					for _, entry := range v {
						entryStr, isString := entry.(string)
						if !isString {
							return NewError(InvalidTypeValue, "@type value must be a string or array of strings")
						}
						expanded, err := activeCtx.ExpandIRI(entryStr, true, true, nil, nil)
						if err != nil {
							return err
						}
						expandedList = append(expandedList, expanded)
					}
					expandedValue = expandedList
				case string:
					if expandedValue, err = activeCtx.ExpandIRI(v, true, true, nil, nil); err != nil {
						return err
					}
				case map[string]interface{}:
					if len(v) != 0 {
						return NewError(InvalidTypeValue, "@type value must be an empty object for framing")
					}
					expandedValue = value
				default:
					return NewError(InvalidTypeValue, "@type value must be a string or array of strings")
				}

			case "@graph":
				if expandedValue, err = e.Expand(activeCtx, "@graph", value, opts); err != nil {
					return err
				}
				expandedValue = Arrayify(expandedValue)

			case "@included":
				if activeCtx.in10Mode() {
					continue
				}
				if expandedValue, err = e.Expand(activeCtx, "", value, opts); err != nil {
					return err
				}
				includedList := Arrayify(expandedValue)
				for _, entry := range includedList {
					if !IsNodeObject(entry) {
						return NewError(InvalidIncludedValue, "@included values must be node objects")
					}
				}
				expandedValue = includedList

			case "@value":
				_, isMap := value.(map[string]interface{})
				_, isList := value.([]interface{})
				if value != nil && (isMap || isList) && !frameExpansion {
					return NewError(InvalidValueObjectValue, "value of @value must be a scalar or null")
				}
				expandedValue = value
				if expandedValue == nil {
					resultMap["@value"] = nil
					continue
				}

			case "@language":
				if frameExpansion {
					expandedValues := make([]interface{}, 0)
					for _, v := range Arrayify(value) {
						if vStr, isString := v.(string); isString {
							expandedValues = append(expandedValues, strings.ToLower(vStr))
						} else {
							expandedValues = append(expandedValues, v)
						}
					}
					expandedValue = expandedValues
				} else {
					vStr, isString := value.(string)
					if !isString {
						return NewError(InvalidLanguageTaggedString, "@language value must be a string")
					}
					if !wellFormedLanguagePattern.MatchString(vStr) {
						opts.warn(NewError(InvalidLanguageTaggedString,
							fmt.Sprintf("@language value %q is not well-formed", vStr)))
					}
					expandedValue = strings.ToLower(vStr)
				}

			case "@direction":
				vStr, isString := value.(string)
				if frameExpansion && !isString {
					expandedValue = Arrayify(value)
				} else {
					if !isString || (vStr != "ltr" && vStr != "rtl") {
						return NewError(InvalidBaseDirection, "@direction value must be 'ltr' or 'rtl'")
					}
					expandedValue = value
				}

			case "@index":
				if _, isString := value.(string); !isString {
					return NewError(InvalidIndexValue, "value of @index must be a string")
				}
				expandedValue = value

			case "@list":
				if activeProperty == "" || activeProperty == "@graph" {
					continue
				}
				if expandedValue, err = e.Expand(activeCtx, activeProperty, value, opts); err != nil {
					return err
				}
				expandedList, isList := expandedValue.([]interface{})
				if !isList {
					expandedList = []interface{}{expandedValue}
					expandedValue = expandedList
				}
				for _, o := range expandedList {
					if IsList(o) {
						return NewError(ListOfLists, "a list may not contain another list")
					}
				}

			case "@set":
				if expandedValue, err = e.Expand(activeCtx, activeProperty, value, opts); err != nil {
					return err
				}

			case "@reverse":
				if _, isMap := value.(map[string]interface{}); !isMap {
					return NewError(InvalidReverseValue, "@reverse value must be an object")
				}
				if expandedValue, err = e.Expand(activeCtx, "@reverse", value, opts); err != nil {
					return err
				}

				// hoist any reverse-of-reverse properties to the result
				if reverseValue, containsReverse := expandedValue.(map[string]interface{})["@reverse"]; containsReverse {
					for property, item := range reverseValue.(map[string]interface{}) {
						propertyList, _ := resultMap[property].([]interface{})
						if propertyList == nil {
							propertyList = make([]interface{}, 0)
						}
						if itemList, isList := item.([]interface{}); isList {
							propertyList = append(propertyList, itemList...)
						} else {
							propertyList = append(propertyList, item)
						}
						resultMap[property] = propertyList
					}
				}

				expandedValueMap := expandedValue.(map[string]interface{})
				maxSize := 0
				if _, containsReverse := expandedValueMap["@reverse"]; containsReverse {
					maxSize = 1
				}
				if len(expandedValueMap) > maxSize {
					var reverseMap map[string]interface{}
					if reverseValue, containsReverse := resultMap["@reverse"]; containsReverse {
						reverseMap = reverseValue.(map[string]interface{})
					} else {
						reverseMap = make(map[string]interface{})
						resultMap["@reverse"] = reverseMap
					}
					for property, propertyValue := range expandedValueMap {
						if property == "@reverse" {
							continue
						}
						for _, item := range propertyValue.([]interface{}) {
							if IsValue(item) || IsList(item) {
								return NewError(InvalidReversePropertyValue, nil)
							}
							propertyList, _ := reverseMap[property].([]interface{})
							reverseMap[property] = append(propertyList, item)
						}
					}
				}
				continue

			case "@nest":
				nests = append(nests, key)
				continue

			case "@default":
				expandedValue, _ = e.Expand(activeCtx, "@default", value, opts)

			case "@explicit", "@embed", "@requireAll", "@omitDefault":
				// framing flags pass through as scalars
				expandedValue = []interface{}{value}
			}

			if expandedValue != nil {
				resultMap[expandedProperty] = expandedValue
			}
			continue
		}

		// apply any term-scoped context for the key
		termCtx := activeCtx
		td := activeCtx.Term(key)
		if td != nil && td.HasContext {
			if termCtx, err = activeCtx.ParseScoped(td.Context); err != nil {
				return err
			}
		}

		valueMap, isMap := value.(map[string]interface{})
		switch {
		case td != nil && td.Type == "@json" && !activeCtx.in10Mode():
			// @json-coerced values are opaque JSON
			expandedValue = map[string]interface{}{
				"@value": value,
				"@type":  "@json",
			}

		case activeCtx.HasContainer(key, "@language") && isMap:
			var expandedList []interface{}
			for _, language := range OrderedKeys(valueMap) {
				expandedLanguage, err := termCtx.ExpandIRI(language, false, true, nil, nil)
				if err != nil {
					return err
				}
				for _, item := range Arrayify(valueMap[language]) {
					if item == nil {
						continue
					}
					if _, isString := item.(string); !isString {
						return NewError(InvalidLanguageMapValue,
							fmt.Sprintf("expected %v to be a string", item))
					}
					v := map[string]interface{}{"@value": item}
					if expandedLanguage != "@none" {
						if !wellFormedLanguagePattern.MatchString(language) {
							opts.warn(NewError(InvalidLanguageTaggedString,
								fmt.Sprintf("language map key %q is not well-formed", language)))
						}
						v["@language"] = strings.ToLower(language)
					}
					if td != nil && td.HasDirection {
						if td.Direction != nil {
							v["@direction"] = *td.Direction
						}
					} else if termCtx.hasDirection {
						v["@direction"] = termCtx.direction
					}
					expandedList = append(expandedList, v)
				}
			}
			expandedValue = expandedList

		case activeCtx.HasContainer(key, "@index") && isMap:
			asGraph := activeCtx.HasContainer(key, "@graph")
			if expandedValue, err = e.expandIndexMap(termCtx, key, valueMap, "@index", asGraph, opts); err != nil {
				return err
			}

		case activeCtx.HasContainer(key, "@id") && isMap:
			asGraph := activeCtx.HasContainer(key, "@graph")
			if expandedValue, err = e.expandIndexMap(termCtx, key, valueMap, "@id", asGraph, opts); err != nil {
				return err
			}

		case activeCtx.HasContainer(key, "@type") && isMap:
			if expandedValue, err = e.expandIndexMap(termCtx, key, valueMap, "@type", false, opts); err != nil {
				return err
			}

		default:
			isList := expandedProperty == "@list"
			if isList || expandedProperty == "@set" {
				nextActiveProperty := activeProperty
				if isList && expandedActiveProperty == "@graph" {
					nextActiveProperty = ""
				}
				if expandedValue, err = e.Expand(termCtx, nextActiveProperty, value, opts); err != nil {
					return err
				}
				if isList && IsList(expandedValue) {
					return NewError(ListOfLists, "lists of lists are not permitted")
				}
			} else {
				if expandedValue, err = e.Expand(termCtx, key, value, opts); err != nil {
					return err
				}
			}
		}

		if expandedValue == nil {
			continue
		}

		if activeCtx.HasContainer(key, "@list") && !IsList(expandedValue) {
			expandedValue = map[string]interface{}{
				"@list": Arrayify(expandedValue),
			}
		}

		// wrap values of a plain @graph container in graph objects
		isContainerGraph := activeCtx.HasContainer(key, "@graph")
		isContainerID := activeCtx.HasContainer(key, "@id")
		isContainerIndex := activeCtx.HasContainer(key, "@index")
		if isContainerGraph && !isContainerID && !isContainerIndex && !IsGraphObject(expandedValue) {
			wrapped := make([]interface{}, 0)
			for _, ev := range Arrayify(expandedValue) {
				if !IsGraphObject(ev) {
					ev = map[string]interface{}{"@graph": Arrayify(ev)}
				}
				wrapped = append(wrapped, ev)
			}
			expandedValue = wrapped
		}

		targets := []string{expandedProperty}
		if td != nil && len(td.GeneratorIRIs) > 1 {
			// property generator: emit the value under every target IRI
			targets = td.GeneratorIRIs
		}

		for _, target := range targets {
			if termCtx.IsReverseProperty(key) {
				var reverseMap map[string]interface{}
				if reverseValue, containsReverse := resultMap["@reverse"]; containsReverse {
					reverseMap = reverseValue.(map[string]interface{})
				} else {
					reverseMap = make(map[string]interface{})
					resultMap["@reverse"] = reverseMap
				}

				for _, item := range Arrayify(expandedValue) {
					if IsValue(item) || IsList(item) {
						return NewError(InvalidReversePropertyValue, nil)
					}
					propertyList, _ := reverseMap[target].([]interface{})
					reverseMap[target] = append(propertyList, item)
				}
			} else {
				propertyList, _ := resultMap[target].([]interface{})
				if propertyList == nil {
					propertyList = make([]interface{}, 0)
				}
				if expandedList, isList := expandedValue.([]interface{}); isList {
					propertyList = append(propertyList, expandedList...)
				} else {
					propertyList = append(propertyList, expandedValue)
				}
				resultMap[target] = propertyList
			}
		}
	}

	// expand each nested key against the same result object
	for _, n := range nests {
		for _, nv := range Arrayify(elem[n]) {
			nvMap, isMap := nv.(map[string]interface{})
			hasValues := false
			if isMap {
				for k := range nvMap {
					expanded, _ := activeCtx.ExpandIRI(k, false, true, nil, nil)
					if expanded == "@value" {
						hasValues = true
						break
					}
				}
			}
			if !isMap || hasValues {
				return NewError(InvalidNestValue, "nested value must be a node object")
			}
			if err := e.expandObject(activeCtx, activeProperty, expandedActiveProperty, nvMap,
				resultMap, opts, frameExpansion); err != nil {
				return err
			}
		}
	}

	return nil
}

// expandIndexMap expands the value of a term with an @index, @id or @type
// container mapping.
func (e *Engine) expandIndexMap(activeCtx *ActiveContext, activeProperty string,
	value map[string]interface{}, indexKey string, asGraph bool, opts *Options) (interface{}, error) {

	var expandedList []interface{}
	for _, index := range OrderedKeys(value) {
		indexValue := value[index]

		indexCtx := activeCtx
		if td := activeCtx.Term(index); td != nil && td.HasContext {
			newCtx, err := activeCtx.ParseScoped(td.Context)
			if err != nil {
				return nil, err
			}
			indexCtx = newCtx
		}

		expandedIndex, err := indexCtx.ExpandIRI(index, false, true, nil, nil)
		if err != nil {
			return nil, err
		}
		if indexKey == "@id" {
			if index, err = indexCtx.ExpandIRI(index, true, false, nil, nil); err != nil {
				return nil, err
			}
		} else if indexKey == "@type" {
			index = expandedIndex
		}

		expanded, err := e.Expand(indexCtx, activeProperty, Arrayify(indexValue), opts)
		if err != nil {
			return nil, err
		}

		for _, itemValue := range expanded.([]interface{}) {
			if asGraph && !IsGraphObject(itemValue) {
				itemValue = map[string]interface{}{"@graph": Arrayify(itemValue)}
			}
			item := itemValue.(map[string]interface{})
			if indexKey == "@type" {
				if expandedIndex != "@none" {
					t := []interface{}{index}
					if types, hasType := item["@type"]; hasType {
						t = append(t, types.([]interface{})...)
					}
					item["@type"] = t
				}
			} else if _, containsKey := item[indexKey]; !containsKey && expandedIndex != "@none" {
				item[indexKey] = index
			}
			expandedList = append(expandedList, item)
		}
	}
	return expandedList, nil
}
