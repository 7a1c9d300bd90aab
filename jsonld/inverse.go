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
	"sort"
	"strings"
)

// getInverse lazily builds the inverse context used by IRI compaction: a
// mapping IRI -> container signature -> ("@language"|"@type"|"@any") ->
// value class -> term. Terms are visited shortest-first so the shortest
// term wins every slot it reaches first.
func (c *ActiveContext) getInverse() map[string]interface{} {
	if c.inverse != nil {
		return c.inverse
	}
	c.inverse = make(map[string]interface{})

	defaultLanguage := "@none"
	if c.hasLanguage {
		defaultLanguage = c.language
	}

	terms := make([]string, 0, len(c.terms))
	for term := range c.terms {
		terms = append(terms, term)
	}
	sort.Sort(ShortestLeast(terms))

	for _, term := range terms {
		td := c.terms[term]
		if td == nil {
			continue
		}

		containerJoin := "@none"
		if len(td.Container) > 0 {
			sorted := append([]string(nil), td.Container...)
			sort.Strings(sorted)
			containerJoin = strings.Join(sorted, "")
		}

		iri := td.IRI

		var containerMap map[string]interface{}
		if containerMapVal, present := c.inverse[iri]; present {
			containerMap = containerMapVal.(map[string]interface{})
		} else {
			containerMap = make(map[string]interface{})
			c.inverse[iri] = containerMap
		}

		var typeLanguageMap map[string]interface{}
		if typeLanguageMapVal, present := containerMap[containerJoin]; present {
			typeLanguageMap = typeLanguageMapVal.(map[string]interface{})
		} else {
			typeLanguageMap = map[string]interface{}{
				"@language": make(map[string]interface{}),
				"@type":     make(map[string]interface{}),
				"@any":      map[string]interface{}{"@none": term},
			}
			containerMap[containerJoin] = typeLanguageMap
		}

		languageMap := typeLanguageMap["@language"].(map[string]interface{})
		typeMap := typeLanguageMap["@type"].(map[string]interface{})

		setOnce := func(m map[string]interface{}, key string) {
			if _, present := m[key]; !present {
				m[key] = term
			}
		}

		switch {
		case td.Reverse:
			setOnce(typeMap, "@reverse")
		case td.Type == "@none":
			setOnce(typeMap, "@any")
			setOnce(languageMap, "@any")
			setOnce(typeLanguageMap["@any"].(map[string]interface{}), "@any")
		case td.Type != "":
			setOnce(typeMap, td.Type)
		case td.HasLanguage && td.HasDirection:
			langDir := "@null"
			switch {
			case td.Language != nil && td.Direction != nil:
				langDir = fmt.Sprintf("%s_%s", *td.Language, *td.Direction)
			case td.Language != nil:
				langDir = *td.Language
			case td.Direction != nil:
				langDir = "_" + *td.Direction
			}
			setOnce(languageMap, langDir)
		case td.HasLanguage:
			language := "@null"
			if td.Language != nil {
				language = *td.Language
			}
			setOnce(languageMap, language)
		case td.HasDirection:
			dir := "@none"
			if td.Direction != nil {
				dir = "_" + *td.Direction
			}
			setOnce(languageMap, dir)
		case c.hasDirection:
			setOnce(languageMap, "_"+c.direction)
			setOnce(languageMap, "@none")
			setOnce(typeMap, "@none")
		default:
			setOnce(languageMap, defaultLanguage)
			setOnce(languageMap, "@none")
			setOnce(typeMap, "@none")
		}
	}

	return c.inverse
}

// selectTerm picks the preferred term for an IRI from the inverse context,
// trying each candidate container and preferred value in order.
func (c *ActiveContext) selectTerm(iri string, containers []string, typeLanguage string,
	preferredValues []string) string {

	containerMap, present := c.getInverse()[iri].(map[string]interface{})
	if !present {
		return ""
	}
	for _, container := range containers {
		typeLanguageMapVal, hasContainer := containerMap[container]
		if !hasContainer {
			continue
		}
		typeLanguageMap := typeLanguageMapVal.(map[string]interface{})
		valueMap := typeLanguageMap[typeLanguage].(map[string]interface{})
		for _, item := range preferredValues {
			if termVal, containsItem := valueMap[item]; containsItem {
				return termVal.(string)
			}
		}
	}
	return ""
}

// CompactIRI compacts an IRI or keyword into a term or compact IRI if it can
// be. A value associated with the IRI may be passed to drive container and
// type/language preferences; reverse indicates a reverse property position.
func (c *ActiveContext) CompactIRI(iri string, value interface{}, relativeToVocab bool, reverse bool) (string, error) {
	if iri == "" {
		return "", nil
	}

	inverseCtx := c.getInverse()

	if IsKeyword(iri) {
		// look for a keyword alias
		if v, found := inverseCtx[iri]; found {
			if v, found = v.(map[string]interface{})["@none"]; found {
				if v, found = v.(map[string]interface{})["@type"]; found {
					if v, found = v.(map[string]interface{})["@none"]; found {
						return v.(string), nil
					}
				}
			}
		}
		relativeToVocab = true
	}

	if relativeToVocab {
		if _, containsIRI := inverseCtx[iri]; containsIRI {
			term, err := c.selectCompactionTerm(iri, value, reverse)
			if err != nil {
				return "", err
			}
			if term != "" {
				return term, nil
			}
		}

		// try a vocabulary-relative suffix
		if c.hasVocab && strings.HasPrefix(iri, c.vocab) && iri != c.vocab {
			suffix := iri[len(c.vocab):]
			if _, hasSuffix := c.terms[suffix]; !hasSuffix {
				return suffix, nil
			}
		}
	}

	// try a compact IRI through any prefix-enabled term
	compactIRI := ""
	for term, td := range c.terms {
		if td == nil || strings.Contains(term, ":") {
			continue
		}
		if iri == td.IRI || !strings.HasPrefix(iri, td.IRI) || td.IRI == "" {
			continue
		}
		candidate := term + ":" + iri[len(td.IRI):]
		candidateDef, containsCandidate := c.terms[candidate]
		if (compactIRI == "" || CompareShortestLeast(candidate, compactIRI)) && td.Prefix &&
			(!containsCandidate || (candidateDef != nil && candidateDef.IRI == iri && value == nil)) {
			compactIRI = candidate
		}
	}
	if compactIRI != "" {
		return compactIRI, nil
	}

	// an absolute IRI that looks like a compact IRI over a declared prefix
	// must not slip through unchanged
	for term, td := range c.terms {
		if td != nil && td.Prefix && strings.HasPrefix(iri, term+":") {
			return "", NewError(IRIConfusedWithPrefix,
				fmt.Sprintf("absolute IRI %s confused with prefix %s", iri, term))
		}
	}

	if !relativeToVocab && c.hasBase && c.options.CompactToRelative {
		return Relativize(c.base, iri), nil
	}
	return iri, nil
}

// selectCompactionTerm computes the candidate containers and type/language
// preferences for the given value and runs term selection.
func (c *ActiveContext) selectCompactionTerm(iri string, value interface{}, reverse bool) (string, error) {
	defaultLanguage := "@none"
	if c.hasDirection {
		defaultLanguage = fmt.Sprintf("%s_%s", c.language, c.direction)
	} else if c.hasLanguage {
		defaultLanguage = c.language
	}

	containers := make([]string, 0)

	valueMap, isObject := value.(map[string]interface{})
	if isObject {
		_, hasIndex := valueMap["@index"]
		_, hasGraph := valueMap["@graph"]
		if hasIndex && !hasGraph {
			containers = append(containers, "@index", "@index@set")
		}
		if pv, hasPreserve := valueMap["@preserve"]; hasPreserve {
			value = pv.([]interface{})[0]
			valueMap, isObject = value.(map[string]interface{})
		}
	}

	if IsGraphObject(value) {
		_, hasIndex := valueMap["@index"]
		_, hasID := valueMap["@id"]
		if hasIndex {
			containers = append(containers, "@graph@index", "@graph@index@set", "@index", "@index@set")
		}
		if hasID {
			containers = append(containers, "@graph@id", "@graph@id@set")
		}
		containers = append(containers, "@graph", "@graph@set", "@set")
		if !hasIndex {
			containers = append(containers, "@graph@index", "@graph@index@set", "@index", "@index@set")
		}
		if !hasID {
			containers = append(containers, "@graph@id", "@graph@id@set")
		}
	} else if isObject && !IsValue(value) {
		containers = append(containers, "@id", "@id@set", "@type", "@set@type")
	}

	typeLanguage := "@language"
	typeLanguageValue := "@null"

	if reverse {
		typeLanguage = "@type"
		typeLanguageValue = "@reverse"
		containers = append(containers, "@set")
	} else if valueList, containsList := valueMap["@list"]; containsList {
		if _, containsIndex := valueMap["@index"]; !containsIndex {
			containers = append(containers, "@list")
		}

		list, _ := valueList.([]interface{})
		commonType := ""
		commonLanguage := ""
		if len(list) == 0 {
			commonLanguage = defaultLanguage
			commonType = "@id"
		}

		for _, item := range list {
			itemLanguage := "@none"
			itemType := "@none"
			if IsValue(item) {
				itemMap := item.(map[string]interface{})
				dirVal, hasDir := itemMap["@direction"]
				langVal, hasLang := itemMap["@language"]
				switch {
				case hasDir && hasLang:
					itemLanguage = fmt.Sprintf("%s_%s", langVal, dirVal)
				case hasDir:
					itemLanguage = fmt.Sprintf("_%s", dirVal)
				case hasLang:
					itemLanguage = langVal.(string)
				default:
					if typeVal, hasType := itemMap["@type"]; hasType {
						itemType = typeVal.(string)
					} else {
						itemLanguage = "@null"
					}
				}
			} else {
				itemType = "@id"
			}

			if commonLanguage == "" {
				commonLanguage = itemLanguage
			} else if commonLanguage != itemLanguage && IsValue(item) {
				commonLanguage = "@none"
			}
			if commonType == "" {
				commonType = itemType
			} else if commonType != itemType {
				commonType = "@none"
			}
			if commonLanguage == "@none" && commonType == "@none" {
				break
			}
		}

		if commonLanguage == "" {
			commonLanguage = "@none"
		}
		if commonType == "" {
			commonType = "@none"
		}
		if commonType != "@none" {
			typeLanguage = "@type"
			typeLanguageValue = commonType
		} else {
			typeLanguageValue = commonLanguage
		}
	} else {
		if IsValue(value) {
			langVal, hasLang := valueMap["@language"]
			_, hasIndex := valueMap["@index"]
			if hasLang && !hasIndex {
				containers = append(containers, "@language", "@language@set")
				if dir, hasDir := valueMap["@direction"]; hasDir {
					typeLanguageValue = fmt.Sprintf("%s_%s", langVal, dir)
				} else {
					typeLanguageValue = langVal.(string)
				}
			} else if dir, hasDir := valueMap["@direction"]; hasDir && !hasIndex {
				typeLanguageValue = fmt.Sprintf("_%s", dir)
			} else if typeVal, hasType := valueMap["@type"]; hasType {
				typeLanguage = "@type"
				typeLanguageValue = typeVal.(string)
			}
		} else {
			typeLanguage = "@type"
			typeLanguageValue = "@id"
		}
		containers = append(containers, "@set")
	}

	containers = append(containers, "@none")

	// index maps can also hold @none-indexed values; lowest priority
	if isObject {
		if _, hasIndex := valueMap["@index"]; !hasIndex {
			containers = append(containers, "@index", "@index@set")
		}
	}
	// values without type or language may live in a language map
	if IsValue(value) && len(valueMap) == 1 {
		containers = append(containers, "@language", "@language@set")
	}

	if typeLanguageValue == "" {
		typeLanguageValue = "@null"
	}

	preferredValues := make([]string, 0)
	idVal, hasID := valueMap["@id"]
	if (typeLanguageValue == "@reverse" || typeLanguageValue == "@id") && isObject && hasID {
		if typeLanguageValue == "@reverse" {
			preferredValues = append(preferredValues, "@reverse")
		}
		result, err := c.CompactIRI(idVal.(string), nil, true, false)
		if err != nil {
			return "", err
		}
		resultDef := c.terms[result]
		if resultDef != nil && resultDef.IRI == idVal {
			preferredValues = append(preferredValues, "@vocab", "@id", "@none")
		} else {
			preferredValues = append(preferredValues, "@id", "@vocab", "@none")
		}
	} else {
		if valueList, containsList := valueMap["@list"]; containsList && valueList == nil {
			typeLanguage = "@any"
		}
		preferredValues = append(preferredValues, typeLanguageValue, "@none")
	}
	preferredValues = append(preferredValues, "@any")

	// for language-tag_direction preferences, also try the bare _direction
	for _, pv := range preferredValues {
		if idx := strings.LastIndex(pv, "_"); idx != -1 {
			preferredValues = append(preferredValues, pv[idx:])
		}
	}

	return c.selectTerm(iri, containers, typeLanguage, preferredValues), nil
}

// CompactValue performs value compaction on an object with @value or @id as
// its primary content.
func (c *ActiveContext) CompactValue(activeProperty string, value map[string]interface{}) (interface{}, error) {
	var result interface{} = value

	language := c.LanguageMapping(activeProperty)
	direction := c.DirectionMapping(activeProperty)
	isIndexContainer := c.HasContainer(activeProperty, "@index")

	_, hasIndex := value["@index"]
	idVal, hasID := value["@id"]
	typeVal, hasType := value["@type"]

	idOrIndexOnly := true
	for k := range value {
		if k != "@id" && k != "@index" {
			idOrIndexOnly = false
			break
		}
	}

	propType := c.TypeMapping(activeProperty)
	languageVal := value["@language"]
	directionVal := value["@direction"]

	var err error
	switch {
	case hasID && idOrIndexOnly:
		switch propType {
		case "@id":
			if result, err = c.CompactIRI(idVal.(string), nil, false, false); err != nil {
				return nil, err
			}
		case "@vocab":
			if result, err = c.CompactIRI(idVal.(string), nil, true, false); err != nil {
				return nil, err
			}
		default:
			compactedID, err := c.CompactIRI("@id", nil, true, false)
			if err != nil {
				return nil, err
			}
			compactedValue, err := c.CompactIRI(idVal.(string), nil, false, false)
			if err != nil {
				return nil, err
			}
			result = map[string]interface{}{compactedID: compactedValue}
		}
	case hasType && typeVal == propType:
		result = value["@value"]
	case propType == "@none" || (hasType && typeVal != propType):
		// keep the expanded value object
		result = value
	default:
		if _, isString := value["@value"].(string); !isString {
			if (hasIndex && isIndexContainer) || !hasIndex {
				result = value["@value"]
			}
		} else if languageVal == language && directionVal == direction {
			if (hasIndex && isIndexContainer) || !hasIndex {
				return value["@value"], nil
			}
		}
	}

	if resultMap, isMap := result.(map[string]interface{}); isMap && resultMap["@type"] != nil &&
		value["@type"] != "@json" {
		// compact @type values; copy first, result may alias the input
		newMap := make(map[string]interface{}, len(resultMap))
		for k, v := range resultMap {
			newMap[k] = v
		}
		if tt, isArray := newMap["@type"].([]interface{}); isArray {
			newTT := make([]interface{}, len(tt))
			for i, t := range tt {
				if newTT[i], err = c.CompactIRI(t.(string), nil, true, false); err != nil {
					return nil, err
				}
			}
			newMap["@type"] = newTT
		} else {
			if newMap["@type"], err = c.CompactIRI(newMap["@type"].(string), nil, true, false); err != nil {
				return nil, err
			}
		}
		result = newMap
	}

	// alias any remaining keyword keys
	if resultMap, isMap := result.(map[string]interface{}); isMap {
		newMap := make(map[string]interface{}, len(resultMap))
		for k, v := range resultMap {
			if k == "@index" && !(hasIndex && !isIndexContainer) {
				continue
			}
			keyAlias, err := c.CompactIRI(k, nil, true, false)
			if err != nil {
				return nil, err
			}
			newMap[keyAlias] = v
		}
		result = newMap
	}

	return result, nil
}
