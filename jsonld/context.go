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
	"strings"
)

var (
	ignoredKeywordPattern = regexp.MustCompile("^@[a-zA-Z]+$")
	invalidPrefixPattern  = regexp.MustCompile("[:/]")
	iriLikeTermPattern    = regexp.MustCompile(`(?::[^:])|/`)

	nonTermDefKeys = map[string]bool{
		"@base":      true,
		"@direction": true,
		"@import":    true,
		"@language":  true,
		"@propagate": true,
		"@protected": true,
		"@version":   true,
		"@vocab":     true,
	}
)

// ActiveContext is the in-scope mapping from terms and keywords to IRIs,
// types, languages and containers. Parsing a local context returns a new
// ActiveContext; the prior one is reachable through previous so that a null
// context inside a property can restore it.
type ActiveContext struct {
	options *Options

	base    string
	hasBase bool

	vocab    string
	hasVocab bool

	language    string
	hasLanguage bool

	direction    string
	hasDirection bool

	version        float64
	processingMode string

	terms     map[string]*TermDefinition
	protected map[string]bool
	previous  *ActiveContext

	// inverse is built lazily by getInverse and never mutated afterwards
	inverse map[string]interface{}
}

// NewActiveContext creates an empty active context taking its base IRI and
// processing mode from the given options.
func NewActiveContext(options *Options) *ActiveContext {
	if options == nil {
		options = NewOptions("")
	}
	return &ActiveContext{
		options:        options,
		base:           options.Base,
		hasBase:        true,
		processingMode: options.ProcessingMode,
		terms:          make(map[string]*TermDefinition),
		protected:      make(map[string]bool),
	}
}

func (c *ActiveContext) clone() *ActiveContext {
	result := &ActiveContext{
		options:        c.options,
		base:           c.base,
		hasBase:        c.hasBase,
		vocab:          c.vocab,
		hasVocab:       c.hasVocab,
		language:       c.language,
		hasLanguage:    c.hasLanguage,
		direction:      c.direction,
		hasDirection:   c.hasDirection,
		version:        c.version,
		processingMode: c.processingMode,
		terms:          make(map[string]*TermDefinition, len(c.terms)),
		protected:      make(map[string]bool, len(c.protected)),
	}
	for term, td := range c.terms {
		result.terms[term] = td
	}
	for term, p := range c.protected {
		result.protected[term] = p
	}
	// the inverse context is not copied; it is regenerated on demand
	if c.previous != nil {
		result.previous = c.previous.clone()
	}
	return result
}

// in10Mode reports json-ld-1.0 behaviour (also the default when no mode is
// set and no @version was seen).
func (c *ActiveContext) in10Mode() bool {
	return c.processingMode == "" || c.processingMode == JsonLd_1_0
}

// in11Mode reports json-ld-1.1 behaviour, including frame expansion mode.
func (c *ActiveContext) in11Mode() bool {
	return strings.HasPrefix(c.processingMode, JsonLd_1_1)
}

// Term returns the term definition for the given key, or nil.
func (c *ActiveContext) Term(key string) *TermDefinition {
	return c.terms[key]
}

// Container returns the container mapping for the given term.
func (c *ActiveContext) Container(term string) []string {
	if td := c.terms[term]; td != nil {
		return td.Container
	}
	return nil
}

// HasContainer reports whether the term's container mapping includes value.
func (c *ActiveContext) HasContainer(term string, value string) bool {
	td := c.terms[term]
	return td != nil && td.hasContainer(value)
}

// IsReverseProperty reports whether the given term maps to a reverse
// property.
func (c *ActiveContext) IsReverseProperty(term string) bool {
	td := c.terms[term]
	return td != nil && td.Reverse
}

// TypeMapping returns the type coercion for the given term, or "".
func (c *ActiveContext) TypeMapping(term string) string {
	if td := c.terms[term]; td != nil {
		return td.Type
	}
	return ""
}

// LanguageMapping returns the language mapping for the given term: the tag,
// or nil for an explicit null or when only the default applies and none is
// set.
func (c *ActiveContext) LanguageMapping(term string) interface{} {
	if td := c.terms[term]; td != nil && td.HasLanguage {
		return td.languageValue()
	}
	if c.hasLanguage {
		return c.language
	}
	return nil
}

// DirectionMapping returns the base-direction mapping for the given term.
func (c *ActiveContext) DirectionMapping(term string) interface{} {
	if td := c.terms[term]; td != nil && td.HasDirection {
		return td.directionValue()
	}
	if c.hasDirection {
		return c.direction
	}
	return nil
}

// RevertToPrevious restores the context active before a non-propagating
// context was applied.
func (c *ActiveContext) RevertToPrevious() *ActiveContext {
	if c.previous == nil {
		return c
	}
	return c.previous.clone()
}

// Parse processes a local context against this active context, retrieving
// remote contexts as necessary, and returns the new active context.
func (c *ActiveContext) Parse(localContext interface{}) (*ActiveContext, error) {
	return c.parse(localContext, nil, false, true, false, false)
}

// ParseScoped processes a term- or type-scoped context. Scoped contexts may
// override protected terms.
func (c *ActiveContext) ParseScoped(localContext interface{}) (*ActiveContext, error) {
	return c.parse(localContext, nil, false, true, false, true)
}

func (c *ActiveContext) parse(localContext interface{}, remoteContexts []string,
	parsingRemoteContext, propagate, protectedDefault, overrideProtected bool) (*ActiveContext, error) {

	contexts := Arrayify(localContext)
	if len(contexts) == 0 {
		return c, nil
	}

	// @propagate in the first context element overrides the argument
	if firstMap, isMap := contexts[0].(map[string]interface{}); isMap {
		if propagateVal, found := firstMap["@propagate"]; found {
			if propagateBool, isBool := propagateVal.(bool); isBool {
				propagate = propagateBool
			}
		}
	}

	result := c.clone()

	if !propagate && result.previous == nil {
		result.previous = c
	}

	for _, context := range contexts {
		if context == nil {
			// nullification is forbidden while protected terms are in scope,
			// unless this is an override-permitted scoped context
			if !overrideProtected && len(result.protected) != 0 {
				return nil, NewError(InvalidContextNullification,
					"tried to nullify a context with protected terms")
			}
			nullCtx := NewActiveContext(c.options)
			if !propagate {
				nullCtx.previous = result
			}
			result = nullCtx
			continue
		}

		var contextMap map[string]interface{}

		switch ctx := context.(type) {
		case *ActiveContext:
			result = ctx
			continue
		case string:
			uri := Resolve(result.base, ctx)
			for _, visited := range remoteContexts {
				if visited == uri {
					return nil, NewError(RecursiveContextInclusion, uri)
				}
			}
			if len(remoteContexts) > maxRemoteContexts {
				return nil, NewError(ContextOverflow, uri)
			}
			remoteContexts = append(remoteContexts, uri)

			rd, err := c.options.DocumentLoader.LoadDocument(uri)
			if err != nil {
				return nil, NewError(LoadingRemoteContextFailed,
					fmt.Errorf("dereferencing %s did not result in a valid JSON-LD context: %w", uri, err))
			}
			remoteContextMap, isMap := rd.Document.(map[string]interface{})
			remoteContext, hasContextKey := remoteContextMap["@context"]
			if !isMap || !hasContextKey {
				return nil, NewError(InvalidRemoteContext, uri)
			}

			remoteContextsCopy := append([]string(nil), remoteContexts...)
			result, err = result.parse(remoteContext, remoteContextsCopy, true, true,
				protectedDefault, overrideProtected)
			if err != nil {
				return nil, err
			}
			continue
		case map[string]interface{}:
			contextMap = ctx
		default:
			return nil, NewError(InvalidLocalContext, context)
		}

		// dereference a nested @context entry if present
		if nested, hasNested := contextMap["@context"]; hasNested {
			nestedMap, isMap := nested.(map[string]interface{})
			if !isMap {
				return nil, NewError(InvalidLocalContext, nested)
			}
			contextMap = nestedMap
		}

		if versionValue, versionPresent := contextMap["@version"]; versionPresent {
			versionNum, isNumber := versionValue.(float64)
			if !isNumber || versionNum != 1.1 {
				return nil, NewError(InvalidVersionValue,
					fmt.Sprintf("unsupported JSON-LD version: %v", versionValue))
			}
			if c.options.ProcessingMode == JsonLd_1_0 {
				return nil, NewError(ProcessingModeConflict,
					fmt.Sprintf("@version: %v not compatible with %s", versionValue, c.options.ProcessingMode))
			}
			result.version = versionNum
			result.processingMode = JsonLd_1_1
		} else if result.processingMode == "" {
			result.processingMode = JsonLd_1_0
		}

		if importValue, importFound := contextMap["@import"]; importFound {
			if result.in10Mode() {
				return nil, NewError(InvalidContextEntry, "@import may only be used in 1.1 mode")
			}
			importStr, isString := importValue.(string)
			if !isString {
				return nil, NewError(InvalidImportValue, "@import must be a string")
			}
			uri := Resolve(result.base, importStr)

			rd, err := c.options.DocumentLoader.LoadDocument(uri)
			if err != nil {
				return nil, NewError(LoadingRemoteContextFailed,
					fmt.Errorf("dereferencing %s did not result in a valid JSON-LD context: %w", uri, err))
			}
			importDocMap, isMap := rd.Document.(map[string]interface{})
			importContext, hasContextKey := importDocMap["@context"]
			if !isMap || !hasContextKey {
				return nil, NewError(InvalidRemoteContext, uri)
			}
			importCtxMap, isMap := importContext.(map[string]interface{})
			if !isMap {
				return nil, NewError(InvalidRemoteContext,
					fmt.Sprintf("%s must be an object", importStr))
			}
			if _, found := importCtxMap["@import"]; found {
				return nil, NewError(InvalidContextEntry,
					fmt.Sprintf("%s must not include an @import entry", importStr))
			}

			// the local context is overlaid onto the imported one
			for k, v := range contextMap {
				importCtxMap[k] = v
			}
			contextMap = importCtxMap
		}

		if baseValue, basePresent := contextMap["@base"]; basePresent && !parsingRemoteContext {
			if baseValue == nil {
				result.hasBase = false
				result.base = ""
			} else if baseString, isString := baseValue.(string); isString {
				if IsAbsoluteIRI(baseString) {
					result.base = baseString
					result.hasBase = true
				} else {
					if !IsAbsoluteIRI(result.base) {
						return nil, NewError(InvalidBaseIRI, result.base)
					}
					result.base = Resolve(result.base, baseString)
					result.hasBase = true
				}
			} else {
				return nil, NewError(InvalidBaseIRI, "the value of @base must be a string or null")
			}
		}

		if languageValue, languagePresent := contextMap["@language"]; languagePresent {
			if languageValue == nil {
				result.hasLanguage = false
				result.language = ""
			} else if languageString, isString := languageValue.(string); isString {
				result.language = strings.ToLower(languageString)
				result.hasLanguage = true
			} else {
				return nil, NewError(InvalidDefaultLanguage, languageValue)
			}
		}

		if directionValue, directionPresent := contextMap["@direction"]; directionPresent {
			if directionValue == nil {
				result.hasDirection = false
				result.direction = ""
			} else if directionString, isString := directionValue.(string); isString &&
				(directionString == "ltr" || directionString == "rtl") {
				result.direction = directionString
				result.hasDirection = true
			} else {
				return nil, NewError(InvalidBaseDirection, directionValue)
			}
		}

		if propagateValue, propagatePresent := contextMap["@propagate"]; propagatePresent {
			if c.in10Mode() {
				return nil, NewError(InvalidContextEntry,
					fmt.Sprintf("@propagate not compatible with %s", c.processingMode))
			}
			if _, isBool := propagateValue.(bool); !isBool {
				return nil, NewError(InvalidPropagateValue, "@propagate value must be a boolean")
			}
		}

		if vocabValue, vocabPresent := contextMap["@vocab"]; vocabPresent {
			if vocabValue == nil {
				result.hasVocab = false
				result.vocab = ""
			} else if vocabString, isString := vocabValue.(string); isString {
				if !IsAbsoluteIRI(vocabString) && c.in10Mode() {
					return nil, NewError(InvalidVocabMapping, "@vocab must be an absolute IRI in 1.0 mode")
				}
				expandedVocab, err := result.ExpandIRI(vocabString, true, true, nil, nil)
				if err != nil {
					return nil, err
				}
				result.vocab = expandedVocab
				result.hasVocab = true
			} else {
				return nil, NewError(InvalidVocabMapping, "@vocab must be a string or null")
			}
		}

		termsProtected := protectedDefault
		if protectedVal, protectedPresent := contextMap["@protected"]; protectedPresent {
			protectedBool, isBool := protectedVal.(bool)
			if !isBool {
				return nil, NewError(InvalidContextEntry, "@protected value must be a boolean")
			}
			termsProtected = protectedBool
		}

		defined := make(map[string]bool)
		for key := range contextMap {
			if nonTermDefKeys[key] {
				continue
			}
			if err := result.createTermDefinition(contextMap, key, defined,
				termsProtected, overrideProtected); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// maxRemoteContexts bounds remote-context recursion depth.
const maxRemoteContexts = 32

// createTermDefinition creates a term definition in the active context for a
// term being processed in a local context.
func (c *ActiveContext) createTermDefinition(context map[string]interface{}, term string,
	defined map[string]bool, protectedDefault, overrideProtected bool) error {

	if definedValue, inDefined := defined[term]; inDefined {
		if definedValue {
			return nil
		}
		return NewError(CyclicIRIMapping, term)
	}
	defined[term] = false

	value := context[term]
	mapValue, isMap := value.(map[string]interface{})
	idValue, hasID := mapValue["@id"]
	if value == nil || (isMap && hasID && idValue == nil) {
		c.terms[term] = nil
		defined[term] = true
		return nil
	}

	simpleTerm := false
	if _, isString := value.(string); isString {
		mapValue = map[string]interface{}{"@id": value}
		simpleTerm = true
		isMap = true
	}
	if !isMap {
		return NewError(InvalidTermDefinition, value)
	}

	if IsKeyword(term) {
		// redefining @type with @container: @set is the one permitted case
		allowedKeysOnly := true
		for k := range mapValue {
			if k != "@container" && k != "@protected" {
				allowedKeysOnly = false
				break
			}
		}
		containerVal := mapValue["@container"]
		isSet := containerVal == "@set" || containerVal == nil
		if !(c.in11Mode() && term == "@type" && allowedKeysOnly && isSet) {
			return NewError(KeywordRedefinition, term)
		}
	} else if ignoredKeywordPattern.MatchString(term) {
		c.options.warn(NewError(InvalidTermDefinition,
			fmt.Sprintf("terms beginning with @ are reserved for future use and ignored: %s", term)))
		return nil
	}

	prevDefinition := c.terms[term]
	delete(c.terms, term)

	definition := &TermDefinition{}

	validKeys := map[string]bool{
		"@container": true,
		"@id":        true,
		"@language":  true,
		"@reverse":   true,
		"@type":      true,
	}
	if c.in11Mode() {
		validKeys["@context"] = true
		validKeys["@direction"] = true
		validKeys["@index"] = true
		validKeys["@nest"] = true
		validKeys["@prefix"] = true
		validKeys["@protected"] = true
	}
	for k := range mapValue {
		if !validKeys[k] {
			return NewError(InvalidTermDefinition,
				fmt.Sprintf("a term definition must not contain %s", k))
		}
	}

	colIndex := strings.Index(term, ":")
	termHasColon := colIndex > 0

	if reverseValue, present := mapValue["@reverse"]; present {
		if _, idPresent := mapValue["@id"]; idPresent {
			return NewError(InvalidReverseProperty, "an @reverse term definition must not contain @id")
		}
		if _, nestPresent := mapValue["@nest"]; nestPresent {
			return NewError(InvalidReverseProperty, "an @reverse term definition must not contain @nest")
		}
		reverseStr, isString := reverseValue.(string)
		if !isString {
			return NewError(InvalidIRIMapping,
				fmt.Sprintf("expected string for @reverse value, got %v", reverseValue))
		}
		if ignoredKeywordPattern.MatchString(reverseStr) {
			c.options.warn(NewError(InvalidIRIMapping,
				fmt.Sprintf("values beginning with @ are reserved for future use and ignored: %s", reverseStr)))
			return nil
		}
		id, err := c.ExpandIRI(reverseStr, false, true, context, defined)
		if err != nil {
			return err
		}
		if !IsAbsoluteIRI(id) {
			return NewError(InvalidIRIMapping, fmt.Sprintf(
				"an @reverse value must expand to an absolute IRI or blank node identifier, got %s", id))
		}
		definition.IRI = id
		definition.Reverse = true
	} else if idValue, hasID := mapValue["@id"]; hasID {
		switch idVal := idValue.(type) {
		case string:
			if term != idVal {
				if !IsKeyword(idVal) && ignoredKeywordPattern.MatchString(idVal) {
					c.options.warn(NewError(InvalidIRIMapping,
						fmt.Sprintf("values beginning with @ are reserved for future use and ignored: %s", idVal)))
					return nil
				}
				res, err := c.ExpandIRI(idVal, false, true, context, defined)
				if err != nil {
					return err
				}
				if !IsKeyword(res) && !IsAbsoluteIRI(res) {
					return NewError(InvalidIRIMapping,
						"resulting IRI mapping should be a keyword, absolute IRI or blank node")
				}
				if res == "@context" {
					return NewError(InvalidKeywordAlias, "cannot alias @context")
				}
				definition.IRI = res

				if iriLikeTermPattern.MatchString(term) {
					defined[term] = true
					termIRI, err := c.ExpandIRI(term, false, true, context, defined)
					if err != nil {
						return err
					}
					if termIRI != res {
						return NewError(InvalidIRIMapping,
							fmt.Sprintf("term %s expands to %s, not %s", term, termIRI, res))
					}
					delete(defined, term)
				}

				termHasSuffix := false
				if len(res) > 0 {
					switch res[len(res)-1] {
					case ':', '/', '?', '#', '[', ']', '@':
						termHasSuffix = true
					}
				}
				definition.Prefix = !termHasColon && termHasSuffix && (simpleTerm || c.in10Mode())
			}
		case []interface{}:
			if !c.options.AllowPropertyGenerators {
				return NewError(InvalidIRIMapping, "@id must be a string")
			}
			// legacy property generator: the term fans out to several IRIs
			for _, entry := range idVal {
				entryStr, isString := entry.(string)
				if !isString {
					return NewError(InvalidIRIMapping, "property generator @id values must be strings")
				}
				res, err := c.ExpandIRI(entryStr, false, true, context, defined)
				if err != nil {
					return err
				}
				if !IsAbsoluteIRI(res) {
					return NewError(InvalidIRIMapping,
						"property generator @id values must expand to absolute IRIs")
				}
				definition.GeneratorIRIs = append(definition.GeneratorIRIs, res)
			}
			if len(definition.GeneratorIRIs) == 0 {
				return NewError(InvalidIRIMapping, "property generator requires at least one IRI")
			}
			definition.IRI = definition.GeneratorIRIs[0]
		default:
			return NewError(InvalidIRIMapping, "expected value of @id to be a string")
		}
	}

	if definition.IRI == "" {
		if termHasColon {
			prefix := term[0:colIndex]
			if _, containsPrefix := context[prefix]; containsPrefix {
				if err := c.createTermDefinition(context, prefix, defined,
					protectedDefault, overrideProtected); err != nil {
					return err
				}
			}
			if prefixDef := c.terms[prefix]; prefixDef != nil {
				definition.IRI = prefixDef.IRI + term[colIndex+1:]
			} else {
				definition.IRI = term
			}
		} else if c.hasVocab {
			definition.IRI = c.vocab + term
		} else if term != "@type" {
			return NewError(InvalidIRIMapping, "relative term definition without vocab mapping")
		}
	}

	valProtected, protectedFound := mapValue["@protected"]
	if protectedFound {
		protectedBool, isBool := valProtected.(bool)
		if !isBool {
			return NewError(InvalidTermDefinition, "@protected value must be a boolean")
		}
		if protectedBool && c.in10Mode() {
			return NewError(InvalidTermDefinition, "@protected may only be used in 1.1 mode")
		}
		definition.Protected = protectedBool
	} else if protectedDefault {
		definition.Protected = true
	}
	if definition.Protected {
		c.protected[term] = true
	}

	defined[term] = true

	if typeValue, present := mapValue["@type"]; present {
		typeStr, isString := typeValue.(string)
		if !isString {
			return NewError(InvalidTypeMapping, typeValue)
		}
		if (typeStr == "@json" || typeStr == "@none") && c.in10Mode() {
			return NewError(InvalidTypeMapping,
				fmt.Sprintf("unknown mapping for @type: %s on term %s", typeStr, term))
		}
		if typeStr != "@id" && typeStr != "@vocab" && typeStr != "@json" && typeStr != "@none" {
			expanded, err := c.ExpandIRI(typeStr, false, true, context, defined)
			if err != nil {
				if !IsError(err, InvalidIRIMapping) {
					return err
				}
				return NewError(InvalidTypeMapping, typeStr)
			}
			typeStr = expanded
			if !IsAbsoluteIRI(typeStr) {
				return NewError(InvalidTypeMapping, "an @type value must be an absolute IRI")
			}
			if strings.HasPrefix(typeStr, "_:") {
				return NewError(InvalidTypeMapping,
					"an @type value must be an IRI, not a blank node identifier")
			}
		}
		definition.Type = typeStr
	}

	if containerVal, hasContainer := mapValue["@container"]; hasContainer {
		var container []string
		switch cv := containerVal.(type) {
		case []interface{}:
			for _, entry := range cv {
				entryStr, isString := entry.(string)
				if !isString {
					return NewError(InvalidContainerMapping, "@container values must be strings")
				}
				container = append(container, entryStr)
			}
		case string:
			container = []string{cv}
		default:
			return NewError(InvalidContainerMapping, "@container must be a string or array of strings")
		}

		validContainers := map[string]bool{
			"@list":     true,
			"@set":      true,
			"@index":    true,
			"@language": true,
		}
		if c.in11Mode() {
			validContainers["@graph"] = true
			validContainers["@id"] = true
			validContainers["@type"] = true

			if inStrings("@list", container) && len(container) != 1 {
				return NewError(InvalidContainerMapping, "@container with @list must have no other values")
			}

			if inStrings("@graph", container) {
				for _, entry := range container {
					if entry != "@graph" && entry != "@id" && entry != "@index" && entry != "@set" {
						return NewError(InvalidContainerMapping,
							"@container with @graph may only be combined with @id, @index and @set")
					}
				}
			} else {
				maxLen := 1
				if inStrings("@set", container) {
					maxLen = 2
				}
				if len(container) > maxLen {
					return NewError(InvalidContainerMapping, "@set can only be combined with one more value")
				}
			}

			if inStrings("@type", container) {
				if definition.Type == "" {
					definition.Type = "@id"
				}
				if definition.Type != "@id" && definition.Type != "@vocab" {
					return NewError(InvalidTypeMapping,
						"container @type requires a type mapping of @id or @vocab")
				}
			}
		} else {
			if _, isString := containerVal.(string); !isString {
				return NewError(InvalidContainerMapping, "@container must be a string in 1.0 mode")
			}
		}

		for _, entry := range container {
			if !validContainers[entry] {
				return NewError(InvalidContainerMapping,
					fmt.Sprintf("invalid @container value: %s", entry))
			}
		}

		if inStrings("@set", container) && inStrings("@list", container) {
			return NewError(InvalidContainerMapping, "@set not allowed with @list")
		}

		if definition.Reverse {
			for _, entry := range container {
				if entry != "@index" && entry != "@set" {
					return NewError(InvalidReverseProperty,
						"an @reverse term definition @container must be @index or @set")
				}
			}
		}

		definition.Container = container

		if term == "@type" {
			definition.IRI = "@type"
		}
	}

	if indexVal, hasIndex := mapValue["@index"]; hasIndex {
		if !definition.hasContainer("@index") {
			return NewError(InvalidTermDefinition,
				fmt.Sprintf("@index without @index in @container on term %s", term))
		}
		indexStr, isString := indexVal.(string)
		if !isString || strings.HasPrefix(indexStr, "@") {
			return NewError(InvalidTermDefinition,
				fmt.Sprintf("@index must expand to an IRI: %v on term %s", indexVal, term))
		}
		definition.Index = indexStr
	}

	if ctxVal, hasCtx := mapValue["@context"]; hasCtx {
		definition.Context = ctxVal
		definition.HasContext = true
	}

	_, hasType := mapValue["@type"]
	if languageVal, hasLanguage := mapValue["@language"]; hasLanguage && !hasType {
		if language, isString := languageVal.(string); isString {
			lower := strings.ToLower(language)
			definition.Language = &lower
			definition.HasLanguage = true
		} else if languageVal == nil {
			definition.Language = nil
			definition.HasLanguage = true
		} else {
			return NewError(InvalidLanguageMapping, "@language must be a string or null")
		}
	}

	if prefixVal, hasPrefix := mapValue["@prefix"]; hasPrefix {
		if invalidPrefixPattern.MatchString(term) {
			return NewError(InvalidTermDefinition, "@prefix used on compact or relative IRI term")
		}
		prefix, isBool := prefixVal.(bool)
		if !isBool {
			return NewError(InvalidPrefixValue, "@prefix value must be a boolean")
		}
		if prefix && IsKeyword(definition.IRI) {
			return NewError(InvalidTermDefinition, "keywords may not be used as prefixes")
		}
		definition.Prefix = prefix
	}

	if directionVal, hasDirection := mapValue["@direction"]; hasDirection {
		if dir, isString := directionVal.(string); isString && (dir == "ltr" || dir == "rtl") {
			definition.Direction = &dir
			definition.HasDirection = true
		} else if directionVal == nil {
			definition.Direction = nil
			definition.HasDirection = true
		} else {
			return NewError(InvalidBaseDirection,
				fmt.Sprintf("direction must be null, ltr or rtl, was %v on term %s", directionVal, term))
		}
	}

	if nestVal, hasNest := mapValue["@nest"]; hasNest {
		nest, isString := nestVal.(string)
		if !isString || (nest != "@nest" && strings.HasPrefix(nest, "@")) {
			return NewError(InvalidNestValue,
				"@nest value must be a string which is not a keyword other than @nest")
		}
		definition.Nest = nest
	}

	if definition.IRI == "@context" || definition.IRI == "@preserve" {
		return NewError(InvalidKeywordAlias, "@context and @preserve cannot be aliased")
	}

	if prevDefinition != nil && prevDefinition.Protected && !overrideProtected {
		// the redefinition stands only if it is identical to the protected one
		c.protected[term] = true
		definition.Protected = true
		if !definition.equal(prevDefinition) {
			return NewError(ProtectedTermRedefinition, "tried to redefine a protected term")
		}
	}

	c.terms[term] = definition
	return nil
}

// ExpandIRI expands a string value to an absolute IRI, blank node
// identifier or keyword.
//
// relative resolves the value against the base IRI; vocab concatenates with
// the vocabulary mapping. context and defined are only given during context
// processing, for on-demand creation of dependency terms.
func (c *ActiveContext) ExpandIRI(value string, relative bool, vocab bool,
	context map[string]interface{}, defined map[string]bool) (string, error) {

	if IsKeyword(value) {
		return value, nil
	}
	if ignoredKeywordPattern.MatchString(value) {
		return "", nil
	}

	if context != nil {
		if _, containsKey := context[value]; containsKey && !defined[value] {
			if err := c.createTermDefinition(context, value, defined, false, false); err != nil {
				return "", err
			}
		}
	}

	if vocab {
		if td, hasTermDef := c.terms[value]; hasTermDef {
			if td == nil {
				return "", nil
			}
			return td.IRI, nil
		}
	}

	if colIndex := strings.Index(value, ":"); colIndex > 0 {
		prefix := value[0:colIndex]
		suffix := value[colIndex+1:]

		if prefix == "_" || strings.HasPrefix(suffix, "//") {
			return value, nil
		}

		if context != nil {
			if _, containsPrefix := context[prefix]; containsPrefix && !defined[prefix] {
				if err := c.createTermDefinition(context, prefix, defined, false, false); err != nil {
					return "", err
				}
			}
		}

		if td := c.terms[prefix]; td != nil && td.IRI != "" && td.Prefix {
			return td.IRI + suffix, nil
		}
		if IsAbsoluteIRI(value) {
			return value, nil
		}
	}

	if vocab && c.hasVocab {
		return c.vocab + value, nil
	}
	if relative {
		return Resolve(c.base, value), nil
	}
	if context != nil && IsRelativeIRI(value) {
		return "", NewError(InvalidIRIMapping, "not an absolute IRI: "+value)
	}
	return value, nil
}

// ExpandValue wraps a scalar in a value object using the coercion rules for
// the active property.
func (c *ActiveContext) ExpandValue(activeProperty string, value interface{}) (interface{}, error) {
	rval := make(map[string]interface{})
	td := c.terms[activeProperty]

	if td != nil && td.Type == "@id" {
		if strVal, isString := value.(string); isString {
			id, err := c.ExpandIRI(strVal, true, false, nil, nil)
			if err != nil {
				return nil, err
			}
			rval["@id"] = id
		} else {
			rval["@value"] = value
		}
		return rval, nil
	}
	if td != nil && td.Type == "@vocab" {
		if strVal, isString := value.(string); isString {
			id, err := c.ExpandIRI(strVal, true, true, nil, nil)
			if err != nil {
				return nil, err
			}
			rval["@id"] = id
		} else {
			rval["@value"] = value
		}
		return rval, nil
	}

	rval["@value"] = value
	switch {
	case td != nil && td.Type != "" && td.Type != "@id" && td.Type != "@vocab" && td.Type != "@none":
		rval["@type"] = td.Type
	default:
		if _, isString := value.(string); isString {
			if td != nil && td.HasLanguage {
				if td.Language != nil {
					rval["@language"] = *td.Language
				}
			} else if c.hasLanguage {
				rval["@language"] = c.language
			}
			if td != nil && td.HasDirection {
				if td.Direction != nil {
					rval["@direction"] = *td.Direction
				}
			} else if c.hasDirection {
				rval["@direction"] = c.direction
			}
		}
	}
	return rval, nil
}

// GetPrefixes returns potential RDF prefixes from the term definitions. If
// onlyCommonPrefixes is set, only mappings whose IRI ends in "/" or "#" are
// returned.
func (c *ActiveContext) GetPrefixes(onlyCommonPrefixes bool) map[string]string {
	prefixes := make(map[string]string)
	for term, td := range c.terms {
		if strings.Contains(term, ":") || td == nil || td.IRI == "" {
			continue
		}
		if strings.HasPrefix(term, "@") || strings.HasPrefix(td.IRI, "@") {
			continue
		}
		if !onlyCommonPrefixes || strings.HasSuffix(td.IRI, "/") || strings.HasSuffix(td.IRI, "#") {
			prefixes[term] = td.IRI
		}
	}
	return prefixes
}

// Serialize transforms the active context back into JSON form.
func (c *ActiveContext) Serialize() (map[string]interface{}, error) {
	ctx := make(map[string]interface{})

	if c.hasBase && c.base != c.options.Base {
		ctx["@base"] = c.base
	}
	if c.version != 0 {
		ctx["@version"] = c.version
	}
	if c.hasLanguage {
		ctx["@language"] = c.language
	}
	if c.hasDirection {
		ctx["@direction"] = c.direction
	}
	if c.hasVocab {
		ctx["@vocab"] = c.vocab
	}

	for term, td := range c.terms {
		if td == nil {
			ctx[term] = nil
			continue
		}
		if !td.HasLanguage && len(td.Container) == 0 && td.Type == "" && !td.Reverse {
			if IsKeyword(td.IRI) {
				ctx[term] = td.IRI
				continue
			}
			cid, err := c.CompactIRI(td.IRI, nil, false, false)
			if err != nil {
				return nil, err
			}
			if term == cid {
				ctx[term] = td.IRI
			} else {
				ctx[term] = cid
			}
			continue
		}

		defn := make(map[string]interface{})
		cid, err := c.CompactIRI(td.IRI, nil, false, false)
		if err != nil {
			return nil, err
		}
		if !(term == cid && !td.Reverse) {
			if td.Reverse {
				defn["@reverse"] = cid
			} else {
				defn["@id"] = cid
			}
		}
		if td.Type != "" {
			if IsKeyword(td.Type) {
				defn["@type"] = td.Type
			} else {
				if defn["@type"], err = c.CompactIRI(td.Type, nil, true, false); err != nil {
					return nil, err
				}
			}
		}
		if len(td.Container) == 1 {
			defn["@container"] = td.Container[0]
		} else if len(td.Container) > 1 {
			containerList := make([]interface{}, 0, len(td.Container))
			for _, entry := range td.Container {
				containerList = append(containerList, entry)
			}
			defn["@container"] = containerList
		}
		if td.HasLanguage {
			if td.Language == nil {
				defn["@language"] = nil
			} else {
				defn["@language"] = *td.Language
			}
		}
		ctx[term] = defn
	}

	rval := make(map[string]interface{})
	if len(ctx) != 0 {
		rval["@context"] = ctx
	}
	return rval, nil
}
