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
	"errors"
	"fmt"
)

// ErrorCode identifies a processing error from the JSON-LD 1.1 error registry.
type ErrorCode string

const (
	LoadingDocumentFailed       ErrorCode = "loading document failed"
	LoadingRemoteContextFailed  ErrorCode = "loading remote context failed"
	MultipleContextLinkHeaders  ErrorCode = "multiple context link headers"
	RecursiveContextInclusion   ErrorCode = "recursive context inclusion"
	InvalidRemoteContext        ErrorCode = "invalid remote context"
	ContextOverflow             ErrorCode = "context overflow"
	InvalidContextEntry         ErrorCode = "invalid context entry"
	InvalidContextNullification ErrorCode = "invalid context nullification"
	InvalidLocalContext         ErrorCode = "invalid local context"
	InvalidBaseIRI              ErrorCode = "invalid base IRI"
	InvalidVocabMapping         ErrorCode = "invalid vocab mapping"
	InvalidDefaultLanguage      ErrorCode = "invalid default language"
	InvalidBaseDirection        ErrorCode = "invalid base direction"
	InvalidVersionValue         ErrorCode = "invalid @version value"
	InvalidImportValue          ErrorCode = "invalid @import value"
	InvalidTermDefinition       ErrorCode = "invalid term definition"
	CyclicIRIMapping            ErrorCode = "cyclic IRI mapping"
	KeywordRedefinition         ErrorCode = "keyword redefinition"
	InvalidIRIMapping           ErrorCode = "invalid IRI mapping"
	InvalidKeywordAlias         ErrorCode = "invalid keyword alias"
	InvalidReverseProperty      ErrorCode = "invalid reverse property"
	InvalidReversePropertyMap   ErrorCode = "invalid reverse property map"
	InvalidReversePropertyValue ErrorCode = "invalid reverse property value"
	InvalidReverseValue         ErrorCode = "invalid @reverse value"
	InvalidTypeMapping          ErrorCode = "invalid type mapping"
	InvalidContainerMapping     ErrorCode = "invalid container mapping"
	InvalidLanguageMapping      ErrorCode = "invalid language mapping"
	InvalidNestValue            ErrorCode = "invalid @nest value"
	InvalidPrefixValue          ErrorCode = "invalid @prefix value"
	ProtectedTermRedefinition   ErrorCode = "protected term redefinition"
	InvalidScopedContext        ErrorCode = "invalid scoped context"
	InvalidPropagateValue       ErrorCode = "invalid @propagate value"
	ProcessingModeConflict      ErrorCode = "processing mode conflict"
	InvalidIDValue              ErrorCode = "invalid @id value"
	InvalidTypeValue            ErrorCode = "invalid type value"
	InvalidIndexValue           ErrorCode = "invalid @index value"
	InvalidLanguageTaggedString ErrorCode = "invalid language-tagged string"
	InvalidLanguageTaggedValue  ErrorCode = "invalid language-tagged value"
	InvalidLanguageMapValue     ErrorCode = "invalid language map value"
	InvalidTypedValue           ErrorCode = "invalid typed value"
	InvalidValueObject          ErrorCode = "invalid value object"
	InvalidValueObjectValue     ErrorCode = "invalid value object value"
	InvalidSetOrListObject      ErrorCode = "invalid set or list object"
	InvalidIncludedValue        ErrorCode = "invalid @included value"
	ListOfLists                 ErrorCode = "list of lists"
	CollidingKeywords           ErrorCode = "colliding keywords"
	CompactionToListOfLists     ErrorCode = "compaction to list of lists"
	ConflictingIndexes          ErrorCode = "conflicting indexes"
	InvalidFrame                ErrorCode = "invalid frame"
	InvalidEmbedValue           ErrorCode = "invalid @embed value"
	IRIConfusedWithPrefix       ErrorCode = "IRI confused with prefix"

	// non-registry errors
	SyntaxError   ErrorCode = "syntax error"
	UnknownFormat ErrorCode = "unknown format"
	InvalidInput  ErrorCode = "invalid input"
	ParseError    ErrorCode = "parse error"
	IOError       ErrorCode = "io error"
	UnknownError  ErrorCode = "unknown error"
)

// Error is a JSON-LD processing error. Code carries the registry identifier,
// Details any wrapped cause or free-form diagnostic, and Path the JSON
// pointer of the offending input element when the algorithm knows it.
type Error struct {
	Code    ErrorCode
	Details interface{}
	Path    string
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Details != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Details)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s (at %s)", msg, e.Path)
	}
	return msg
}

// Unwrap exposes a wrapped cause, if Details carries one.
func (e *Error) Unwrap() error {
	if err, isError := e.Details.(error); isError {
		return err
	}
	return nil
}

// NewError creates a new Error with the given code and details.
func NewError(code ErrorCode, details interface{}) *Error {
	return &Error{Code: code, Details: details}
}

// IsError reports whether err is a JSON-LD error with the given code.
func IsError(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
