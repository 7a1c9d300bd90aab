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

// TermDefinition records how a term maps to an IRI together with its value
// coercion and container behaviour.
type TermDefinition struct {
	// IRI mapping; may be a keyword.
	IRI string
	// GeneratorIRIs holds the extra target IRIs of a property-generator
	// term. Empty unless Options.AllowPropertyGenerators is set.
	GeneratorIRIs []string
	// Reverse marks a reverse property.
	Reverse bool
	// Type is the type coercion: an absolute IRI, @id, @vocab, @json or
	// @none. Empty when no type mapping is set.
	Type string
	// Language is the language mapping; nil with HasLanguage set means an
	// explicit null ("no language").
	Language    *string
	HasLanguage bool
	// Direction is the base-direction mapping; nil with HasDirection set
	// means an explicit null.
	Direction    *string
	HasDirection bool
	// Container holds the container mapping values (@list, @set, @index,
	// @language, @id, @type, @graph, @none).
	Container []string
	// Context is an unparsed term-scoped context.
	Context    interface{}
	HasContext bool
	// Nest names the nest key, "@nest" by default when set.
	Nest string
	// Index names the property-index key for @index containers.
	Index string
	// Prefix allows the term to be used as a compact-IRI prefix.
	Prefix bool
	// Protected prevents redefinition outside override scopes.
	Protected bool
}

func (td *TermDefinition) hasContainer(value string) bool {
	return inStrings(value, td.Container)
}

// languageValue returns the language mapping as a dynamic value: nil for an
// explicit null or an unset mapping, the tag otherwise.
func (td *TermDefinition) languageValue() interface{} {
	if !td.HasLanguage || td.Language == nil {
		return nil
	}
	return *td.Language
}

func (td *TermDefinition) directionValue() interface{} {
	if !td.HasDirection || td.Direction == nil {
		return nil
	}
	return *td.Direction
}

// equal reports whether two definitions are interchangeable. Used for the
// protected-term redefinition check, where an identical redefinition is
// allowed.
func (td *TermDefinition) equal(other *TermDefinition) bool {
	if td == nil || other == nil {
		return td == other
	}
	if td.IRI != other.IRI ||
		td.Reverse != other.Reverse ||
		td.Type != other.Type ||
		td.HasLanguage != other.HasLanguage ||
		td.HasDirection != other.HasDirection ||
		td.Nest != other.Nest ||
		td.Index != other.Index ||
		td.Prefix != other.Prefix ||
		td.Protected != other.Protected {
		return false
	}
	if (td.Language == nil) != (other.Language == nil) ||
		(td.Language != nil && *td.Language != *other.Language) {
		return false
	}
	if (td.Direction == nil) != (other.Direction == nil) ||
		(td.Direction != nil && *td.Direction != *other.Direction) {
		return false
	}
	if len(td.Container) != len(other.Container) {
		return false
	}
	for _, c := range td.Container {
		if !other.hasContainer(c) {
			return false
		}
	}
	if len(td.GeneratorIRIs) != len(other.GeneratorIRIs) {
		return false
	}
	for i, iri := range td.GeneratorIRIs {
		if other.GeneratorIRIs[i] != iri {
			return false
		}
	}
	if td.HasContext != other.HasContext {
		return false
	}
	if td.HasContext && !DeepCompare(td.Context, other.Context, true) {
		return false
	}
	return true
}

func (td *TermDefinition) clone() *TermDefinition {
	if td == nil {
		return nil
	}
	clone := *td
	clone.Container = append([]string(nil), td.Container...)
	clone.GeneratorIRIs = append([]string(nil), td.GeneratorIRIs...)
	return &clone
}
