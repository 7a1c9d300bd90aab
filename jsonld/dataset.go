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
	"io"
	"regexp"
	"sort"
	"strings"
)

const (
	RDFSyntaxNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSchemaNS = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNS       = "http://www.w3.org/2001/XMLSchema#"
	I18NNS      = "https://www.w3.org/ns/i18n#"

	XSDBoolean = XSDNS + "boolean"
	XSDDouble  = XSDNS + "double"
	XSDInteger = XSDNS + "integer"
	XSDFloat   = XSDNS + "float"
	XSDDecimal = XSDNS + "decimal"
	XSDString  = XSDNS + "string"

	RDFType        = RDFSyntaxNS + "type"
	RDFFirst       = RDFSyntaxNS + "first"
	RDFRest        = RDFSyntaxNS + "rest"
	RDFNil         = RDFSyntaxNS + "nil"
	RDFValue       = RDFSyntaxNS + "value"
	RDFLanguage    = RDFSyntaxNS + "language"
	RDFDirection   = RDFSyntaxNS + "direction"
	RDFJSONLiteral = RDFSyntaxNS + "JSON"
	RDFLangString  = RDFSyntaxNS + "langString"
	RDFList        = RDFSyntaxNS + "List"
)

// Term is the value of a quad position: an IRI reference, a blank node or a
// literal.
type Term interface {
	// Value returns the lexical value of the term.
	Value() string
	// Equal reports whether this term equals the given term.
	Equal(t Term) bool
}

// IRI is an IRI term.
type IRI struct {
	Val string
}

// NewIRI creates an IRI term.
func NewIRI(iri string) *IRI { return &IRI{Val: iri} }

func (iri *IRI) Value() string { return iri.Val }

func (iri *IRI) Equal(t Term) bool {
	other, ok := t.(*IRI)
	return ok && iri.Val == other.Val
}

// BlankNode is a blank node term, its value including the "_:" prefix.
type BlankNode struct {
	ID string
}

// NewBlankNode creates a blank node term.
func NewBlankNode(id string) *BlankNode { return &BlankNode{ID: id} }

func (bn *BlankNode) Value() string { return bn.ID }

func (bn *BlankNode) Equal(t Term) bool {
	other, ok := t.(*BlankNode)
	return ok && bn.ID == other.ID
}

// Literal is a literal term carrying a lexical value, a datatype IRI and an
// optional language tag.
type Literal struct {
	Val      string
	Datatype string
	Language string
}

// NewLiteral creates a literal term; an empty datatype defaults to
// xsd:string.
func NewLiteral(value string, datatype string, language string) *Literal {
	if datatype == "" {
		datatype = XSDString
	}
	return &Literal{Val: value, Datatype: datatype, Language: language}
}

func (l *Literal) Value() string { return l.Val }

func (l *Literal) Equal(t Term) bool {
	other, ok := t.(*Literal)
	return ok && l.Val == other.Val && l.Language == other.Language && l.Datatype == other.Datatype
}

// IsTermIRI returns true if the given term is an IRI.
func IsTermIRI(t Term) bool {
	_, isIRI := t.(*IRI)
	return isIRI
}

// IsTermBlankNode returns true if the given term is a blank node.
func IsTermBlankNode(t Term) bool {
	_, isBlank := t.(*BlankNode)
	return isBlank
}

// IsTermLiteral returns true if the given term is a literal.
func IsTermLiteral(t Term) bool {
	_, isLiteral := t.(*Literal)
	return isLiteral
}

// Quad is an RDF quad. Graph is nil for the default graph.
type Quad struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

// NewQuad creates a quad; graph "" or "@default" places it in the default
// graph.
func NewQuad(subject Term, predicate Term, object Term, graph string) *Quad {
	q := &Quad{Subject: subject, Predicate: predicate, Object: object}
	if graph != "" && graph != "@default" {
		if strings.HasPrefix(graph, "_:") {
			q.Graph = NewBlankNode(graph)
		} else {
			q.Graph = NewIRI(graph)
		}
	}
	return q
}

// Equal reports whether this quad equals the given quad.
func (q *Quad) Equal(o *Quad) bool {
	if o == nil {
		return false
	}
	if (q.Graph == nil) != (o.Graph == nil) {
		return false
	}
	if q.Graph != nil && !q.Graph.Equal(o.Graph) {
		return false
	}
	return q.Subject.Equal(o.Subject) && q.Predicate.Equal(o.Predicate) && q.Object.Equal(o.Object)
}

// Valid reports whether all terms of the quad are well-formed.
func (q *Quad) Valid() bool {
	for _, t := range []Term{q.Subject, q.Predicate, q.Object, q.Graph} {
		if t != nil && invalidTerm(t) {
			return false
		}
	}
	return true
}

var validLanguageRegex = regexp.MustCompile("^[a-zA-Z]+(-[a-zA-Z0-9]+)*$")

func invalidTerm(t Term) bool {
	switch v := t.(type) {
	case *IRI:
		return !wellFormedIRI(v.Val)
	case *Literal:
		if v.Language != "" && !validLanguageRegex.MatchString(v.Language) {
			return true
		}
		if v.Datatype != "" && !wellFormedIRI(v.Datatype) {
			return true
		}
	}
	return false
}

func wellFormedIRI(val string) bool {
	if strings.ContainsAny(val, " \t\n\r<>\"{}|\\^`") {
		return false
	}
	return IsAbsoluteIRI(val)
}

// Dataset is a set of quads grouped by graph name, with "@default" naming
// the default graph, plus an optional namespace table for serializers.
type Dataset struct {
	Graphs map[string][]*Quad

	namespaces map[string]string
}

// NewDataset creates an empty dataset with a default graph.
func NewDataset() *Dataset {
	return &Dataset{
		Graphs:     map[string][]*Quad{"@default": {}},
		namespaces: make(map[string]string),
	}
}

// Quads returns every quad of the dataset, default graph first, remaining
// graphs in lexicographical order.
func (ds *Dataset) Quads() []*Quad {
	quads := append([]*Quad(nil), ds.Graphs["@default"]...)
	names := make([]string, 0, len(ds.Graphs))
	for name := range ds.Graphs {
		if name != "@default" {
			names = append(names, name)
		}
	}
	for _, name := range sortedStrings(names) {
		quads = append(quads, ds.Graphs[name]...)
	}
	return quads
}

// GraphQuads returns the quads of one graph.
func (ds *Dataset) GraphQuads(graphName string) []*Quad {
	return ds.Graphs[graphName]
}

// SetNamespace registers a prefix for an IRI namespace.
func (ds *Dataset) SetNamespace(prefix string, ns string) {
	ds.namespaces[prefix] = ns
}

// Namespace returns the IRI registered for a prefix.
func (ds *Dataset) Namespace(prefix string) string {
	return ds.namespaces[prefix]
}

// Namespaces returns the full prefix table.
func (ds *Dataset) Namespaces() map[string]string {
	return ds.namespaces
}

// ClearNamespaces drops all registered prefixes.
func (ds *Dataset) ClearNamespaces() {
	ds.namespaces = make(map[string]string)
}

// Context returns a JSON-LD context object holding the registered
// namespaces.
func (ds *Dataset) Context() map[string]interface{} {
	rval := make(map[string]interface{}, len(ds.namespaces))
	for k, v := range ds.namespaces {
		if k == "" {
			rval["@vocab"] = v
		} else {
			rval[k] = v
		}
	}
	return rval
}

// ParseContext extracts prefix declarations from a JSON-LD context into the
// dataset namespace table.
func (ds *Dataset) ParseContext(contextLike interface{}, opts *Options) error {
	ctx, err := NewActiveContext(opts).Parse(contextLike)
	if err != nil {
		return err
	}
	for key, val := range ctx.GetPrefixes(true) {
		if key == "@vocab" {
			ds.SetNamespace("", val)
		} else if !IsKeyword(key) {
			ds.SetNamespace(key, val)
		}
	}
	return nil
}

// Serializer parses serialized RDF into a Dataset and back.
type Serializer interface {
	Parse(input interface{}) (*Dataset, error)
	Serialize(dataset *Dataset) (interface{}, error)
}

// SerializerTo additionally streams serialized output to a writer.
type SerializerTo interface {
	SerializeTo(w io.Writer, dataset *Dataset) error
}

var canonicalDoubleRegEx = regexp.MustCompile(`(\d)0*E(-?)0*(\d)`)

// CanonicalDouble returns the canonical XSD lexical form of a double.
func CanonicalDouble(v float64) string {
	s := fmt.Sprintf("%1.15E", v)
	s = strings.Replace(s, "E+", "E", 1)
	return canonicalDoubleRegEx.ReplaceAllString(s, "${1}E${2}${3}")
}

func sortedStrings(values []string) []string {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return sorted
}
