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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// NQuadsCodec parses and serializes the N-Quads format.
type NQuadsCodec struct{}

// Parse reads N-Quads from a string, []byte or io.Reader into a Dataset.
func (c *NQuadsCodec) Parse(input interface{}) (*Dataset, error) {
	return ParseNQuadsFrom(input)
}

// Serialize renders the dataset as an N-Quads string.
func (c *NQuadsCodec) Serialize(dataset *Dataset) (interface{}, error) {
	buf := bytes.NewBuffer(nil)
	if err := c.SerializeTo(buf, dataset); err != nil {
		return nil, err
	}
	return buf.String(), nil
}

// SerializeTo writes the dataset as N-Quads to w, default graph first, then
// the named graphs in lexicographical order.
func (c *NQuadsCodec) SerializeTo(w io.Writer, dataset *Dataset) error {
	graphNames := make([]string, 0, len(dataset.Graphs))
	for graphName := range dataset.Graphs {
		graphNames = append(graphNames, graphName)
	}
	for _, graphName := range sortedStrings(graphNames) {
		emittedName := graphName
		if graphName == "@default" {
			emittedName = ""
		}
		for _, quad := range dataset.Graphs[graphName] {
			if _, err := io.WriteString(w, formatNQuad(quad, emittedName)); err != nil {
				return NewError(IOError, err)
			}
		}
	}
	return nil
}

func formatNQuad(quad *Quad, graphName string) string {
	var sb strings.Builder

	writeTerm := func(t Term) {
		switch v := t.(type) {
		case *IRI:
			sb.WriteString("<")
			sb.WriteString(escapeNQuad(v.Val))
			sb.WriteString(">")
		case *BlankNode:
			sb.WriteString(v.ID)
		case *Literal:
			sb.WriteString("\"")
			sb.WriteString(escapeNQuad(v.Val))
			sb.WriteString("\"")
			if v.Datatype == RDFLangString {
				sb.WriteString("@")
				sb.WriteString(v.Language)
			} else if v.Datatype != XSDString {
				sb.WriteString("^^<")
				sb.WriteString(escapeNQuad(v.Datatype))
				sb.WriteString(">")
			}
		}
	}

	writeTerm(quad.Subject)
	sb.WriteString(" ")
	writeTerm(quad.Predicate)
	sb.WriteString(" ")
	writeTerm(quad.Object)

	if graphName != "" {
		sb.WriteString(" ")
		if strings.HasPrefix(graphName, "_:") {
			sb.WriteString(graphName)
		} else {
			sb.WriteString("<")
			sb.WriteString(escapeNQuad(graphName))
			sb.WriteString(">")
		}
	}

	sb.WriteString(" .\n")
	return sb.String()
}

var nquadEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\"", "\\\"",
	"\n", "\\n",
	"\r", "\\r",
	"\t", "\\t",
)

var nquadUnescaper = strings.NewReplacer(
	"\\\\", "\\",
	"\\\"", "\"",
	"\\n", "\n",
	"\\r", "\r",
	"\\t", "\t",
)

func escapeNQuad(str string) string   { return nquadEscaper.Replace(str) }
func unescapeNQuad(str string) string { return nquadUnescaper.Replace(str) }

// N-Quads grammar fragments.
const (
	wsoPattern = "[ \\t]*"
	iriPattern = "(?:<([^:]+:[^>]*)>)"

	// https://www.w3.org/TR/turtle/#grammar-production-BLANK_NODE_LABEL
	pnCharsBase = "A-Za-z" +
		`\x{00C0}-\x{00D6}` +
		`\x{00D8}-\x{00F6}` +
		`\x{00F8}-\x{02FF}` +
		`\x{0370}-\x{037D}` +
		`\x{037F}-\x{1FFF}` +
		`\x{200C}-\x{200D}` +
		`\x{2070}-\x{218F}` +
		`\x{2C00}-\x{2FEF}` +
		`\x{3001}-\x{D7FF}` +
		`\x{F900}-\x{FDCF}` +
		`\x{FDF0}-\x{FFFD}` +
		`\x{10000}-\x{EFFFF}`

	pnCharsU = pnCharsBase + "_"

	pnChars = pnCharsU +
		"0-9" +
		`\-` +
		`\x{00B7}` +
		`\x{0300}-\x{036F}` +
		`\x{203F}-\x{2040}`

	bnodePattern = "(_:" +
		"(?:[" + pnCharsU + "0-9])" +
		"(?:(?:[" + pnChars + ".])*(?:[" + pnChars + "]))?" +
		")"

	plainPattern    = "\"([^\"\\\\]*(?:\\\\.[^\"\\\\]*)*)\""
	datatypePattern = "(?:\\^\\^" + iriPattern + ")"
	languagePattern = "(?:@([a-z]+(?:-[a-zA-Z0-9]+)*))"
	literalPattern  = "(?:" + plainPattern + "(?:" + datatypePattern + "|" + languagePattern + ")?)"
	wsPattern       = "[ \\t]+"

	subjectPattern  = "(?:" + iriPattern + "|" + bnodePattern + ")" + wsPattern
	propertyPattern = iriPattern + wsPattern
	objectPattern   = "(?:" + iriPattern + "|" + bnodePattern + "|" + literalPattern + ")" + wsoPattern
	graphPattern    = "(?:\\.|(?:(?:" + iriPattern + "|" + bnodePattern + ")" + wsoPattern + "\\.))"
)

var (
	regexEmptyLine = regexp.MustCompile("^" + wsoPattern + "$")
	regexQuadLine  = regexp.MustCompile("^" + wsoPattern + subjectPattern + propertyPattern +
		objectPattern + graphPattern + wsoPattern + "$")
)

type lineScanner interface {
	Bytes() []byte
	Scan() bool
	Err() error
}

type bytesLineScanner struct {
	err   error
	b     []byte
	token []byte
	i     int
}

func (ls *bytesLineScanner) Err() error { return ls.err }

func (ls *bytesLineScanner) Scan() bool {
	if ls.err != nil || ls.i >= len(ls.b) {
		return false
	}
	di, token, err := bufio.ScanLines(ls.b[ls.i:], true)
	if err != nil {
		ls.err = err
		return false
	}
	ls.token = token
	ls.i += di
	return true
}

func (ls *bytesLineScanner) Bytes() []byte { return ls.token }

func newScannerFor(o interface{}) (lineScanner, error) {
	switch inp := o.(type) {
	case []byte:
		return &bytesLineScanner{b: inp}, nil
	case string:
		return &bytesLineScanner{b: []byte(inp)}, nil
	case io.Reader:
		return bufio.NewScanner(inp), nil
	default:
		return nil, NewError(InvalidInput, "expected []byte, string or io.Reader")
	}
}

// ParseNQuadsFrom parses N-Quads from an io.Reader, []byte or string.
func ParseNQuadsFrom(o interface{}) (*Dataset, error) {
	dataset := NewDataset()

	scanner, err := newScannerFor(o)
	if err != nil {
		return nil, err
	}

	lineNumber := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		lineNumber++

		if regexEmptyLine.Match(line) {
			continue
		}

		if !regexQuadLine.Match(line) {
			return nil, NewError(SyntaxError,
				fmt.Errorf("error while parsing N-Quads; invalid quad on line %d", lineNumber))
		}
		match := regexQuadLine.FindStringSubmatch(string(line))

		var subject Term
		if match[1] != "" {
			subject = NewIRI(unescapeNQuad(match[1]))
		} else {
			subject = NewBlankNode(unescapeNQuad(match[2]))
		}

		predicate := NewIRI(unescapeNQuad(match[3]))

		var object Term
		switch {
		case match[4] != "":
			object = NewIRI(unescapeNQuad(match[4]))
		case match[5] != "":
			object = NewBlankNode(unescapeNQuad(match[5]))
		default:
			language := unescapeNQuad(match[8])
			datatype := XSDString
			if match[7] != "" {
				datatype = unescapeNQuad(match[7])
			} else if match[8] != "" {
				datatype = RDFLangString
			}
			object = NewLiteral(unescapeNQuad(match[6]), datatype, language)
		}

		name := "@default"
		if match[9] != "" {
			name = unescapeNQuad(match[9])
		} else if match[10] != "" {
			name = unescapeNQuad(match[10])
		}

		quad := NewQuad(subject, predicate, object, name)

		triples, present := dataset.Graphs[name]
		if !present {
			dataset.Graphs[name] = []*Quad{quad}
			continue
		}
		// keep quads unique within their graph
		containsQuad := false
		for _, elem := range triples {
			if quad.Equal(elem) {
				containsQuad = true
				break
			}
		}
		if !containsQuad {
			dataset.Graphs[name] = append(triples, quad)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, NewError(IOError, err)
	}

	return dataset, nil
}

// ParseNQuads parses N-Quads from a string.
func ParseNQuads(input string) (*Dataset, error) {
	return ParseNQuadsFrom(input)
}
