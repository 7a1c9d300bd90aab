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
	"net/url"
	"regexp"
	"strings"
)

// ParsedIRI is an IRI reference split into its components, with the path
// normalized for relativization.
type ParsedIRI struct {
	Href           string
	Scheme         string
	Authority      string
	Path           string
	NormalizedPath string
	Query          string
	Fragment       string
}

var iriParts = regexp.MustCompile(`^(?:([^:/?#]+):)?(?://([^/?#]*))?([^?#]*)(?:\?([^#]*))?(?:#(.*))?`)

// ParseIRI splits an IRI reference into components per RFC 3986 appendix B.
func ParseIRI(iri string) *ParsedIRI {
	p := &ParsedIRI{Href: iri}

	match := iriParts.FindStringSubmatch(iri)
	p.Scheme = match[1]
	p.Authority = match[2]
	p.Path = match[3]
	p.Query = match[4]
	p.Fragment = match[5]

	// a network-path reference with an empty path normalizes to "/"
	if p.Authority != "" && p.Path == "" {
		p.Path = "/"
	}
	p.NormalizedPath = removeDotSegments(p.Path, p.Authority != "")

	return p
}

// removeDotSegments applies RFC 3986 section 5.2.4 to a path.
func removeDotSegments(path string, hasAuthority bool) string {
	segments := strings.Split(path, "/")
	var out []string
	for i, segment := range segments {
		if segment == "." {
			continue
		}
		if segment == "" && i > 0 && i < len(segments)-1 {
			continue
		}
		if segment == ".." {
			if hasAuthority || (len(out) > 0 && out[len(out)-1] != "..") {
				if len(out) > 0 {
					out = out[:len(out)-1]
				}
			} else {
				out = append(out, "..")
			}
			continue
		}
		out = append(out, segment)
	}

	rval := strings.Join(out, "/")
	if strings.HasPrefix(path, "/") && !strings.HasPrefix(rval, "/") {
		rval = "/" + rval
	}
	return rval
}

// Resolve resolves a reference against the given base IRI and returns the
// absolute form.
func Resolve(base string, ref string) string {
	if base == "" {
		return ref
	}
	if strings.TrimSpace(ref) == "" {
		return base
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}

	// bare query-string references replace the base query, dropping any fragment
	if strings.HasPrefix(ref, "?") {
		baseURL.Fragment = ""
		baseURL.RawQuery = ref[1:]
		return baseURL.String()
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	resolved := baseURL.ResolveReference(refURL)
	if resolved.Path != "" {
		resolved.Path = removeDotSegments(resolved.Path, true)
	}
	return resolved.String()
}

// Relativize turns an absolute IRI into a reference relative to base, or
// returns the IRI unchanged when it does not share the base's root.
func Relativize(base string, iri string) string {
	if base == "" {
		return iri
	}

	parsedBase := ParseIRI(base)

	root := ""
	if parsedBase.Href != "" {
		root = parsedBase.Scheme + "://" + parsedBase.Authority
	} else if !strings.HasPrefix(iri, "//") {
		root = "//"
	}

	if !strings.HasPrefix(iri, root) {
		return iri
	}

	rel := ParseIRI(iri[len(root):])

	baseSegments := strings.Split(parsedBase.NormalizedPath, "/")
	iriSegments := strings.Split(rel.NormalizedPath, "/")

	// keep the last segment when the reference carries no query or fragment
	last := 1
	if rel.Fragment != "" || rel.Query != "" {
		last = 0
	}

	for len(baseSegments) > 0 && len(iriSegments) > last && baseSegments[0] == iriSegments[0] {
		baseSegments = baseSegments[1:]
		iriSegments = iriSegments[1:]
	}

	rval := ""
	if len(baseSegments) > 0 {
		if !strings.HasSuffix(parsedBase.NormalizedPath, "/") || baseSegments[0] == "" {
			baseSegments = baseSegments[:len(baseSegments)-1]
		}
		for range baseSegments {
			rval += "../"
		}
	}

	rval += strings.Join(iriSegments, "/")

	if rel.Query != "" {
		rval += "?" + rel.Query
	}
	if rel.Fragment != "" {
		rval += "#" + rel.Fragment
	}
	if rval == "" {
		rval = "./"
	}
	return rval
}

// IsAbsoluteIRI returns true for absolute IRIs and blank node identifiers.
func IsAbsoluteIRI(value string) bool {
	if strings.HasPrefix(value, "_:") {
		return true
	}
	u, err := url.Parse(value)
	return err == nil && u.IsAbs()
}

// IsRelativeIRI returns true when the value is neither a keyword nor an
// absolute IRI.
func IsRelativeIRI(value string) bool {
	return !(IsKeyword(value) || IsAbsoluteIRI(value))
}

// IsBlankNodeIdentifier returns true for strings in the "_:" namespace.
func IsBlankNodeIdentifier(value string) bool {
	return strings.HasPrefix(value, "_:")
}
