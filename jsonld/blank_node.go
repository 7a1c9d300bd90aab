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

import "strconv"

// BlankNodeNamer issues blank node identifiers, remembering every
// identifier it has relabelled so the same source identifier always maps to
// the same output identifier within one invocation.
type BlankNodeNamer struct {
	prefix  string
	counter int
	issued  map[string]string
	order   []string
}

// NewBlankNodeNamer creates a namer issuing identifiers with the given
// prefix ("_:b" for the standard namespace).
func NewBlankNodeNamer(prefix string) *BlankNodeNamer {
	return &BlankNodeNamer{
		prefix: prefix,
		issued: make(map[string]string),
		order:  make([]string, 0),
	}
}

// Issue returns the identifier assigned to old, minting one on first sight.
// An empty old mints a fresh identifier with no memo entry.
func (n *BlankNodeNamer) Issue(old string) string {
	if old != "" {
		if id, present := n.issued[old]; present {
			return id
		}
	}

	id := n.prefix + strconv.Itoa(n.counter)
	n.counter++

	if old != "" {
		n.issued[old] = id
		n.order = append(n.order, old)
	}
	return id
}

// Has reports whether old has already been assigned an identifier.
func (n *BlankNodeNamer) Has(old string) bool {
	_, present := n.issued[old]
	return present
}

// Issued returns the source identifiers in issue order.
func (n *BlankNodeNamer) Issued() []string {
	return append([]string(nil), n.order...)
}

// Clone copies the namer, including its memo.
func (n *BlankNodeNamer) Clone() *BlankNodeNamer {
	clone := &BlankNodeNamer{
		prefix:  n.prefix,
		counter: n.counter,
		issued:  make(map[string]string, len(n.issued)),
		order:   append([]string(nil), n.order...),
	}
	for k, v := range n.issued {
		clone.issued[k] = v
	}
	return clone
}
