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

const (
	JsonLd_1_0       = "json-ld-1.0"              //nolint:stylecheck
	JsonLd_1_1       = "json-ld-1.1"              //nolint:stylecheck
	JsonLd_1_1_Frame = "json-ld-1.1-expand-frame" //nolint:stylecheck

	EmbedAlways = "@always"
	EmbedOnce   = "@once"
	EmbedNever  = "@never"
	// 1.0-era aliases still found in the wild
	EmbedLast = "@last"
	EmbedLink = "@link"

	RDFDirectionI18N     = "i18n-datatype"
	RDFDirectionCompound = "compound-literal"
)

// Options is the option bag accepted by every processor operation, per the
// JSON-LD API JsonLdOptions type.
type Options struct {
	// Base is the base IRI for resolving document-relative references.
	Base string
	// CompactArrays collapses single-element arrays during compaction.
	CompactArrays bool
	// CompactToRelative permits IRIs to compact to references relative to
	// the base.
	CompactToRelative bool
	// ExpandContext is a context applied before expansion begins.
	ExpandContext interface{}
	// ProcessingMode selects json-ld-1.0 or json-ld-1.1 behaviour.
	ProcessingMode string
	// DocumentLoader dereferences remote documents and contexts.
	DocumentLoader DocumentLoader
	// Ordered forces lexicographical processing of keys where the
	// algorithms allow a choice.
	Ordered bool
	// ExtractAllScripts is carried in the option bag only: no operation in
	// this package reads it, and document loaders do not receive options.
	ExtractAllScripts bool

	// Framing flags.
	Embed        string
	Explicit     bool
	RequireAll   bool
	FrameDefault bool
	OmitDefault  bool
	OmitGraph    bool

	// RDF conversion flags.
	UseRdfType            bool
	UseNativeTypes        bool
	ProduceGeneralizedRdf bool
	RDFDirection          string

	// AllowPropertyGenerators enables legacy multi-IRI term definitions.
	AllowPropertyGenerators bool

	// InputFormat and Format name serialized RDF formats on the way in and
	// out ("application/n-quads").
	InputFormat string
	Format      string
	// OutputForm post-processes FromRDF output: "expanded", "compacted" or
	// "flattened".
	OutputForm string
	// UseNamespaces extracts context prefixes into the dataset namespace
	// table during ToRDF.
	UseNamespaces bool

	// WarningHandler receives non-fatal events (malformed language tags,
	// ignored keyword-like terms). Nil drops them.
	WarningHandler func(error)
}

// NewOptions creates an Options with the defaults the spec prescribes and
// the given base IRI.
func NewOptions(base string) *Options {
	return &Options{
		Base:              base,
		CompactArrays:     true,
		CompactToRelative: true,
		ProcessingMode:    JsonLd_1_1,
		DocumentLoader:    NewDefaultDocumentLoader(nil),
		Embed:             EmbedOnce,
		RequireAll:        false,
		UseNativeTypes:    false,
	}
}

// Copy creates a shallow copy of the option bag.
func (opts *Options) Copy() *Options {
	clone := *opts
	return &clone
}

func (opts *Options) warn(err error) {
	if opts.WarningHandler != nil {
		opts.WarningHandler(err)
	}
}
