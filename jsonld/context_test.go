package jsonld

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorDocumentLoader struct {
	err error
}

func (l errorDocumentLoader) LoadDocument(u string) (*RemoteDocument, error) {
	return nil, l.err
}

type staticDocumentLoader struct {
	docs map[string]interface{}
}

func (l staticDocumentLoader) LoadDocument(u string) (*RemoteDocument, error) {
	doc, present := l.docs[u]
	if !present {
		return nil, NewError(LoadingDocumentFailed, u)
	}
	return &RemoteDocument{DocumentURL: u, Document: doc}, nil
}

func TestActiveContext_Parse(t *testing.T) {
	expectedError := errors.New("failed")
	opts := NewOptions("")
	opts.DocumentLoader = errorDocumentLoader{err: expectedError}

	t.Run("DocumentLoader can't resolve @context URL", func(t *testing.T) {
		ctx := NewActiveContext(opts)
		_, err := ctx.Parse("http://example.org/foo.ldjson")
		jsonLDError := new(Error)
		require.ErrorAs(t, err, &jsonLDError)
		assert.Equal(t, LoadingRemoteContextFailed, jsonLDError.Code)
		assert.ErrorIs(t, err, expectedError, "DocumentLoader error is not wrapped")
	})
	t.Run("DocumentLoader can't resolve @import", func(t *testing.T) {
		ctx := NewActiveContext(opts)
		_, err := ctx.Parse(map[string]interface{}{
			"@import": "http://example.org/foo.ldjson",
		})
		jsonLDError := new(Error)
		require.ErrorAs(t, err, &jsonLDError)
		assert.Equal(t, LoadingRemoteContextFailed, jsonLDError.Code)
		assert.ErrorIs(t, err, expectedError, "DocumentLoader error is not wrapped")
	})
}

func TestActiveContext_ParseTermDefinitions(t *testing.T) {
	opts := NewOptions("")

	ctx, err := NewActiveContext(opts).Parse(map[string]interface{}{
		"@vocab": "http://example.org/vocab#",
		"ex":     "http://example.org/",
		"name":   "http://schema.org/name",
		"knows": map[string]interface{}{
			"@id":        "http://schema.org/knows",
			"@type":      "@id",
			"@container": "@set",
		},
		"label": map[string]interface{}{
			"@id":        "http://schema.org/label",
			"@container": "@language",
		},
		"members": map[string]interface{}{
			"@reverse": "http://schema.org/memberOf",
		},
	})
	require.NoError(t, err)

	nameDef := ctx.Term("name")
	require.NotNil(t, nameDef)
	assert.Equal(t, "http://schema.org/name", nameDef.IRI)
	assert.True(t, nameDef.Prefix == false)

	knowsDef := ctx.Term("knows")
	require.NotNil(t, knowsDef)
	assert.Equal(t, "@id", knowsDef.Type)
	assert.True(t, ctx.HasContainer("knows", "@set"))

	assert.True(t, ctx.HasContainer("label", "@language"))
	assert.True(t, ctx.IsReverseProperty("members"))
	assert.Equal(t, "http://schema.org/memberOf", ctx.Term("members").IRI)

	// prefix terms participate in compact IRI expansion
	iri, err := ctx.ExpandIRI("ex:thing", false, true, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/thing", iri)

	// vocab fallback
	iri, err = ctx.ExpandIRI("other", false, true, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/vocab#other", iri)
}

func TestActiveContext_ParseErrors(t *testing.T) {
	opts := NewOptions("")

	t.Run("invalid vocab mapping", func(t *testing.T) {
		_, err := NewActiveContext(opts).Parse(map[string]interface{}{
			"@vocab": float64(42),
		})
		require.Error(t, err)
		assert.True(t, IsError(err, InvalidVocabMapping))
	})

	t.Run("invalid base IRI", func(t *testing.T) {
		_, err := NewActiveContext(opts).Parse(map[string]interface{}{
			"@base": float64(1),
		})
		require.Error(t, err)
		assert.True(t, IsError(err, InvalidBaseIRI))
	})

	t.Run("invalid default language", func(t *testing.T) {
		_, err := NewActiveContext(opts).Parse(map[string]interface{}{
			"@language": true,
		})
		require.Error(t, err)
		assert.True(t, IsError(err, InvalidDefaultLanguage))
	})

	t.Run("invalid base direction", func(t *testing.T) {
		_, err := NewActiveContext(opts).Parse(map[string]interface{}{
			"@direction": "up",
		})
		require.Error(t, err)
		assert.True(t, IsError(err, InvalidBaseDirection))
	})

	t.Run("invalid version value", func(t *testing.T) {
		_, err := NewActiveContext(opts).Parse(map[string]interface{}{
			"@version": float64(1.0),
		})
		require.Error(t, err)
		assert.True(t, IsError(err, InvalidVersionValue))
	})

	t.Run("keyword redefinition", func(t *testing.T) {
		_, err := NewActiveContext(opts).Parse(map[string]interface{}{
			"@value": "http://example.org/value",
		})
		require.Error(t, err)
		assert.True(t, IsError(err, KeywordRedefinition))
	})

	t.Run("cyclic IRI mapping", func(t *testing.T) {
		_, err := NewActiveContext(opts).Parse(map[string]interface{}{
			"a": "b:x",
			"b": "a:y",
		})
		require.Error(t, err)
		assert.True(t, IsError(err, CyclicIRIMapping))
	})

	t.Run("invalid container mapping", func(t *testing.T) {
		_, err := NewActiveContext(opts).Parse(map[string]interface{}{
			"term": map[string]interface{}{
				"@id":        "http://example.org/term",
				"@container": "@bogus",
			},
		})
		require.Error(t, err)
		assert.True(t, IsError(err, InvalidContainerMapping))
	})
}

func TestActiveContext_ProtectedTerms(t *testing.T) {
	opts := NewOptions("")

	ctx, err := NewActiveContext(opts).Parse(map[string]interface{}{
		"@protected": true,
		"name":       "http://schema.org/name",
	})
	require.NoError(t, err)
	require.NotNil(t, ctx.Term("name"))
	assert.True(t, ctx.Term("name").Protected)

	// a conflicting redefinition fails
	_, err = ctx.Parse(map[string]interface{}{
		"name": "http://example.org/other",
	})
	require.Error(t, err)
	assert.True(t, IsError(err, ProtectedTermRedefinition))

	// nullification with protected terms in scope fails
	_, err = ctx.Parse(nil)
	require.Error(t, err)
	assert.True(t, IsError(err, InvalidContextNullification))

	// an identical redefinition is fine
	_, err = ctx.Parse(map[string]interface{}{
		"@protected": true,
		"name":       "http://schema.org/name",
	})
	assert.NoError(t, err)
}

func TestActiveContext_NullContextRestoresPrevious(t *testing.T) {
	opts := NewOptions("http://example.com/doc")

	ctx, err := NewActiveContext(opts).Parse(map[string]interface{}{
		"@base": "http://other.example.com/",
	})
	require.NoError(t, err)

	reset, err := ctx.Parse(nil)
	require.NoError(t, err)

	iri, err := reset.ExpandIRI("x", true, false, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/x", iri)
}

func TestActiveContext_RemoteContext(t *testing.T) {
	opts := NewOptions("")
	opts.DocumentLoader = staticDocumentLoader{docs: map[string]interface{}{
		"http://example.com/ctx": map[string]interface{}{
			"@context": map[string]interface{}{
				"name": "http://schema.org/name",
			},
		},
	}}

	ctx, err := NewActiveContext(opts).Parse("http://example.com/ctx")
	require.NoError(t, err)
	require.NotNil(t, ctx.Term("name"))
	assert.Equal(t, "http://schema.org/name", ctx.Term("name").IRI)
}

func TestActiveContext_CompactIRIRoundTrip(t *testing.T) {
	opts := NewOptions("")
	ctx, err := NewActiveContext(opts).Parse(map[string]interface{}{
		"schema": "http://schema.org/",
		"name":   "http://schema.org/name",
	})
	require.NoError(t, err)

	expanded, err := ctx.ExpandIRI("name", false, true, nil, nil)
	require.NoError(t, err)
	compacted, err := ctx.CompactIRI(expanded, nil, true, false)
	require.NoError(t, err)
	assert.Equal(t, "name", compacted)

	// an IRI without a term compacts through the prefix
	compacted, err = ctx.CompactIRI("http://schema.org/url", nil, true, false)
	require.NoError(t, err)
	assert.Equal(t, "schema:url", compacted)
}

func TestActiveContext_ExpandValue(t *testing.T) {
	opts := NewOptions("")
	ctx, err := NewActiveContext(opts).Parse(map[string]interface{}{
		"@language": "en",
		"age": map[string]interface{}{
			"@id":   "http://schema.org/age",
			"@type": "http://www.w3.org/2001/XMLSchema#integer",
		},
		"homepage": map[string]interface{}{
			"@id":   "http://schema.org/url",
			"@type": "@id",
		},
	})
	require.NoError(t, err)

	v, err := ctx.ExpandValue("age", float64(30))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"@value": float64(30),
		"@type":  "http://www.w3.org/2001/XMLSchema#integer",
	}, v)

	v, err = ctx.ExpandValue("homepage", "http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"@id": "http://example.com/"}, v)

	v, err = ctx.ExpandValue("other", "hello")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"@value": "hello", "@language": "en"}, v)
}
