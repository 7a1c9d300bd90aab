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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/pquerna/cachecontrol"
)

const (
	// acceptHeader prefers JSON-LD but accepts plain JSON and text.
	acceptHeader = "application/ld+json, application/json;q=0.9, application/javascript;q=0.5, text/javascript;q=0.5, text/plain;q=0.2, */*;q=0.1"

	// ApplicationJSONLDType is the JSON-LD media type.
	ApplicationJSONLDType = "application/ld+json"

	// linkHeaderRel is the link relation that points at a remote context.
	linkHeaderRel = "http://www.w3.org/ns/json-ld#context"
)

// RemoteDocument is a document retrieved from a remote source, together
// with its final URL and any context URL announced via a Link header.
type RemoteDocument struct {
	DocumentURL string
	Document    interface{}
	ContextURL  string
}

// DocumentLoader dereferences remote documents and contexts.
type DocumentLoader interface {
	LoadDocument(u string) (*RemoteDocument, error)
}

// DocumentFromReader parses a JSON document from the given reader.
func DocumentFromReader(r io.Reader) (interface{}, error) {
	var document interface{}
	dec := json.NewDecoder(r)
	// Callers that need json.Number semantics decode themselves; both
	// float64 and json.Number values are handled downstream.
	if err := dec.Decode(&document); err != nil {
		return nil, NewError(LoadingDocumentFailed, err)
	}
	return document, nil
}

// DefaultDocumentLoader retrieves documents over HTTP, falling back to the
// local filesystem for non-HTTP schemes.
type DefaultDocumentLoader struct {
	httpClient *http.Client
}

// NewDefaultDocumentLoader creates a DefaultDocumentLoader backed by the
// given client, or http.DefaultClient when nil.
func NewDefaultDocumentLoader(httpClient *http.Client) *DefaultDocumentLoader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DefaultDocumentLoader{httpClient: httpClient}
}

// LoadDocument returns the remote document at the given URL.
func (dl *DefaultDocumentLoader) LoadDocument(u string) (*RemoteDocument, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, NewError(LoadingDocumentFailed, fmt.Sprintf("error parsing URL: %s", u))
	}

	remoteDoc := &RemoteDocument{}

	if scheme := parsedURL.Scheme; scheme != "http" && scheme != "https" {
		remoteDoc.DocumentURL = u
		file, err := os.Open(u)
		if err != nil {
			return nil, NewError(LoadingDocumentFailed, err)
		}
		defer file.Close()

		if remoteDoc.Document, err = DocumentFromReader(file); err != nil {
			return nil, err
		}
		return remoteDoc, nil
	}

	req, err := http.NewRequest(http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, NewError(LoadingDocumentFailed, err)
	}
	req.Header.Add("Accept", acceptHeader)

	res, err := dl.httpClient.Do(req)
	if err != nil {
		return nil, NewError(LoadingDocumentFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, NewError(LoadingDocumentFailed,
			fmt.Sprintf("bad response status code: %d", res.StatusCode))
	}

	remoteDoc.DocumentURL = res.Request.URL.String()

	contentType := res.Header.Get("Content-Type")
	if linkHeader := res.Header.Get("Link"); linkHeader != "" {
		links := ParseLinkHeader(linkHeader)

		contextLink := links[linkHeaderRel]
		if contextLink != nil && contentType != ApplicationJSONLDType &&
			(contentType == "application/json" || rApplicationJSON.MatchString(contentType)) {
			if len(contextLink) > 1 {
				return nil, NewError(MultipleContextLinkHeaders, nil)
			}
			remoteDoc.ContextURL = contextLink[0]["target"]
		}

		// a rel=alternate link of type application/ld+json supersedes a
		// non-JSON response body
		alternateLink := links["alternate"]
		if len(alternateLink) > 0 &&
			alternateLink[0]["type"] == ApplicationJSONLDType &&
			!rApplicationJSON.MatchString(contentType) {
			return dl.LoadDocument(Resolve(u, alternateLink[0]["target"]))
		}
	}

	if remoteDoc.Document, err = DocumentFromReader(res.Body); err != nil {
		return nil, err
	}
	return remoteDoc, nil
}

var (
	rSplitOnComma    = regexp.MustCompile("(?:<[^>]*?>|\"[^\"]*?\"|[^,])+")
	rLinkHeader      = regexp.MustCompile(`\s*<([^>]*?)>\s*(?:;\s*(.*))?`)
	rApplicationJSON = regexp.MustCompile(`^application/(\w*\+)?json$`)
	rLinkParams      = regexp.MustCompile("(.*?)=(?:(?:\"([^\"]*?)\")|([^\"]*?))\\s*(?:(?:;\\s*)|$)")
)

// ParseLinkHeader parses an HTTP Link header into entries keyed by "rel".
func ParseLinkHeader(header string) map[string][]map[string]string {
	rval := make(map[string][]map[string]string)

	for _, entry := range rSplitOnComma.FindAllString(header, -1) {
		match := rLinkHeader.FindStringSubmatch(entry)
		if match == nil {
			continue
		}
		result := map[string]string{"target": match[1]}
		for _, param := range rLinkParams.FindAllStringSubmatch(match[2], -1) {
			if param[2] != "" {
				result[param[1]] = param[2]
			} else {
				result[param[1]] = param[3]
			}
		}
		rel := result["rel"]
		rval[rel] = append(rval[rel], result)
	}
	return rval
}

// CachingDocumentLoader wraps another loader with an unbounded in-memory
// cache. It may be preloaded with documents, which is useful for tests and
// for pinning well-known contexts.
type CachingDocumentLoader struct {
	next  DocumentLoader
	cache map[string]*RemoteDocument
}

// NewCachingDocumentLoader creates a caching wrapper around next.
func NewCachingDocumentLoader(next DocumentLoader) *CachingDocumentLoader {
	return &CachingDocumentLoader{
		next:  next,
		cache: make(map[string]*RemoteDocument),
	}
}

// LoadDocument returns the cached document for u, loading it on first use.
func (cdl *CachingDocumentLoader) LoadDocument(u string) (*RemoteDocument, error) {
	if doc, cached := cdl.cache[u]; cached {
		return doc, nil
	}
	doc, err := cdl.next.LoadDocument(u)
	if err != nil {
		return nil, err
	}
	cdl.cache[u] = doc
	return doc, nil
}

// AddDocument seeds the cache with doc for the given URL.
func (cdl *CachingDocumentLoader) AddDocument(u string, doc interface{}) {
	cdl.cache[u] = &RemoteDocument{DocumentURL: u, Document: doc}
}

// PreloadWithMapping seeds the cache with documents loaded from alternative
// locations, typically local files:
//
//	loader.PreloadWithMapping(map[string]string{
//	    "http://www.example.com/context.json": "/var/cache/example_com_context.json",
//	})
func (cdl *CachingDocumentLoader) PreloadWithMapping(urlMap map[string]string) error {
	for srcURL, mappedURL := range urlMap {
		doc, err := cdl.next.LoadDocument(mappedURL)
		if err != nil {
			return err
		}
		cdl.cache[srcURL] = doc
	}
	return nil
}

type cachedRemoteDocument struct {
	remoteDocument *RemoteDocument
	expireTime     time.Time
	neverExpires   bool
}

// HTTPCachingDocumentLoader caches responses according to their RFC 7234
// cache headers.
type HTTPCachingDocumentLoader struct {
	httpClient *http.Client
	cache      map[string]*cachedRemoteDocument
}

// NewHTTPCachingDocumentLoader creates an HTTPCachingDocumentLoader backed
// by the given client, or http.DefaultClient when nil.
func NewHTTPCachingDocumentLoader(httpClient *http.Client) *HTTPCachingDocumentLoader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPCachingDocumentLoader{
		httpClient: httpClient,
		cache:      make(map[string]*cachedRemoteDocument),
	}
}

// LoadDocument returns the document at the given URL, honouring cache
// freshness from any previous retrieval.
func (cl *HTTPCachingDocumentLoader) LoadDocument(u string) (*RemoteDocument, error) {
	if entry, ok := cl.cache[u]; ok && (entry.neverExpires || entry.expireTime.After(time.Now())) {
		return entry.remoteDocument, nil
	}

	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, NewError(LoadingDocumentFailed, fmt.Sprintf("error parsing URL: %s", u))
	}

	remoteDoc := &RemoteDocument{}
	neverExpires := false
	shouldCache := false
	expireTime := time.Now()

	if scheme := parsedURL.Scheme; scheme != "http" && scheme != "https" {
		remoteDoc.DocumentURL = u
		file, err := os.Open(u)
		if err != nil {
			return nil, NewError(LoadingDocumentFailed, err)
		}
		defer file.Close()
		if remoteDoc.Document, err = DocumentFromReader(file); err != nil {
			return nil, err
		}
		neverExpires = true
		shouldCache = true
	} else {
		req, err := http.NewRequest(http.MethodGet, u, http.NoBody)
		if err != nil {
			return nil, NewError(LoadingDocumentFailed, err)
		}
		req.Header.Add("Accept", acceptHeader)

		res, err := cl.httpClient.Do(req)
		if err != nil {
			return nil, NewError(LoadingDocumentFailed, err)
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			return nil, NewError(LoadingDocumentFailed,
				fmt.Sprintf("bad response status code: %d", res.StatusCode))
		}

		remoteDoc.DocumentURL = res.Request.URL.String()

		contentType := res.Header.Get("Content-Type")
		if linkHeader := res.Header.Get("Link"); linkHeader != "" {
			links := ParseLinkHeader(linkHeader)

			contextLink := links[linkHeaderRel]
			if contextLink != nil && contentType != ApplicationJSONLDType {
				if len(contextLink) > 1 {
					return nil, NewError(MultipleContextLinkHeaders, nil)
				}
				remoteDoc.ContextURL = contextLink[0]["target"]
			}

			alternateLink := links["alternate"]
			if len(alternateLink) > 0 &&
				alternateLink[0]["type"] == ApplicationJSONLDType &&
				!rApplicationJSON.MatchString(contentType) {
				remoteDoc, err = cl.LoadDocument(Resolve(u, alternateLink[0]["target"]))
				if err != nil {
					return nil, err
				}
			}
		}

		reasons, resExpireTime, err := cachecontrol.CachableResponse(req, res, cachecontrol.Options{})
		if err == nil && len(reasons) == 0 {
			shouldCache = true
			expireTime = resExpireTime
		}

		if remoteDoc.Document == nil {
			if remoteDoc.Document, err = DocumentFromReader(res.Body); err != nil {
				return nil, err
			}
		}
	}

	if shouldCache {
		cl.cache[u] = &cachedRemoteDocument{
			remoteDocument: remoteDoc,
			expireTime:     expireTime,
			neverExpires:   neverExpires,
		}
	}
	return remoteDoc, nil
}
