package aggregator

import "strings"

// separator is the delimiter mcpd uses to build fully-qualified tool,
// resource, and prompt names (spec §4.4 "Namespacing rules").
const separator = "__"

// resourceURIScheme is the scheme mcpd rewrites backend resource URIs
// under (spec §6: "mcpd://<backend>/<original-uri>").
const resourceURIScheme = "mcpd://"

// qualify builds a fully-qualified name "<backend>__<name>".
func qualify(backend, name string) string {
	return backend + separator + name
}

// splitQualified splits a fully-qualified name on the FIRST occurrence of
// the separator, so a backend-owned name that itself contains the
// separator survives the round trip (spec §4.4, testable property 1).
func splitQualified(qualified string) (backend, name string, ok bool) {
	i := strings.Index(qualified, separator)
	if i < 0 {
		return "", "", false
	}
	return qualified[:i], qualified[i+len(separator):], true
}

// qualifyURI builds the rewritten resource URI mcpd://<backend>/<uri>
// (spec §6). The original URI, including its own scheme, is appended
// verbatim after the single slash.
func qualifyURI(backend, uri string) string {
	return resourceURIScheme + backend + "/" + uri
}

// splitURI reverses qualifyURI, returning the backend name and the
// original URI. Fails if uri does not begin with the mcpd:// scheme or has
// no backend segment.
func splitURI(uri string) (backend, original string, ok bool) {
	rest, found := strings.CutPrefix(uri, resourceURIScheme)
	if !found {
		return "", "", false
	}
	i := strings.Index(rest, "/")
	if i < 0 {
		return "", "", false
	}
	backend = rest[:i]
	original = rest[i+1:]
	if backend == "" {
		return "", "", false
	}
	return backend, original, true
}
