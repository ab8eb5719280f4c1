// Package jsonfile stores annotations in a single indented JSON document.
//
// The layout is the one produced by the browser annotation tool:
//
//	{"<query id>": {"<chunk id>": {"relevance": 1, "timestamp": "..."}}}
//
// Export documents wrap the same map together with the queries and an export
// timestamp; Read accepts both shapes.
package jsonfile
