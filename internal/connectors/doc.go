// Package connectors provides implementations of the Corpus interface.
// A connector walks a document collection, selects the files the ingest
// settings include and hashes them into file descriptors.
package connectors
