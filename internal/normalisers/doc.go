// Package normalisers provides implementations of the Parser interface for
// the supported corpus formats. Each parser claims a fixed set of file
// extensions and turns the file into normalised UTF-8 text.
//
// Parsers are registered with a Registry at startup; the highest priority
// parser whose CanParse returns true handles the file.
package normalisers
