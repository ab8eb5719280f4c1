// Package filesystem implements the Corpus port over a local directory.
//
// Ingest walks the directory (recursively or one level deep), skips hidden
// entries, keeps files whose lowercase extension is included and hashes each
// one with SHA-256 while streaming it from disk. Unreadable files are logged
// and counted, never fatal. Watch reports changes through fsnotify.
package filesystem
