// Package docbase builds a searchable knowledge base from a documentation
// website and answers questions over it. It crawls pages within a host and
// path-prefix scope, extracts heading-delimited content blocks, splits them
// into bounded-size chunks with stable identifiers, and serves lexical
// retrieval with citation validation over the resulting artifact.
//
// This package contains domain types, pure domain logic, and interfaces
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., goquery/,
// gemini/, fs/).
package docbase
