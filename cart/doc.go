// Package cart holds the persistent shopping cart and the actions that
// expose it to workers.
//
// A cart is an ordered list of products. Identifiers are decimal strings
// allocated as the smallest positive integer not in use, so ids freed by a
// removal are reused. Three Store implementations are provided: FileStore
// (a JSON document on disk), SQLStore (SQLite) and MemoryStore for tests and
// offline runs.
package cart
