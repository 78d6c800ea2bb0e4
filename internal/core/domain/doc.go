// Package domain defines the core domain model for nonbloat-db.
//
// Domain types are pure values without any IO dependencies. This package
// contains:
//
//   - Value: the tagged union stored under each key
//   - Object: the insertion-ordered mapping of keys to values
//   - Errors: coded domain errors shared by every layer
package domain
