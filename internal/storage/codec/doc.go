// Package codec serializes the value model to and from JSON text.
//
// Snapshots are written as one JSON object holding the whole mapping, laid
// out either flat or indented:
//
//	flat:      {"a": "b", "c": {"d": 1}}
//	indent 2:  {
//	             "a": "b",
//	             "c": {
//	               "d": 1
//	             }
//	           }
//
// Log records are always flat and single-line: {"key": value}, where a null
// value marks deletion.
//
// Decoding keeps member order and reports every syntax or shape problem as
// domain.ErrMalformedData.
package codec
