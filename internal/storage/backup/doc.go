// Package backup writes and reads portable single-file archives of a store.
//
// Archive layout:
//
//	[magic:8 "NBDBBAK1"]
//	[HeaderLen:4 big-endian][HeaderJSON:HeaderLen]
//	[Body]
//
// The body is the flat JSON snapshot, compressed (none, zstd, snappy or lz4)
// and then, when a passphrase is given, sealed with an AEAD cipher whose key
// is derived from the passphrase and the salt stored in the header. The
// header carries an xxhash64 checksum of the plain snapshot so a restore can
// tell a wrong passphrase or a damaged body from a good archive.
package backup
