// Package stable provides the durable storage media of NoteChain.
//
// A Medium holds exactly one opaque byte string that survives process
// restarts. The snapshot codec writes it once before a restart and reads
// it once after. Each backend replaces the stored bytes atomically, so a
// failed write leaves the previous bytes readable.
//
// Backends:
//
//   - FileMedium: framed, checksummed file replaced via rename
//   - BadgerMedium: single key in an embedded Badger database
//   - MemoryMedium: process-local, for tests and offline tooling
//   - SealedMedium: authenticated encryption around another medium
//
// File layout (stable.bin):
//
//	[magic:8 "NCSTABLE"]
//	[HeaderLen:4][HeaderJSON:HeaderLen]
//	[DataLen:4][Data:DataLen]
//	[checksum:32 SHA-256 of all bytes above]
//
// A file that does not start with the magic was written by an earlier
// release as a bare blob and is returned unchanged.
package stable
