// Package media decides which filesystem entries are migratable media and
// computes the content fingerprints used to deduplicate them.
//
// Classification is purely extension based: the lowercased text after the
// final dot must be one of the supported photo or video extensions. No
// content sniffing happens here, so the check is cheap enough to run on every
// directory entry before any file is opened.
//
// Fingerprints are hex-encoded 256-bit BLAKE3 digests of the full file
// contents. They are stable across runs and are the only dedup key; two files
// are duplicates exactly when their bytes are identical.
package media
