// Package batch partitions a catalog into numbered, capacity-bounded
// destination directories and splits each batch into copy chunks.
//
// Planning is pure: it never touches the filesystem and never reorders
// records. Concatenating the batches of a plan reproduces the input, every
// batch except possibly the last holds exactly the capacity, and batch N is
// written to the destination subdirectory named N.
package batch
