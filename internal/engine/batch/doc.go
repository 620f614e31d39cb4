// Package batch splits a list of work items, such as the owners of a sheet,
// into fixed-size batches and runs a callback over each batch, either in
// order or with bounded concurrency.
//
// Progress is reported after every batch so long sweeps can be followed from
// the command line.
package batch
