// Package deliver materializes broadcast message deliveries into an ingest
// directory watched by the downstream scheduler.
//
// A delivery reads one source message, optionally injects a uniqueness tag
// and rewrites the header timestamps, and writes the result under the same
// base name in the destination directory. A second delivery of the same base
// name replaces the first.
package deliver
