// Package header parses and rewrites the fixed-width timestamp header carried
// in broadcast message files.
//
// # Header Line Format
//
// A header line is located anywhere in the message text and has the layout:
//
//	ESC 'a' <class> '_' <9 uppercase letters> <created> <effective> <middle> <expires>
//
// where <class> is one uppercase letter, each timestamp is ten ASCII digits in
// YYMMDDHHMM form (UTC, two-digit year), and <middle> is an opaque segment
// that is carried through every rewrite byte-for-byte. The expire group is
// always the last ten bytes of the line.
//
// # Scanning
//
// The codec does not use a regular expression. Parse walks the text looking
// for the two-byte control prefix and validates each candidate against the
// fixed-width layout, bounded by the end of its own line. The first candidate
// that fits is the header; later lines are never consulted.
//
// # Rewriting
//
// Rewrite replaces only the matched span. Text elsewhere in the body that
// happens to repeat the header verbatim is left untouched.
package header
