// Package step links spatially contiguous storm regions, detected
// independently in each time slice of a precipitation series, into
// persistent storm identities across time. The output is a
// space-time consistent labeling with a dense label range, usable
// directly for duration, size, intensity and centroid statistics.
//
// Per-frame region extraction is an upstream concern (see
// Identifier); this package only decides, for every region in frame
// t, which region in frame t-1 it continues, or whether a new storm
// was born.
package step
