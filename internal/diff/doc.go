// Package diff compares a candidate file, typically the output of a test,
// with a reference ("golden") file and reports whether they differ.
//
// The main implementation is LineDiff, a heuristic line aligner. It scans
// both files with one cursor each, letting one side drive the search for the
// next matching line on the other side, and switches sides when a line has
// no match. It does not look for a minimal edit script: the output is
// deterministic and meant for humans reading test failures. Adjacent
// insertion blocks are coalesced and the result is rendered with a few lines
// of numbered context.
//
// Auto puts a binary check in front of a text differ, Native runs the
// system diff executable, and Unified prints GNU-style hunks on top of
// https://github.com/andreyvit/diff, which in turn builds on the
// diffmatchpatch package (https://github.com/sergi/go-diff).
package diff
