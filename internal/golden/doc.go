// Package golden compares files produced by tests with golden files.
//
// By convention a test writes its output to <name>.ref in a work directory
// and the expected output lives in <name>.pass in a golden directory. A
// mismatch leaves <name>.diff next to the .ref file, as rendered by the
// configured differ, and the report can be archived in a storage.Store
// under the harness run id.
package golden
