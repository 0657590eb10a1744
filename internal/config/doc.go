// The config package encapsulates configuration for the goldendiff
// command and the golden-file harness.
//
// Like the rest of goldendiff, configuration lives in a dedicated base
// directory. When loading the configuration, the only argument is the
// path to the base directory rather than the path to the configuration
// file. The designated directory may contain a file called 'config'
// made of "key value" lines; a missing file means defaults. Paths
// derived from the base directory, such as the report store directory,
// are exposed as methods of C.
package config
