// Package formats provides the low-level little-endian stream reader and
// writer shared by the binary asset formats.
package formats
