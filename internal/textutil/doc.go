// Package textutil sanitizes song metadata for use in file names and path
// segments.
package textutil
