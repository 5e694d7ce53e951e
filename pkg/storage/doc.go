// Package storage manages the output directory that progress tables and
// news exports are written to.
//
// Every write goes through Manager.WriteFile, which streams into a
// temporary file next to the target, fsyncs it and renames it into place.
// A crash mid-write leaves the previous version of the file intact.
package storage
