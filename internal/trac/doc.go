// Package trac reads wiki pages and their attachments from a Trac environment.
//
// A Trac environment is a directory holding db/trac.db and the attachment
// files. Pages are read at their latest version; timestamps in the database
// are microseconds since the Unix epoch.
package trac
