// Package migrate runs batches of wiki pages through the conversion pipeline.
//
// A run selects pages from a trac.Store, converts them one at a time, writes
// the Markdown and copies attachments through an output.Writer. Failures stay
// local to the page they happened on; the run collects them in a
// report.Report instead of stopping.
package migrate
