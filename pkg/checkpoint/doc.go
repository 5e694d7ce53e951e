// Package checkpoint provides the Progress Store: the results and error
// tables that make a crawl resumable.
//
// Both tables are CSV files written with a UTF-8 byte-order mark so that
// spreadsheet tools open Korean company names correctly. A company name that
// appears in either table belongs to the Done-set and is skipped on the next
// run. Clearing the error table re-enables the companies it listed.
//
// Besides the canonical pair the driver periodically writes snapshot pairs
// named with the work-list position, for example
// jobplanet_crawling_progress_50.csv.
//
// Column order is fixed (known fields, sorted stat labels, query column) so
// that saving the same state twice produces byte-identical files.
package checkpoint
