// Package scraper drives a crawl over a work list of company names.
//
// The Runner loads the Progress Store, skips every company already present
// in either table, fetches the rest one at a time and records each outcome
// exactly once. Persistence is periodic: the canonical files are rewritten
// every FlushEvery positions and a position-suffixed snapshot pair is
// written every SnapshotEvery positions. Positions are 1-based indexes into
// the full work list, so a resumed run keeps the same snapshot names.
//
// Work since the last flush is lost on a hard crash and redone on the next
// run; the Done-set makes that safe.
package scraper
