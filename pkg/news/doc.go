// Package news collects news articles about each company from the Naver
// news search API and writes them to a single timestamped CSV file.
//
// There is no resume: every run queries every company again. Requests are
// paced by a ratelimit.Limiter and a failed request only skips its company.
package news
