// Package ratelimit paces requests against the remote sites.
//
// The crawl uses FixedDelay: a constant pause after every fetched company,
// matching how the review site was originally throttled. The news command
// uses RateLimiter, a token bucket from golang.org/x/time/rate.
//
// Every Wait is context aware so an interrupted run stops promptly.
package ratelimit
