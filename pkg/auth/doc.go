// Package auth stores news API credentials.
//
// A Manager tries the system keychain first, then an encrypted file in the
// user configuration directory, then the REVIEWSCRAPER_NAVER_CLIENT_ID and
// REVIEWSCRAPER_NAVER_CLIENT_SECRET environment variables.
package auth
