// Package config manages application settings persisted as a JSON file.
//
// Settings cover download behavior (concurrency, retries, chunk size), the
// dedup ledger location, HTTP headers, extraction options, and the clipboard
// watch interval.
//
// # Usage
//
//	settings, err := config.Load("/path/to/settings.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// A missing file yields DefaultSettings(), not an error.
//
//	settings.DownloadMaxRetries = 3
//	err = settings.Save("/path/to/settings.json")
package config
