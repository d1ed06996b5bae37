// Package download provides the download orchestration for a post's media
// assets.
//
// # Manager
//
// The Manager executes one run per post:
//
//  1. Short-circuit if the post id is already in the dedup ledger
//  2. Build tasks from the asset list (index filter, skip files on disk)
//  3. Fan the tasks out concurrently
//  4. Stream each asset to a temp file, pick the extension from the
//     response content type, atomically move into place
//  5. Record the id in the ledger only if every task succeeded
//
// # Basic Usage
//
//	manager := download.NewManager(settings, client, ledger, func(e progress.Event) {
//	    fmt.Println(e.Message)
//	})
//	folder, results := manager.Run(ctx, post, nil)
//
// # Failure model
//
// Run never returns an error. Transport failures are retried by RetryPolicy
// with exponential backoff; non-2xx responses and file system errors are
// terminal for the asset. Either way the asset's result is false, its
// siblings keep going, and a partially failed post is not recorded; the
// next run retries only the files still missing on disk.
package download
