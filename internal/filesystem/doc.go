/*
Package filesystem wraps os.Stat, os.Open and os.ReadFile with retries for NFS
stale file handle errors (ESTALE).

Gallery source trees commonly live on network mounts. A stale handle during a
long ingestion run would otherwise fail a file that is perfectly readable a
few milliseconds later. Any other error is returned immediately.

	info, err := filesystem.StatWithRetry(root, filesystem.DefaultRetryConfig())

Retries back off exponentially from InitialBackoff up to MaxBackoff.
*/
package filesystem
