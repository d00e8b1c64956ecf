/*
Package filesystem provides filesystem operations with automatic retry logic
for NFS stale file handle errors.

Media trees are often spread across NFS mounts. A stat or open on such a mount
can fail with ESTALE (errno 116) while the server revalidates a handle; the
same call usually succeeds a moment later.

# Usage

	info, err := filesystem.StatWithRetry(ctx, "/nfs/mount/file.jpg", filesystem.DefaultRetryConfig())

	f, err := filesystem.OpenWithRetry(ctx, "/nfs/mount/file.jpg", filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}
	defer f.Close()

# Retry Behavior

Defaults: 3 retries, 50ms initial backoff doubling up to 500ms. Only ESTALE
triggers a retry; every other error is returned immediately. Cancelling ctx
aborts the backoff wait.

# Metrics

Install an Observer with SetObserver to record retry metrics labelled by
volume. Volumes are resolved with a VolumeResolver (longest-prefix match).
*/
package filesystem
