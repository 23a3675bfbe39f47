// Package storage implements the content-addressed attachment store.
//
// # Overview
//
// An uploaded file is named by the SHA-1 of its bytes. Together with the
// uploading workspace and the lowercased extension of the original filename
// that digest forms a Descriptor, which maps to a sharded relative path and a
// public reference URL:
//
//	{ws}/{h[0:3]}/{h[3:6]}/{h[6:]}.{ext}
//	/files/{ws}/{h[0:3]}/{h[3:6]}/{h[6:]}.{ext}
//
// The workspace id is the first segment so two workspaces never share a file
// even when the bytes are identical. The dot is always written, so a file
// without an extension ends in "." and still parses back to itself.
//
// # Writes
//
// Store.Save streams the body into a temp file under {base}/.staging while
// hashing it, fsyncs, and then renames it into place. If the target already
// exists the temp file is dropped instead. Saves racing for the same target
// in one process are collapsed with singleflight; saves racing across
// processes are safe because rename is atomic and the contents are identical.
// A cancelled context removes the temp file and no descriptor is returned,
// so a reference URL never points at a partial file.
//
// Stored files are never modified or deleted by this package.
//
// # References
//
//	d, err := storage.ParseURL("/files/1/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt")
//	var refErr *storage.ReferenceError
//	if errors.As(err, &refErr) {
//		// refErr.Segment names the part that failed
//	}
//
// # Related Packages
//
//   - pkg/storage/postgres: relational persistence for users, chats and messages
package storage
