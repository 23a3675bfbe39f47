// Package postgres persists workspaces, users, chats and messages in PostgreSQL.
//
// # Overview
//
// PostgresStorage runs plain SQL through database/sql with the lib/pq driver.
// Array columns (chat members, message file references) go through pq.Array.
// The schema is embedded and applied with Migrate at startup.
//
//	db, err := postgres.Connect(ctx, postgres.ConnectionConfig{URL: cfg.Database.URL})
//	store := postgres.NewPostgresStorage(db, hasher, files)
//	if err := store.Migrate(ctx); err != nil { ... }
//
// # Signup
//
// CreateUser finds the named workspace or creates it with owner 0, inserts
// the user, and makes the user the owner of a workspace that had none. All
// three steps share one transaction. A taken email is ErrEmailExists.
//
// # Chats
//
// CreateChat requires at least two distinct members, a name once there are
// more than eight, and that every member belongs to the workspace. The type
// follows from the input:
//
//	no name, 2 members  -> single
//	no name, >2 members -> group
//	named, public       -> public_channel
//	named, not public   -> private_channel
//
// # Membership
//
// IsChatMember answers the authorization middleware. MembershipCache wraps it
// with a short lived LRU that only remembers positive answers, so a denial or
// a database error is never served from cache.
//
// # Messages
//
// CreateMessage rejects empty content and any file reference that does not
// parse, belongs to another workspace, or is missing from the file store.
// ListMessages pages newest first by id: pass the smallest id of the previous
// page as LastID.
package postgres
