// Package session provides the session registry for the Crazy Eights
// server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval by room code
//   - Idempotent creation-on-demand via GetOrCreate
//   - Room-code generation using cryptographic randomness
//   - Stale-session cleanup by last access time
//
// Room Codes:
//
// Sessions are addressed by 6-character room codes that players share
// out of band. Lookups are case-insensitive. A single default room is
// purely a configuration choice; the registry never assumes a
// singleton.
//
// Concurrency:
//
// The registry is safe for concurrent use. It guards only the
// code-to-session map; serialization of commands within one session is
// the service layer's job, so commands against different sessions
// proceed in parallel.
//
// Lifecycle:
//
// Sessions hold no durable state. They are created on demand, deleted
// by the service once their roster empties, and swept by
// CleanupExpiredSessions when abandoned mid-lobby.
package session
