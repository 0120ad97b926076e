// Package session stores live game sessions and archives batch results.
//
// The Manager keeps sessions in memory behind a read-write mutex and hands
// out short 4-character IDs. With a SessionPersistence attached, sessions
// survive restarts: the persisted file records the config ID, the token
// position and the accumulated statistics, and restore rebuilds the
// simulation from the named board config. The FileArchive keeps completed
// batch results as JSON files so past runs stay queryable.
package session
