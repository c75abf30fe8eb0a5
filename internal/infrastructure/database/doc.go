// Package database provides SQLite connection management for the
// bluewatch presence journal.
//
// It wraps database/sql with the mattn/go-sqlite3 driver and handles:
//
//   - Connection setup with WAL mode and busy timeout pragmas
//   - Single-writer connection pool sizing (SQLite's model)
//   - Embedded schema migrations (.up.sql/.down.sql pairs applied in
//     version order, one transaction each)
//   - Health checks
//
// The migrations package at the repository root registers the embedded
// SQL files via the MigrationsFS variable; importing it for side effects
// from cmd/bluewatch is all that is needed:
//
//	import _ "github.com/nerrad567/bluewatch/migrations"
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path})
//	if err != nil { ... }
//	if err := db.Migrate(ctx); err != nil { ... }
package database
