// Package job persists clip extraction job resources in SQLite.
//
// A job pairs an immutable spec (which clip to cut from which recording)
// with controller-owned status fields: phase, attempt counter, retry
// schedule, and completion timestamps. Creation is idempotent on the name
// derived from the clip identifier, so resubmitting a clip never spawns a
// second job. If you change the table layout, update schema.sql and bump
// schemaVersion.
package job
