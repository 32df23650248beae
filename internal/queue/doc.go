// Package queue persists pipeline items in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, heartbeat
// tracking, stuck-item recovery, and the status transitions the workflow
// manager works through: pending, extracting, detecting, describing,
// narrating, mixing, exporting, and the terminal completed/failed/review
// states. Items carry progress fields and the narration window plan so
// stages can coordinate without additional state.
//
// The database is treated as transient storage for in-flight jobs rather
// than a long-term archive. Schema changes bump the version in schema.go;
// users clear the database to adopt the new schema.
package queue
