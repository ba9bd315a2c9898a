// Package sqlite contains the SQLite repositories for workflow runs and
// their detection lists.
//
// All read/write operations for run summaries and detections live here
// rather than in the workflow layer. This keeps the processing chain free
// of SQL noise and makes the storage backend easy to stub in tests.
package sqlite
