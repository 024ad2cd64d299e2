// Package sync runs agent synchronisation from the FRS API into the local
// person store.
//
// # Modes
//
// Two entry points share the same per-page logic:
//
//   - PerformFullSync walks every page of loan officers in one call. It is used
//     by the scheduler, the CLI and the admin "full sync" action.
//   - SyncBatch processes one page per call. The caller drives the run by
//     calling again with the returned next_offset until has_more is false.
//
// # Sessions
//
// Each incremental run is a session (see the state subpackage) created by the
// initial call. Later calls name the session, so two operators syncing at the
// same time keep separate counters. A session is removed when its last batch
// completes and otherwise expires after a period of inactivity; calls for a
// removed or expired session fail with state.ErrSessionNotFound.
//
// # Errors
//
// A record that cannot be mapped is counted and the page continues. A failed
// count probe or page fetch aborts the call with an *Error carrying a reason.
//
// # Coordinator Package
//
// The sync/coordinator subpackage runs the daily full sync and deferred
// resyncs requested by bulk webhook events.
package sync
