// Package workflow implements the geo-verified download state machine.
//
// Each catalog item gets its own Workflow:
//
//	idle -> locating -> downloading -> success -> idle
//	          |              |
//	          +--> error <---+--> idle
//
// A trigger is accepted only in idle or error. When the shared location
// cache is empty the workflow acquires a position first, stores it in the
// cache and records a capture in the audit log; with a cached position it
// records a "(Cached)" capture and goes straight to downloading. Downloading
// waits a fixed verification delay, then retrieves and saves the document.
// Terminal states return to idle on their own after a display window.
//
// Failures never leave the workflow: the cause is logged and the snapshot
// carries a fixed localized message. Concurrent workflows may race on an empty
// cache; each then acquires and records its own capture, and the cache keeps
// the last write.
//
// All timings come from an injected clockwork.Clock.
package workflow
