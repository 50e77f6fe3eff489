// Package auditlog stores the append-only trail of location captures.
//
// Entries are kept newest-first. Every Append persists the complete sequence
// as one JSON array under a fixed key in a gocloud.dev/blob bucket before it
// returns, so the stored snapshot always matches what All reports. Load
// restores the sequence at startup.
//
// # Storage Layout
//
//	{bucket}/gov_portal_logs
//
// # Format
//
//	[
//	  {"id": "...", "timestamp": "15 अक्तू॰ 2026, 3:04:05 pm",
//	   "latitude": 28.6139, "longitude": 77.209, "action": "Download: ..."},
//	  ...
//	]
package auditlog
