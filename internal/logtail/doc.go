// Package logtail reads the end of jenky's log file for "jenky log".
//
// Read keeps a ring buffer of maxLines entries while scanning, so memory
// stays bounded however large the file grows. ReadLevel applies a minimum
// slog level while scanning, which means the result still holds up to
// maxLines matching records rather than a filtered subset of the last
// maxLines lines.
//
// Lines are expected in slog's text format:
//
//	time=2025-01-02T10:00:01.000Z level=INFO msg="build queued" job=deploy
//
// Lines without a level attribute inherit the decision made for the record
// before them.
package logtail
