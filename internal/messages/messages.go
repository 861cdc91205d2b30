package messages

import "github.com/cheerioskun/globninja/internal/models"

// MatchFoundMsg is sent for every match a running stream delivers. Query
// identifies the stream so late messages from a replaced query can be dropped.
type MatchFoundMsg struct {
	Query    int
	Match    models.MatchResult
	FullPath string
}

// StreamDoneMsg is sent once a stream has ended. Err is nil on a clean end.
type StreamDoneMsg struct {
	Query int
	Err   error
}

// QueryChangedMsg is sent when the user edits the pattern or ignore list
type QueryChangedMsg struct {
	Patterns       []string
	IgnorePatterns []string
}
