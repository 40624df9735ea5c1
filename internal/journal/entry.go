// Package journal implements the plain-text log journal: a pipe-delimited
// entry codec and an in-memory store with load, save and query operations.
package journal

import "strings"

// TimeLayout is the conventional timestamp format stamped on new entries.
// Timestamps read back from disk are kept verbatim and never parsed.
const TimeLayout = "2006-01-02 15:04:05"

// DefaultFile is the conventional journal file name, relative to the
// working directory. The store itself takes the path on every Load and
// Save; resolution lives in the CLI layer.
const DefaultFile = "logs.txt"

// Entry is a single journal record. All three fields are free-form
// strings; Timestamp conventionally holds TimeLayout but any value is
// carried through unchanged.
type Entry struct {
	Timestamp string `json:"ts"`
	Level     string `json:"level"`
	Message   string `json:"msg"`
}

// ParseLine decodes one pipe-delimited journal line. Only the first two
// separators split the line, so the message keeps any further pipes. Each
// field is trimmed of surrounding whitespace. Lines with fewer than three
// fields are malformed and reported with ok == false.
func ParseLine(line string) (Entry, bool) {
	parts := strings.SplitN(line, "|", 3)
	if len(parts) < 3 {
		return Entry{}, false
	}
	return Entry{
		Timestamp: strings.TrimSpace(parts[0]),
		Level:     strings.TrimSpace(parts[1]),
		Message:   strings.TrimSpace(parts[2]),
	}, true
}

// Line encodes the entry as timestamp|level|message. Pipes and line breaks
// inside the timestamp and level become spaces so the three-field framing
// always survives; line breaks in the message become spaces while pipes
// are left alone because ParseLine keeps them in the message.
func (e Entry) Line() string {
	return framedField.Replace(e.Timestamp) + "|" +
		framedField.Replace(e.Level) + "|" +
		messageField.Replace(e.Message)
}

// String renders the entry for terminal display.
func (e Entry) String() string {
	return "[" + e.Timestamp + "] " + e.Level + " - " + e.Message
}

var (
	framedField  = strings.NewReplacer("|", " ", "\n", " ", "\r", " ")
	messageField = strings.NewReplacer("\n", " ", "\r", " ")
)
