package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"maskctl/internal/logging"
)

// Entry is one decoded JSON log record.
type Entry struct {
	Time      time.Time
	Level     string
	Message   string
	Component string
	SessionID string
	Fields    map[string]any
}

// ParseEntry decodes line. Lines that are not JSON objects return false.
func ParseEntry(line string) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	entry := Entry{Fields: map[string]any{}}
	for key, value := range raw {
		text, _ := value.(string)
		switch key {
		case "ts":
			entry.Time, _ = time.Parse(time.RFC3339, text)
		case "level":
			entry.Level = text
		case "msg":
			entry.Message = text
		case logging.FieldComponent:
			entry.Component = text
		case logging.FieldSessionID:
			entry.SessionID = text
		case "source":
		default:
			entry.Fields[key] = value
		}
	}
	return entry, true
}

// Format renders the entry like the console handler, with the date included.
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format(time.DateTime))
		b.WriteByte(' ')
	}
	b.WriteString(strings.ToUpper(e.Level))
	if e.Component != "" {
		fmt.Fprintf(&b, " [%s]", e.Component)
	}
	b.WriteByte(' ')
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, e.Fields[key])
	}
	return b.String()
}

// FilterSession keeps the lines whose record belongs to sessionID. An empty
// sessionID keeps every line; non-JSON lines are dropped when filtering.
func FilterSession(lines []string, sessionID string) []string {
	if sessionID == "" {
		return lines
	}
	kept := lines[:0:0]
	for _, line := range lines {
		if entry, ok := ParseEntry(line); ok && entry.SessionID == sessionID {
			kept = append(kept, line)
		}
	}
	return kept
}
