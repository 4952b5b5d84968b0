package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/shopdesk/internal/logging"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file is empty.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time    time.Time
	Level   logrus.Level
	Message string
	Fields  map[string]string
	Raw     string
}

// Parse decodes a line written by the logrus JSON formatter
// ({"time":"...","level":"info","msg":"...","key":value}). Lines that are
// not JSON objects keep their text as the message at info level.
func Parse(line string) Entry {
	entry := Entry{Level: logrus.InfoLevel, Raw: line}
	var doc map[string]any
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil || doc == nil {
		entry.Message = strings.TrimSpace(line)
		return entry
	}
	for key, raw := range doc {
		value := fieldString(raw)
		switch key {
		case logrus.FieldKeyTime:
			if ts, err := time.Parse(logging.TimestampFormat, value); err == nil {
				entry.Time = ts
			}
		case logrus.FieldKeyLevel:
			if lvl, err := logrus.ParseLevel(value); err == nil {
				entry.Level = lvl
			}
		case logrus.FieldKeyMsg:
			entry.Message = value
		default:
			if entry.Fields == nil {
				entry.Fields = make(map[string]string)
			}
			entry.Fields[key] = value
		}
	}
	return entry
}

func fieldString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}

// Filter keeps entries at or above minLevel whose message or fields
// contain query, case-insensitively. An empty query matches everything.
func Filter(entries []Entry, minLevel logrus.Level, query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		// logrus levels count down: panic is 0, trace is 6.
		if e.Level > minLevel {
			continue
		}
		if query != "" && !e.contains(query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (e Entry) contains(lowerQuery string) bool {
	if strings.Contains(strings.ToLower(e.Message), lowerQuery) {
		return true
	}
	for k, v := range e.Fields {
		if strings.Contains(strings.ToLower(k+"="+v), lowerQuery) {
			return true
		}
	}
	return false
}

// Tail reads and parses the last maxLines of path.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}
