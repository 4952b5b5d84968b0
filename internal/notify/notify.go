// Package notify is the toast/alert side channel used to surface failures
// to the user without interrupting the current view.
package notify

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/shopdesk/internal/shopapi"
)

// Notifier receives user-facing messages.
type Notifier interface {
	Error(msg string)
	Info(msg string)
}

// Level is a toast severity.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Toast is one queued message.
type Toast struct {
	Level   Level
	Message string
	At      time.Time
}

const defaultTTL = 4 * time.Second

// Toasts is an in-memory Notifier for the TUI. Messages expire after TTL.
type Toasts struct {
	mu     sync.Mutex
	TTL    time.Duration
	toasts []Toast
	now    func() time.Time
}

// NewToasts returns a queue with the default lifetime.
func NewToasts() *Toasts {
	return &Toasts{TTL: defaultTTL, now: time.Now}
}

func (t *Toasts) push(level Level, msg string) {
	if msg == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	t.toasts = append(t.toasts, Toast{Level: level, Message: msg, At: now()})
}

func (t *Toasts) Error(msg string) { t.push(LevelError, msg) }
func (t *Toasts) Info(msg string)  { t.push(LevelInfo, msg) }

// Active drops expired toasts and returns the rest, oldest first.
func (t *Toasts) Active(now time.Time) []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	ttl := t.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	kept := t.toasts[:0]
	for _, toast := range t.toasts {
		if now.Sub(toast.At) < ttl {
			kept = append(kept, toast)
		}
	}
	t.toasts = kept
	out := make([]Toast, len(kept))
	copy(out, kept)
	return out
}

// All returns every queued toast regardless of age.
func (t *Toasts) All() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Toast, len(t.toasts))
	copy(out, t.toasts)
	return out
}

// Count returns how many toasts of level are queued.
func (t *Toasts) Count(level Level) int {
	n := 0
	for _, toast := range t.All() {
		if toast.Level == level {
			n++
		}
	}
	return n
}

// Log writes notifications to a logger. CLI commands use it in place of
// toasts.
type Log struct {
	Logger logrus.FieldLogger
}

func (l Log) Error(msg string) { l.Logger.Error(msg) }
func (l Log) Info(msg string)  { l.Logger.Info(msg) }

// Discard drops every message.
type Discard struct{}

func (Discard) Error(string) {}
func (Discard) Info(string)  {}

// Or returns n, or Discard when n is nil.
func Or(n Notifier) Notifier {
	if n == nil {
		return Discard{}
	}
	return n
}

// Friendly maps an error onto the message shown to the user.
func Friendly(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *shopapi.Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch apiErr.Kind {
	case shopapi.KindNetwork:
		return "Không thể kết nối máy chủ. Vui lòng kiểm tra kết nối mạng."
	case shopapi.KindTimeout:
		return "Yêu cầu quá thời gian chờ. Vui lòng thử lại."
	case shopapi.KindServer:
		return "Dịch vụ tạm thời không khả dụng. Vui lòng thử lại sau."
	case shopapi.KindCanceled:
		return "Đã hủy yêu cầu."
	case shopapi.KindNotFound:
		if apiErr.Message != "" && apiErr.Message != "404 Not Found" {
			return apiErr.Message
		}
		return "Không tìm thấy dữ liệu."
	case shopapi.KindDecode:
		return "Phản hồi từ máy chủ không hợp lệ."
	default:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Đã xảy ra lỗi. Vui lòng thử lại."
	}
}
