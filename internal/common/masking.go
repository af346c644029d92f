package common

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
)

const maskedValue = "***MASKED***"

// keyword/value DSNs: "host=db user=ambari password=secret"
var keywordPassword = regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*=\s*('[^']*'|\S+)`)

// sensitiveKeys are attribute keys whose value is always replaced.
var sensitiveKeys = map[string]struct{}{
	"password": {},
	"passwd":   {},
	"pwd":      {},
	"secret":   {},
}

// Masker hides credentials embedded in connection strings.
type Masker struct {
	enabled atomic.Bool
}

// NewMasker returns an enabled masker
func NewMasker() *Masker {
	m := &Masker{}
	m.enabled.Store(true)
	return m
}

func (m *Masker) SetEnabled(enabled bool) { m.enabled.Store(enabled) }
func (m *Masker) IsEnabled() bool         { return m.enabled.Load() }

// MaskDSN redacts the password of a URL-style or keyword/value DSN.
func (m *Masker) MaskDSN(dsn string) string {
	if !m.IsEnabled() || dsn == "" {
		return dsn
	}
	if strings.Contains(dsn, "://") {
		if u, err := url.Parse(dsn); err == nil && u.User != nil {
			if _, has := u.User.Password(); has {
				// Redacted writes "xxxxx" in place of the password
				return strings.Replace(u.Redacted(), ":xxxxx@", ":"+maskedValue+"@", 1)
			}
			return dsn
		}
	}
	return keywordPassword.ReplaceAllString(dsn, "${1}="+maskedValue)
}

// MaskAttr masks a single log attribute.
func (m *Masker) MaskAttr(a slog.Attr) slog.Attr {
	if !m.IsEnabled() {
		return a
	}
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, maskedValue)
	}
	if a.Value.Kind() == slog.KindString {
		s := a.Value.String()
		if masked := m.MaskDSN(s); masked != s {
			return slog.String(a.Key, masked)
		}
	}
	return a
}

var globalMasker = NewMasker()

// EnableMasking enables/disables global masking
func EnableMasking(enabled bool) {
	globalMasker.SetEnabled(enabled)
}

// MaskDSN masks a DSN with the global masker
func MaskDSN(dsn string) string {
	return globalMasker.MaskDSN(dsn)
}

type maskingHandler struct {
	next   slog.Handler
	masker *Masker
}

func (h *maskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *maskingHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.masker.IsEnabled() {
		return h.next.Handle(ctx, r)
	}
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.masker.MaskAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *maskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.masker.MaskAttr(a)
	}
	return &maskingHandler{next: h.next.WithAttrs(masked), masker: h.masker}
}

func (h *maskingHandler) WithGroup(name string) slog.Handler {
	return &maskingHandler{next: h.next.WithGroup(name), masker: h.masker}
}
