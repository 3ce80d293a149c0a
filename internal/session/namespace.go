// Package session stores per-user UI state in the gin session.
//
// Values are kept as JSON strings under "ns:<name>" so that any struct can
// be stored without registering it with gob, which the cookie store needs.
package session

import (
	"encoding/json"

	"github.com/gin-contrib/sessions"
)

const (
	NSReportFilter    = "report_filter"
	NSPDFQueue        = "pdf_queue"
	NSProjectUnlocked = "project_unlocked"
)

func key(ns string) string {
	return "ns:" + ns
}

// Load decodes the namespace into v. It reports false when the namespace is
// empty or holds data that does not decode into v.
func Load(s sessions.Session, ns string, v any) bool {
	raw, ok := s.Get(key(ns)).(string)
	if !ok || raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

// Save encodes v into the namespace and persists the session.
func Save(s sessions.Session, ns string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.Set(key(ns), string(b))
	return s.Save()
}

func Clear(s sessions.Session, ns string) error {
	s.Delete(key(ns))
	return s.Save()
}
