package session

import (
	"github.com/gin-contrib/sessions"
)

const (
	FlashError  = "error"
	FlashNotice = "notice"
)

type Flash struct {
	Kind    string
	Message string
}

func AddFlash(s sessions.Session, kind, msg string) {
	s.AddFlash(msg, kind)
}

// Flashes pops all pending flash messages, errors first. The session must
// be saved afterwards for the messages to be consumed.
func Flashes(s sessions.Session) []Flash {
	var out []Flash
	for _, kind := range []string{FlashError, FlashNotice} {
		for _, f := range s.Flashes(kind) {
			if msg, ok := f.(string); ok {
				out = append(out, Flash{Kind: kind, Message: msg})
			}
		}
	}
	return out
}
