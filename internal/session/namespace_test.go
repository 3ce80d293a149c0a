package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type filter struct {
	Phases []string `json:"phases"`
	PerM2  bool     `json:"per_m2"`
}

// do runs fn inside a request carrying the given cookies and returns the
// cookies of the response.
func do(t *testing.T, cookies []*http.Cookie, fn func(s sessions.Session)) []*http.Cookie {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("secret"))))
	r.GET("/", func(c *gin.Context) {
		fn(sessions.Default(c))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	if out := w.Result().Cookies(); len(out) > 0 {
		return out
	}
	return cookies
}

func TestNamespace_RoundTrip(t *testing.T) {
	cookies := do(t, nil, func(s sessions.Session) {
		var f filter
		assert.False(t, Load(s, NSReportFilter, &f))
		require.NoError(t, Save(s, NSReportFilter, filter{Phases: []string{"prod", "eol"}, PerM2: true}))
	})

	cookies = do(t, cookies, func(s sessions.Session) {
		var f filter
		require.True(t, Load(s, NSReportFilter, &f))
		assert.Equal(t, []string{"prod", "eol"}, f.Phases)
		assert.True(t, f.PerM2)
		require.NoError(t, Clear(s, NSReportFilter))
	})

	do(t, cookies, func(s sessions.Session) {
		var f filter
		assert.False(t, Load(s, NSReportFilter, &f))
	})
}

func TestNamespace_InvalidPayload(t *testing.T) {
	do(t, nil, func(s sessions.Session) {
		s.Set(key(NSPDFQueue), "{not json")
		var v map[string]string
		assert.False(t, Load(s, NSPDFQueue, &v))
	})
}

func TestFlashes(t *testing.T) {
	cookies := do(t, nil, func(s sessions.Session) {
		AddFlash(s, FlashNotice, "Saved.")
		AddFlash(s, FlashError, "Name is required.")
		require.NoError(t, s.Save())
	})

	cookies = do(t, cookies, func(s sessions.Session) {
		assert.Equal(t, []Flash{
			{Kind: FlashError, Message: "Name is required."},
			{Kind: FlashNotice, Message: "Saved."},
		}, Flashes(s))
		require.NoError(t, s.Save())
	})

	do(t, cookies, func(s sessions.Session) {
		assert.Empty(t, Flashes(s))
	})
}
