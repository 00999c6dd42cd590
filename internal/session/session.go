// Package session keeps per-visitor state in an HMAC-signed cookie:
// the logged-in user id, one-shot flash messages and the active chat
// companion. A missing or tampered cookie yields an empty session,
// never an error.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

var errInvalidCookie = errors.New("invalid session cookie")

const (
	CookieName   = "session"
	cookieMaxAge = 7 * 24 * 60 * 60
)

type Session struct {
	UserID        int64    `json:"user_id,omitempty"`
	Flashes       []string `json:"flashes,omitempty"`
	CompanionID   int64    `json:"companion_id,omitempty"`
	RoomName      string   `json:"room_name,omitempty"`
	UserName      string   `json:"user_name,omitempty"`
}

type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// Load reads and verifies the session cookie.
func (m *Manager) Load(c *gin.Context) *Session {
	raw, err := c.Cookie(CookieName)
	if err != nil {
		return &Session{}
	}
	payload, err := m.verify(raw)
	if err != nil {
		return &Session{}
	}
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return &Session{}
	}
	return &s
}

// Save writes the session back to the cookie. Must be called before the
// response body is rendered.
func (m *Manager) Save(c *gin.Context, s *Session) {
	payload, err := json.Marshal(s)
	if err != nil {
		return
	}
	c.SetCookie(CookieName, m.sign(payload), cookieMaxAge, "/", "", false, true)
}

func (s *Session) LoggedIn() bool {
	return s.UserID != 0
}

// Flash queues a one-shot notice for the next rendered page.
func (s *Session) Flash(message string) {
	s.Flashes = append(s.Flashes, message)
}

// PopFlashes returns the queued notices and clears them. The caller is
// responsible for saving the session afterwards.
func (s *Session) PopFlashes() []string {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// ClearCompanion drops the active-chat keys set by the begin-chat flow.
func (s *Session) ClearCompanion() {
	s.CompanionID = 0
	s.RoomName = ""
	s.UserName = ""
}

func (m *Manager) sign(payload []byte) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write(payload)
	signature := mac.Sum(nil)
	return base64.URLEncoding.EncodeToString(payload) + "|" + base64.URLEncoding.EncodeToString(signature)
}

func (m *Manager) verify(signed string) ([]byte, error) {
	parts := strings.SplitN(signed, "|", 2)
	if len(parts) != 2 {
		return nil, errInvalidCookie
	}
	payload, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, errInvalidCookie
	}
	signature, err := base64.URLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errInvalidCookie
	}
	mac := hmac.New(sha256.New, m.secret)
	mac.Write(payload)
	if !hmac.Equal(signature, mac.Sum(nil)) {
		return nil, errInvalidCookie
	}
	return payload, nil
}
