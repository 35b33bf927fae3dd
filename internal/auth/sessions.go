package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const sessionName = "lis-session"

const (
	sessionEditorID = "editor_id"
	sessionUsername = "username"
	sessionGroups   = "groups"
)

// Sessions keeps editor identity in a signed cookie.
type Sessions struct {
	store *sessions.CookieStore
}

func NewSessions(sessionKey string) (*Sessions, error) {
	if len(sessionKey) < 32 {
		return nil, ErrSessionKeyTooShort
	}
	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options.HttpOnly = true
	store.Options.Path = "/"
	store.Options.SameSite = http.SameSiteLaxMode
	return &Sessions{store: store}, nil
}

// Login stores the editor in the session cookie.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, editor *Editor) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values[sessionEditorID] = editor.ID.String()
	session.Values[sessionUsername] = editor.Username
	session.Values[sessionGroups] = append([]string(nil), editor.Groups...)
	session.Options.Secure = isSecure(r)
	return session.Save(r, w)
}

func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, sessionEditorID)
	delete(session.Values, sessionUsername)
	delete(session.Values, sessionGroups)
	session.Options.Secure = isSecure(r)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// Current returns the editor of the request session, if any.
func (s *Sessions) Current(r *http.Request) (*Principal, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return nil, false
	}
	raw, _ := session.Values[sessionEditorID].(string)
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return nil, false
	}
	username, _ := session.Values[sessionUsername].(string)
	groups, _ := session.Values[sessionGroups].([]string)
	return &Principal{EditorID: id, Username: username, Groups: groups}, true
}

// Middleware attaches the session principal to the request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principal, ok := s.Current(r); ok {
			r = r.WithContext(WithPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.URL.Scheme == "https" || r.Header.Get("X-Forwarded-Proto") == "https"
}
