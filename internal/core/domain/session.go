package domain

import "strings"

// DemoTokenPrefix marks locally synthesized demo tokens. Tokens carrying it
// must never be sent to mutating remote endpoints.
const DemoTokenPrefix = "demo-token-"

// Session is the single persisted authentication slot: a bearer token plus a
// denormalized copy of the authenticated user. Created at login/signup,
// destroyed at logout, implicitly invalidated when the server answers 401.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// IsDemo reports whether the session was synthesized locally and is not
// backed by the server.
func (s *Session) IsDemo() bool {
	return s != nil && strings.HasPrefix(s.Token, DemoTokenPrefix)
}
