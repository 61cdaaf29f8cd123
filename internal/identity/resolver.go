package identity

// Session is the slice of a cookie session the resolver needs. The
// gin-contrib/sessions Session satisfies it.
type Session interface {
	Get(key interface{}) interface{}
	Set(key interface{}, val interface{})
	Save() error
}

const (
	// TokenKey is the session key holding the anonymous token.
	TokenKey = "token"
	// UserKey is the session key holding the authenticated user id.
	UserKey = "userID"
)

// Resolve returns the caller's identity without creating one. The second
// return value is false when the caller is neither logged in nor holds a
// token, i.e. has no basket or order history to look up.
func Resolve(s Session) (Identity, bool) {
	if id, ok := s.Get(UserKey).(int64); ok {
		return Authenticated{UserID: id}, true
	}
	if token, ok := s.Get(TokenKey).(string); ok && token != "" {
		return Anonymous{Token: token}, true
	}
	return nil, false
}

// ResolveOrCreate returns the caller's identity, minting and persisting a
// fresh anonymous token when there is none yet.
func ResolveOrCreate(s Session) (Identity, error) {
	if id, ok := Resolve(s); ok {
		return id, nil
	}
	token := NewToken()
	s.Set(TokenKey, token)
	if err := s.Save(); err != nil {
		return nil, err
	}
	return Anonymous{Token: token}, nil
}

// SessionToken reads the anonymous token out of the session, if any. The
// auth flow uses it to merge anonymous history into a freshly logged-in user.
func SessionToken(s Session) (string, bool) {
	token, ok := s.Get(TokenKey).(string)
	return token, ok && token != ""
}
