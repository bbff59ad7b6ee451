package testutil

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"taskdeck/internal/session"
)

// testSigningKey signs fake tokens. The client never verifies signatures,
// so the key only has to be stable, not secret.
var testSigningKey = []byte("taskdeck-test-key")

// UserID derives a stable fake user ID from an email.
func UserID(email string) string {
	sum := sha1.Sum([]byte(email))
	return hex.EncodeToString(sum[:8])
}

// MakeToken builds a well-formed three-segment token whose payload carries
// the given subject and email claims.
func MakeToken(sub, email string) string {
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		panic(err)
	}
	return tok
}

// MemStore is an in-memory session.Store.
type MemStore struct {
	mu  sync.Mutex
	tok string

	// WriteErr, when set, is returned by SetToken.
	WriteErr error
}

var _ session.Store = (*MemStore)(nil)

// NewMemStore creates a MemStore seeded with tok.
func NewMemStore(tok string) *MemStore {
	return &MemStore{tok: tok}
}

// Token implements session.Store.
func (m *MemStore) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok
}

// SetToken implements session.Store.
func (m *MemStore) SetToken(tok string) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = tok
	return nil
}

// Clear implements session.Store.
func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = ""
	return nil
}

// Navigation is one recorded navigation request.
type Navigation struct {
	Dest   session.Destination
	Reason string
}

// RecordingNavigator records navigation requests for assertions.
type RecordingNavigator struct {
	mu   sync.Mutex
	Navs []Navigation
}

var _ session.Navigator = (*RecordingNavigator)(nil)

// Navigate implements session.Navigator.
func (r *RecordingNavigator) Navigate(dest session.Destination, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Navs = append(r.Navs, Navigation{Dest: dest, Reason: reason})
}

// Last returns the most recent navigation request, if any.
func (r *RecordingNavigator) Last() (Navigation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Navs) == 0 {
		return Navigation{}, false
	}
	return r.Navs[len(r.Navs)-1], true
}
