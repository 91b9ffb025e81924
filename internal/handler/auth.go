package handler

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/classroom/internal/model"
)

const (
	tutorUsername  = "tutor"
	tutorChallenge = `Basic realm="Tutor Area"`
)

// TutorGate admits requests carrying the single shared tutor credential.
type TutorGate struct {
	expected []byte // full Authorization header value for a plaintext secret
	hash     []byte // bcrypt hash of the secret
}

// NewTutorGate builds a gate from a plaintext secret or a bcrypt hash of it.
// The hash wins when both are set. With neither, every request is denied.
func NewTutorGate(password, hash string) (*TutorGate, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("tutor password hash: %w", err)
		}
		return &TutorGate{hash: []byte(hash)}, nil
	}
	g := &TutorGate{}
	if password != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(tutorUsername + ":" + password))
		g.expected = []byte("Basic " + cred)
	}
	return g, nil
}

// Check returns model.ErrUnauthorized unless r carries the tutor credential.
func (g *TutorGate) Check(r *http.Request) error {
	header := r.Header.Get("Authorization")
	if header == "" {
		return fmt.Errorf("%w: no credential", model.ErrUnauthorized)
	}

	if g.hash != nil {
		user, pass, ok := r.BasicAuth()
		if !ok || user != tutorUsername {
			return fmt.Errorf("%w: malformed credential", model.ErrUnauthorized)
		}
		if err := bcrypt.CompareHashAndPassword(g.hash, []byte(pass)); err != nil {
			return fmt.Errorf("%w: wrong credential", model.ErrUnauthorized)
		}
		return nil
	}

	if len(g.expected) == 0 || subtle.ConstantTimeCompare([]byte(header), g.expected) != 1 {
		return fmt.Errorf("%w: wrong credential", model.ErrUnauthorized)
	}
	return nil
}

// Middleware rejects requests without the tutor credential before they reach next.
func (g *TutorGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.Check(r); err != nil {
			respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
