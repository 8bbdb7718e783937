// Package session carries per-invocation state that the original tool
// kept in globals: the active profile pointer and the shared output
// handle. One Session is created per CLI run and passed to every command.
package session

import (
	"fmt"

	"github.com/skiff-dev/skiff/internal/output"
	"github.com/skiff-dev/skiff/internal/profile"
	"github.com/skiff-dev/skiff/internal/secret"
)

// Session holds the repository, secret store, output, and the active
// profile index for one invocation. The index is process-lifetime only;
// a fresh process starts at 0.
type Session struct {
	// Repo is the project's profile repository.
	Repo *profile.Repository

	// Secrets is the host secret store.
	Secrets secret.Store

	// Output handles formatted terminal output.
	Output *output.Output

	active int
}

// New creates a session over the given collaborators.
func New(repo *profile.Repository, secrets secret.Store, out *output.Output) *Session {
	return &Session{Repo: repo, Secrets: secrets, Output: out}
}

// ActiveIndex returns the current active profile index.
func (s *Session) ActiveIndex() int {
	return s.active
}

// SetActive updates the active profile index.
func (s *Session) SetActive(index int) {
	s.active = index
}

// Active returns the active profile from a fresh repository read. An out
// of range index falls back to 0. With no profiles at all it returns an
// error.
func (s *Session) Active() (*profile.Profile, error) {
	profiles := s.Repo.Load()
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no deployment profiles configured (run 'skiff profile add')")
	}
	index := s.active
	if index < 0 || index >= len(profiles) {
		index = 0
	}
	return profiles[index], nil
}

// ActivateByName sets the active index to the named profile.
func (s *Session) ActivateByName(name string) error {
	for i, p := range s.Repo.Load() {
		if p.Name == name {
			s.active = i
			return nil
		}
	}
	return fmt.Errorf("no profile named %q", name)
}
