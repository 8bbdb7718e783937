package session

import (
	"io"
	"testing"

	"github.com/skiff-dev/skiff/internal/output"
	"github.com/skiff-dev/skiff/internal/profile"
	"github.com/skiff-dev/skiff/internal/secret"
)

func newTestSession(t *testing.T, names ...string) *Session {
	t.Helper()
	repo := profile.NewRepository(t.TempDir(), nil)

	var profiles []*profile.Profile
	for _, name := range names {
		profiles = append(profiles, &profile.Profile{
			Name: name, Host: "h", Username: "u", AuthMethod: profile.AuthPassword,
		})
	}
	if err := repo.Save(profiles); err != nil {
		t.Fatal(err)
	}

	return New(repo, secret.NewMemory(), output.New(io.Discard))
}

func TestActiveDefaultsToFirst(t *testing.T) {
	sess := newTestSession(t, "a", "b")

	p, err := sess.Active()
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "a" {
		t.Errorf("active = %q, want a", p.Name)
	}
}

func TestActiveEmptyList(t *testing.T) {
	sess := newTestSession(t)
	if _, err := sess.Active(); err == nil {
		t.Error("expected error with no profiles")
	}
}

func TestSetActive(t *testing.T) {
	sess := newTestSession(t, "a", "b", "c")
	sess.SetActive(2)

	p, err := sess.Active()
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "c" {
		t.Errorf("active = %q, want c", p.Name)
	}
}

func TestActiveOutOfRangeFallsBack(t *testing.T) {
	sess := newTestSession(t, "a", "b")
	sess.SetActive(9)

	p, err := sess.Active()
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "a" {
		t.Errorf("out-of-range index should fall back to first, got %q", p.Name)
	}
}

func TestActivateByName(t *testing.T) {
	sess := newTestSession(t, "a", "b")

	if err := sess.ActivateByName("b"); err != nil {
		t.Fatal(err)
	}
	if sess.ActiveIndex() != 1 {
		t.Errorf("index = %d, want 1", sess.ActiveIndex())
	}

	if err := sess.ActivateByName("zzz"); err == nil {
		t.Error("expected error for unknown name")
	}
}
