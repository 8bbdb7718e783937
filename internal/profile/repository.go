package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the per-project profile file, relative to the project root.
// The path matches the editor extension this tool interoperates with.
const FileName = ".vscode/deployments.sftp.json"

// fileSchema is the persisted shape of the profile file.
type fileSchema struct {
	Deployments []*Profile `json:"deployments"`
}

// WarnFunc receives non-fatal repository warnings (corrupt file, failed
// write). It is never called with nil.
type WarnFunc func(format string, args ...any)

// Repository loads and persists the profile list for one project.
// The file is the single source of truth: every Load re-reads it in full
// and every Save rewrites it in full. There is no locking; concurrent
// invocations can lose an update (single-user tool, accepted).
type Repository struct {
	root string
	warn WarnFunc
}

// NewRepository creates a repository rooted at the given project directory.
func NewRepository(root string, warn WarnFunc) *Repository {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	return &Repository{root: root, warn: warn}
}

// Root returns the project root this repository is bound to.
func (r *Repository) Root() string {
	return r.root
}

// Path returns the absolute path of the profile file.
func (r *Repository) Path() string {
	return filepath.Join(r.root, filepath.FromSlash(FileName))
}

// Load reads the profile list. A missing file yields an empty list. A file
// that cannot be parsed, or whose deployments field is not an array, also
// yields an empty list and a warning — Load never fails on bad content.
func (r *Repository) Load() []*Profile {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return []*Profile{}
		}
		r.warn("cannot read %s: %v", r.Path(), err)
		return []*Profile{}
	}

	// Decode the wrapper loosely first so a deployments field of the
	// wrong type is reported as corrupt rather than half-parsed.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		r.warn("profile file %s is not valid JSON: %v", r.Path(), err)
		return []*Profile{}
	}

	entries, ok := raw["deployments"]
	if !ok {
		r.warn("profile file %s has no deployments list", r.Path())
		return []*Profile{}
	}

	var profiles []*Profile
	if err := json.Unmarshal(entries, &profiles); err != nil {
		r.warn("profile file %s: deployments is not a list: %v", r.Path(), err)
		return []*Profile{}
	}
	if profiles == nil {
		profiles = []*Profile{}
	}
	return profiles
}

// Save rewrites the full profile list, creating .vscode if needed.
// Failures are surfaced both as a warning and as the returned error.
func (r *Repository) Save(profiles []*Profile) error {
	if profiles == nil {
		profiles = []*Profile{}
	}

	data, err := json.MarshalIndent(fileSchema{Deployments: profiles}, "", "  ")
	if err != nil {
		r.warn("cannot encode profiles: %v", err)
		return fmt.Errorf("failed to encode profiles: %w", err)
	}

	dir := filepath.Dir(r.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.warn("cannot create %s: %v", dir, err)
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if err := os.WriteFile(r.Path(), data, 0o644); err != nil {
		r.warn("cannot write %s: %v", r.Path(), err)
		return fmt.Errorf("failed to write %s: %w", r.Path(), err)
	}
	return nil
}

// FindByName returns the profile with the given name, or nil.
func (r *Repository) FindByName(name string) *Profile {
	for _, p := range r.Load() {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Add validates and appends a profile, then rewrites the file.
func (r *Repository) Add(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	profiles := r.Load()
	for _, existing := range profiles {
		if existing.Name == p.Name {
			return fmt.Errorf("profile %q already exists", p.Name)
		}
	}
	return r.Save(append(profiles, p))
}

// Update replaces the profile at the given index.
func (r *Repository) Update(index int, p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	profiles := r.Load()
	if index < 0 || index >= len(profiles) {
		return fmt.Errorf("no profile at index %d", index)
	}
	profiles[index] = p
	return r.Save(profiles)
}

// Remove deletes the profile at the given index and returns it.
func (r *Repository) Remove(index int) (*Profile, error) {
	profiles := r.Load()
	if index < 0 || index >= len(profiles) {
		return nil, fmt.Errorf("no profile at index %d", index)
	}
	removed := profiles[index]
	profiles = append(profiles[:index], profiles[index+1:]...)
	if err := r.Save(profiles); err != nil {
		return nil, err
	}
	return removed, nil
}
