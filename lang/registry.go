package lang

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Registry maps language names and file extensions to profiles. It is
// owned by the caller and read-only during a merge.
type Registry struct {
	profiles []*Profile
	byName   map[string]*Profile
	byExt    map[string]*Profile
}

func NewRegistry(profiles ...*Profile) *Registry {
	r := &Registry{
		byName: map[string]*Profile{},
		byExt:  map[string]*Profile{},
	}
	for _, p := range profiles {
		r.Register(p)
	}
	return r
}

// Register adds a profile. Later registrations win on extension clashes.
func (r *Registry) Register(p *Profile) {
	r.profiles = append(r.profiles, p)
	r.byName[p.Name] = p
	for _, ext := range p.Extensions {
		r.byExt[strings.ToLower(ext)] = p
	}
}

// Profiles returns registered profiles in registration order.
func (r *Registry) Profiles() []*Profile { return r.profiles }

func (r *Registry) ByName(name string) (*Profile, error) {
	p := r.byName[name]
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return p, nil
}

// ByFilename selects a profile from the file extension. The caller owns
// language detection policy; this is the default extension-based one.
func (r *Registry) ByFilename(path string) (*Profile, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	p := r.byExt[ext]
	if p == nil {
		return nil, fmt.Errorf("%w: no language for %q", ErrUnknown, path)
	}
	return p, nil
}
