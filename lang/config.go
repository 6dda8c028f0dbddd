package lang

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// KindConfig overrides parts of one kind's capability entry.
type KindConfig struct {
	Atomic      *bool   `yaml:"atomic"`
	Commutative *bool   `yaml:"commutative"`
	Identity    *string `yaml:"identity"`
	Separator   *string `yaml:"separator"`
}

type profileConfig struct {
	Kinds map[string]KindConfig `yaml:"kinds"`
}

// ApplyConfig overlays a YAML document of the form
//
//	json:
//	  kinds:
//	    array:
//	      commutative: true
//
// onto the registered profiles. Unknown languages are an error, unknown
// kinds are accepted (they gain a fresh entry) so users can configure
// kinds the built-in table leaves implicit.
func (r *Registry) ApplyConfig(data []byte) error {
	cfg := map[string]profileConfig{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrBadConfig, err)
	}
	for name, pc := range cfg {
		p := r.byName[name]
		if p == nil {
			return fmt.Errorf("%w: %q", ErrUnknown, name)
		}
		if p.Kinds == nil {
			p.Kinds = map[string]Flags{}
		}
		for kind, kc := range pc.Kinds {
			flags := p.Kinds[kind]
			if kc.Atomic != nil {
				flags.Atomic = *kc.Atomic
			}
			if kc.Commutative != nil {
				flags.Commutative = *kc.Commutative
			}
			if kc.Identity != nil {
				flags.IdentityKind = *kc.Identity
			}
			if kc.Separator != nil {
				flags.Separator = *kc.Separator
			}
			p.Kinds[kind] = flags
		}
	}
	return nil
}
