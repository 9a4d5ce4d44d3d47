// Package keys derives stable cache keys from logical computation parameters.
//
// A key is a namespace plus a set of named parameters. Parameters are sorted
// by name before rendering, so two keys built from logically equal inputs are
// identical no matter the order the parameters were supplied in. Mutable
// configuration (for example a scoring profile whose weights can change at
// runtime) must be folded in through [Hash] so that a changed configuration
// can never alias a stale entry.
package keys

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/Keksclan/goAcornStash/internal/canonical"
)

// Param is a single named logical parameter of a computation.
type Param struct {
	Name  string
	Value string
}

// String formats a string-valued parameter.
func String(name, value string) Param {
	return Param{Name: name, Value: value}
}

// Int formats an integer-valued parameter.
func Int(name string, value int) Param {
	return Param{Name: name, Value: strconv.Itoa(value)}
}

// Hash folds arbitrary configuration content into a parameter. The value is
// canonicalized (sorted object keys at every level) before hashing, so two
// configurations that differ only in field order produce the same parameter
// while any changed weight or field produces a different one.
func Hash(name string, value any) (Param, error) {
	enc, err := canonical.Encode(value)
	if err != nil {
		return Param{}, fmt.Errorf("keys: hash %q: %w", name, err)
	}
	return Param{Name: name, Value: "x" + strconv.FormatUint(xxhash.Sum64(enc), 16)}, nil
}

// Key identifies one logical computation within a namespace.
type Key struct {
	namespace string
	params    []Param
}

// New builds a Key from a namespace and its logical parameters. The supplied
// order of params does not matter.
func New(namespace string, params ...Param) Key {
	ps := make([]Param, len(params))
	copy(ps, params)
	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
	return Key{namespace: namespace, params: ps}
}

// Namespace returns the key's namespace.
func (k Key) Namespace() string { return k.namespace }

// Params returns the key's parameters in canonical (name-sorted) order.
func (k Key) Params() []Param {
	out := make([]Param, len(k.params))
	copy(out, k.params)
	return out
}

// Param returns the value of the named parameter, or "" when absent.
func (k Key) Param(name string) string {
	for _, p := range k.params {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// String renders the canonical form, e.g. "digest" or
// "predictions?limit=100&profile=balanced&weights=x9f86d081884c7d65".
// Equal keys always render identically; the rendered form is what the TTL
// store, persisted store, and job-queue payloads use for matching.
func (k Key) String() string {
	if len(k.params) == 0 {
		return k.namespace
	}
	var b strings.Builder
	b.WriteString(k.namespace)
	b.WriteByte('?')
	for i, p := range k.params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}
