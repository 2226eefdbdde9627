// Package config resolves runtime options from the ambient environment.
//
// All project-owned switches live under the QOPT_ prefix. Cloud credential
// variables keep their native names (AWS_* for Braket); the resolver can
// check either form. Config-file loading is an external collaborator and
// deliberately not implemented here.
package config

import "os"

// Prefix is prepended to every project-owned environment key.
const Prefix = "QOPT_"

// Credential variable sets per cloud provider. A provider is considered
// configured only when every variable in its set is present and non-empty;
// a partial set counts as absent.
var (
	IBMCredentialVars    = []string{"QOPT_IBM_TOKEN", "QOPT_IBM_INSTANCE"}
	BraketCredentialVars = []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_DEFAULT_REGION"}
)

// Resolver answers environment-qualified option lookups.
//
// The zero value reads the process environment. Tests inject a fixed
// variable map instead of mutating the real environment.
type Resolver struct {
	lookup func(string) (string, bool)
}

// NewResolver returns a resolver over the process environment.
func NewResolver() *Resolver {
	return &Resolver{lookup: os.LookupEnv}
}

// NewStaticResolver returns a resolver over a fixed variable map.
func NewStaticResolver(vars map[string]string) *Resolver {
	return &Resolver{lookup: func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}}
}

// Get returns the value of the QOPT_-prefixed key.
func (r *Resolver) Get(key string) (string, bool) {
	return r.Raw(Prefix + key)
}

// GetDefault returns the value of the QOPT_-prefixed key, or def when unset.
func (r *Resolver) GetDefault(key, def string) string {
	if v, ok := r.Get(key); ok {
		return v
	}
	return def
}

// Raw returns an environment variable by its exact name.
func (r *Resolver) Raw(name string) (string, bool) {
	lookup := r.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// HasAll reports whether every named variable is present and non-empty.
func (r *Resolver) HasAll(names []string) bool {
	for _, name := range names {
		if _, ok := r.Raw(name); !ok {
			return false
		}
	}
	return true
}
