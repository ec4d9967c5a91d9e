package env

import (
	"os"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc receives unresolved-placeholder warnings.
type WarnFunc func(format string, args ...any)

// Resolver substitutes {{name}} placeholders from suite vars and
// {{$NAME}} placeholders from the OS environment.
type Resolver struct {
	vars     map[string]string
	warnFunc WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{vars: make(map[string]string)}
}

// SetWarnFunc installs a hook called for each unresolved placeholder.
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	if r.warnFunc != nil {
		r.warnFunc(format, args...)
	}
}

// SetVar defines one variable.
func (r *Resolver) SetVar(name, value string) {
	r.vars[name] = value
}

// SetVars defines many variables at once, later calls overriding earlier
// definitions of the same name.
func (r *Resolver) SetVars(vars map[string]string) {
	for k, v := range vars {
		r.vars[k] = v
	}
}

// HasVar reports whether name is defined.
func (r *Resolver) HasVar(name string) bool {
	_, ok := r.vars[name]
	return ok
}

// Vars returns a copy of the defined variables.
func (r *Resolver) Vars() map[string]string {
	out := make(map[string]string, len(r.vars))
	for k, v := range r.vars {
		out[k] = v
	}
	return out
}

// Resolve substitutes every placeholder in input. Unresolved
// placeholders stay textually intact and trigger the warn hook.
func (r *Resolver) Resolve(input string) string {
	if !strings.Contains(input, "{{") {
		return input
	}
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(name, "$") {
			envVar := name[1:]
			if val, ok := os.LookupEnv(envVar); ok {
				return val
			}
			r.warn("unresolved environment variable: $%s", envVar)
			return match
		}

		if val, ok := r.vars[name]; ok {
			return val
		}
		r.warn("unresolved variable: %s", name)
		return match
	})
}

// Clone returns an independent resolver with the same variables and
// warn hook. Each suite gets a clone so its vars never leak into the
// next file.
func (r *Resolver) Clone() *Resolver {
	clone := NewResolver()
	clone.warnFunc = r.warnFunc
	for k, v := range r.vars {
		clone.vars[k] = v
	}
	return clone
}
