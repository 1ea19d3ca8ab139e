package pathfs

import "github.com/Hanaasagi/trio/trio/purepath"

// Wrapper marks a value as a facade wrapper owning a raw path. The unwrap
// protocol checks for this interface rather than for the concrete Path
// type, so alternative facades interoperate.
type Wrapper interface {
	Raw() purepath.RawPath
}

// UnwrapArgs replaces every facade argument with the raw value it owns.
// All other arguments pass through unchanged; a nil or empty slice is
// returned as is.
func UnwrapArgs(args []interface{}) []interface{} {
	if len(args) == 0 {
		return args
	}
	unwrapped := make([]interface{}, len(args))
	for i, arg := range args {
		if w, ok := arg.(Wrapper); ok {
			arg = w.Raw()
		}
		unwrapped[i] = arg
	}
	return unwrapped
}

// Rewrap converts a raw path return value into a facade path in the
// default environment. Values of any other type pass through unchanged;
// only a single top-level path value is rewrapped, never path values
// nested inside a returned sequence.
func Rewrap(value interface{}) interface{} {
	return DefaultEnv().rewrap(value)
}

// rewrap is the environment-preserving form of Rewrap: the new facade
// shares the filesystem and runner of the path that produced the value.
func (e *Env) rewrap(value interface{}) interface{} {
	if raw, ok := value.(purepath.RawPath); ok {
		return &Path{raw: raw, env: e}
	}
	return value
}
