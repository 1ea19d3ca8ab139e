package purepath

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RawPath is an immutable path value holding one cleaned path string.
// All path-string semantics are delegated to path/filepath; RawPath only
// adds the pathlib-style accessors the facade forwards to. A RawPath never
// touches the filesystem.
type RawPath struct {
	p string
}

// New builds a RawPath from path segments. Segments are joined left to
// right; an absolute segment restarts the path, so the last absolute
// segment wins. The result is cleaned.
func New(segments ...string) RawPath {
	joined := ""
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if filepath.IsAbs(seg) || joined == "" {
			joined = seg
			continue
		}
		joined = filepath.Join(joined, seg)
	}
	if joined == "" {
		joined = "."
	}
	return RawPath{p: filepath.Clean(joined)}
}

// String returns the path string.
func (r RawPath) String() string {
	return r.p
}

// Bytes returns the path string as a byte slice.
func (r RawPath) Bytes() []byte {
	return []byte(r.p)
}

// Name returns the final path component, or "" for the root.
func (r RawPath) Name() string {
	name := filepath.Base(r.p)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

// Stem returns the final path component without its suffix.
func (r RawPath) Stem() string {
	name := r.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Suffix returns the extension of the final path component, including the
// leading dot, or "" if there is none.
func (r RawPath) Suffix() string {
	return filepath.Ext(r.Name())
}

// Parts splits the path into its components. An absolute path keeps the
// separator as its first part.
func (r RawPath) Parts() []string {
	sep := string(filepath.Separator)
	rest := r.p
	parts := make([]string, 0, strings.Count(rest, sep)+1)
	if filepath.IsAbs(rest) {
		vol := filepath.VolumeName(rest)
		parts = append(parts, vol+sep)
		rest = strings.TrimPrefix(rest[len(vol):], sep)
	}
	if rest == "" || rest == "." {
		return parts
	}
	return append(parts, strings.Split(rest, sep)...)
}

// Parent returns the logical parent path. The parent of a root or of "."
// is itself.
func (r RawPath) Parent() RawPath {
	return RawPath{p: filepath.Dir(r.p)}
}

// IsAbs reports whether the path is absolute.
func (r RawPath) IsAbs() bool {
	return filepath.IsAbs(r.p)
}

// Join appends segments to the path, with the same absolute-segment
// semantics as New.
func (r RawPath) Join(segments ...string) RawPath {
	return New(append([]string{r.p}, segments...)...)
}

// Match reports whether the path matches the shell pattern. The error
// reports a malformed pattern.
func (r RawPath) Match(pattern string) (bool, error) {
	return filepath.Match(pattern, r.p)
}

// RelativeTo returns the path relative to other.
func (r RawPath) RelativeTo(other RawPath) (RawPath, error) {
	rel, err := filepath.Rel(other.p, r.p)
	if err != nil {
		return RawPath{}, fmt.Errorf("failed to relativize %s against %s: %w", r.p, other.p, err)
	}
	return RawPath{p: rel}, nil
}

// WithName returns a path with the final component replaced by name.
func (r RawPath) WithName(name string) (RawPath, error) {
	if r.Name() == "" {
		return RawPath{}, fmt.Errorf("path %q has no name to replace", r.p)
	}
	if name == "" || strings.ContainsRune(name, filepath.Separator) {
		return RawPath{}, fmt.Errorf("invalid name %q", name)
	}
	return RawPath{p: filepath.Join(filepath.Dir(r.p), name)}, nil
}

// WithSuffix returns a path with the suffix of the final component
// replaced. An empty suffix removes the current one.
func (r RawPath) WithSuffix(suffix string) (RawPath, error) {
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		return RawPath{}, fmt.Errorf("invalid suffix %q: must start with '.'", suffix)
	}
	name := r.Name()
	if name == "" {
		return RawPath{}, fmt.Errorf("path %q has no name to modify", r.p)
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return RawPath{p: filepath.Join(filepath.Dir(r.p), stem+suffix)}, nil
}

// Clean returns the cleaned path. RawPath values are cleaned on
// construction, so this is a no-op kept for forwarding completeness.
func (r RawPath) Clean() RawPath {
	return RawPath{p: filepath.Clean(r.p)}
}

// Equal reports whether both paths hold the same cleaned path string.
func (r RawPath) Equal(other RawPath) bool {
	return r.p == other.p
}

// Compare orders two paths lexicographically on their cleaned strings.
func (r RawPath) Compare(other RawPath) int {
	return strings.Compare(r.p, other.p)
}
