package dispatch

import (
	"fmt"
	"os"
	"time"

	"github.com/Hanaasagi/trio/trio/purepath"

	"github.com/spf13/afero"
)

// declaredSources is the curated member registry: every operation the
// facade forwards, bound to the underlying library that implements it.
// Pure members delegate to purepath, blocking members to afero. The
// registry replaces open-ended reflection; adding an operation means
// declaring it here and letting the classifier place it.
func declaredSources() sources {
	return sources{
		pure: map[string]PureFunc{
			"name":        pureName,
			"stem":        pureStem,
			"suffix":      pureSuffix,
			"parts":       pureParts,
			"parent":      pureParent,
			"is_abs":      pureIsAbs,
			"join":        pureJoin,
			"match":       pureMatch,
			"relative_to": pureRelativeTo,
			"with_name":   pureWithName,
			"with_suffix": pureWithSuffix,
			"clean":       pureClean,

			// Internal plumbing, skipped by the classifier.
			"_raw": pureRaw,
		},
		blocking: map[string]BlockingFunc{
			"stat":       blockingStat,
			"exists":     blockingExists,
			"is_dir":     blockingIsDir,
			"is_file":    blockingIsFile,
			"mkdir":      blockingMkdir,
			"remove":     blockingRemove,
			"remove_all": blockingRemoveAll,
			"rename":     blockingRename,
			"read_file":  blockingReadFile,
			"write_file": blockingWriteFile,
			"read_dir":   blockingReadDir,
			"glob":       blockingGlob,
			"chmod":      blockingChmod,
			"chtimes":    blockingChtimes,
			"touch":      blockingTouch,

			// The facade defines open by hand: its return value is a file
			// handle, not a path, so the generic rewrap does not apply.
			"open": blockingOpen,
		},
		operatorNames: []string{
			"str", "bytes", "eq", "lt", "le", "gt", "ge", "div", "rdiv",
		},
		operators: map[string]OperatorFunc{
			"str":   operatorStr,
			"bytes": operatorBytes,
			"eq":    operatorEq,
			"lt":    operatorLt,
			"le":    operatorLe,
			"gt":    operatorGt,
			"ge":    operatorGe,
			"div":   operatorDiv,
			"rdiv":  operatorRDiv,
		},
		explicit: map[string]struct{}{
			"open": {},
		},
	}
}

// Argument coercion helpers. Arguments arrive unwrapped, so a path-valued
// argument is either a purepath.RawPath or a plain string.

func argString(op string, args []interface{}, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%s: missing argument %d", op, i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%s: argument %d: expected string, got %T", op, i, args[i])
	}
	return s, nil
}

func argBytes(op string, args []interface{}, i int) ([]byte, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("%s: missing argument %d", op, i)
	}
	b, ok := args[i].([]byte)
	if !ok {
		return nil, fmt.Errorf("%s: argument %d: expected []byte, got %T", op, i, args[i])
	}
	return b, nil
}

func argFileMode(op string, args []interface{}, i int) (os.FileMode, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%s: missing argument %d", op, i)
	}
	m, ok := args[i].(os.FileMode)
	if !ok {
		return 0, fmt.Errorf("%s: argument %d: expected os.FileMode, got %T", op, i, args[i])
	}
	return m, nil
}

func argTime(op string, args []interface{}, i int) (time.Time, error) {
	if i >= len(args) {
		return time.Time{}, fmt.Errorf("%s: missing argument %d", op, i)
	}
	t, ok := args[i].(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: argument %d: expected time.Time, got %T", op, i, args[i])
	}
	return t, nil
}

func argRaw(op string, args []interface{}, i int) (purepath.RawPath, error) {
	if i >= len(args) {
		return purepath.RawPath{}, fmt.Errorf("%s: missing argument %d", op, i)
	}
	return coerceRaw(op, args[i])
}

func coerceRaw(op string, v interface{}) (purepath.RawPath, error) {
	switch arg := v.(type) {
	case purepath.RawPath:
		return arg, nil
	case string:
		return purepath.New(arg), nil
	default:
		return purepath.RawPath{}, fmt.Errorf("%s: expected path value, got %T", op, v)
	}
}

// Pure forwards, bound to purepath.

func pureName(raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return raw.Name(), nil
}

func pureStem(raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return raw.Stem(), nil
}

func pureSuffix(raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return raw.Suffix(), nil
}

func pureParts(raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return raw.Parts(), nil
}

func pureParent(raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return raw.Parent(), nil
}

func pureIsAbs(raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return raw.IsAbs(), nil
}

func pureJoin(raw purepath.RawPath, args []interface{}) (interface{}, error) {
	segments := make([]string, 0, len(args))
	for i := range args {
		seg, err := argRaw("join", args, i)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg.String())
	}
	return raw.Join(segments...), nil
}

func pureMatch(raw purepath.RawPath, args []interface{}) (interface{}, error) {
	pattern, err := argString("match", args, 0)
	if err != nil {
		return nil, err
	}
	return raw.Match(pattern)
}

func pureRelativeTo(raw purepath.RawPath, args []interface{}) (interface{}, error) {
	base, err := argRaw("relative_to", args, 0)
	if err != nil {
		return nil, err
	}
	return raw.RelativeTo(base)
}

func pureWithName(raw purepath.RawPath, args []interface{}) (interface{}, error) {
	name, err := argString("with_name", args, 0)
	if err != nil {
		return nil, err
	}
	return raw.WithName(name)
}

func pureWithSuffix(raw purepath.RawPath, args []interface{}) (interface{}, error) {
	suffix, err := argString("with_suffix", args, 0)
	if err != nil {
		return nil, err
	}
	return raw.WithSuffix(suffix)
}

func pureClean(raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return raw.Clean(), nil
}

func pureRaw(raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return raw, nil
}

// Blocking forwards, bound to afero. These run on offload workers only;
// errors from the filesystem pass through unchanged.

func blockingStat(fsys afero.Fs, raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return fsys.Stat(raw.String())
}

func blockingExists(fsys afero.Fs, raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return afero.Exists(fsys, raw.String())
}

func blockingIsDir(fsys afero.Fs, raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return afero.DirExists(fsys, raw.String())
}

func blockingIsFile(fsys afero.Fs, raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	info, err := fsys.Stat(raw.String())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func blockingMkdir(fsys afero.Fs, raw purepath.RawPath, args []interface{}) (interface{}, error) {
	perm := os.FileMode(0o755)
	if len(args) > 0 {
		var err error
		if perm, err = argFileMode("mkdir", args, 0); err != nil {
			return nil, err
		}
	}
	return nil, fsys.MkdirAll(raw.String(), perm)
}

func blockingRemove(fsys afero.Fs, raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return nil, fsys.Remove(raw.String())
}

func blockingRemoveAll(fsys afero.Fs, raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return nil, fsys.RemoveAll(raw.String())
}

func blockingRename(fsys afero.Fs, raw purepath.RawPath, args []interface{}) (interface{}, error) {
	target, err := argRaw("rename", args, 0)
	if err != nil {
		return nil, err
	}
	if err := fsys.Rename(raw.String(), target.String()); err != nil {
		return nil, err
	}
	// The renamed location is a new path value; the dispatcher rewraps it.
	return target, nil
}

func blockingReadFile(fsys afero.Fs, raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return afero.ReadFile(fsys, raw.String())
}

func blockingWriteFile(fsys afero.Fs, raw purepath.RawPath, args []interface{}) (interface{}, error) {
	data, err := argBytes("write_file", args, 0)
	if err != nil {
		return nil, err
	}
	perm := os.FileMode(0o644)
	if len(args) > 1 {
		if perm, err = argFileMode("write_file", args, 1); err != nil {
			return nil, err
		}
	}
	if err := afero.WriteFile(fsys, raw.String(), data, perm); err != nil {
		return nil, err
	}
	return len(data), nil
}

func blockingReadDir(fsys afero.Fs, raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	return afero.ReadDir(fsys, raw.String())
}

func blockingGlob(fsys afero.Fs, raw purepath.RawPath, args []interface{}) (interface{}, error) {
	pattern, err := argString("glob", args, 0)
	if err != nil {
		return nil, err
	}
	matches, err := afero.Glob(fsys, raw.Join(pattern).String())
	if err != nil {
		return nil, err
	}
	// Only a single top-level path value is rewrapped by the dispatcher;
	// a produced sequence stays raw.
	paths := make([]purepath.RawPath, 0, len(matches))
	for _, match := range matches {
		paths = append(paths, purepath.New(match))
	}
	return paths, nil
}

func blockingChmod(fsys afero.Fs, raw purepath.RawPath, args []interface{}) (interface{}, error) {
	mode, err := argFileMode("chmod", args, 0)
	if err != nil {
		return nil, err
	}
	return nil, fsys.Chmod(raw.String(), mode)
}

func blockingChtimes(fsys afero.Fs, raw purepath.RawPath, args []interface{}) (interface{}, error) {
	atime, err := argTime("chtimes", args, 0)
	if err != nil {
		return nil, err
	}
	mtime, err := argTime("chtimes", args, 1)
	if err != nil {
		return nil, err
	}
	return nil, fsys.Chtimes(raw.String(), atime, mtime)
}

func blockingTouch(fsys afero.Fs, raw purepath.RawPath, _ []interface{}) (interface{}, error) {
	f, err := fsys.OpenFile(raw.String(), os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	now := time.Now()
	return nil, fsys.Chtimes(raw.String(), now, now)
}

func blockingOpen(fsys afero.Fs, raw purepath.RawPath, args []interface{}) (interface{}, error) {
	flag := os.O_RDONLY
	perm := os.FileMode(0)
	if len(args) > 0 {
		f, ok := args[0].(int)
		if !ok {
			return nil, fmt.Errorf("open: argument 0: expected int, got %T", args[0])
		}
		flag = f
	}
	if len(args) > 1 {
		var err error
		if perm, err = argFileMode("open", args, 1); err != nil {
			return nil, err
		}
	}
	return fsys.OpenFile(raw.String(), flag, perm)
}

// Operator forwards. A nil operand selects the unary form; binary operands
// arrive unwrapped and may be raw paths or strings.

func operatorStr(raw purepath.RawPath, _ interface{}) (interface{}, error) {
	return raw.String(), nil
}

func operatorBytes(raw purepath.RawPath, _ interface{}) (interface{}, error) {
	return raw.Bytes(), nil
}

func operatorEq(raw purepath.RawPath, operand interface{}) (interface{}, error) {
	other, err := coerceRaw("eq", operand)
	if err != nil {
		// Equality against a non-path value is defined as false, matching
		// the underlying library's comparison behavior.
		return false, nil
	}
	return raw.Equal(other), nil
}

func operatorLt(raw purepath.RawPath, operand interface{}) (interface{}, error) {
	return compareOperator("lt", raw, operand, func(c int) bool { return c < 0 })
}

func operatorLe(raw purepath.RawPath, operand interface{}) (interface{}, error) {
	return compareOperator("le", raw, operand, func(c int) bool { return c <= 0 })
}

func operatorGt(raw purepath.RawPath, operand interface{}) (interface{}, error) {
	return compareOperator("gt", raw, operand, func(c int) bool { return c > 0 })
}

func operatorGe(raw purepath.RawPath, operand interface{}) (interface{}, error) {
	return compareOperator("ge", raw, operand, func(c int) bool { return c >= 0 })
}

func compareOperator(op string, raw purepath.RawPath, operand interface{}, accept func(int) bool) (interface{}, error) {
	other, err := coerceRaw(op, operand)
	if err != nil {
		return nil, err
	}
	return accept(raw.Compare(other)), nil
}

func operatorDiv(raw purepath.RawPath, operand interface{}) (interface{}, error) {
	other, err := coerceRaw("div", operand)
	if err != nil {
		return nil, err
	}
	return raw.Join(other.String()), nil
}

func operatorRDiv(raw purepath.RawPath, operand interface{}) (interface{}, error) {
	other, err := coerceRaw("rdiv", operand)
	if err != nil {
		return nil, err
	}
	return other.Join(raw.String()), nil
}
