package pathfs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Hanaasagi/trio/trio/dispatch"
	"github.com/Hanaasagi/trio/trio/purepath"
)

// blocking is the blocking dispatcher: unwrap arguments, bind the
// classified forward into a deferred invocation, offload it, suspend until
// the worker completes, rewrap the result. Each call is an independent
// suspension point; cancellation follows the runner's contract.
func (p *Path) blocking(ctx context.Context, name string, args ...interface{}) (interface{}, error) {
	entry, err := dispatch.Shared().Lookup(name)
	if err != nil {
		return nil, err
	}
	value, err := entry.InvokeBlocking(ctx, p.env.runner, p.env.fsys, p.raw, UnwrapArgs(args))
	if err != nil {
		return nil, err
	}
	return p.env.rewrap(value), nil
}

// Stat returns the file info for the path.
func (p *Path) Stat(ctx context.Context) (os.FileInfo, error) {
	value, err := p.blocking(ctx, "stat")
	if err != nil {
		return nil, err
	}
	return value.(os.FileInfo), nil
}

// Exists reports whether the path exists. A missing path is a false
// result, not an error.
func (p *Path) Exists(ctx context.Context) (bool, error) {
	value, err := p.blocking(ctx, "exists")
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// IsDir reports whether the path exists and is a directory.
func (p *Path) IsDir(ctx context.Context) (bool, error) {
	value, err := p.blocking(ctx, "is_dir")
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// IsFile reports whether the path exists and is a regular file.
func (p *Path) IsFile(ctx context.Context) (bool, error) {
	value, err := p.blocking(ctx, "is_file")
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// Mkdir creates the directory and any missing parents.
func (p *Path) Mkdir(ctx context.Context, perm os.FileMode) error {
	_, err := p.blocking(ctx, "mkdir", perm)
	return err
}

// Remove removes the file or empty directory.
func (p *Path) Remove(ctx context.Context) error {
	_, err := p.blocking(ctx, "remove")
	return err
}

// RemoveAll removes the path and any children it contains.
func (p *Path) RemoveAll(ctx context.Context) error {
	_, err := p.blocking(ctx, "remove_all")
	return err
}

// Rename moves the path to target, which may be a string, raw path, or
// facade, and returns the target as a new facade.
func (p *Path) Rename(ctx context.Context, target interface{}) (*Path, error) {
	value, err := p.blocking(ctx, "rename", target)
	if err != nil {
		return nil, err
	}
	return value.(*Path), nil
}

// ReadFile reads the whole file.
func (p *Path) ReadFile(ctx context.Context) ([]byte, error) {
	value, err := p.blocking(ctx, "read_file")
	if err != nil {
		return nil, err
	}
	return value.([]byte), nil
}

// WriteFile writes data, creating the file with perm if needed, and
// returns the number of bytes written.
func (p *Path) WriteFile(ctx context.Context, data []byte, perm os.FileMode) (int, error) {
	value, err := p.blocking(ctx, "write_file", data, perm)
	if err != nil {
		return 0, err
	}
	return value.(int), nil
}

// ReadDir lists the directory entries.
func (p *Path) ReadDir(ctx context.Context) ([]os.FileInfo, error) {
	value, err := p.blocking(ctx, "read_dir")
	if err != nil {
		return nil, err
	}
	return value.([]os.FileInfo), nil
}

// Glob matches pattern relative to the path. The dispatcher only rewraps
// a single top-level path value, so the typed layer wraps each match.
func (p *Path) Glob(ctx context.Context, pattern string) ([]*Path, error) {
	value, err := p.blocking(ctx, "glob", pattern)
	if err != nil {
		return nil, err
	}
	raws := value.([]purepath.RawPath)
	paths := make([]*Path, 0, len(raws))
	for _, raw := range raws {
		paths = append(paths, p.env.rewrap(raw).(*Path))
	}
	return paths, nil
}

// Chmod changes the mode of the path.
func (p *Path) Chmod(ctx context.Context, mode os.FileMode) error {
	_, err := p.blocking(ctx, "chmod", mode)
	return err
}

// Chtimes changes the access and modification times of the path.
func (p *Path) Chtimes(ctx context.Context, atime, mtime time.Time) error {
	_, err := p.blocking(ctx, "chtimes", atime, mtime)
	return err
}

// Touch creates the file if missing and updates its times.
func (p *Path) Touch(ctx context.Context) error {
	_, err := p.blocking(ctx, "touch")
	return err
}

// Call dispatches an operation by name through whatever calling convention
// the classifier assigned to it. Unknown names fail with
// dispatch.ErrUnknownOperation.
func (p *Path) Call(ctx context.Context, name string, args ...interface{}) (interface{}, error) {
	entry, err := dispatch.Shared().Lookup(name)
	if err != nil {
		return nil, err
	}
	switch entry.Strategy() {
	case dispatch.StrategyBlocking:
		return p.blocking(ctx, name, args...)
	case dispatch.StrategyOperator:
		return p.callOperator(name, args)
	default:
		return p.pure(name, args...)
	}
}

// CallPure dispatches a non-blocking operation by name. Blocking
// operations are rejected: they must go through Call so the caller's
// suspension is explicit.
func (p *Path) CallPure(name string, args ...interface{}) (interface{}, error) {
	entry, err := dispatch.Shared().Lookup(name)
	if err != nil {
		return nil, err
	}
	switch entry.Strategy() {
	case dispatch.StrategyBlocking:
		return nil, fmt.Errorf("%w: %s is blocking", dispatch.ErrWrongStrategy, name)
	case dispatch.StrategyOperator:
		return p.callOperator(name, args)
	default:
		return p.pure(name, args...)
	}
}

func (p *Path) callOperator(name string, args []interface{}) (interface{}, error) {
	switch len(args) {
	case 0:
		return p.operator(name, nil)
	case 1:
		return p.operator(name, args[0])
	default:
		return nil, fmt.Errorf("operator %s takes at most one operand, got %d", name, len(args))
	}
}
