package pathfs

import (
	"context"
	"os"

	"github.com/Hanaasagi/trio/trio/asyncfile"
	"github.com/Hanaasagi/trio/trio/dispatch"
)

// Open opens the file read-only. See OpenFile.
func (p *Path) Open(ctx context.Context) (*asyncfile.File, error) {
	return p.OpenFile(ctx, os.O_RDONLY, 0)
}

// OpenFile opens the file with the given flag and permissions. The raw
// open call is offloaded like any blocking forward, but the returned
// handle is wrapped as an asynchronous file rather than rewrapped as a
// path, so reads and writes on it are offloaded too.
func (p *Path) OpenFile(ctx context.Context, flag int, perm os.FileMode) (*asyncfile.File, error) {
	f, err := dispatch.OpenFile(ctx, p.env.runner, p.env.fsys, p.raw, flag, perm)
	if err != nil {
		return nil, err
	}
	return asyncfile.New(f, p.env.runner), nil
}
