package dispatch

import (
	"context"
	"os"

	"github.com/Hanaasagi/trio/trio/offload"
	"github.com/Hanaasagi/trio/trio/purepath"

	"github.com/spf13/afero"
)

// OpenFile is the hand-written blocking dispatcher for the open operation.
// It offloads the raw open call exactly like a classified blocking forward,
// but the classifier never places open in the table: the returned value is
// a file handle, not a path, so the generic rewrap does not apply and the
// facade wraps the handle itself.
func OpenFile(ctx context.Context, runner *offload.Runner, fsys afero.Fs, raw purepath.RawPath, flag int, perm os.FileMode) (afero.File, error) {
	fut, err := runner.Submit(ctx, func() (interface{}, error) {
		return blockingOpen(fsys, raw, []interface{}{flag, perm})
	})
	if err != nil {
		return nil, err
	}

	value, err := fut.Await(ctx)
	if err != nil {
		return nil, err
	}
	return value.(afero.File), nil
}
