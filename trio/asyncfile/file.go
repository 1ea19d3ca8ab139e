// Package asyncfile wraps a raw open file handle so its blocking
// operations run on offload workers, the same way the path facade offloads
// its filesystem calls. Handles are produced by the facade's open
// operation; the wrapper owns the underlying file until Close.
package asyncfile

import (
	"context"

	"github.com/Hanaasagi/trio/trio/offload"

	"github.com/spf13/afero"
)

// File is an afero.File whose I/O methods suspend the caller while a
// worker performs the operation. A File is not safe for concurrent use;
// like the raw handle, it carries a single file offset.
type File struct {
	f      afero.File
	runner *offload.Runner
}

// New wraps an open file handle with the given runner.
func New(f afero.File, runner *offload.Runner) *File {
	return &File{f: f, runner: runner}
}

// Name returns the name of the file as presented to open. No I/O.
func (f *File) Name() string {
	return f.f.Name()
}

// Read reads into p on a worker and suspends until completion.
func (f *File) Read(ctx context.Context, p []byte) (int, error) {
	value, err := f.offload(ctx, func() (interface{}, error) {
		return f.f.Read(p)
	})
	if err != nil {
		return 0, err
	}
	return value.(int), nil
}

// Write writes p on a worker and suspends until completion.
func (f *File) Write(ctx context.Context, p []byte) (int, error) {
	value, err := f.offload(ctx, func() (interface{}, error) {
		return f.f.Write(p)
	})
	if err != nil {
		return 0, err
	}
	return value.(int), nil
}

// Seek sets the file offset on a worker and suspends until completion.
func (f *File) Seek(ctx context.Context, offset int64, whence int) (int64, error) {
	value, err := f.offload(ctx, func() (interface{}, error) {
		return f.f.Seek(offset, whence)
	})
	if err != nil {
		return 0, err
	}
	return value.(int64), nil
}

// Sync flushes the file on a worker and suspends until completion.
func (f *File) Sync(ctx context.Context) error {
	_, err := f.offload(ctx, func() (interface{}, error) {
		return nil, f.f.Sync()
	})
	return err
}

// Truncate resizes the file on a worker and suspends until completion.
func (f *File) Truncate(ctx context.Context, size int64) error {
	_, err := f.offload(ctx, func() (interface{}, error) {
		return nil, f.f.Truncate(size)
	})
	return err
}

// Close closes the underlying handle on a worker.
func (f *File) Close(ctx context.Context) error {
	_, err := f.offload(ctx, func() (interface{}, error) {
		return nil, f.f.Close()
	})
	return err
}

func (f *File) offload(ctx context.Context, fn offload.Job) (interface{}, error) {
	fut, err := f.runner.Submit(ctx, fn)
	if err != nil {
		return nil, err
	}
	return fut.Await(ctx)
}
