package pathfs

import (
	"sync"

	"github.com/Hanaasagi/trio/trio/config"
	"github.com/Hanaasagi/trio/trio/offload"

	"github.com/spf13/afero"
)

// Env is the shared execution environment behind a facade path: the
// filesystem the blocking forwards run against and the runner that
// offloads them. Paths produced by rewrapping share their producer's Env.
type Env struct {
	fsys   afero.Fs
	runner *offload.Runner
}

// Option configures an Env.
type Option func(*Env)

// WithFs sets the filesystem backend. Tests typically pass an
// afero.NewMemMapFs to keep blocking operations hermetic.
func WithFs(fsys afero.Fs) Option {
	return func(e *Env) {
		e.fsys = fsys
	}
}

// WithRunner sets the offload runner used for blocking forwards.
func WithRunner(runner *offload.Runner) Option {
	return func(e *Env) {
		e.runner = runner
	}
}

// NewEnv builds an environment, filling unset fields with the OS
// filesystem and the shared default runner.
func NewEnv(opts ...Option) *Env {
	e := &Env{}
	for _, opt := range opts {
		opt(e)
	}
	if e.fsys == nil {
		e.fsys = afero.NewOsFs()
	}
	if e.runner == nil {
		e.runner = offload.Default()
	}
	return e
}

// NewEnvFromConfig builds an environment from loaded configuration: the
// configured filesystem backend plus a dedicated runner sized per the
// workers section. The caller owns the runner's lifecycle through
// Env.Runner().Close.
func NewEnvFromConfig(cfg *config.Config) *Env {
	fsys := afero.NewOsFs()
	if cfg.Trio.Fs.Backend == "memory" {
		fsys = afero.NewMemMapFs()
	}
	runner := offload.NewRunner(cfg.Trio.Workers.Count, cfg.Trio.Workers.QueueCapacity)
	return NewEnv(WithFs(fsys), WithRunner(runner))
}

// Fs returns the filesystem backend.
func (e *Env) Fs() afero.Fs {
	return e.fsys
}

// Runner returns the offload runner.
func (e *Env) Runner() *offload.Runner {
	return e.runner
}

var (
	defaultEnvOnce sync.Once
	defaultEnv     *Env
)

// DefaultEnv returns the process-wide environment: the OS filesystem plus
// the shared offload runner.
func DefaultEnv() *Env {
	defaultEnvOnce.Do(func() {
		defaultEnv = NewEnv()
	})
	return defaultEnv
}
