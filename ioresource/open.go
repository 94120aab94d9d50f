package ioresource

import (
	"context"

	"github.com/ygrebnov/taskengine"
	"github.com/ygrebnov/taskengine/ioreactor"
)

// FileOpenRead opens path for reading and wraps it as a Resource, per
// spec.md §6's fileOpenRead(path).
func FileOpenRead(ctx context.Context, eng *taskengine.Engine, reactor ioreactor.Reactor, path string) (*Resource, error) {
	fd, err := openFileRead(path)
	if err != nil {
		return nil, err
	}
	res, err := Take(ctx, eng, reactor, fd)
	if err != nil {
		closeFD(fd)
		return nil, err
	}
	return res, nil
}

// FileOpenWrite creates or truncates path for writing and wraps it as a
// Resource, per spec.md §6's fileOpenWrite(path).
func FileOpenWrite(ctx context.Context, eng *taskengine.Engine, reactor ioreactor.Reactor, path string) (*Resource, error) {
	fd, err := openFileWrite(path)
	if err != nil {
		return nil, err
	}
	res, err := Take(ctx, eng, reactor, fd)
	if err != nil {
		closeFD(fd)
		return nil, err
	}
	return res, nil
}
