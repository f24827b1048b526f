package generator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/objcfg"
)

// emitFunc resolves one object, pulls the objects it references and returns
// its block. A nil block means the object cannot be materialized; the
// function logs the reason itself.
type emitFunc func() (*objcfg.Block, error)

// base holds the memo tables and output file shared by every generator.
// done is the memo set, active is the set of keys currently being emitted
// and missing remembers keys already reported as not found.
type base[K comparable] struct {
	kind    Kind
	reg     *Registry
	logger  *zap.Logger
	out     *outputFile
	done    map[K]struct{}
	active  map[K]struct{}
	missing map[K]struct{}
}

func newBase[K comparable](reg *Registry, kind Kind) base[K] {
	return base[K]{
		kind:    kind,
		reg:     reg,
		logger:  reg.logger.Named(string(kind)),
		out:     newOutputFile(reg.dir, reg.scope.NodeID, kind, reg.scope.Accumulator),
		done:    make(map[K]struct{}),
		active:  make(map[K]struct{}),
		missing: make(map[K]struct{}),
	}
}

// once emits the object for key unless it was already emitted in this pass
func (b *base[K]) once(ctx context.Context, key K, emit emitFunc) (Result, error) {
	if _, ok := b.done[key]; ok {
		b.reg.scope.Metrics.Skipped(string(b.kind))
		return Skipped, nil
	}
	if _, ok := b.missing[key]; ok {
		return NotFound, nil
	}
	if _, ok := b.active[key]; ok {
		return NotFound, b.reg.cycle(b.kind, fmt.Sprint(key))
	}
	if err := ctx.Err(); err != nil {
		return NotFound, err
	}

	b.active[key] = struct{}{}
	b.reg.push(b.kind, fmt.Sprint(key))
	defer func() {
		delete(b.active, key)
		b.reg.pop()
	}()

	block, err := emit()
	if err != nil {
		return NotFound, b.wrap(key, err)
	}
	if block == nil {
		b.missing[key] = struct{}{}
		b.reg.scope.Metrics.Missing(string(b.kind))
		return NotFound, nil
	}

	if err := b.out.append(block); err != nil {
		return NotFound, b.wrap(key, err)
	}

	b.done[key] = struct{}{}
	b.reg.scope.Metrics.Emitted(string(b.kind))
	return Emitted, nil
}

// wrap attaches the object context to a fatal error. Errors that already
// carry it from a nested generator are returned unchanged.
func (b *base[K]) wrap(key K, err error) error {
	return b.wrapKey(fmt.Sprint(key), err)
}

// wrapAll attaches the generator context to a fatal error raised outside
// of a single object
func (b *base[K]) wrapAll(err error) error {
	return b.wrapKey("*", err)
}

func (b *base[K]) wrapKey(key string, err error) error {
	var genErr *GenerateError
	var cycleErr *CycleError
	if errors.As(err, &genErr) || errors.As(err, &cycleErr) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &GenerateError{Kind: b.kind, Key: key, Err: err}
}

func (b *base[K]) Kind() Kind {
	return b.kind
}

func (b *base[K]) Count() int {
	return len(b.done)
}

func (b *base[K]) Path() string {
	return b.out.path
}

func (b *base[K]) Reset() error {
	clear(b.done)
	clear(b.active)
	clear(b.missing)
	return b.out.remove()
}
