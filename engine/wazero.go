package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	celruntime "github.com/astrokit/cel-runtime"
	"github.com/astrokit/cel-runtime/block"
)

// Exported function names the hosted engine must provide. Each takes a
// pointer to an encoded block in linear memory and returns a status
// code; cel_prt additionally takes an output buffer pointer and
// capacity and NUL-terminates what it writes.
const (
	exportIni = "cel_ini"
	exportSet = "cel_set"
	exportFre = "cel_fre"
	exportPrt = "cel_prt"

	cabiRealloc = "cabi_realloc"
	cabiFree    = "cabi_free"
	legacyAlloc = "malloc"
	legacyFree  = "free"
)

const renderBufSize = 4096

// Wazero hosts the transform engine as a WASM module. Blocks are
// mirrored into the guest's linear memory for each call and decoded
// back afterwards, so the host-side record stays the source of truth.
//
// A Wazero engine is NOT safe for concurrent use; the wrapper's callers
// serialize access, and the instance's stack buffer is reused between
// calls.
type Wazero struct {
	runtime wazero.Runtime
	mod     api.Module
	mem     api.Memory

	iniFn api.Function
	setFn api.Function
	freFn api.Function
	prtFn api.Function

	allocFn       api.Function
	freeFn        api.Function
	isSimpleAlloc bool

	stack []uint64
}

// NewWazero compiles and instantiates an engine module from wasmBytes.
func NewWazero(ctx context.Context, wasmBytes []byte) (*Wazero, error) {
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig())

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("compile engine module: %w", err)
	}

	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiate engine module: %w", err)
	}

	e := &Wazero{
		runtime: r,
		mod:     mod,
		mem:     mod.Memory(),
		stack:   make([]uint64, 8),
	}
	if e.mem == nil {
		r.Close(ctx)
		return nil, fmt.Errorf("engine module exports no memory")
	}

	for _, exp := range []struct {
		name string
		fn   *api.Function
	}{
		{exportIni, &e.iniFn},
		{exportSet, &e.setFn},
		{exportFre, &e.freFn},
		{exportPrt, &e.prtFn},
	} {
		f := mod.ExportedFunction(exp.name)
		if f == nil {
			r.Close(ctx)
			return nil, fmt.Errorf("engine module missing export %q", exp.name)
		}
		*exp.fn = f
	}

	// Allocator: standard cabi_realloc first, then legacy malloc/free.
	if f := mod.ExportedFunction(cabiRealloc); f != nil {
		e.allocFn = f
	} else if f := mod.ExportedFunction(legacyAlloc); f != nil {
		e.allocFn = f
		e.isSimpleAlloc = true
	} else {
		r.Close(ctx)
		return nil, fmt.Errorf("engine module exports no allocator")
	}
	if f := mod.ExportedFunction(cabiFree); f != nil {
		e.freeFn = f
	} else if f := mod.ExportedFunction(legacyFree); f != nil {
		e.freeFn = f
	}

	return e, nil
}

// Close releases the runtime and every module it instantiated.
func (e *Wazero) Close(ctx context.Context) error {
	if e.runtime == nil {
		return nil
	}
	err := e.runtime.Close(ctx)
	e.runtime = nil
	e.mod = nil
	e.mem = nil
	return err
}

func (e *Wazero) alloc(ctx context.Context, size uint32) (uint32, error) {
	if e.isSimpleAlloc {
		e.stack[0] = uint64(size)
		if err := e.allocFn.CallWithStack(ctx, e.stack[:1]); err != nil {
			return 0, err
		}
		return uint32(e.stack[0]), nil
	}
	e.stack[0] = 0
	e.stack[1] = 0
	e.stack[2] = 8 // align
	e.stack[3] = uint64(size)
	if err := e.allocFn.CallWithStack(ctx, e.stack[:4]); err != nil {
		return 0, err
	}
	return uint32(e.stack[0]), nil
}

func (e *Wazero) free(ctx context.Context, ptr, size uint32) {
	if e.freeFn == nil || ptr == 0 {
		return
	}
	var stack []uint64
	if e.isSimpleAlloc {
		e.stack[0] = uint64(ptr)
		stack = e.stack[:1]
	} else {
		e.stack[0] = uint64(ptr)
		e.stack[1] = uint64(size)
		e.stack[2] = 8
		stack = e.stack[:3]
	}
	if err := e.freeFn.CallWithStack(ctx, stack); err != nil {
		Logger().Warn("free: guest deallocation failed",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

// callBlock mirrors c into guest memory, invokes fn on it, and decodes
// the guest's view back into c.
func (e *Wazero) callBlock(fn api.Function, c *block.Celprm) int {
	if c == nil {
		return celruntime.StatusNullBlock
	}
	if e.mod == nil {
		return celruntime.StatusNullBlock
	}
	ctx := context.Background()

	ptr, err := e.alloc(ctx, block.EncodedSize)
	if err != nil || ptr == 0 {
		Logger().Warn("alloc: guest allocation failed", zap.Error(err))
		return celruntime.StatusNullBlock
	}
	defer e.free(ctx, ptr, block.EncodedSize)

	buf := make([]byte, block.EncodedSize)
	block.Encode(buf, c)
	if !e.mem.Write(ptr, buf) {
		return celruntime.StatusNullBlock
	}

	results, err := fn.Call(ctx, uint64(ptr))
	if err != nil {
		Logger().Warn("engine call trapped", zap.Error(err))
		return celruntime.StatusInternal
	}

	if data, ok := e.mem.Read(ptr, block.EncodedSize); ok {
		block.Decode(data, c)
	}

	if len(results) == 0 {
		return celruntime.StatusInternal
	}
	return int(int32(results[0]))
}

func (e *Wazero) Init(c *block.Celprm) int {
	return e.callBlock(e.iniFn, c)
}

func (e *Wazero) Free(c *block.Celprm) int {
	return e.callBlock(e.freFn, c)
}

func (e *Wazero) Derive(c *block.Celprm) int {
	return e.callBlock(e.setFn, c)
}

func (e *Wazero) Render(c *block.Celprm, w io.Writer) int {
	if c == nil {
		return celruntime.StatusNullBlock
	}
	if e.mod == nil {
		return celruntime.StatusNullBlock
	}
	ctx := context.Background()

	ptr, err := e.alloc(ctx, block.EncodedSize)
	if err != nil || ptr == 0 {
		return celruntime.StatusNullBlock
	}
	defer e.free(ctx, ptr, block.EncodedSize)

	out, err := e.alloc(ctx, renderBufSize)
	if err != nil || out == 0 {
		return celruntime.StatusNullBlock
	}
	defer e.free(ctx, out, renderBufSize)

	buf := make([]byte, block.EncodedSize)
	block.Encode(buf, c)
	if !e.mem.Write(ptr, buf) {
		return celruntime.StatusNullBlock
	}

	results, err := e.prtFn.Call(ctx, uint64(ptr), uint64(out), uint64(renderBufSize))
	if err != nil {
		Logger().Warn("render call trapped", zap.Error(err))
		return celruntime.StatusInternal
	}
	if len(results) == 0 {
		return celruntime.StatusInternal
	}
	if st := int(int32(results[0])); st != celruntime.StatusSuccess {
		return st
	}

	data, ok := e.mem.Read(out, renderBufSize)
	if !ok {
		return celruntime.StatusInternal
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	if _, err := w.Write(data); err != nil {
		return celruntime.StatusInternal
	}
	return celruntime.StatusSuccess
}

// Compile-time check that both engines satisfy the contract.
var _ celruntime.Engine = (*Wazero)(nil)
var _ celruntime.Engine = (*Native)(nil)
