package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	celruntime "github.com/astrokit/cel-runtime"
	"github.com/astrokit/cel-runtime/cel"
	"github.com/astrokit/cel-runtime/engine"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to a WASM engine module (default: built-in engine)")
		code        = flag.String("code", "", "Projection code (TAN, ARC, CAR, ...)")
		setStr      = flag.String("set", "", "Property assignments (phi0=1,ref=0:60:_:90,offset=true)")
		pvStr       = flag.String("pv", "", "Projection parameters (index:value,index:value)")
		derive      = flag.Bool("derive", true, "Derive the intermediate values before printing")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if err := runInteractive(*wasmFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *code, *setStr, *pvStr, *derive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildEngine picks the hosted engine when a module path is given and
// the built-in one otherwise.
func buildEngine(wasmFile string) (celruntime.Engine, func(), error) {
	if wasmFile == "" {
		return engine.NewNative(), func() {}, nil
	}
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read engine module: %w", err)
	}
	ctx := context.Background()
	eng, err := engine.NewWazero(ctx, data)
	if err != nil {
		return nil, nil, err
	}
	return eng, func() { eng.Close(ctx) }, nil
}

func run(wasmFile, code, setStr, pvStr string, derive bool) error {
	eng, cleanup, err := buildEngine(wasmFile)
	if err != nil {
		return err
	}
	defer cleanup()

	h, err := cel.New(eng)
	if err != nil {
		return err
	}
	defer h.Close()

	if code != "" {
		p, err := h.Prj()
		if err != nil {
			return err
		}
		if err := p.SetCode(code); err != nil {
			return err
		}
	}

	if pvStr != "" {
		p, err := h.Prj()
		if err != nil {
			return err
		}
		for _, pair := range strings.Split(pvStr, ",") {
			parts := strings.SplitN(pair, ":", 2)
			if len(parts) != 2 {
				return fmt.Errorf("bad pv assignment %q, want index:value", pair)
			}
			i, err := strconv.Atoi(parts[0])
			if err != nil {
				return fmt.Errorf("bad pv index %q: %w", parts[0], err)
			}
			v, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return fmt.Errorf("bad pv value %q: %w", parts[1], err)
			}
			if err := p.SetPV(i, v); err != nil {
				return err
			}
		}
	}

	if setStr != "" {
		for _, pair := range strings.Split(setStr, ",") {
			parts := strings.SplitN(pair, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("bad assignment %q, want name=value", pair)
			}
			name := strings.TrimSpace(parts[0])
			val, err := parseProperty(name, parts[1])
			if err != nil {
				return err
			}
			if err := h.SetProperty(name, val); err != nil {
				return err
			}
		}
	}

	if derive {
		if err := h.Set(); err != nil {
			return err
		}
	}

	return h.Render(os.Stdout)
}

// parseProperty converts a CLI value into the form SetProperty expects.
// The ref slots are colon-separated; an underscore leaves a slot
// untouched, and an empty value restores the defaults.
func parseProperty(name, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch name {
	case "offset":
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("bad offset value %q: %w", raw, err)
		}
		return v, nil

	case "phi0", "theta0":
		if raw == "" || raw == "undefined" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad %s value %q: %w", name, raw, err)
		}
		return v, nil

	case "ref":
		if raw == "" {
			return nil, nil
		}
		slots := strings.Split(raw, ":")
		opts := make([]cel.Opt, len(slots))
		for i, s := range slots {
			s = strings.TrimSpace(s)
			if s == "_" {
				opts[i] = cel.Skip()
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("bad ref slot %q: %w", s, err)
			}
			opts[i] = cel.Some(v)
		}
		return opts, nil
	}
	return nil, fmt.Errorf("property %q is unknown or read-only", name)
}
