package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"c2c/internal/ast"
	"c2c/internal/compiler"
	"c2c/internal/diag"
	"c2c/internal/driver"
	"c2c/internal/options"
)

// Handler serves one request.
type Handler func(ctx context.Context, req *Request) *Response

// EncodeTrees packs module trees into a request source.
func EncodeTrees(files ...*ast.File) ([]byte, error) {
	var buf bytes.Buffer
	for _, f := range files {
		if err := ast.Encode(&buf, f); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeTrees unpacks the module trees of a request source, in order.
func DecodeTrees(src []byte) ([]*ast.File, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(src))
	var out []*ast.File
	for {
		var f ast.File
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w: %v", len(out)+1, ast.ErrBadTree, err)
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("tree %d: %w", len(out)+1, err)
		}
		if f.Module == "" {
			f.Module = fmt.Sprintf("module%d.c", len(out)+1)
		}
		out = append(out, &f)
	}
	if len(out) == 0 {
		return nil, errors.New("request carries no module tree")
	}
	return out, nil
}

// Compile is the standard handler: every request runs in its own compiler
// instance, configured by base overlaid with the request option string.
//
// The artifact is the instance-data header of a reentrant compilation, or
// the program-scope symbol list otherwise. Diagnostics go to stderr; with
// verbosity > 0 the module symbol tables go to stdout.
func Compile(base options.Options) Handler {
	return func(ctx context.Context, req *Request) *Response {
		resp := &Response{ID: req.ID}
		fail := func(err error) *Response {
			resp.Code = compiler.CodeFailure
			resp.Stderr = []byte("c2c: " + err.Error() + "\n")
			return resp
		}

		opts, args, err := options.ParseArgs(base, req.Options)
		if err != nil {
			return fail(err)
		}
		if len(args) > 0 {
			return fail(fmt.Errorf("unexpected argument %q in option string", args[0]))
		}
		// a request never writes into the server's files
		opts.TraceOutput = "-"
		files, err := DecodeTrees(req.Source)
		if err != nil {
			return fail(err)
		}
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		inst, err := compiler.New(opts)
		if err != nil {
			return fail(err)
		}
		var out *driver.Output
		var header []byte
		res := inst.Run(func(in *compiler.Instance) error {
			out = driver.Compile(in, driver.Register(in, files))
			if out.Layout == nil {
				return nil
			}
			// файлы запроса живут во временном каталоге инстанса
			dir, err := in.TempDir("c2c-request-*")
			if err != nil {
				return err
			}
			in.Options.OutputDir = dir
			written, err := driver.Emit(in, out)
			if err != nil || len(written) == 0 {
				return err
			}
			header, err = os.ReadFile(written[0])
			return err
		})

		var stderr, stdout, artifact bytes.Buffer
		_ = diag.WriteAll(&stderr, res.Diagnostics, inst.Modules)
		if res.Err != nil {
			stderr.WriteString("c2c: " + res.Err.Error() + "\n")
		}
		if out != nil && opts.Verbosity > 0 {
			for _, m := range out.Modules {
				stdout.WriteString("** " + m.Name + "\n" + m.Table.String() + "\n")
			}
		}
		if res.OK() && out != nil {
			if out.Layout != nil {
				artifact.Write(header)
			} else if err := writeGlobal(&artifact, out); err != nil {
				return fail(err)
			}
		}
		resp.Code = int32(res.Code)
		resp.Stdout = stdout.Bytes()
		resp.Stderr = stderr.Bytes()
		resp.Artifact = artifact.Bytes()
		return resp
	}
}

// writeGlobal lists the program-scope symbols, one per line.
func writeGlobal(w io.Writer, out *driver.Output) error {
	var sb strings.Builder
	for _, s := range out.Global.Symbols() {
		state := "external"
		if s.ProgramInternal {
			state = "internal"
		}
		fmt.Fprintf(&sb, "%s %s %s\n", s.CurrentName(), s.Kind, state)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
