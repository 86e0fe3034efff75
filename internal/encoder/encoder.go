// Package encoder implements the inverse of stream.Parser: given a
// format.Spec and a format.Value it accepts, it composes the exact wire
// bytes that would have produced that value.
package encoder

import (
	"fmt"

	"github.com/LeJamon/binform/internal/bytesbuf"
	"github.com/LeJamon/binform/internal/format"
)

// Encode lowers value under spec into wire bytes. Variable bindings are
// established in left-to-right order, exactly as during parsing, so a
// selector or length variable must be supplied (via a Variable node) before
// any dependent Bytes/Repeat/Until/Switch node that reads it.
//
// A spec/value shape mismatch is a programmer error and panics, matching
// stream.Parser's treatment of an unbound variable or a misused accessor.
func Encode(spec *format.Spec, value format.Value) bytesbuf.ChunkedBytes {
	env := make(map[string]uint64)
	return encodeNode(spec, value, env)
}

func lookupVar(env map[string]uint64, name string) uint64 {
	v, ok := env[name]
	if !ok {
		panic(fmt.Sprintf("encoder: unbound variable %q", name))
	}
	return v
}

func mustKind(spec *format.Spec, v format.Value, want format.ValueKind) {
	if v.Kind != want {
		panic(fmt.Sprintf("encoder: %v spec requires a value of kind %v, got %v", spec.Kind, want, v.Kind))
	}
}

func encodeNode(spec *format.Spec, value format.Value, env map[string]uint64) bytesbuf.ChunkedBytes {
	switch spec.Kind {
	case format.KindSkip:
		mustKind(spec, value, format.ValueEmpty)
		return bytesbuf.ZeroFill(int(spec.SkipLen))

	case format.KindStop:
		// Stop never consumes or emits bytes, on either side of the wire.
		mustKind(spec, value, format.ValueStop)
		return bytesbuf.New()

	case format.KindInteger:
		mustKind(spec, value, format.ValueInteger)
		return spec.Int.Encode(value.Int)

	case format.KindVariable:
		mustKind(spec, value, format.ValueInteger)
		env[spec.Name] = value.Int
		return spec.Int.Encode(value.Int)

	case format.KindBytes:
		mustKind(spec, value, format.ValueBytes)
		want := lookupVar(env, spec.Name)
		if uint64(value.Buf.Len()) != want {
			panic(fmt.Sprintf("encoder: Bytes(%q) expects %d bytes, got %d", spec.Name, want, value.Buf.Len()))
		}
		return value.Buf

	case format.KindSeq:
		mustKind(spec, value, format.ValueSeq)
		if len(spec.Children) != len(value.Items) {
			panic(fmt.Sprintf("encoder: Seq has %d children but value has %d items", len(spec.Children), len(value.Items)))
		}
		out := bytesbuf.New()
		for i, child := range spec.Children {
			out.AppendChunked(encodeNode(child, value.Items[i], env))
		}
		return out

	case format.KindUntil:
		mustKind(spec, value, format.ValueSeq)
		n := lookupVar(env, spec.Name)
		out := bytesbuf.New()
		innerEnv := make(map[string]uint64)
		for _, item := range value.Items {
			if item.IsStop() {
				// An absorbed Stop is the trailing marker left by the
				// sub-parser; it contributes no bytes of its own.
				continue
			}
			out.AppendChunked(encodeNode(spec.Inner, item, innerEnv))
		}
		return out.Resize(int(n))

	case format.KindRepeat:
		mustKind(spec, value, format.ValueSeq)
		n := lookupVar(env, spec.Name)
		if uint64(len(value.Items)) != n {
			panic(fmt.Sprintf("encoder: Repeat(%q) expects %d items, got %d", spec.Name, n, len(value.Items)))
		}
		out := bytesbuf.New()
		for _, item := range value.Items {
			out.AppendChunked(encodeNode(spec.Inner, item, env))
		}
		return out

	case format.KindSwitch:
		sel := lookupVar(env, spec.Name)
		chosen, ok := spec.Cases[sel]
		if !ok {
			chosen = spec.Default
		}
		return encodeNode(chosen, value, env)
	}
	panic(fmt.Sprintf("encoder: unhandled spec kind %v", spec.Kind))
}
