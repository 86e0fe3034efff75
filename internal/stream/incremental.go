// Package stream implements IncrementalParser: a resumable frame-stack state
// machine that consumes a bytesbuf.ChunkedBytes against a format.Spec and
// produces format.Value trees, suspending cleanly whenever the buffered
// input underflows a read.
package stream

import (
	"errors"
	"fmt"

	"github.com/LeJamon/binform/internal/bytesbuf"
	"github.com/LeJamon/binform/internal/format"
	"github.com/google/uuid"
)

type frameKind int

const (
	frameDone frameKind = iota
	framePrepared
	framePartialSeq
	framePartialRepeat
)

// frame is one entry of the explicit parse stack. Only the fields relevant
// to kind are meaningful.
type frame struct {
	kind frameKind

	// framePrepared
	spec *format.Spec

	// frameDone
	value format.Value

	// framePartialSeq, framePartialRepeat
	doneVals []format.Value

	// framePartialSeq
	remaining []*format.Spec

	// framePartialRepeat
	remainingCount uint64
	inner          *format.Spec
}

// Outcome is the result of one Next call: either a completed value (Done)
// or a suspension with a lower bound on the additional bytes needed.
type Outcome struct {
	Done     bool
	Value    format.Value
	NeedMore int
}

// Parser is the incremental, single-threaded, cooperative state machine
// described by the format spec language. One Parser is meant to back one
// byte stream; concurrent calls into the same instance are not serialised
// internally.
type Parser struct {
	initial *format.Spec
	input   bytesbuf.ChunkedBytes
	stack   []frame
	env     map[string]uint64

	// id correlates a suspended parser across log lines in the demo server;
	// the core state machine never reads it.
	id uuid.UUID
}

// New builds a parser with stack [Prepared(spec)], an empty variable
// environment, and an empty input buffer.
func New(spec *format.Spec) *Parser {
	return &Parser{
		initial: spec,
		stack:   []frame{{kind: framePrepared, spec: spec}},
		env:     make(map[string]uint64),
		id:      uuid.New(),
	}
}

// ID returns the parser's correlation identifier.
func (p *Parser) ID() uuid.UUID { return p.id }

// Supply appends bytes to the input buffer. Bytes are copied; the caller
// may reuse b immediately afterwards.
func (p *Parser) Supply(b []byte) {
	if len(b) == 0 {
		return
	}
	cp := append([]byte(nil), b...)
	p.input.Append(cp)
}

// Remaining returns the unconsumed input buffer.
func (p *Parser) Remaining() bytesbuf.ChunkedBytes {
	return p.input
}

// Reset replaces the stack with [Prepared(initial)] and clears the variable
// environment, but preserves the input buffer.
func (p *Parser) Reset() {
	p.stack = []frame{{kind: framePrepared, spec: p.initial}}
	p.env = make(map[string]uint64)
}

func (p *Parser) pop() frame {
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return f
}

func (p *Parser) push(f frame) {
	p.stack = append(p.stack, f)
}

// fillHole installs v as the result of the frame that was just completed.
// If the stack is now empty, v is the top-level result. Otherwise the new
// top must be a PartialSeq or PartialRepeat, which records v in its done
// list for the next loop iteration to dispatch on.
func (p *Parser) fillHole(v format.Value) {
	if len(p.stack) == 0 {
		p.push(frame{kind: frameDone, value: v})
		return
	}
	top := &p.stack[len(p.stack)-1]
	switch top.kind {
	case framePartialSeq, framePartialRepeat:
		top.doneVals = append(top.doneVals, v)
	default:
		panic("stream: fillHole found a non-partial parent on the stack")
	}
}

// stop replaces the entire stack with a single Done(Stop) frame. A Stop
// unwinds everything above and below it in one parser instance — an
// enclosing Until runs inner in its own Parser, so the unwinding never
// needs to cross that boundary.
func (p *Parser) stop(spec *format.Spec, selector uint64) {
	p.stack = []frame{{kind: frameDone, value: format.StopValue(spec, selector)}}
}

func (p *Parser) lookupVar(name string) uint64 {
	v, ok := p.env[name]
	if !ok {
		panic(fmt.Sprintf("stream: unbound variable %q", name))
	}
	return v
}

func incompleteOutcome(err error) Outcome {
	var uf *bytesbuf.Underflow
	if errors.As(err, &uf) {
		return Outcome{Done: false, NeedMore: uf.Need}
	}
	panic(fmt.Sprintf("stream: unexpected read error: %v", err))
}

// Next performs parsing steps until either a full value is produced or the
// input is exhausted. It is idempotent when Incomplete: calling it again
// with no new Supply returns the same Outcome.
func (p *Parser) Next() Outcome {
	for {
		top := p.stack[len(p.stack)-1]
		switch top.kind {
		case frameDone:
			return Outcome{Done: true, Value: top.value}

		case framePrepared:
			if out, suspended := p.stepPrepared(top.spec); suspended {
				return out
			}

		case framePartialSeq:
			p.pop()
			if len(top.remaining) == 0 {
				p.fillHole(format.SeqValue(top.doneVals))
				continue
			}
			next := top.remaining[0]
			p.push(frame{kind: framePartialSeq, doneVals: top.doneVals, remaining: top.remaining[1:]})
			p.push(frame{kind: framePrepared, spec: next})

		case framePartialRepeat:
			p.pop()
			if top.remainingCount == 0 {
				p.fillHole(format.SeqValue(top.doneVals))
				continue
			}
			p.push(frame{kind: framePartialRepeat, doneVals: top.doneVals, remainingCount: top.remainingCount - 1, inner: top.inner})
			p.push(frame{kind: framePrepared, spec: top.inner})
		}
	}
}

// stepPrepared dispatches a single Prepared frame. It reports suspended=true
// (with the Incomplete outcome) when a read underflows; the original frame
// is left untouched on the stack in that case, since it is only popped once
// the read is known to succeed.
func (p *Parser) stepPrepared(spec *format.Spec) (out Outcome, suspended bool) {
	switch spec.Kind {
	case format.KindSkip:
		_, err := p.input.SplitPrefix(int(spec.SkipLen))
		if err != nil {
			return incompleteOutcome(err), true
		}
		p.pop()
		p.fillHole(format.EmptyValue())
		return Outcome{}, false

	case format.KindStop:
		p.pop()
		p.stop(spec, 0)
		return Outcome{}, false

	case format.KindInteger:
		v, err := spec.Int.Decode(&p.input)
		if err != nil {
			return incompleteOutcome(err), true
		}
		p.pop()
		p.fillHole(format.IntegerValue(v))
		return Outcome{}, false

	case format.KindVariable:
		v, err := spec.Int.Decode(&p.input)
		if err != nil {
			return incompleteOutcome(err), true
		}
		p.pop()
		p.env[spec.Name] = v
		p.fillHole(format.IntegerValue(v))
		return Outcome{}, false

	case format.KindBytes:
		n := p.lookupVar(spec.Name)
		b, err := p.input.SplitPrefix(int(n))
		if err != nil {
			return incompleteOutcome(err), true
		}
		p.pop()
		p.fillHole(format.BytesValue(b))
		return Outcome{}, false

	case format.KindSeq:
		p.pop()
		if len(spec.Children) == 0 {
			p.fillHole(format.SeqValue(nil))
			return Outcome{}, false
		}
		p.push(frame{kind: framePartialSeq, remaining: spec.Children[1:]})
		p.push(frame{kind: framePrepared, spec: spec.Children[0]})
		return Outcome{}, false

	case format.KindRepeat:
		n := p.lookupVar(spec.Name)
		p.pop()
		if n == 0 {
			p.fillHole(format.SeqValue(nil))
			return Outcome{}, false
		}
		// remainingCount is seeded to n-1: the Prepared(inner) pushed here
		// performs the first of n iterations, so only n-1 more are left to
		// decide on when this PartialRepeat frame is next dispatched.
		p.push(frame{kind: framePartialRepeat, remainingCount: n - 1, inner: spec.Inner})
		p.push(frame{kind: framePrepared, spec: spec.Inner})
		return Outcome{}, false

	case format.KindSwitch:
		sel := p.lookupVar(spec.Name)
		chosen, ok := spec.Cases[sel]
		if !ok {
			chosen = spec.Default
		}
		p.pop()
		if chosen.Kind == format.KindStop {
			p.stop(spec, sel)
			return Outcome{}, false
		}
		p.push(frame{kind: framePrepared, spec: chosen})
		return Outcome{}, false

	case format.KindUntil:
		n := p.lookupVar(spec.Name)
		sub, err := p.input.SplitPrefix(int(n))
		if err != nil {
			return incompleteOutcome(err), true
		}
		p.pop()
		results := parseUntilBounded(spec.Inner, sub)
		p.fillHole(format.SeqValue(results))
		return Outcome{}, false
	}
	panic(fmt.Sprintf("stream: unhandled spec kind %v", spec.Kind))
}

// parseUntilBounded runs inner repeatedly over a fresh sub-parser scoped to
// sub, absorbing a Stop as a trailing Stop element and silently discarding
// any trailing partial value once sub is exhausted (the sub-parser reports
// Incomplete and there are no more bytes to supply within this bound).
func parseUntilBounded(inner *format.Spec, sub bytesbuf.ChunkedBytes) []format.Value {
	p := New(inner)
	p.input = sub

	var out []format.Value
	for {
		res := p.Next()
		if !res.Done {
			return out
		}
		out = append(out, res.Value)
		if res.Value.IsStop() {
			return out
		}
		p.Reset()
	}
}

// ParseAll repeatedly calls Next/Reset, collecting values until either
// Incomplete is returned or a Stop value is observed. Stop terminates the
// batch and is not included in the result.
func (p *Parser) ParseAll() []format.Value {
	var out []format.Value
	for {
		res := p.Next()
		if !res.Done {
			return out
		}
		if res.Value.IsStop() {
			return out
		}
		out = append(out, res.Value)
		p.Reset()
	}
}
