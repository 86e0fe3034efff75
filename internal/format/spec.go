// Package format defines the spec language (Spec) that describes a binary
// layout and the decoded-value tree (Value) produced by parsing one.
package format

import "github.com/LeJamon/binform/internal/intspec"

// Kind tags the variant of a Spec node.
type Kind int

const (
	KindSkip Kind = iota
	KindStop
	KindInteger
	KindVariable
	KindBytes
	KindSeq
	KindUntil
	KindRepeat
	KindSwitch
)

func (k Kind) String() string {
	switch k {
	case KindSkip:
		return "Skip"
	case KindStop:
		return "Stop"
	case KindInteger:
		return "Integer"
	case KindVariable:
		return "Variable"
	case KindBytes:
		return "Bytes"
	case KindSeq:
		return "Seq"
	case KindUntil:
		return "Until"
	case KindRepeat:
		return "Repeat"
	case KindSwitch:
		return "Switch"
	default:
		return "Unknown"
	}
}

// Spec is one node of the tagged, tree-shaped, cycle-free format
// description. Only the fields relevant to Kind are meaningful; it is built
// once by the constructors below or by the textparser and never mutated.
type Spec struct {
	Kind Kind

	// KindSkip
	SkipLen uint32

	// KindInteger, KindVariable
	Int intspec.IntSpec

	// KindVariable (binds), KindBytes/KindUntil/KindRepeat (reads),
	// KindSwitch (selector reads)
	Name string

	// KindSeq
	Children []*Spec

	// KindUntil, KindRepeat
	Inner *Spec

	// KindSwitch
	Cases   map[uint64]*Spec
	Default *Spec
}

// Skip consumes n bytes and yields Empty.
func Skip(n uint32) *Spec { return &Spec{Kind: KindSkip, SkipLen: n} }

// StopSpec aborts parsing of the enclosing stream.
func StopSpec() *Spec { return &Spec{Kind: KindStop} }

// Integer reads a bare integer.
func Integer(s intspec.IntSpec) *Spec { return &Spec{Kind: KindInteger, Int: s} }

// Variable reads an integer and binds it to name in the variable
// environment.
func Variable(s intspec.IntSpec, name string) *Spec {
	return &Spec{Kind: KindVariable, Int: s, Name: name}
}

// Bytes reads env[name] bytes.
func Bytes(name string) *Spec { return &Spec{Kind: KindBytes, Name: name} }

// SeqOf parses children in order.
func SeqOf(children ...*Spec) *Spec { return &Spec{Kind: KindSeq, Children: children} }

// Until reads env[name] bytes as a substream and repeatedly applies inner
// until that substream is exhausted.
func Until(name string, inner *Spec) *Spec {
	return &Spec{Kind: KindUntil, Name: name, Inner: inner}
}

// Repeat applies inner exactly env[name] times.
func Repeat(name string, inner *Spec) *Spec {
	return &Spec{Kind: KindRepeat, Name: name, Inner: inner}
}

// SwitchOf selects cases[env[selector]], or default if no case matches.
// Panics if cases contains no entries and default is nil, since that Spec
// could never parse anything — a construction-time programmer error.
func SwitchOf(selector string, cases map[uint64]*Spec, def *Spec) *Spec {
	if len(cases) == 0 && def == nil {
		panic("format: Switch has no cases and no default")
	}
	return &Spec{Kind: KindSwitch, Name: selector, Cases: cases, Default: def}
}
