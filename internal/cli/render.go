package cli

import (
	"fmt"
	"strings"

	"github.com/LeJamon/binform/internal/format"
)

// renderValue renders a decoded Value tree as indented text, for the parse
// command's output.
func renderValue(v format.Value, depth int) string {
	indent := strings.Repeat("  ", depth)
	switch v.Kind {
	case format.ValueEmpty:
		return indent + "<empty>"
	case format.ValueInteger:
		return fmt.Sprintf("%s%d", indent, v.Int)
	case format.ValueBytes:
		return fmt.Sprintf("%s%x", indent, v.Buf.Bytes())
	case format.ValueStop:
		return fmt.Sprintf("%sstop(selector=%d)", indent, v.StopSelector)
	case format.ValueSeq:
		if len(v.Items) == 0 {
			return indent + "[]"
		}
		lines := make([]string, 0, len(v.Items)+1)
		lines = append(lines, indent+"[")
		for _, item := range v.Items {
			lines = append(lines, renderValue(item, depth+1))
		}
		lines = append(lines, indent+"]")
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprintf("%s<unknown kind %v>", indent, v.Kind)
	}
}
