package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Render returns an indented multi-line rendering of a decoded value tree,
// suitable for terminal inspection. Scalars occupy a single line; aggregate
// children are indented two spaces per nesting level, map and attribute
// entries one line per key with the value nested beneath it.
func Render(v Value) string {
	var sb strings.Builder
	renderInto(&sb, v, 0)
	return sb.String()
}

// Render returns the indented multi-line rendering of the value
func (v Value) Render() string {
	return Render(v)
}

func renderInto(sb *strings.Builder, v Value, indent int) {
	pad := strings.Repeat("  ", indent)
	switch v.Type {
	case TypeString, TypeBlobString:
		fmt.Fprintf(sb, "%s%s %s\n", pad, v.Type, strconv.Quote(string(v.Data)))
	case TypeVerbatimString:
		fmt.Fprintf(sb, "%s%s %s %s\n", pad, v.Type, v.Format, strconv.Quote(string(v.Data)))
	case TypeNumber:
		fmt.Fprintf(sb, "%s%s %d\n", pad, v.Type, v.Integer)
	case TypeFloat:
		fmt.Fprintf(sb, "%s%s %s\n", pad, v.Type, formatFloat(v.Float))
	case TypeBoolean:
		fmt.Fprintf(sb, "%s%s %t\n", pad, v.Type, v.Bool)
	case TypeNull:
		fmt.Fprintf(sb, "%snull\n", pad)
	case TypeError, TypeBlobError:
		switch {
		case len(v.Code) == 0:
			fmt.Fprintf(sb, "%s%s %s\n", pad, v.Type, strconv.Quote(string(v.Data)))
		case len(v.Data) == 0:
			fmt.Fprintf(sb, "%s%s %s\n", pad, v.Type, v.Code)
		default:
			fmt.Fprintf(sb, "%s%s %s %s\n", pad, v.Type, v.Code, strconv.Quote(string(v.Data)))
		}
	case TypeArray, TypeSet, TypePush:
		fmt.Fprintf(sb, "%s%s (%d)\n", pad, v.Type, len(v.Array))
		for _, item := range v.Array {
			renderInto(sb, item, indent+1)
		}
	case TypeMap, TypeAttribute:
		fmt.Fprintf(sb, "%s%s (%d)\n", pad, v.Type, len(v.Entries))
		for _, e := range v.Entries {
			fmt.Fprintf(sb, "%s  key %s:\n", pad, strconv.Quote(string(e.Key.Data)))
			renderInto(sb, e.Value, indent+2)
		}
	default:
		fmt.Fprintf(sb, "%sunknown (0x%02x)\n", pad, byte(v.Type))
	}
}
