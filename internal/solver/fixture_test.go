package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/tsz-lang/tszcore/internal/types"
)

// assignabilityFixture is a txtar archive encoding a table of spec §4.2
// assignability scenarios, one per file: two lines naming a source and a
// target type expression (see exprToType), with the expected verdict
// carried in the file's extension (".yes" / ".no"). Fixture-driven rather
// than Go literals so the scenario table reads the same way an end-to-end
// `.tsz` snapshot fixture would.
const assignabilityFixture = `
-- any-is-bidirectional.yes --
any
string
-- string-to-any.yes --
string
any
-- unknown-absorbs-anything.yes --
string
unknown
-- unknown-does-not-flow-out.no --
unknown
string
-- never-flows-into-anything.yes --
never
string
-- nothing-flows-into-never.no --
string
never
-- literal-widens-to-primitive.yes --
lit:string:a
string
-- primitive-does-not-narrow-to-literal.no --
string
lit:string:a
-- string-is-member-of-union.yes --
string
union:string,number
-- union-is-not-subset-of-one-member.no --
union:string,number
string
`

// exprToType resolves the tiny type-expression language the fixture above
// uses: bare primitive names, "lit:<tag>:<value>" for a single literal, and
// "union:<a>,<b>,..." for a union of bare primitive names.
func exprToType(in *types.Interner, expr string) (types.TypeId, bool) {
	switch {
	case strings.HasPrefix(expr, "lit:string:"):
		return in.LiteralStringType(strings.TrimPrefix(expr, "lit:string:")), true
	case strings.HasPrefix(expr, "union:"):
		var members []types.TypeId
		for _, name := range strings.Split(strings.TrimPrefix(expr, "union:"), ",") {
			m, ok := primitiveByName(name)
			if !ok {
				return types.Invalid, false
			}
			members = append(members, m)
		}
		return in.Union(members), true
	default:
		return primitiveByName(expr)
	}
}

func primitiveByName(name string) (types.TypeId, bool) {
	switch name {
	case "any":
		return types.Any, true
	case "unknown":
		return types.Unknown, true
	case "never":
		return types.Never, true
	case "string":
		return types.String, true
	case "number":
		return types.Number, true
	case "boolean":
		return types.Boolean, true
	case "null":
		return types.Null, true
	case "undefined":
		return types.Undefined, true
	case "void":
		return types.Void, true
	default:
		return types.Invalid, false
	}
}

func TestAssignabilityTxtarFixture(t *testing.T) {
	archive := txtar.Parse([]byte(assignabilityFixture))
	require.NotEmpty(t, archive.Files)

	c, in, _, _ := newChecker()
	for _, file := range archive.Files {
		file := file
		t.Run(file.Name, func(t *testing.T) {
			var want bool
			switch {
			case strings.HasSuffix(file.Name, ".yes"):
				want = true
			case strings.HasSuffix(file.Name, ".no"):
				want = false
			default:
				t.Fatalf("fixture %q must end in .yes or .no", file.Name)
			}

			lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
			require.Len(t, lines, 2, "fixture %q must have exactly a source and a target line", file.Name)

			src, ok := exprToType(in, strings.TrimSpace(lines[0]))
			require.Truef(t, ok, "unresolvable source expression %q", lines[0])
			tgt, ok := exprToType(in, strings.TrimSpace(lines[1]))
			require.Truef(t, ok, "unresolvable target expression %q", lines[1])

			assert.Equal(t, want, c.IsSubtypeOf(src, tgt), "%s -> %s", lines[0], lines[1])
		})
	}
}
