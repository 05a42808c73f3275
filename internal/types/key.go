package types

import (
	"strconv"
	"strings"
)

// canonicalKey computes the hash-consing fingerprint for d. Because every
// reference a variant holds (TypeId, TypeListId, atom.Atom, shape ids) is
// already itself a small stable integer, a flat single-level encoding is
// enough -- this is the entire point of hash-consing: no recursive
// structural walk is needed at Intern time, only at canonicalization time
// for Union/Intersection (handled by their callers before Intern is asked
// to store the result).
func canonicalKey(d Data) string {
	var b strings.Builder
	b.WriteString(d.Kind().String())
	b.WriteByte('|')
	switch v := d.(type) {
	case Primitive:
		writeUint(&b, uint64(v.Tag))
	case Literal:
		writeUint(&b, uint64(v.ValueKind))
		b.WriteByte(':')
		switch v.ValueKind {
		case LiteralString:
			b.WriteString(strconv.Quote(v.Str))
		case LiteralNumber:
			writeUint(&b, v.NumBits)
		case LiteralBigInt:
			b.WriteString(v.BigInt)
		case LiteralBoolean:
			b.WriteString(strconv.FormatBool(v.Bool))
		}
	case Union:
		writeUint(&b, uint64(v.Members))
	case Intersection:
		writeUint(&b, uint64(v.Members))
	case Tuple:
		for i, e := range v.Elements {
			if i > 0 {
				b.WriteByte(',')
			}
			writeUint(&b, uint64(e.Type))
			b.WriteByte(':')
			writeUint(&b, uint64(e.Name))
			if e.Optional {
				b.WriteByte('?')
			}
			if e.Rest {
				b.WriteByte('~')
			}
		}
	case Array:
		writeUint(&b, uint64(v.Elem))
	case ReadonlyWrapper:
		writeUint(&b, uint64(v.Inner))
	case Object:
		writeUint(&b, uint64(v.Shape))
	case ObjectWithIndex:
		writeUint(&b, uint64(v.Shape))
	case Function:
		writeUint(&b, uint64(v.Shape))
	case Callable:
		writeUint(&b, uint64(v.Shape))
	case Reference:
		writeUint(&b, uint64(v.Ref.Symbol))
		for _, a := range v.Ref.Args {
			b.WriteByte(',')
			writeUint(&b, uint64(a))
		}
	case Lazy:
		writeUint(&b, uint64(v.Def))
	case Application:
		writeUint(&b, uint64(v.Base))
		b.WriteByte(':')
		writeUint(&b, uint64(v.Args))
	case TypeParam:
		writeUint(&b, uint64(v.Name))
		b.WriteByte(':')
		writeUint(&b, uint64(v.Constraint))
		b.WriteByte(':')
		writeUint(&b, uint64(v.Default))
		if v.IsConst {
			b.WriteByte('c')
		}
	case Infer:
		writeUint(&b, uint64(v.Name))
		b.WriteByte(':')
		writeUint(&b, uint64(v.Constraint))
	case TemplateLiteral:
		for i, s := range v.Spans {
			if i > 0 {
				b.WriteByte(',')
			}
			if s.IsType {
				b.WriteByte('T')
				writeUint(&b, uint64(s.Type))
			} else {
				b.WriteByte('S')
				writeUint(&b, uint64(s.Text))
			}
		}
	case Enum:
		writeUint(&b, uint64(v.Def))
	case EnumMember:
		writeUint(&b, uint64(v.Def))
	case Conditional:
		writeUint(&b, uint64(v.Check))
		b.WriteByte(':')
		writeUint(&b, uint64(v.Extends))
		b.WriteByte(':')
		writeUint(&b, uint64(v.True))
		b.WriteByte(':')
		writeUint(&b, uint64(v.False))
	default:
		panic("types: canonicalKey: unhandled Data variant")
	}
	return b.String()
}

func writeUint(b *strings.Builder, v uint64) {
	b.WriteString(strconv.FormatUint(v, 10))
}

// objectShapeKey, functionShapeKey and callableShapeKey give the three
// out-of-line shape tables their own hash-consing fingerprints, keyed
// structurally. Nested shape references (CallSigs, ConstructSigs) are
// already-interned FunctionShapeIds by the time a shape reaches these
// functions, so -- exactly like canonicalKey -- a flat single-level
// encoding suffices.
func objectShapeKey(s ObjectShape, withIndex bool) string {
	var b strings.Builder
	if withIndex {
		b.WriteString("WI|")
	} else {
		b.WriteString("O|")
	}
	for i, p := range s.Properties {
		if i > 0 {
			b.WriteByte(',')
		}
		writeUint(&b, uint64(p.Name))
		b.WriteByte(':')
		writeUint(&b, uint64(p.Type))
		if p.Optional {
			b.WriteByte('?')
		}
		if p.Readonly {
			b.WriteByte('r')
		}
	}
	b.WriteByte('|')
	writeIndexSig(&b, s.StringIndex)
	b.WriteByte('|')
	writeIndexSig(&b, s.NumberIndex)
	b.WriteByte('|')
	for i, id := range s.CallSigs {
		if i > 0 {
			b.WriteByte(',')
		}
		writeUint(&b, uint64(id))
	}
	b.WriteByte('|')
	for i, id := range s.ConstructSigs {
		if i > 0 {
			b.WriteByte(',')
		}
		writeUint(&b, uint64(id))
	}
	return b.String()
}

func writeIndexSig(b *strings.Builder, sig *IndexSignature) {
	if sig == nil {
		b.WriteByte('-')
		return
	}
	writeUint(b, uint64(sig.KeyType))
	b.WriteByte(':')
	writeUint(b, uint64(sig.ValueType))
	if sig.Readonly {
		b.WriteByte('r')
	}
}

func functionShapeKey(s FunctionShape) string {
	var b strings.Builder
	for i, tp := range s.TypeParams {
		if i > 0 {
			b.WriteByte(',')
		}
		writeUint(&b, uint64(tp))
	}
	b.WriteByte('|')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		writeUint(&b, uint64(p.Name))
		b.WriteByte(':')
		writeUint(&b, uint64(p.Type))
		if p.Optional {
			b.WriteByte('?')
		}
		if p.Rest {
			b.WriteByte('~')
		}
	}
	b.WriteByte('|')
	writeUint(&b, uint64(s.This))
	b.WriteByte('|')
	writeUint(&b, uint64(s.Return))
	b.WriteByte('|')
	if s.Predicate != nil {
		b.WriteByte('P')
		writeUint(&b, uint64(s.Predicate.Target))
		b.WriteByte(':')
		writeUint(&b, uint64(s.Predicate.TargetName))
		b.WriteByte(':')
		writeUint(&b, uint64(s.Predicate.Type))
		if s.Predicate.Asserts {
			b.WriteByte('a')
		}
	}
	if s.IsConstructor {
		b.WriteByte('c')
	}
	if s.IsMethod {
		b.WriteByte('m')
	}
	return b.String()
}

func callableShapeKey(s CallableShape) string {
	var b strings.Builder
	for i, id := range s.CallSigs {
		if i > 0 {
			b.WriteByte(',')
		}
		writeUint(&b, uint64(id))
	}
	b.WriteByte('|')
	for i, id := range s.ConstructSigs {
		if i > 0 {
			b.WriteByte(',')
		}
		writeUint(&b, uint64(id))
	}
	b.WriteByte('|')
	for i, p := range s.Properties {
		if i > 0 {
			b.WriteByte(',')
		}
		writeUint(&b, uint64(p.Name))
		b.WriteByte(':')
		writeUint(&b, uint64(p.Type))
		if p.Optional {
			b.WriteByte('?')
		}
		if p.Readonly {
			b.WriteByte('r')
		}
	}
	return b.String()
}
