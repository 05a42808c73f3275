package solver

import (
	"github.com/tsz-lang/tszcore/internal/atom"
	"github.com/tsz-lang/tszcore/internal/types"
)

// variance tracks the position match_infer_pattern is recursing through, so
// that a name captured in two places merges correctly: union in covariant
// position, intersection in contravariant position (spec 4.4).
type variance uint8

const (
	covariant variance = iota
	contravariant
)

func (v variance) flip() variance {
	if v == covariant {
		return contravariant
	}
	return covariant
}

// ResolveConditional implements resolve_conditional (spec 4.4): distribute
// over a naked union in the check position, then attempt an infer-pattern
// match between check and extends, substituting captures into the true
// branch on success or returning the false branch otherwise.
func (c *Checker) ResolveConditional(cond types.Conditional) types.TypeId {
	if checkIsNakedTypeParam(c.In, cond.Check) {
		if u, ok := c.In.Lookup(cond.Check); ok {
			if union, ok := u.(types.Union); ok {
				members := c.In.TypeList(union.Members)
				out := make([]types.TypeId, 0, len(members))
				for _, mem := range members {
					branch := c.ResolveConditional(types.Conditional{
						Check: mem, Extends: cond.Extends, True: cond.True, False: cond.False,
					})
					out = append(out, branch)
				}
				return c.In.Union(out)
			}
		}
	}

	bindings := map[atom.Atom]types.TypeId{}
	if c.matchInferPattern(cond.Check, cond.Extends, bindings, nil, covariant) {
		return c.Substitute(cond.True, bindings)
	}
	return cond.False
}

// checkIsNakedTypeParam reports whether id is, itself, a union (TypeScript's
// distributive rule fires when the check type is a bare type parameter,
// which after substitution during instantiation is exactly a union of the
// parameter's possible bindings -- spec 4.4 testable property 10).
func checkIsNakedTypeParam(in *types.Interner, id types.TypeId) bool {
	d, ok := in.Lookup(id)
	if !ok {
		return false
	}
	_, isUnion := d.(types.Union)
	return isUnion
}

// matchInferPattern is match_infer_pattern (spec 4.4): traverses source and
// pattern in parallel, capturing Infer placeholders into bindings. visited
// guards against cyclic nominal types the same way isSubtype does.
func (c *Checker) matchInferPattern(source, pattern types.TypeId, bindings map[atom.Atom]types.TypeId, visited []typePair, v variance) bool {
	pd, ok := c.In.Lookup(pattern)
	if !ok {
		return false
	}
	if inf, ok := pd.(types.Infer); ok {
		if inf.Constraint != types.Invalid && !c.IsSubtypeOf(source, inf.Constraint) {
			return false
		}
		c.mergeCapture(bindings, inf.Name, source, v)
		return true
	}

	source = c.resolveNominal(source)
	pattern = c.resolveNominal(pattern)
	pair := typePair{source, pattern}
	for _, p := range visited {
		if p == pair {
			return true
		}
	}
	visited = append(visited, pair)

	sd, sok := c.In.Lookup(source)
	pd, pok := c.In.Lookup(pattern)
	if !sok || !pok {
		return source == pattern
	}

	switch pv := pd.(type) {
	case types.TypeParam:
		return c.IsSubtypeOf(source, pattern)
	case types.Array:
		sv, ok := sd.(types.Array)
		if !ok {
			return false
		}
		return c.matchInferPattern(sv.Elem, pv.Elem, bindings, visited, v)
	case types.Tuple:
		sv, ok := sd.(types.Tuple)
		if !ok || len(sv.Elements) != len(pv.Elements) {
			return false
		}
		for i := range pv.Elements {
			if !c.matchInferPattern(sv.Elements[i].Type, pv.Elements[i].Type, bindings, visited, v) {
				return false
			}
		}
		return true
	case types.Object, types.ObjectWithIndex:
		var pshape *types.ObjectShape
		switch x := pd.(type) {
		case types.Object:
			pshape = c.In.ObjectShape(x.Shape)
		case types.ObjectWithIndex:
			pshape = c.In.ObjectShape(x.Shape)
		}
		sprops, _, _, ok := sdAsObjectLike(c, sd)
		if !ok {
			return false
		}
		for _, pp := range pshape.Properties {
			sp, found := propertyByName(sprops, pp.Name)
			if !found {
				if pp.Optional {
					continue
				}
				return false
			}
			if !c.matchInferPattern(sp.Type, pp.Type, bindings, visited, v) {
				return false
			}
		}
		return true
	case types.Function:
		sv, ok := sd.(types.Function)
		if !ok {
			return false
		}
		sf, pf := c.In.FunctionShape(sv.Shape), c.In.FunctionShape(pv.Shape)
		for i, pp := range pf.Params {
			if i >= len(sf.Params) {
				if pp.Optional || pp.Rest {
					continue
				}
				return false
			}
			// Parameters are a contravariant position.
			if !c.matchInferPattern(sf.Params[i].Type, pp.Type, bindings, visited, v.flip()) {
				return false
			}
		}
		return c.matchInferPattern(sf.Return, pf.Return, bindings, visited, v)
	case types.Union:
		members := c.In.TypeList(pv.Members)
		for _, m := range members {
			if !c.matchInferPattern(source, m, bindings, visited, v) {
				return false
			}
		}
		return true
	case types.TemplateLiteral:
		return c.matchTemplatePattern(sd, pv, bindings, v)
	default:
		return c.IsSubtypeOf(source, pattern)
	}
}

func sdAsObjectLike(c *Checker, d types.Data) ([]types.PropertyInfo, *types.IndexSignature, *types.IndexSignature, bool) {
	switch v := d.(type) {
	case types.Object:
		s := c.In.ObjectShape(v.Shape)
		return s.Properties, s.StringIndex, s.NumberIndex, true
	case types.ObjectWithIndex:
		s := c.In.ObjectShape(v.Shape)
		return s.Properties, s.StringIndex, s.NumberIndex, true
	default:
		return nil, nil, nil, false
	}
}

// mergeCapture implements spec 4.4's capture-merge rule: a name captured
// more than once widens via union in covariant position, intersection in
// contravariant position.
func (c *Checker) mergeCapture(bindings map[atom.Atom]types.TypeId, name atom.Atom, value types.TypeId, v variance) {
	prior, ok := bindings[name]
	if !ok {
		bindings[name] = value
		return
	}
	if v == covariant {
		bindings[name] = c.In.Union2(prior, value)
	} else {
		bindings[name] = c.In.Intersection2(prior, value)
	}
}

// matchTemplatePattern matches a source string/template literal against a
// template-literal pattern containing infer spans (spec 4.4): each infer
// span captures minimally except a trailing infer span followed only by
// text, which captures greedily.
func (c *Checker) matchTemplatePattern(sd types.Data, pattern types.TemplateLiteral, bindings map[atom.Atom]types.TypeId, v variance) bool {
	text, ok := sourceTemplateText(c.In, sd)
	if !ok {
		return false
	}
	return c.matchTemplateSegments(text, pattern.Spans, 0, 0, bindings, v)
}

func (c *Checker) matchTemplateSegments(text string, spans []types.TemplateSpan, textPos, spanIdx int, bindings map[atom.Atom]types.TypeId, v variance) bool {
	if spanIdx >= len(spans) {
		return textPos == len(text)
	}
	span := spans[spanIdx]
	if !span.IsType {
		lit := atomText(c, span.Text)
		if len(text)-textPos < len(lit) || text[textPos:textPos+len(lit)] != lit {
			return false
		}
		return c.matchTemplateSegments(text, spans, textPos+len(lit), spanIdx+1, bindings, v)
	}

	infD, ok := c.In.Lookup(span.Type)
	if !ok {
		return false
	}
	inf, ok := infD.(types.Infer)
	if !ok {
		return false
	}

	remainingIsTrailingText := spanIdx == len(spans)-1
	if !remainingIsTrailingText && spanIdx+1 < len(spans) && spans[spanIdx+1].IsType {
		// Next span is also an infer: this one must capture minimally, so
		// try every split starting from the shortest.
		for end := textPos; end <= len(text); end++ {
			trial := cloneBindings(bindings)
			c.mergeCapture(trial, inf.Name, c.In.LiteralStringType(text[textPos:end]), v)
			if c.matchTemplateSegments(text, spans, end, spanIdx+1, trial, v) {
				copyInto(bindings, trial)
				return true
			}
		}
		return false
	}

	if remainingIsTrailingText {
		// A trailing infer span captures greedily: everything left.
		c.mergeCapture(bindings, inf.Name, c.In.LiteralStringType(text[textPos:]), v)
		return true
	}

	lit := atomText(c, spans[spanIdx+1].Text)
	if spanIdx+2 == len(spans) {
		// Infer span followed only by a final literal-text span: capture
		// greedily, leaving exactly that text at the end.
		if len(text)-textPos < len(lit) || text[len(text)-len(lit):] != lit {
			return false
		}
		c.mergeCapture(bindings, inf.Name, c.In.LiteralStringType(text[textPos:len(text)-len(lit)]), v)
		return true
	}
	// Infer span followed by a literal-text span with more spans after it:
	// capture up to the first occurrence of that literal text (minimal
	// capture).
	idx := indexOf(text[textPos:], lit)
	if idx < 0 {
		return false
	}
	trial := cloneBindings(bindings)
	c.mergeCapture(trial, inf.Name, c.In.LiteralStringType(text[textPos:textPos+idx]), v)
	if c.matchTemplateSegments(text, spans, textPos+idx, spanIdx+1, trial, v) {
		copyInto(bindings, trial)
		return true
	}
	return false
}

func sourceTemplateText(in *types.Interner, d types.Data) (string, bool) {
	if lit, ok := d.(types.Literal); ok && lit.ValueKind == types.LiteralString {
		return lit.Str, true
	}
	return "", false
}

func atomText(c *Checker, a atom.Atom) string {
	return c.Atoms.Text(a)
}

func cloneBindings(m map[atom.Atom]types.TypeId) map[atom.Atom]types.TypeId {
	out := make(map[atom.Atom]types.TypeId, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyInto(dst, src map[atom.Atom]types.TypeId) {
	for k, v := range src {
		dst[k] = v
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
