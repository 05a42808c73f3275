package solver

import (
	"github.com/tsz-lang/tszcore/internal/atom"
	"github.com/tsz-lang/tszcore/internal/types"
)

// Substitute walks body, replacing TypeParam(name) occurrences per bindings
// (spec 4.4). It recurses through every structural variant; Infer names are
// left alone since they are locally bound inside a Conditional's pattern.
func (c *Checker) Substitute(body types.TypeId, bindings map[atom.Atom]types.TypeId) types.TypeId {
	d, ok := c.In.Lookup(body)
	if !ok {
		return body
	}
	switch v := d.(type) {
	case types.TypeParam:
		if repl, ok := bindings[v.Name]; ok {
			return repl
		}
		return body
	case types.Infer:
		return body
	case types.Union:
		return c.In.Union(c.substituteList(v.Members, bindings))
	case types.Intersection:
		return c.In.Intersection(c.substituteList(v.Members, bindings))
	case types.Array:
		return c.In.Array(c.Substitute(v.Elem, bindings))
	case types.ReadonlyWrapper:
		return c.In.Readonly(c.Substitute(v.Inner, bindings))
	case types.Tuple:
		elems := make([]types.TupleElement, len(v.Elements))
		for i, e := range v.Elements {
			e.Type = c.Substitute(e.Type, bindings)
			elems[i] = e
		}
		return c.In.Tuple(elems)
	case types.Object:
		return c.In.ObjectType(c.substituteObjectShape(c.In.ObjectShape(v.Shape), bindings))
	case types.ObjectWithIndex:
		return c.In.ObjectWithIndexType(c.substituteObjectShape(c.In.ObjectShape(v.Shape), bindings))
	case types.Function:
		shape := c.substituteFunctionShape(c.In.FunctionShape(v.Shape), bindings)
		return c.In.FunctionType(shape)
	case types.Callable:
		cs := c.In.CallableShape(v.Shape)
		out := types.CallableShape{Properties: substituteProps(c, cs.Properties, bindings)}
		for _, sigId := range cs.CallSigs {
			shape := c.substituteFunctionShape(c.In.FunctionShape(sigId), bindings)
			out.CallSigs = append(out.CallSigs, c.In.FunctionShapeHandle(shape))
		}
		for _, sigId := range cs.ConstructSigs {
			shape := c.substituteFunctionShape(c.In.FunctionShape(sigId), bindings)
			out.ConstructSigs = append(out.ConstructSigs, c.In.FunctionShapeHandle(shape))
		}
		return c.In.CallableType(out)
	case types.Application:
		args := c.substituteList(v.Args, bindings)
		return c.In.ApplicationType(c.Substitute(v.Base, bindings), args)
	case types.Conditional:
		return c.In.ConditionalType(
			c.Substitute(v.Check, bindings),
			c.Substitute(v.Extends, bindings),
			c.Substitute(v.True, bindings),
			c.Substitute(v.False, bindings),
		)
	case types.TemplateLiteral:
		spans := make([]types.TemplateSpan, len(v.Spans))
		for i, s := range v.Spans {
			if s.IsType {
				s.Type = c.Substitute(s.Type, bindings)
			}
			spans[i] = s
		}
		return c.In.TemplateLiteralType(spans)
	default:
		return body
	}
}

func (c *Checker) substituteList(listId types.TypeListId, bindings map[atom.Atom]types.TypeId) []types.TypeId {
	members := c.In.TypeList(listId)
	out := make([]types.TypeId, len(members))
	for i, m := range members {
		out[i] = c.Substitute(m, bindings)
	}
	return out
}

func substituteProps(c *Checker, props []types.PropertyInfo, bindings map[atom.Atom]types.TypeId) []types.PropertyInfo {
	out := make([]types.PropertyInfo, len(props))
	for i, p := range props {
		p.Type = c.Substitute(p.Type, bindings)
		out[i] = p
	}
	return out
}

func (c *Checker) substituteObjectShape(s *types.ObjectShape, bindings map[atom.Atom]types.TypeId) types.ObjectShape {
	out := types.ObjectShape{Properties: substituteProps(c, s.Properties, bindings)}
	if s.StringIndex != nil {
		sig := *s.StringIndex
		sig.ValueType = c.Substitute(sig.ValueType, bindings)
		out.StringIndex = &sig
	}
	if s.NumberIndex != nil {
		sig := *s.NumberIndex
		sig.ValueType = c.Substitute(sig.ValueType, bindings)
		out.NumberIndex = &sig
	}
	for _, sigId := range s.CallSigs {
		shape := c.substituteFunctionShape(c.In.FunctionShape(sigId), bindings)
		out.CallSigs = append(out.CallSigs, c.In.FunctionShapeHandle(shape))
	}
	for _, sigId := range s.ConstructSigs {
		shape := c.substituteFunctionShape(c.In.FunctionShape(sigId), bindings)
		out.ConstructSigs = append(out.ConstructSigs, c.In.FunctionShapeHandle(shape))
	}
	return out
}

func (c *Checker) substituteFunctionShape(s *types.FunctionShape, bindings map[atom.Atom]types.TypeId) types.FunctionShape {
	out := *s
	out.Params = make([]types.ParamInfo, len(s.Params))
	for i, p := range s.Params {
		p.Type = c.Substitute(p.Type, bindings)
		out.Params[i] = p
	}
	if s.This != types.Invalid {
		out.This = c.Substitute(s.This, bindings)
	}
	out.Return = c.Substitute(s.Return, bindings)
	if s.Predicate != nil {
		pred := *s.Predicate
		if pred.Type != types.Invalid {
			pred.Type = c.Substitute(pred.Type, bindings)
		}
		out.Predicate = &pred
	}
	return out
}

// tryExpandApplication implements spec 4.4's try_expand_application: resolve
// the base, fetch its declared type parameters, build parameter->argument
// bindings (parameters are bound in declaration order; a missing argument
// takes the parameter's default, substituted with the bindings of the
// parameters before it), substitute, and return. Any failure leaves app
// unchanged.
func (c *Checker) tryExpandApplication(app types.Application) types.TypeId {
	appId := c.In.ApplicationType(app.Base, c.In.TypeList(app.Args))

	baseId := app.Base
	baseData, ok := c.In.Lookup(baseId)
	if !ok {
		return appId
	}
	lazy, ok := baseData.(types.Lazy)
	if !ok {
		return appId
	}
	body, ok := c.R.ResolveLazy(lazy.Def)
	if !ok {
		return appId
	}
	params := c.R.TypeParamsOf(lazy.Def)
	if len(params) == 0 {
		return appId
	}
	args := c.In.TypeList(app.Args)

	bindings := make(map[atom.Atom]types.TypeId, len(params))
	for i, paramId := range params {
		pd, ok := c.In.Lookup(paramId)
		if !ok {
			return appId
		}
		tp, ok := pd.(types.TypeParam)
		if !ok {
			return appId
		}
		var argId types.TypeId
		switch {
		case i < len(args):
			argId = args[i]
		case tp.Default != types.Invalid:
			// Defaults may themselves reference earlier type parameters;
			// substitute using the bindings accumulated so far.
			argId = c.Substitute(tp.Default, bindings)
		default:
			return appId // missing argument with no default: leave unexpanded
		}
		if tp.Constraint != types.Invalid {
			if !c.IsSubtypeOf(argId, c.Substitute(tp.Constraint, bindings)) {
				return appId
			}
		}
		bindings[tp.Name] = argId
	}

	return c.Substitute(body, bindings)
}

// TryExpandApplication is the exported entry point for callers outside the
// subtype-resolution fast path (e.g. the checker, when lowering a generic
// type reference to its expanded structural form).
func (c *Checker) TryExpandApplication(base types.TypeId, args []types.TypeId) types.TypeId {
	return c.tryExpandApplication(types.Application{Base: base, Args: c.In.InternTypeList(args)})
}
