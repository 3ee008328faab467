package eval

// RootVariable is the variable name bound to the root object.
const RootVariable = "root"

// State is the mutable context of a single evaluation call.
//
// A State is owned by one call and must not be shared between goroutines.
// Scopes hold local bindings introduced during evaluation; the innermost
// scope is consulted first, then the EvaluationContext.
type State struct {
	root   TypedValue
	ctx    EvaluationContext
	scopes []map[string]any
}

// NewState creates the state for one evaluation against ctx with the
// given root object.
func NewState(ctx EvaluationContext, root any) *State {
	return &State{
		root: NewTypedValue(root),
		ctx:  ctx,
	}
}

// Root returns the root object.
func (s *State) Root() TypedValue {
	return s.root
}

// Context returns the evaluation context.
func (s *State) Context() EvaluationContext {
	return s.ctx
}

// EnterScope pushes a scope. bindings may be nil.
func (s *State) EnterScope(bindings map[string]any) {
	scope := make(map[string]any, len(bindings))
	for k, v := range bindings {
		scope[k] = v
	}
	s.scopes = append(s.scopes, scope)
}

// ExitScope pops the innermost scope. Popping with no scopes is a no-op.
func (s *State) ExitScope() {
	if len(s.scopes) == 0 {
		return
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// Depth returns the number of open scopes.
func (s *State) Depth() int {
	return len(s.scopes)
}

// SetLocal binds name in the innermost scope, opening one if needed.
func (s *State) SetLocal(name string, v any) {
	if len(s.scopes) == 0 {
		s.EnterScope(nil)
	}
	s.scopes[len(s.scopes)-1][name] = v
}

// LookupVariable resolves name through the scopes, then the context.
// #root always names the root object. Undefined variables are null.
func (s *State) LookupVariable(name string) TypedValue {
	if name == RootVariable {
		return s.root
	}
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i][name]; ok {
			return NewTypedValue(v)
		}
	}
	if s.ctx != nil {
		if v, ok := s.ctx.ResolveVariable(name); ok {
			return NewTypedValue(v)
		}
	}
	return Null
}

// Convert converts v through the context.
func (s *State) Convert(v any, target Descriptor) (any, error) {
	return s.ctx.Convert(v, target)
}

// Operate delegates op to the context's overloader. claimed is false when the
// overloader declines, in which case Operate is never called.
func (s *State) Operate(op Operation, left, right any) (result any, claimed bool, err error) {
	if !s.ctx.OverridesOperation(op, left, right) {
		return nil, false, nil
	}
	result, err = s.ctx.Operate(op, left, right)
	return result, true, err
}

// FindType resolves a type name through the context.
func (s *State) FindType(name string) (TypeRef, error) {
	return s.ctx.FindType(name)
}

// ReadProperty reads name from target through the context.
func (s *State) ReadProperty(target any, name string) (any, error) {
	return s.ctx.ReadProperty(target, name)
}
