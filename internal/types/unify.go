package types

import "fmt"

// Subst maps a TypeVar's key to the Type it has been bound to.
type Subst map[string]Type

// Compose applies s2 over s1's results and merges the two, so that
// applying the composed substitution is equivalent to applying s1 then
// s2.
func (s1 Subst) Compose(s2 Subst) Subst {
	out := make(Subst, len(s1)+len(s2))
	for k, v := range s1 {
		out[k] = v.Apply(s2)
	}
	for k, v := range s2 {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

type mismatchError struct{ msg string }

func (e *mismatchError) Error() string { return e.msg }

func errMismatch(format string, args ...interface{}) error {
	return &mismatchError{fmt.Sprintf(format, args...)}
}

type typePair struct{ a, b string }

// Unify finds the most general substitution making t1 and t2 identical,
// returning an error on a genuine mismatch or an occurs-check failure
// (an attempt to bind a type variable to a type that contains it,
// which would produce an infinite type).
func Unify(t1, t2 Type) (Subst, error) {
	return unify(t1, t2, nil)
}

func unify(t1, t2 Type, visited []typePair) (Subst, error) {
	pair := typePair{t1.String(), t2.String()}
	for _, v := range visited {
		if v == pair {
			return Subst{}, nil
		}
	}
	visited = append(visited, pair)

	if tv, ok := t1.(*TypeVar); ok {
		return Bind(tv, t2)
	}
	if tv, ok := t2.(*TypeVar); ok {
		return Bind(tv, t1)
	}

	switch a := t1.(type) {
	case *Primitive:
		if b, ok := t2.(*Primitive); ok && a == b {
			return Subst{}, nil
		}
		return nil, errMismatch("cannot unify %s with %s", t1, t2)

	case *Nullable:
		b, ok := t2.(*Nullable)
		if !ok {
			return nil, errMismatch("cannot unify %s with %s", t1, t2)
		}
		return unify(a.Elem, b.Elem, visited)

	case *Array:
		b, ok := t2.(*Array)
		if !ok {
			return nil, errMismatch("cannot unify %s with %s", t1, t2)
		}
		return unify(a.Elem, b.Elem, visited)

	case *HashMap:
		b, ok := t2.(*HashMap)
		if !ok {
			return nil, errMismatch("cannot unify %s with %s", t1, t2)
		}
		s1, err := unify(a.Key, b.Key, visited)
		if err != nil {
			return nil, err
		}
		s2, err := unify(a.Value.Apply(s1), b.Value.Apply(s1), visited)
		if err != nil {
			return nil, err
		}
		return s1.Compose(s2), nil

	case *Addr:
		b, ok := t2.(*Addr)
		if !ok {
			return nil, errMismatch("cannot unify %s with %s", t1, t2)
		}
		return unify(a.Elem, b.Elem, visited)

	case *AsValue:
		b, ok := t2.(*AsValue)
		if !ok {
			return nil, errMismatch("cannot unify %s with %s", t1, t2)
		}
		return unify(a.Elem, b.Elem, visited)

	case *Function:
		b, ok := t2.(*Function)
		if !ok || len(a.Params) != len(b.Params) {
			return nil, errMismatch("cannot unify %s with %s", t1, t2)
		}
		s := Subst{}
		for i := range a.Params {
			ps, err := unify(a.Params[i].Apply(s), b.Params[i].Apply(s), visited)
			if err != nil {
				return nil, err
			}
			s = s.Compose(ps)
		}
		rs, err := unify(a.Return.Apply(s), b.Return.Apply(s), visited)
		if err != nil {
			return nil, err
		}
		return s.Compose(rs), nil
	}
	return nil, errMismatch("cannot unify %s with %s", t1, t2)
}

// Bind binds tv to t, failing the occurs check if t contains tv (which
// would otherwise construct an infinite type).
func Bind(tv *TypeVar, t Type) (Subst, error) {
	if other, ok := t.(*TypeVar); ok && other.key() == tv.key() {
		return Subst{}, nil
	}
	if OccursCheck(tv, t) {
		return nil, errMismatch("infinite type detected: %s in %s", tv, t)
	}
	return Subst{tv.key(): t}, nil
}

// OccursCheck reports whether tv occurs free within t.
func OccursCheck(tv *TypeVar, t Type) bool {
	for _, free := range t.FreeTypeVariables() {
		if free.key() == tv.key() {
			return true
		}
	}
	return false
}
