package value

import "golang.org/x/exp/slices"

// DeepClone returns a Value with its own, independent container backing
// store. Scalars are trivially copied; functions and opaque handles are
// shared by identity (they are not containers); cloning is always
// explicit, never implicit on assignment or parameter passing.
func (v Value) DeepClone() Value {
	switch v.kind {
	case ArrayKind:
		if v.arr == nil {
			return v
		}
		elems := slices.Clone(v.arr.Elements)
		for i := range elems {
			elems[i] = elems[i].DeepClone()
		}
		return ArrayVal(&Array{Elements: elems})
	case ObjectKind:
		if v.obj == nil {
			return v
		}
		clone := &Object{
			keys: slices.Clone(v.obj.keys),
			m:    make(map[string]Value, len(v.obj.m)),
		}
		for k, val := range v.obj.m {
			clone.m[k] = val.DeepClone()
		}
		return ObjectVal(clone)
	default:
		return v
	}
}
