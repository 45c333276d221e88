package compiler

import (
	"cuelang.org/go/cue"
)

// Helpers for optional scalar fields. A missing field yields the default;
// a present field of the wrong kind is an error.

func lookupInt(v cue.Value, path string, def int) (int, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return def, nil
	}
	n, err := f.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

func lookupFloat(v cue.Value, path string, def float64) (float64, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return def, nil
	}
	n, err := f.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return n, nil
}

func lookupBool(v cue.Value, path string) (bool, error) {
	b, err := lookupOptionalBool(v, path)
	if err != nil || b == nil {
		return false, err
	}
	return *b, nil
}

func lookupOptionalBool(v cue.Value, path string) (*bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return nil, nil
	}
	b, err := f.Bool()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return &b, nil
}

func lookupString(v cue.Value, path string) (string, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func lookupStrings(v cue.Value, path string) ([]string, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return nil, nil
	}
	return stringList(f)
}

func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

func intList(v cue.Value) ([]int, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []int
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, int(n))
	}
	return out, nil
}

// quantities reads a single quantity field or its plural list form.
func quantities(v cue.Value, single, plural string) ([]int, error) {
	if f := v.LookupPath(cue.ParsePath(plural)); f.Exists() {
		return intList(f)
	}
	if !v.LookupPath(cue.ParsePath(single)).Exists() {
		return nil, nil
	}
	n, err := lookupInt(v, single, 0)
	if err != nil {
		return nil, err
	}
	return []int{n}, nil
}
