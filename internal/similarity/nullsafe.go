package similarity

import "reflect"

// StringsEqual reports whether both strings are nil or both are set and
// byte-equal. A nil string never equals a set one.
func StringsEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// AllNull reports whether every value is nil. Typed nil pointers count as nil.
func AllNull(values ...any) bool {
	for _, v := range values {
		if !isNull(v) {
			return false
		}
	}
	return true
}

// AllNonNull reports whether no value is nil
func AllNonNull(values ...any) bool {
	for _, v := range values {
		if isNull(v) {
			return false
		}
	}
	return true
}

// OnlyOneIsNull reports whether exactly one of the values is nil
func OnlyOneIsNull(values ...any) bool {
	nulls := 0
	for _, v := range values {
		if isNull(v) {
			nulls++
		}
	}
	return nulls == 1
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
