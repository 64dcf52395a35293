package registry

// Field looks up key in m and checks that its value has type T. The returned
// bool is false when the key is absent, which is not an error.
func Field[T any](m Map, item, field string, key uint64) (T, bool, error) {
	var zero T

	v, ok := m[key]
	if !ok {
		return zero, false, nil
	}

	typed, ok := v.(T)
	if !ok {
		return zero, false, typeError(item, field, typeName(zero), v)
	}

	return typed, true, nil
}

// RequiredField is Field for keys that must be present.
func RequiredField[T any](m Map, item, field string, key uint64) (T, error) {
	v, ok, err := Field[T](m, item, field, key)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, MissingError(item, field)
	}

	return v, nil
}

// Uint32Field is Field for unsigned integers that must fit in 32 bits.
func Uint32Field(m Map, item, field string, key uint64) (uint32, bool, error) {
	v, ok, err := Field[uint64](m, item, field, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if v > 0xffffffff {
		return 0, false, InvalidError(
			item, field, errorf("%d overflows uint32", v),
		)
	}

	return uint32(v), true, nil
}
