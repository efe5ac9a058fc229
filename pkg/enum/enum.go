package enum

import (
	"fmt"
	"reflect"
	"sync"
)

var (
	enumManager = map[string]any{}
	lock        sync.RWMutex
)

type enum[T comparable] struct {
	toEnum map[string]T
	values []T
}

// New registers value as a member of its enum type and returns it unchanged.
func New[T comparable](value T) T {
	lock.Lock()
	defer lock.Unlock()

	v := reflect.ValueOf(value)
	name := enumName[T]()
	e, ok := enumManager[name].(*enum[T])
	if !ok {
		e = &enum[T]{toEnum: make(map[string]T)}
		enumManager[name] = e
	}

	e.toEnum[fmt.Sprint(v.Interface())] = value
	e.values = append(e.values, value)
	return value
}

func ToEnum[T comparable](s string) (T, error) {
	lock.RLock()
	defer lock.RUnlock()

	var defaultT T
	e, ok := enumManager[enumName[T]()].(*enum[T])
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	t, ok := e.toEnum[s]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", s, defaultT)
	}

	return t, nil
}

// Values returns the registered members of T in registration order.
func Values[T comparable]() []T {
	lock.RLock()
	defer lock.RUnlock()

	e, ok := enumManager[enumName[T]()].(*enum[T])
	if !ok {
		return nil
	}

	return append([]T(nil), e.values...)
}

func enumName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t.PkgPath() + "." + t.Name()
}
