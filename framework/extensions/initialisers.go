package extensions

import (
	"context"
	"fmt"
	"reflect"

	"github.com/km-arc/go-resolver/framework/container"
)

var errorType = reflect.TypeFor[error]()

// ── Factory ───────────────────────────────────────────────────────────────────

// FactoryInitialiser calls the module, which must be a func, with the
// resolved args. Supported shapes:
//
//	func(...) T
//	func(...) (T, error)
//
// Variadic funcs take any number of trailing args. A nil arg becomes the zero
// value of its parameter.
//
// It claims definitions with init "factory"; wrap it in
// container.DefaultInitialiser to also claim those without an init.
type FactoryInitialiser struct{}

// InitFactory is the init name of the FactoryInitialiser.
const InitFactory = "factory"

func (FactoryInitialiser) CanInitialise(ec *container.ExtensionContext) bool {
	return ec.Definition().Init == InitFactory
}

func (FactoryInitialiser) Initialise(_ context.Context, created *container.InstanceCreated, module any, args ...any) (any, error) {
	fn := reflect.ValueOf(module)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, fmt.Errorf("factory: module is %T, not a func", module)
	}
	in, err := callArgs(fn.Type(), args)
	if err != nil {
		return nil, err
	}
	instance, err := results(fn.Type(), fn.Call(in))
	if err != nil {
		return nil, err
	}
	created.Publish(instance)
	return instance, nil
}

func callArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("factory: %s takes at least %d args, got %d", ft, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("factory: %s takes %d args, got %d", ft, fixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if i < fixed {
			pt = ft.In(i)
		} else {
			pt = ft.In(fixed).Elem()
		}
		v, err := argValue(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("factory: arg %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

func argValue(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(pt), nil
	}
	v := reflect.ValueOf(arg)
	switch {
	case v.Type().AssignableTo(pt):
		return v, nil
	case v.Type().ConvertibleTo(pt) && v.Kind() == pt.Kind():
		return v.Convert(pt), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, pt)
}

func results(ft reflect.Type, out []reflect.Value) (any, error) {
	switch {
	case ft.NumOut() == 1 && ft.Out(0) != errorType:
		return out[0].Interface(), nil
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
		if err, _ := out[1].Interface().(error); err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}
	return nil, fmt.Errorf("factory: %s must return T or (T, error)", ft)
}

// ── Value ─────────────────────────────────────────────────────────────────────

// ValueInitialiser uses the module itself as the instance. It claims
// definitions with init "value"; args are ignored.
type ValueInitialiser struct{}

// InitValue is the init name of the ValueInitialiser.
const InitValue = "value"

func (ValueInitialiser) CanInitialise(ec *container.ExtensionContext) bool {
	return ec.Definition().Init == InitValue
}

func (ValueInitialiser) Initialise(_ context.Context, created *container.InstanceCreated, module any, _ ...any) (any, error) {
	created.Publish(module)
	return module, nil
}
