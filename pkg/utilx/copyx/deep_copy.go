// Package copyx duplicates values so the copy shares no memory with the original.
package copyx

import (
	"reflect"
)

// Of returns a deep copy of *src: every pointer, slice and map reachable from it is duplicated.
// Unexported struct fields are left at their zero value. Of(nil) is nil.
func Of[T any](src *T) *T {
	if src == nil {
		return nil
	}

	dst := new(T)
	copyInto(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem())

	return dst
}

func copyInto(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Ptr:
		if src.IsNil() {
			return
		}
		elem := reflect.New(src.Type().Elem())
		copyInto(elem.Elem(), src.Elem())
		dst.Set(elem)
	case reflect.Interface:
		if src.IsNil() {
			return
		}
		elem := reflect.New(src.Elem().Type()).Elem()
		copyInto(elem, src.Elem())
		dst.Set(elem)
	case reflect.Struct:
		for i := range src.NumField() {
			if field := dst.Field(i); field.CanSet() {
				copyInto(field, src.Field(i))
			}
		}
	case reflect.Slice:
		if src.IsNil() {
			return
		}
		items := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := range src.Len() {
			copyInto(items.Index(i), src.Index(i))
		}
		dst.Set(items)
	case reflect.Array:
		for i := range src.Len() {
			copyInto(dst.Index(i), src.Index(i))
		}
	case reflect.Map:
		if src.IsNil() {
			return
		}
		entries := reflect.MakeMapWithSize(src.Type(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			value := reflect.New(src.Type().Elem()).Elem()
			copyInto(value, iter.Value())
			entries.SetMapIndex(iter.Key(), value)
		}
		dst.Set(entries)
	default:
		dst.Set(src)
	}
}
