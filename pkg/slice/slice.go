// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slice has the generic helpers [slices] leaves out.
package slice

// Map applies fn to every element. A nil input stays nil.
func Map[T, U any](in []T, fn func(T) U) []U {
	if in == nil {
		return nil
	}
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

// Contains reports whether match holds for any element.
func Contains[T any](in []T, match func(T) bool) bool {
	for _, v := range in {
		if match(v) {
			return true
		}
	}
	return false
}

// Reduce folds in from left to right, starting at acc.
func Reduce[T, A any](in []T, acc A, fn func(A, T) A) A {
	for _, v := range in {
		acc = fn(acc, v)
	}
	return acc
}
