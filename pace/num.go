package pace

import "golang.org/x/exp/constraints"

type numeric interface {
	constraints.Integer | constraints.Float
}

func clamp[T numeric](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
