// Package pool provides bucketed sync.Pool instances for reducing allocations
// in hot paths.
package pool

import "sync"

// float64Pools buckets scratch []float64 slices by length. Separable
// transforms (see internal/vardct/dct.go) run one of these per block
// per channel per group, so the row/column scratch buffers churn
// heavily enough to be worth pooling even though they're small.
var float64Pools sync.Map // map[int]*sync.Pool

func float64PoolFor(n int) *sync.Pool {
	if p, ok := float64Pools.Load(n); ok {
		return p.(*sync.Pool)
	}
	p, _ := float64Pools.LoadOrStore(n, &sync.Pool{
		New: func() any {
			s := make([]float64, n)
			return &s
		},
	})
	return p.(*sync.Pool)
}

// GetFloat64 returns a float64 slice of exactly length n, zeroed.
// The caller must call PutFloat64 when done.
func GetFloat64(n int) []float64 {
	if n == 0 {
		return nil
	}
	bp := float64PoolFor(n).Get().(*[]float64)
	s := *bp
	for i := range s {
		s[i] = 0
	}
	return s
}

// PutFloat64 returns a slice obtained from GetFloat64 to the pool.
func PutFloat64(s []float64) {
	n := len(s)
	if n == 0 {
		return
	}
	float64PoolFor(n).Put(&s)
}
