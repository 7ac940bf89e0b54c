package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor_VisitsEveryIndexOnce(t *testing.T) {
	configs := map[string]Config{
		"default":    DefaultConfig(),
		"sequential": Sequential(),
		"wide":       {Enabled: true, NumWorkers: 7, MinChunkSize: 1},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			const n = 101
			var hits [n]atomic.Int32
			For(n, func(i int) { hits[i].Add(1) }, cfg)
			for i := range hits {
				assert.Equal(t, int32(1), hits[i].Load(), "index %d", i)
			}
		})
	}
}

func TestForChunks_Covers(t *testing.T) {
	var total atomic.Int64
	ForChunks(1000, func(start, end int) {
		assert.Less(t, start, end)
		total.Add(int64(end - start))
	}, Config{Enabled: true, NumWorkers: 3, MinChunkSize: 10})
	assert.Equal(t, int64(1000), total.Load())

	called := false
	ForChunks(0, func(int, int) { called = true }, DefaultConfig())
	assert.False(t, called)
}

func TestForBatch(t *testing.T) {
	seen := make([][]atomic.Bool, 3)
	for b := range seen {
		seen[b] = make([]atomic.Bool, 4)
	}
	ForBatch(3, 4, func(b, c int) { seen[b][c].Store(true) }, DefaultConfig())
	for b := range seen {
		for c := range seen[b] {
			assert.True(t, seen[b][c].Load(), "plane (%d,%d)", b, c)
		}
	}
}
