// internal/plan/plan_test.go
package plan

import (
	"math/rand"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/tamzrod/solarlink/internal/registry"
)

func d(name string, addr, length uint16) registry.Descriptor {
	return registry.Descriptor{Name: name, Address: addr, Length: length, Kind: registry.Unsigned}
}

func TestAdjacentDescriptorsCoalesce(t *testing.T) {
	p, err := Build([]registry.Descriptor{
		d("a", 100, 1),
		d("b", 101, 1),
	}, Limits{CoalesceGap: 0})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Ranges, []Range{{Start: 100, Count: 2}})
}

func TestGapStartsNewRange(t *testing.T) {
	p, err := Build([]registry.Descriptor{
		d("a", 100, 1),
		d("b", 110, 1),
	}, Limits{CoalesceGap: 0})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Ranges, []Range{
		{Start: 100, Count: 1},
		{Start: 110, Count: 1},
	})
}

func TestGapWithinThresholdMerges(t *testing.T) {
	p, err := Build([]registry.Descriptor{
		d("a", 100, 1),
		d("b", 110, 1),
	}, Limits{CoalesceGap: 16})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Ranges, []Range{{Start: 100, Count: 11}})
}

func TestMergeRespectsMaxPerRequest(t *testing.T) {
	p, err := Build([]registry.Descriptor{
		d("a", 100, 60),
		d("b", 160, 60),
	}, Limits{MaxPerRequest: 64, CoalesceGap: 0})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Ranges, []Range{
		{Start: 100, Count: 60},
		{Start: 160, Count: 60},
	})
}

func TestOversizeDescriptorSplits(t *testing.T) {
	p, err := Build([]registry.Descriptor{
		d("blob", 1000, 150),
	}, Limits{MaxPerRequest: 64})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Ranges, []Range{
		{Start: 1000, Count: 64},
		{Start: 1064, Count: 64},
		{Start: 1128, Count: 22},
	})
}

func TestOverlappingAliasesShareRange(t *testing.T) {
	descs := []registry.Descriptor{
		d("grid_voltage", 32066, 1),
		d("line_voltage_a_b", 32066, 1),
		d("line_voltage_b_c", 32067, 1),
	}
	p, err := Build(descs, Limits{})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Ranges, []Range{{Start: 32066, Count: 2}})
}

func TestEmptyInputRejected(t *testing.T) {
	_, err := Build(nil, Limits{})
	assert.Assert(t, err != nil)
}

// Planner invariants over random descriptor sets: ranges are disjoint,
// sorted ascending, each within MaxPerRequest, and with CoalesceGap 0
// they cover exactly the union of requested registers.
func TestBuildInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(20)
		descs := make([]registry.Descriptor, 0, n)
		addr := uint16(1000)
		for i := 0; i < n; i++ {
			addr += uint16(rng.Intn(12))
			length := uint16(1 + rng.Intn(10))
			descs = append(descs, d("r", addr, length))
			addr += length
		}
		// Shuffle: Build must not rely on input order.
		rng.Shuffle(len(descs), func(i, j int) { descs[i], descs[j] = descs[j], descs[i] })

		max := uint16(8 + rng.Intn(60))
		p, err := Build(descs, Limits{MaxPerRequest: max, CoalesceGap: 0})
		assert.NilError(t, err)

		requested := map[uint32]bool{}
		for _, dd := range descs {
			for a := uint32(dd.Address); a < dd.End(); a++ {
				requested[a] = true
			}
		}

		covered := map[uint32]bool{}
		prevEnd := uint32(0)
		for _, r := range p.Ranges {
			assert.Assert(t, r.Count > 0, "empty range")
			assert.Assert(t, r.Count <= max, "range %v exceeds max %d", r, max)
			assert.Assert(t, uint32(r.Start) >= prevEnd, "ranges overlap or unsorted")
			prevEnd = r.end()
			for a := uint32(r.Start); a < r.end(); a++ {
				covered[a] = true
			}
		}

		assert.Equal(t, len(covered), len(requested), "coverage is not exactly the union")
		for a := range requested {
			assert.Assert(t, covered[a], "register %d not covered", a)
		}
	}
}

func TestResultExtract(t *testing.T) {
	a := d("a", 100, 2)
	b := d("b", 103, 1)
	p, err := Build([]registry.Descriptor{a, b}, Limits{CoalesceGap: 0})
	assert.NilError(t, err)
	assert.Equal(t, len(p.Ranges), 2)

	res, err := NewResult(p, [][]uint16{{0x0001, 0x0002}, {0x0007}})
	assert.NilError(t, err)

	wa, err := res.Extract(a)
	assert.NilError(t, err)
	assert.DeepEqual(t, wa, []uint16{0x0001, 0x0002})

	wb, err := res.Extract(b)
	assert.NilError(t, err)
	assert.DeepEqual(t, wb, []uint16{0x0007})
}

func TestResultExtractAcrossSplitRanges(t *testing.T) {
	blob := d("blob", 1000, 10)
	p, err := Build([]registry.Descriptor{blob}, Limits{MaxPerRequest: 4})
	assert.NilError(t, err)
	assert.Equal(t, len(p.Ranges), 3)

	words := [][]uint16{
		{0, 1, 2, 3},
		{4, 5, 6, 7},
		{8, 9},
	}
	res, err := NewResult(p, words)
	assert.NilError(t, err)

	w, err := res.Extract(blob)
	assert.NilError(t, err)
	assert.DeepEqual(t, w, []uint16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
}

func TestResultLengthValidation(t *testing.T) {
	p, err := Build([]registry.Descriptor{d("a", 10, 2)}, Limits{})
	assert.NilError(t, err)

	_, err = NewResult(p, [][]uint16{{1}})
	assert.Assert(t, err != nil)

	_, err = NewResult(p, nil)
	assert.Assert(t, err != nil)
}
