// internal/plan/plan.go

// Package plan coalesces sparse register reads into wire request ranges.
package plan

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tamzrod/solarlink/internal/registry"
)

// Limits bound the geometry of a single wire request.
type Limits struct {
	// MaxPerRequest is the transport's registers-per-request ceiling.
	MaxPerRequest uint16

	// CoalesceGap is the largest register gap bridged when merging two
	// descriptors into one range. 0 merges only adjacent or overlapping
	// descriptors.
	CoalesceGap uint16
}

// Defaults from the Huawei Modbus interface: at most 64 registers per
// read, no gap bridging.
const (
	DefaultMaxPerRequest = 64
	DefaultCoalesceGap   = 0
)

func (l Limits) withDefaults() Limits {
	if l.MaxPerRequest == 0 {
		l.MaxPerRequest = DefaultMaxPerRequest
	}
	return l
}

// Range is one contiguous wire read.
type Range struct {
	Start uint16
	Count uint16
}

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, int(r.Start)+int(r.Count)) }

func (r Range) end() uint32 { return uint32(r.Start) + uint32(r.Count) }

// Plan is an ordered set of disjoint ranges covering every requested
// descriptor. Ranges are sorted ascending and each fits MaxPerRequest.
type Plan struct {
	Ranges []Range
}

// Registers returns the total register count across all ranges.
func (p Plan) Registers() int {
	n := 0
	for _, r := range p.Ranges {
		n += int(r.Count)
	}
	return n
}

// Build plans the minimal request set for the given descriptors.
//
// Descriptors are sorted by address and merged greedily: two neighbours
// join one range when the gap between them is at most CoalesceGap and
// the merged range still fits MaxPerRequest. A descriptor longer than
// MaxPerRequest on its own is split into sequential sub-ranges.
func Build(descs []registry.Descriptor, lim Limits) (Plan, error) {
	lim = lim.withDefaults()

	if len(descs) == 0 {
		return Plan{}, errors.New("plan: at least one descriptor required")
	}

	sorted := make([]registry.Descriptor, len(descs))
	copy(sorted, descs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })

	// Merge descriptor spans first, then chunk to MaxPerRequest.
	type span struct{ start, end uint32 }
	var spans []span

	for _, d := range sorted {
		ds, de := uint32(d.Address), d.End()
		if len(spans) > 0 {
			last := &spans[len(spans)-1]
			if ds <= last.end+uint32(lim.CoalesceGap) {
				merged := de
				if last.end > merged {
					merged = last.end
				}
				// Overlapping descriptors must share a span to keep the
				// ranges disjoint; gap-only neighbours merge when the
				// result still fits one request.
				if ds < last.end || merged-last.start <= uint32(lim.MaxPerRequest) {
					last.end = merged
					continue
				}
			}
		}
		spans = append(spans, span{start: ds, end: de})
	}

	var p Plan
	for _, s := range spans {
		for start := s.start; start < s.end; {
			count := s.end - start
			if count > uint32(lim.MaxPerRequest) {
				count = uint32(lim.MaxPerRequest)
			}
			p.Ranges = append(p.Ranges, Range{Start: uint16(start), Count: uint16(count)})
			start += count
		}
	}

	return p, nil
}

// Result holds the raw words of an executed plan, indexed by range.
type Result struct {
	plan  Plan
	words [][]uint16
}

// NewResult pairs a plan with its per-range raw words, in request order.
func NewResult(p Plan, words [][]uint16) (*Result, error) {
	if len(words) != len(p.Ranges) {
		return nil, fmt.Errorf("plan: %d word slices for %d ranges", len(words), len(p.Ranges))
	}
	for i, r := range p.Ranges {
		if len(words[i]) != int(r.Count) {
			return nil, fmt.Errorf("plan: range %s returned %d words", r, len(words[i]))
		}
	}
	return &Result{plan: p, words: words}, nil
}

// Extract reassembles a descriptor's exact word slice from the executed
// ranges. It spans range boundaries, which covers descriptors split by
// MaxPerRequest.
func (r *Result) Extract(d registry.Descriptor) ([]uint16, error) {
	out := make([]uint16, 0, d.Length)
	next := uint32(d.Address)

	for i, rg := range r.plan.Ranges {
		if next >= d.End() {
			break
		}
		if next < uint32(rg.Start) || next >= rg.end() {
			continue
		}
		from := next - uint32(rg.Start)
		to := rg.end()
		if d.End() < to {
			to = d.End()
		}
		out = append(out, r.words[i][from:to-uint32(rg.Start)]...)
		next = to
	}

	if len(out) != int(d.Length) {
		return nil, fmt.Errorf("plan: descriptor %q not covered by executed ranges", d.Name)
	}
	return out, nil
}
