package filter_test

import (
	"testing"

	"github.com/strata-engine/strata/assert"
	"github.com/strata-engine/strata/filter"
	"github.com/strata-engine/strata/types"
)

type comp types.ComponentID

func (c comp) ID() types.ComponentID { return types.ComponentID(c) }

const (
	alpha comp = 1
	beta  comp = 2
	gamma comp = 3
)

func ids(components ...comp) []types.ComponentID {
	out := make([]types.ComponentID, 0, len(components))
	for _, c := range components {
		out = append(out, c.ID())
	}
	return out
}

func TestContainsFilter(t *testing.T) {
	f := filter.Contains(alpha, beta)

	assert.Assert(t, f.MatchesComponents(ids(alpha, beta)))
	assert.Assert(t, f.MatchesComponents(ids(alpha, beta, gamma)))
	assert.Assert(t, !f.MatchesComponents(ids(alpha)))
	assert.Assert(t, !f.MatchesComponents(ids(gamma)))
	assert.Assert(t, !f.MatchesComponents(nil))
}

func TestExactFilter(t *testing.T) {
	f := filter.Exact(alpha, beta)

	assert.Assert(t, f.MatchesComponents(ids(alpha, beta)))
	assert.Assert(t, f.MatchesComponents(ids(beta, alpha)))
	assert.Assert(t, !f.MatchesComponents(ids(alpha)))
	assert.Assert(t, !f.MatchesComponents(ids(alpha, beta, gamma)))
	assert.Assert(t, !f.MatchesComponents(nil))
}

func TestAllFilter(t *testing.T) {
	f := filter.All()

	assert.Assert(t, f.MatchesComponents(nil))
	assert.Assert(t, f.MatchesComponents(ids(alpha)))
	assert.Assert(t, f.MatchesComponents(ids(alpha, beta, gamma)))
}

func TestNotFilter(t *testing.T) {
	f := filter.Not(filter.Contains(alpha))

	assert.Assert(t, !f.MatchesComponents(ids(alpha)))
	assert.Assert(t, f.MatchesComponents(ids(beta)))
	assert.Assert(t, f.MatchesComponents(nil))
}

func TestAndOrFilters(t *testing.T) {
	and := filter.And(filter.Contains(alpha), filter.Not(filter.Contains(beta)))
	assert.Assert(t, and.MatchesComponents(ids(alpha)))
	assert.Assert(t, and.MatchesComponents(ids(alpha, gamma)))
	assert.Assert(t, !and.MatchesComponents(ids(alpha, beta)))
	assert.Assert(t, !and.MatchesComponents(ids(gamma)))

	or := filter.Or(filter.Exact(alpha), filter.Exact(beta))
	assert.Assert(t, or.MatchesComponents(ids(alpha)))
	assert.Assert(t, or.MatchesComponents(ids(beta)))
	assert.Assert(t, !or.MatchesComponents(ids(alpha, beta)))
	assert.Assert(t, !or.MatchesComponents(ids(gamma)))
}
