package callgraph

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/iepathos/debtmap/internal/identity"
	"github.com/iepathos/debtmap/pkg/model"
)

// FindFunction implements C3's three-tier resolution: exact, then fuzzy
// (generic-tolerant, line-proximity disambiguated), then name-only
// (module-path then line-proximity disambiguated). It always proceeds in
// this order and never mutates the graph.
func (g *Graph) FindFunction(query model.FunctionId) (model.FunctionId, bool) {
	if _, ok := g.nodes[query]; ok {
		return query, true
	}

	fk := identity.FuzzyKeyOf(query)
	if candidates := g.fuzzyIndex[fk]; len(candidates) > 0 {
		return disambiguate(candidates, query), true
	}

	nk := identity.NameKeyOf(query)
	if candidates := g.nameIndex[nk]; len(candidates) > 0 {
		var sameMod []model.FunctionId
		for _, c := range candidates {
			if c.ModulePath == query.ModulePath {
				sameMod = append(sameMod, c)
			}
		}
		if len(sameMod) > 0 {
			candidates = sameMod
		}
		return disambiguate(candidates, query), true
	}

	return model.FunctionId{}, false
}

// disambiguate picks among candidates by minimum line distance to query,
// tie-broken by module_path match, tie-broken finally by insertion order
// (the candidates slice is already in insertion order since buckets are
// appended to during sequential construction).
func disambiguate(candidates []model.FunctionId, query model.FunctionId) model.FunctionId {
	if len(candidates) == 1 {
		return candidates[0]
	}
	best := candidates[0]
	bestDist := lineDist(best, query)
	bestModMatch := best.ModulePath == query.ModulePath
	for _, c := range candidates[1:] {
		dist := lineDist(c, query)
		modMatch := c.ModulePath == query.ModulePath
		switch {
		case dist < bestDist:
			best, bestDist, bestModMatch = c, dist, modMatch
		case dist == bestDist && modMatch && !bestModMatch:
			best, bestDist, bestModMatch = c, dist, modMatch
		}
	}
	return best
}

func lineDist(a, query model.FunctionId) int {
	d := a.Line - query.Line
	if d < 0 {
		return -d
	}
	return d
}

// UnresolvedSite is a call edge whose callee query has not yet been
// resolved against the graph.
type UnresolvedSite struct {
	Index  int
	Caller model.FunctionId
	Query  model.FunctionId
}

// resolution is the outcome of resolving one UnresolvedSite.
type resolution struct {
	Index    int
	Caller   model.FunctionId
	Resolved model.FunctionId
	Ok       bool
}

// ResolveCrossFile runs C3's two-phase cross-file resolution: phase A
// resolves every unresolved site in parallel over the frozen, read-only
// graph; phase B applies the resolutions sequentially, in the sites'
// original insertion order, through AddCall so every index stays in sync.
// Sites that fail to resolve produce an UnresolvedCallError, which is
// non-fatal and simply excludes the edge.
func (g *Graph) ResolveCrossFile(ctx context.Context, sites []UnresolvedSite) []error {
	results := make([]resolution, len(sites))

	grp, _ := errgroup.WithContext(ctx)
	const batchSize = 100
	for start := 0; start < len(sites); start += batchSize {
		end := start + batchSize
		if end > len(sites) {
			end = len(sites)
		}
		batch := sites[start:end]
		grp.Go(func() error {
			for _, site := range batch {
				resolvedId, ok := g.FindFunction(site.Query)
				results[site.Index] = resolution{Index: site.Index, Caller: site.Caller, Resolved: resolvedId, Ok: ok}
			}
			return nil
		})
	}
	_ = grp.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	var errs []error
	for _, r := range results {
		if !r.Ok {
			errs = append(errs, &model.UnresolvedCallError{Caller: r.Caller, Callee: sites[r.Index].Query})
			continue
		}
		if err := g.AddCall(r.Caller, r.Resolved); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
