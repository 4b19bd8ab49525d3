package carl

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultRootSearchBound limits the leading and trailing coefficients for
// which rational roots are searched.
const DefaultRootSearchBound = 1 << 30

// ============================================================
// Factor — interned irreducible factor
// ============================================================

// Factor is a shared handle for a primitive polynomial with a positive
// leading coefficient. Within one cache, equal polynomials always map to the
// same *Factor, so handles are compared by pointer.
//
// A handle is refined once the cache learns a proper divisor of it; from then
// on factorizations list its parts instead of the handle itself.
type Factor struct {
	poly  Polynomial
	seq   uint64
	cache *FactorizationCache

	// refined is set at most once, under cache.mu.
	refined []FactorPower
}

func (f *Factor) Polynomial() Polynomial      { return f.poly }
func (f *Factor) Seq() uint64                 { return f.seq }
func (f *Factor) Cache() *FactorizationCache  { return f.cache }
func (f *Factor) String() string              { return f.poly.String() }
func (f *Factor) GatherVariables() []Variable { return f.poly.GatherVariables() }

func (f *Factor) Evaluate(a Assignment) (Rational, error) { return f.poly.Evaluate(a) }

// Refinement returns the factor powers f has been split into, or nil if f is
// still in use as a factor of its own.
func (f *Factor) Refinement() []FactorPower {
	f.cache.mu.RLock()
	defer f.cache.mu.RUnlock()
	if f.refined == nil {
		return nil
	}
	out := make([]FactorPower, len(f.refined))
	copy(out, f.refined)
	return out
}

// isVariable reports whether the factor is a bare variable.
func (f *Factor) isVariable() bool {
	return f.poly.NumTerms() == 1 && f.poly.terms[0].coeff.IsOne() && f.poly.terms[0].mono.tdeg == 1
}

// ============================================================
// FactorizationCache
// ============================================================

type CacheOption func(*cacheOptions)

type cacheOptions struct {
	logger          *zap.Logger
	rootSearchBound int64
	reuseFactors    bool
}

func defaultCacheOptions() cacheOptions {
	return cacheOptions{
		logger:          zap.NewNop(),
		rootSearchBound: DefaultRootSearchBound,
		reuseFactors:    true,
	}
}

func WithLogger(l *zap.Logger) CacheOption {
	return func(o *cacheOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRootSearchBound sets the largest |coefficient| whose divisors are
// tried as rational roots. Zero or less disables the root search.
func WithRootSearchBound(n int64) CacheOption {
	return func(o *cacheOptions) { o.rootSearchBound = n }
}

// WithFactorReuse controls whether previously interned factors are divided
// out of new polynomials before anything else is tried, and whether existing
// handles are refined along newly interned ones.
func WithFactorReuse(on bool) CacheOption {
	return func(o *cacheOptions) { o.reuseFactors = on }
}

// CacheStats is a point-in-time snapshot of cache counters.
type CacheStats struct {
	Factors        int
	Hits           int64
	Misses         int64
	Factorizations int64
}

// FactorizationCache interns factors and memoizes factorizations. It is safe
// for concurrent use; threads factorizing equal polynomials converge on the
// same handles.
type FactorizationCache struct {
	id     uuid.UUID
	opts   cacheOptions
	logger *zap.Logger

	mu      sync.RWMutex
	buckets map[uint64][]*Factor
	factors []*Factor
	memo    map[uint64][]memoEntry
	flight  singleflight.Group

	hits           atomic.Int64
	misses         atomic.Int64
	factorizations atomic.Int64
}

type factorization struct {
	coeff   Rational
	factors []FactorPower
}

type memoEntry struct {
	poly   Polynomial
	result factorization
}

func NewFactorizationCache(opts ...CacheOption) *FactorizationCache {
	options := defaultCacheOptions()
	for _, opt := range opts {
		opt(&options)
	}
	c := &FactorizationCache{
		id:      uuid.New(),
		opts:    options,
		buckets: make(map[uint64][]*Factor),
		memo:    make(map[uint64][]memoEntry),
	}
	c.logger = options.logger.With(zap.String("cache_id", c.id.String()))
	return c
}

func (c *FactorizationCache) ID() uuid.UUID { return c.id }

func (c *FactorizationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.factors)
}

// Factors returns the interned factors in insertion order.
func (c *FactorizationCache) Factors() []*Factor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Factor, len(c.factors))
	copy(out, c.factors)
	return out
}

func (c *FactorizationCache) Stats() CacheStats {
	return CacheStats{
		Factors:        c.Len(),
		Hits:           c.hits.Load(),
		Misses:         c.misses.Load(),
		Factorizations: c.factorizations.Load(),
	}
}

// Intern splits p into its signed content and the handle of its primitive
// part. Constants have no handle. A new handle refines the existing ones it
// divides or shares a univariate gcd with.
func (c *FactorizationCache) Intern(p Polynomial) (Rational, *Factor) {
	if p.IsConstant() {
		return p.ConstantPart(), nil
	}
	k, q := p.PrimitivePart()
	f, created := c.intern(q)
	if created && c.opts.reuseFactors && q.NumTerms() > 1 {
		c.refine([]*Factor{f})
	}
	return k, f
}

// intern returns the handle of the primitive q and whether it was created.
func (c *FactorizationCache) intern(q Polynomial) (*Factor, bool) {
	h := xxhash.Sum64String(q.identityKey())

	c.mu.RLock()
	f := c.find(h, q)
	c.mu.RUnlock()
	if f != nil {
		c.hit()
		return f, false
	}

	c.mu.Lock()
	if f = c.find(h, q); f != nil {
		c.mu.Unlock()
		c.hit()
		return f, false
	}
	f = &Factor{poly: q, seq: uint64(len(c.factors)) + 1, cache: c}
	c.buckets[h] = append(c.buckets[h], f)
	c.factors = append(c.factors, f)
	c.mu.Unlock()

	c.misses.Add(1)
	factorLookupsTotal.WithLabelValues("miss").Inc()
	c.logger.Debug("interned factor", zap.Uint64("seq", f.seq), zap.Stringer("factor", f))
	return f, true
}

func (c *FactorizationCache) hit() {
	c.hits.Add(1)
	factorLookupsTotal.WithLabelValues("hit").Inc()
}

// find must be called with c.mu held.
func (c *FactorizationCache) find(h uint64, q Polynomial) *Factor {
	for _, f := range c.buckets[h] {
		if f.poly.Equal(q) {
			return f
		}
	}
	return nil
}

// Factorize returns the canonical factorization of p with respect to this
// cache. Repeated calls with an equal polynomial return equal results.
func (c *FactorizationCache) Factorize(p Polynomial) FactorizedPolynomial {
	if p.IsConstant() {
		return NewFactorizedConstant(p.ConstantPart())
	}
	r := c.factorization(p)
	return FactorizedPolynomial{coeff: r.coeff, factors: c.resolve(r.factors), cache: c}
}

func (c *FactorizationCache) factorization(p Polynomial) factorization {
	key := p.identityKey()
	h := xxhash.Sum64String(key)
	if r, ok := c.memoized(h, p); ok {
		return r
	}
	v, _, _ := c.flight.Do(key, func() (interface{}, error) {
		if r, ok := c.memoized(h, p); ok {
			return r, nil
		}
		start := time.Now()
		r := c.factorize(p)
		factorizationDuration.Observe(time.Since(start).Seconds())
		factorizationsTotal.Inc()
		c.factorizations.Add(1)

		c.mu.Lock()
		c.memo[h] = append(c.memo[h], memoEntry{poly: p, result: r})
		c.mu.Unlock()
		return r, nil
	})
	return v.(factorization)
}

func (c *FactorizationCache) memoized(h uint64, p Polynomial) (factorization, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.memo[h] {
		if e.poly.Equal(p) {
			return e.result, true
		}
	}
	return factorization{}, false
}

// ============================================================
// Refinement
// ============================================================

// unrefined returns the multi-term handles that have not been split, in
// insertion order.
func (c *FactorizationCache) unrefined() []*Factor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Factor, 0, len(c.factors))
	for _, f := range c.factors {
		if f.refined == nil && f.poly.NumTerms() > 1 {
			out = append(out, f)
		}
	}
	return out
}

func (c *FactorizationCache) isRefined(f *Factor) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return f.refined != nil
}

// refine works through the queue of new handles. Every older handle that a
// new one divides is split along it, a new handle divisible by an older one
// is split the same way, and two univariate handles in one variable with a
// nontrivial gcd are both split along the interned gcd. Handles created on
// the way are queued in turn.
func (c *FactorizationCache) refine(queue []*Factor) {
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, f := range c.unrefined() {
			if f == n {
				continue
			}
			if c.isRefined(n) {
				break
			}
			if c.split(f, n, &queue) || c.split(n, f, &queue) {
				continue
			}
			g, ok := f.poly.GCD(n.poly)
			if !ok || g.IsConstant() {
				continue
			}
			d, created := c.intern(g)
			if created {
				queue = append(queue, d)
			}
			c.split(f, d, &queue)
			c.split(n, d, &queue)
		}
	}
}

// split refines f into d^k * rest when d divides f k times. The rest is
// primitive since f and d are, and is interned and queued if new.
func (c *FactorizationCache) split(f, d *Factor, queue *[]*Factor) bool {
	if f == d || d.poly.NumTerms() < 2 || d.poly.TotalDegree() >= f.poly.TotalDegree() || c.isRefined(f) {
		return false
	}
	rest := f.poly
	var k uint
	for !rest.IsConstant() {
		q, ok := rest.DivideExact(d.poly)
		if !ok {
			break
		}
		rest = q
		k++
	}
	if k == 0 {
		return false
	}
	parts := []FactorPower{{Factor: d, Exp: k}}
	if !rest.IsConstant() {
		r, created := c.intern(rest)
		if created {
			*queue = append(*queue, r)
		}
		parts = append(parts, FactorPower{Factor: r, Exp: 1})
	}

	c.mu.Lock()
	if f.refined != nil {
		c.mu.Unlock()
		return false
	}
	f.refined = parts
	c.mu.Unlock()

	factorRefinementsTotal.Inc()
	c.logger.Debug("refined factor",
		zap.Uint64("seq", f.seq),
		zap.Stringer("factor", f),
		zap.Stringer("divisor", d),
		zap.Uint("exp", k))
	return true
}

// resolve replaces refined handles in fs by their parts. fs is returned
// unchanged when none of its handles has been refined.
func (c *FactorizationCache) resolve(fs []FactorPower) []FactorPower {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stale := false
	for _, fp := range fs {
		if fp.Factor.refined != nil {
			stale = true
			break
		}
	}
	if !stale {
		return fs
	}
	acc := make(map[*Factor]uint, len(fs))
	for _, fp := range fs {
		addResolved(acc, fp.Factor, fp.Exp)
	}
	return sortFactors(acc)
}

// addResolved must be called with c.mu held. Parts have strictly smaller
// degree than the handle they refine, so the recursion terminates.
func addResolved(acc map[*Factor]uint, f *Factor, e uint) {
	if f.refined == nil {
		acc[f] += e
		return
	}
	for _, part := range f.refined {
		addResolved(acc, part.Factor, part.Exp*e)
	}
}

// sortFactors orders factors by total degree, then by number of terms, then
// by descending polynomial order, so x comes before y and both before x+1.
func sortFactors(acc map[*Factor]uint) []FactorPower {
	out := make([]FactorPower, 0, len(acc))
	for f, e := range acc {
		if e > 0 {
			out = append(out, FactorPower{Factor: f, Exp: e})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Factor, out[j].Factor
		if da, db := a.poly.TotalDegree(), b.poly.TotalDegree(); da != db {
			return da < db
		}
		if na, nb := a.poly.NumTerms(), b.poly.NumTerms(); na != nb {
			return na < nb
		}
		if c := a.poly.Cmp(b.poly); c != 0 {
			return c > 0
		}
		return a.seq < b.seq
	})
	return out
}
