package carl

import "math/big"

// factorize computes a canonical factorization of the non-constant p:
//  1. signed rational content becomes the constant
//  2. the monomial gcd is split into single-variable factors
//  3. previously interned factors are divided out, in insertion order
//  4. univariate rests are split along their rational roots
//  5. whatever remains is interned as one factor
//
// Handles created on the way then refine the older ones.
func (c *FactorizationCache) factorize(p Polynomial) factorization {
	coeff, q := p.PrimitivePart()
	acc := map[*Factor]uint{}
	var fresh []*Factor
	add := func(q Polynomial, e uint) {
		f, created := c.intern(q)
		if created && q.NumTerms() > 1 {
			fresh = append(fresh, f)
		}
		acc[f] += e
	}

	if g := q.MonomialContent(); !g.IsConstant() {
		for _, ve := range g.exps {
			add(ve.Var.Polynomial(), ve.Exp)
		}
		q, _ = q.divideByTerm(g.Term())
	}

	if c.opts.reuseFactors {
		for _, f := range c.unrefined() {
			if q.IsConstant() {
				break
			}
			if f.poly.TotalDegree() > q.TotalDegree() {
				continue
			}
			for !q.IsConstant() {
				r, ok := q.DivideExact(f.poly)
				if !ok {
					break
				}
				acc[f]++
				k, rest := r.PrimitivePart()
				coeff = coeff.Mul(k)
				q = rest
			}
		}
	}

	if v, ok := q.IsUnivariate(); ok && q.TotalDegree() > 1 {
		q = c.splitRationalRoots(q, v, add)
	}

	if q.IsConstant() {
		coeff = coeff.Mul(q.ConstantPart())
	} else {
		k, rest := q.PrimitivePart()
		coeff = coeff.Mul(k)
		add(rest, 1)
	}
	if c.opts.reuseFactors && len(fresh) > 0 {
		c.refine(fresh)
	}
	return factorization{coeff: coeff, factors: sortFactors(acc)}
}

// splitRationalRoots divides the primitive univariate q by b*v - a for every
// root a/b found by the rational root theorem, passes each linear factor to
// add and returns the rest.
func (c *FactorizationCache) splitRationalRoots(q Polynomial, v Variable, add func(Polynomial, uint)) Polynomial {
	nums := divisors(q.ConstantPart().Numerator(), c.opts.rootSearchBound)
	dens := divisors(q.LeadingCoefficient().Numerator(), c.opts.rootSearchBound)
	if len(nums) == 0 || len(dens) == 0 {
		return q
	}
	for _, a := range nums {
		for _, b := range dens {
			if gcd64(a, b) != 1 {
				continue
			}
			for _, s := range [2]int64{a, -a} {
				root := MustFraction(s, b)
				for q.TotalDegree() > 0 {
					val, err := q.Evaluate(Assignment{v: root})
					if err != nil || !val.IsZero() {
						break
					}
					lin := NewPolynomial(NewTerm(NewRational(b), NewMonomial(v)), NewRational(-s).Term())
					r, ok := q.DivideExact(lin)
					if !ok {
						break
					}
					add(lin, 1)
					q = r
				}
				if q.TotalDegree() == 0 {
					return q
				}
			}
		}
	}
	return q
}

// divisors lists the positive divisors of |n| in ascending order, or nil if
// n is zero or exceeds bound.
func divisors(n *big.Int, bound int64) []int64 {
	n = new(big.Int).Abs(n)
	if n.Sign() == 0 || !n.IsInt64() || n.Int64() > bound {
		return nil
	}
	m := n.Int64()
	var small, large []int64
	for d := int64(1); d*d <= m; d++ {
		if m%d != 0 {
			continue
		}
		small = append(small, d)
		if d != m/d {
			large = append(large, m/d)
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

func gcd64(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}
