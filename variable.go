package carl

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// ============================================================
// Variable — typed symbol with a pool-unique ordinal
// ============================================================

type VariableType uint8

const (
	VariableBool VariableType = iota
	VariableReal
	VariableInt
)

func (t VariableType) String() string {
	switch t {
	case VariableBool:
		return "Bool"
	case VariableInt:
		return "Int"
	default:
		return "Real"
	}
}

func (t VariableType) letter() string {
	switch t {
	case VariableBool:
		return "b"
	case VariableInt:
		return "i"
	default:
		return "r"
	}
}

func ParseVariableType(s string) (VariableType, error) {
	switch s {
	case "Bool", "bool":
		return VariableBool, nil
	case "Real", "real", "":
		return VariableReal, nil
	case "Int", "int":
		return VariableInt, nil
	}
	return VariableReal, fmt.Errorf("%w: unknown variable type %q", ErrMalformedLiteral, s)
}

// Variable is identified by its ordinal. The zero value is not a valid
// variable; use a VariablePool to create them.
type Variable struct {
	id   uint64
	rank uint32
	typ  VariableType
	name string
}

func (v Variable) ID() uint64         { return v.id }
func (v Variable) Rank() uint32       { return v.rank }
func (v Variable) Type() VariableType { return v.typ }
func (v Variable) Name() string       { return v.name }
func (v Variable) String() string     { return v.name }
func (v Variable) IsValid() bool      { return v.id != 0 }
func (v Variable) Kind() Kind         { return KindVariable }

// WithRank returns a copy of v carrying rank r. The ordinal is unchanged.
//
// Rank is a tie-break for Cmp and nothing else. Ordinals are unique within a
// pool, so it only orders copies of one variable that carry different ranks.
// Equal, monomials, polynomials and assignments all go by ordinal, so such
// copies are the same variable everywhere except in Cmp.
func (v Variable) WithRank(r uint32) Variable { v.rank = r; return v }

func (v Variable) Equal(o Variable) bool    { return v.id == o.id }
func (v Variable) NotEqual(o Variable) bool { return v.id != o.id }
func (v Variable) Less(o Variable) bool     { return v.Cmp(o) < 0 }
func (v Variable) LessEq(o Variable) bool   { return v.Cmp(o) <= 0 }
func (v Variable) Greater(o Variable) bool  { return v.Cmp(o) > 0 }
func (v Variable) GreaterEq(o Variable) bool {
	return v.Cmp(o) >= 0
}

// Cmp orders by ordinal; rank breaks ties.
func (v Variable) Cmp(o Variable) int {
	switch {
	case v.id < o.id:
		return -1
	case v.id > o.id:
		return 1
	case v.rank < o.rank:
		return -1
	case v.rank > o.rank:
		return 1
	}
	return 0
}

func (v Variable) Evaluate(a Assignment) (Rational, error) {
	if r, ok := a.lookup(v); ok {
		return r, nil
	}
	return Rational{}, fmt.Errorf("%w: %s", ErrUnboundVariable, v.name)
}

func (v Variable) GatherVariables() []Variable { return []Variable{v} }

// Assignment maps variables to values. Entries are matched by ordinal.
type Assignment map[Variable]Rational

func (a Assignment) lookup(v Variable) (Rational, bool) {
	if r, ok := a[v]; ok {
		return r, true
	}
	for k, r := range a {
		if k.id == v.id {
			return r, true
		}
	}
	return Rational{}, false
}

func (a Assignment) index() map[uint64]Rational {
	idx := make(map[uint64]Rational, len(a))
	for k, r := range a {
		idx[k.id] = r
	}
	return idx
}

func sortVariables(vs []Variable) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].Cmp(vs[j]) < 0 })
}

// ============================================================
// VariablePool — ordinal source and name registry
// ============================================================

// VariablePool hands out variables with strictly increasing ordinals. It is
// safe for concurrent use.
type VariablePool struct {
	next   atomic.Uint64
	mu     sync.RWMutex
	byName map[string]Variable
}

func NewVariablePool() *VariablePool {
	return &VariablePool{byName: make(map[string]Variable)}
}

// Fresh creates an anonymous variable named _<type>_<ordinal>.
func (p *VariablePool) Fresh(t VariableType) Variable {
	id := p.next.Add(1)
	v := Variable{id: id, typ: t, name: fmt.Sprintf("_%s_%d", t.letter(), id)}
	p.mu.Lock()
	p.byName[v.name] = v
	p.mu.Unlock()
	return v
}

// New always creates a new variable. An empty name yields an anonymous one.
// If the name was already taken, Lookup returns the newest variable.
func (p *VariablePool) New(name string, t VariableType) Variable {
	if name == "" {
		return p.Fresh(t)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	v := Variable{id: p.next.Add(1), typ: t, name: name}
	p.byName[name] = v
	return v
}

// Get returns the variable registered under name, creating it if needed.
func (p *VariablePool) Get(name string, t VariableType) Variable {
	if v, ok := p.Lookup(name); ok {
		return v
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.byName[name]; ok {
		return v
	}
	v := Variable{id: p.next.Add(1), typ: t, name: name}
	p.byName[name] = v
	return v
}

func (p *VariablePool) Lookup(name string) (Variable, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.byName[name]
	return v, ok
}

// Len reports how many variables the pool has issued.
func (p *VariablePool) Len() int { return int(p.next.Load()) }
