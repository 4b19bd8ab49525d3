package carl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================
// Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Session resolves variable names through one pool and factorizes through
// one cache, so handles and ordinals stay consistent across tool calls.
type Session struct {
	pool  *VariablePool
	cache *FactorizationCache
	parse []ParseOption
}

// NewSession returns a session over a fresh pool. A nil cache gets a new
// default one. opts apply to every expression the session parses.
func NewSession(cache *FactorizationCache, opts ...ParseOption) *Session {
	if cache == nil {
		cache = NewFactorizationCache()
	}
	return &Session{pool: NewVariablePool(), cache: cache, parse: opts}
}

func (s *Session) Pool() *VariablePool            { return s.pool }
func (s *Session) Cache() *FactorizationCache     { return s.cache }
func (s *Session) Parse(src string) (Expr, error) { return ParseExpr(src, s.pool, s.parse...) }

func (s *Session) ParsePolynomial(src string) (Polynomial, error) {
	return ParsePolynomial(src, s.pool, s.parse...)
}

// ExprJSON describes e as a JSON-friendly map.
func ExprJSON(e Expr) map[string]interface{} {
	out := map[string]interface{}{"kind": e.Kind().String(), "string": e.String()}
	switch e.Kind() {
	case KindRational:
		out["value"] = asRational(e).plain()
	case KindRationalFunction:
		f := asRationalFunction(e)
		out["numerator"] = termsJSON(f.num)
		out["denominator"] = termsJSON(f.Denominator())
	default:
		out["terms"] = termsJSON(asPolynomial(e))
	}
	return out
}

func termsJSON(p Polynomial) []map[string]interface{} {
	out := make([]map[string]interface{}, len(p.terms))
	for i, t := range p.terms {
		exps := make([]map[string]interface{}, len(t.mono.exps))
		for j, ve := range t.mono.exps {
			exps[j] = map[string]interface{}{"var": ve.Var.name, "exp": ve.Exp}
		}
		out[i] = map[string]interface{}{"coeff": t.coeff.plain(), "monomial": exps}
	}
	return out
}

func factorizedJSON(fp FactorizedPolynomial) map[string]interface{} {
	factors := make([]map[string]interface{}, len(fp.factors))
	for i, f := range fp.factors {
		factors[i] = map[string]interface{}{"factor": f.Factor.String(), "exp": f.Exp, "handle": f.Factor.seq}
	}
	return map[string]interface{}{"coefficient": fp.coeff.plain(), "factors": factors}
}

func (s *Session) HandleToolCall(req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		str, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return str, nil
	}
	getExpr := func(key string) (Expr, error) {
		src, err := getString(key)
		if err != nil {
			return nil, err
		}
		return s.Parse(src)
	}
	getPolynomial := func(key string) (Polynomial, error) {
		src, err := getString(key)
		if err != nil {
			return Polynomial{}, err
		}
		return s.ParsePolynomial(src)
	}
	getVariable := func(key string) (Variable, error) {
		name, err := getString(key)
		if err != nil {
			return Variable{}, err
		}
		v, ok := s.pool.Lookup(name)
		if !ok {
			return Variable{}, fmt.Errorf("%w: %s", ErrUnboundVariable, name)
		}
		return v, nil
	}
	getValue := func(raw interface{}) (Rational, error) {
		switch v := raw.(type) {
		case float64:
			return RationalFromFloat(v)
		case string:
			e, err := s.Parse(v)
			if err != nil {
				return Rational{}, err
			}
			if e.Kind() != KindRational {
				return Rational{}, fmt.Errorf("%w: %q is not a number", ErrMalformedLiteral, v)
			}
			return asRational(e), nil
		}
		return Rational{}, fmt.Errorf("%w: value %v", ErrMalformedLiteral, raw)
	}
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: ExprJSON(e), String: e.String()}
	}
	fail := func(err error) ToolResponse {
		return ToolResponse{Error: err.Error()}
	}

	switch req.Tool {
	case "expand":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(e)

	case "evaluate":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		raw, ok := req.Params["values"].(map[string]interface{})
		if !ok {
			return ToolResponse{Error: "param values must be an object"}
		}
		asg := Assignment{}
		for name, rv := range raw {
			v, ok := s.pool.Lookup(name)
			if !ok {
				continue
			}
			r, err := getValue(rv)
			if err != nil {
				return fail(err)
			}
			asg[v] = r
		}
		r, err := e.Evaluate(asg)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: r.plain(), String: r.String()}

	case "factor":
		p, err := getPolynomial("expr")
		if err != nil {
			return fail(err)
		}
		fp := s.cache.Factorize(p)
		return ToolResponse{Result: factorizedJSON(fp), String: fp.String()}

	case "gather_variables":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		vars := e.GatherVariables()
		names := make([]string, len(vars))
		for i, v := range vars {
			names[i] = v.name
		}
		return ToolResponse{Result: names, String: strings.Join(names, ", ")}

	case "degree":
		p, err := getPolynomial("expr")
		if err != nil {
			return fail(err)
		}
		if _, ok := req.Params["var"]; !ok {
			return ToolResponse{Result: p.TotalDegree(), String: fmt.Sprint(p.TotalDegree())}
		}
		v, err := getVariable("var")
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: p.Degree(v), String: fmt.Sprint(p.Degree(v))}

	case "derivative":
		p, err := getPolynomial("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getVariable("var")
		if err != nil {
			return fail(err)
		}
		return respond(p.Derivative(v))

	case "substitute":
		p, err := getPolynomial("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getVariable("var")
		if err != nil {
			return fail(err)
		}
		q, err := getPolynomial("value")
		if err != nil {
			return fail(err)
		}
		return respond(p.Substitute(v, q))

	case "cancel":
		num, err := getPolynomial("num")
		if err != nil {
			return fail(err)
		}
		den, err := getPolynomial("denom")
		if err != nil {
			return fail(err)
		}
		fn, err := NewFactorizedPolynomial(num, s.cache)
		if err != nil {
			return fail(err)
		}
		fd, err := NewFactorizedPolynomial(den, s.cache)
		if err != nil {
			return fail(err)
		}
		frf, err := NewFactorizedRationalFunction(fn, fd)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: ExprJSON(frf.RationalFunction()), String: frf.String()}

	case "tool_spec":
		return ToolResponse{Result: json.RawMessage(ToolSpec()), String: "tool spec"}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpec returns the JSON schema of every tool HandleToolCall accepts.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("expand", "Parse and canonicalize an expression", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("evaluate", "Evaluate exactly. values maps variable names to numbers or rational strings", []string{"expr", "values"}, map[string]string{"expr": "string", "values": "object"}),
		ts("factor", "Factorize a polynomial through the session cache", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("gather_variables", "Variables of an expression by ordinal", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("degree", "Total degree, or degree in var when given", []string{"expr"}, map[string]string{"expr": "string", "var": "string"}),
		ts("derivative", "Partial derivative with respect to var", []string{"expr", "var"}, map[string]string{"expr": "string", "var": "string"}),
		ts("substitute", "Replace var by the polynomial value", []string{"expr", "var", "value"}, map[string]string{"expr": "string", "var": "string", "value": "string"}),
		ts("cancel", "Cancel common factors of num/denom", []string{"num", "denom"}, map[string]string{"num": "string", "denom": "string"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
