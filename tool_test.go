package carl_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ths-rwth/carl"
)

func call(s *carl.Session, tool string, params map[string]interface{}) carl.ToolResponse {
	return s.HandleToolCall(carl.ToolRequest{Tool: tool, Params: params})
}

func TestHandleToolCall(t *testing.T) {
	s := carl.NewSession(nil)
	tests := []struct {
		name   string
		tool   string
		params map[string]interface{}
		want   string
	}{
		{"expand", "expand", map[string]interface{}{"expr": "(x+1)^2"}, "x^2+2*x+1"},
		{"evaluate numbers", "evaluate", map[string]interface{}{
			"expr":   "x^2+y",
			"values": map[string]interface{}{"x": 2.0, "y": "1/2"},
		}, "9/2"},
		{"factor", "factor", map[string]interface{}{"expr": "x^3-x"}, "x * (x+1) * (x+(-1))"},
		{"gather", "gather_variables", map[string]interface{}{"expr": "y*x+z"}, "x, y, z"},
		{"total degree", "degree", map[string]interface{}{"expr": "x^2*y+1"}, "3"},
		{"degree in var", "degree", map[string]interface{}{"expr": "x^2*y+1", "var": "y"}, "1"},
		{"derivative", "derivative", map[string]interface{}{"expr": "x^3+x*y", "var": "x"}, "3*x^2+y"},
		{"substitute", "substitute", map[string]interface{}{"expr": "x^2", "var": "x", "value": "y+1"}, "y^2+2*y+1"},
		{"cancel", "cancel", map[string]interface{}{"num": "x^2-1", "denom": "x^2+x"}, "(x+(-1))/(x)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(s, tt.tool, tt.params)
			require.Empty(t, resp.Error)
			assert.Equal(t, tt.want, resp.String)
		})
	}
}

func TestHandleToolCall_Errors(t *testing.T) {
	s := carl.NewSession(nil)
	tests := []struct {
		name   string
		tool   string
		params map[string]interface{}
		want   string
	}{
		{"unknown tool", "integrate", nil, "unknown tool: integrate"},
		{"missing param", "expand", map[string]interface{}{}, "missing param: expr"},
		{"wrong type", "expand", map[string]interface{}{"expr": 3.0}, "param expr must be a string"},
		{"unknown variable", "derivative", map[string]interface{}{"expr": "x", "var": "w"}, "unbound variable"},
		{"unbound", "evaluate", map[string]interface{}{"expr": "x+q", "values": map[string]interface{}{"x": 1.0}}, "unbound variable"},
		{"not a polynomial", "factor", map[string]interface{}{"expr": "1/x"}, "not a polynomial"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(s, tt.tool, tt.params)
			assert.Contains(t, resp.Error, tt.want)
		})
	}
}

func TestHandleToolCall_BoundsExponents(t *testing.T) {
	s := carl.NewSession(nil, carl.WithMaxExponent(4))

	resp := call(s, "expand", map[string]interface{}{"expr": "(x+1)^4"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "x^4+4*x^3+6*x^2+4*x+1", resp.String)

	resp = call(s, "factor", map[string]interface{}{"expr": "x^5-x"})
	assert.Contains(t, resp.Error, "exponent 5 exceeds 4")
}

func TestHandleToolCall_FactorReportsHandles(t *testing.T) {
	s := carl.NewSession(nil)
	first := call(s, "factor", map[string]interface{}{"expr": "x^2-1"})
	second := call(s, "factor", map[string]interface{}{"expr": "2*x+2"})
	require.Empty(t, first.Error)
	require.Empty(t, second.Error)

	handle := func(r carl.ToolResponse, factor string) interface{} {
		for _, f := range r.Result.(map[string]interface{})["factors"].([]map[string]interface{}) {
			if f["factor"] == factor {
				return f["handle"]
			}
		}
		return nil
	}
	require.NotNil(t, handle(first, "x+1"))
	assert.Equal(t, handle(first, "x+1"), handle(second, "x+1"))
	assert.Equal(t, "2", second.Result.(map[string]interface{})["coefficient"])
}

func TestExprJSON(t *testing.T) {
	s := carl.NewSession(nil)
	e, err := s.Parse("1/2*x^2")
	require.NoError(t, err)

	b, err := json.Marshal(carl.ExprJSON(e))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "term",
		"string": "1/2*x^2",
		"terms": [{"coeff": "1/2", "monomial": [{"var": "x", "exp": 2}]}]
	}`, string(b))
}

func TestToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(carl.ToolSpec()), &spec))

	var got []string
	for _, tool := range spec.Tools {
		got = append(got, tool.Name)
	}
	assert.Contains(t, got, "factor")
	assert.Contains(t, got, "cancel")

	resp := call(carl.NewSession(nil), "tool_spec", nil)
	assert.Empty(t, resp.Error)
}
