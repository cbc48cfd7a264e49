package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"cosmos-admin/internal/shared/errors"

	"github.com/google/cel-go/cel"
)

// Predicate is a compiled CEL expression evaluated against a listed resource.
// Inside the expression the resource is bound as `resource` and its id as `id`,
// e.g. `id.startsWith("Con")` or `resource.indexingPolicy.indexingMode == "lazy"`.
type Predicate struct {
	expression string
	program    cel.Program
}

func newEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("resource", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("id", cel.StringType),
	)
}

// Compile parses and type-checks expression. An empty expression yields a nil
// predicate that matches everything.
func Compile(expression string) (*Predicate, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}

	env, err := newEnvironment()
	if err != nil {
		return nil, errors.NewInfrastructureError("failed to create CEL environment").WithCause(err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, errors.NewValidationError("invalid filter expression").
			WithDetail("expression", expression).
			WithCause(issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, errors.NewValidationError("filter expression must evaluate to a boolean").
			WithDetail("expression", expression)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, errors.NewValidationError("failed to create CEL program").WithCause(err)
	}

	return &Predicate{expression: expression, program: program}, nil
}

// String returns the source expression.
func (p *Predicate) String() string {
	if p == nil {
		return ""
	}
	return p.expression
}

// Match evaluates the predicate against v, which is converted to its JSON
// object form first. A nil predicate matches.
func (p *Predicate) Match(v interface{}) (bool, error) {
	if p == nil {
		return true, nil
	}

	resource, err := ToMap(v)
	if err != nil {
		return false, err
	}
	id, _ := resource["id"].(string)

	out, _, err := p.program.Eval(map[string]interface{}{
		"resource": resource,
		"id":       id,
	})
	if err != nil {
		return false, errors.NewValidationError(fmt.Sprintf("filter evaluation error: %v", err)).
			WithDetail("expression", p.expression)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, errors.NewValidationError("filter expression did not return boolean value").
			WithDetail("expression", p.expression)
	}
	return result, nil
}

// ToMap converts a resource into the map form seen by expressions.
func ToMap(v interface{}) (map[string]interface{}, error) {
	if m, ok := v.(map[string]interface{}); ok {
		return m, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.NewValidationError("resource is not representable as JSON").WithCause(err)
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.NewValidationError("resource is not a JSON object").WithCause(err)
	}
	return m, nil
}

// Apply keeps the items of list matched by p.
func Apply[T any](p *Predicate, list []T) ([]T, error) {
	if p == nil {
		return list, nil
	}
	kept := make([]T, 0, len(list))
	for _, item := range list {
		ok, err := p.Match(item)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, item)
		}
	}
	return kept, nil
}
