// Package filter provides AIP-160 filter expression parsing and SQL translation
// for the armory list endpoints.
package filter

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "owner = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// Translator parses filter expressions for one entity and translates them to
// parameterized SQL against that entity's columns.
type Translator struct {
	declare func() (*filtering.Declarations, error)
	// columns maps filter field names to SQL column expressions.
	columns map[string]string
}

// Heroes returns the translator for hero list filters.
func Heroes() *Translator {
	return &Translator{
		declare: func() (*filtering.Declarations, error) {
			return filtering.NewDeclarations(
				filtering.DeclareStandardFunctions(),
				filtering.DeclareIdent("name", filtering.TypeString),
				filtering.DeclareIdent("owner", filtering.TypeString),
				filtering.DeclareIdent("equipped", filtering.TypeBool),
				filtering.DeclareIdent("created_at", filtering.TypeTimestamp),
			)
		},
		columns: map[string]string{
			"name":       "name",
			"owner":      "owner",
			"equipped":   "(weapon_id <> '')",
			"created_at": "created_at",
		},
	}
}

// Weapons returns the translator for weapon list filters.
func Weapons() *Translator {
	return &Translator{
		declare: func() (*filtering.Declarations, error) {
			return filtering.NewDeclarations(
				filtering.DeclareStandardFunctions(),
				filtering.DeclareIdent("name", filtering.TypeString),
				filtering.DeclareIdent("creator", filtering.TypeString),
				filtering.DeclareIdent("power", filtering.TypeInt),
				filtering.DeclareIdent("created_at", filtering.TypeTimestamp),
			)
		},
		columns: map[string]string{
			"name":       "name",
			"creator":    "creator",
			"power":      "power",
			"created_at": "created_at",
		},
	}
}

// LedgerEvents returns the translator for ledger event filters.
func LedgerEvents() *Translator {
	return &Translator{
		declare: func() (*filtering.Declarations, error) {
			return filtering.NewDeclarations(
				filtering.DeclareStandardFunctions(),
				filtering.DeclareIdent("type", filtering.TypeString),
				filtering.DeclareIdent("hero_id", filtering.TypeString),
				filtering.DeclareIdent("weapon_id", filtering.TypeString),
			)
		},
		columns: map[string]string{
			"type":      "event_type",
			"hero_id":   "hero_id",
			"weapon_id": "weapon_id",
		},
	}
}

// Parse parses an AIP-160 filter expression and returns a SQL condition.
// Returns an empty condition for an empty filter string.
func (t *Translator) Parse(filterStr string) (SQLCondition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return SQLCondition{}, nil
	}

	decls, err := t.declare()
	if err != nil {
		return SQLCondition{}, fmt.Errorf("create declarations: %w", err)
	}

	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return SQLCondition{}, fmt.Errorf("parse filter: %w", err)
	}

	return t.translateExpr(parsed.CheckedExpr.Expr)
}

func (t *Translator) translateExpr(e *expr.Expr) (SQLCondition, error) {
	if e == nil {
		return SQLCondition{}, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return t.translateCall(kind.CallExpr)
	default:
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func (t *Translator) translateCall(call *expr.Expr_Call) (SQLCondition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return t.translateLogical(call.Args, "AND")
	case "_||_", "OR":
		return t.translateLogical(call.Args, "OR")
	case "_==_", "=":
		return t.translateComparison(call.Args, "=")
	case "_!=_", "!=":
		return t.translateComparison(call.Args, "!=")
	case "_<_", "<":
		return t.translateComparison(call.Args, "<")
	case "_<=_", "<=":
		return t.translateComparison(call.Args, "<=")
	case "_>_", ">":
		return t.translateComparison(call.Args, ">")
	case "_>=_", ">=":
		return t.translateComparison(call.Args, ">=")
	default:
		return SQLCondition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func (t *Translator) translateLogical(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("%s requires 2 arguments", op)
	}

	left, err := t.translateExpr(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	right, err := t.translateExpr(args[1])
	if err != nil {
		return SQLCondition{}, err
	}

	return SQLCondition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func (t *Translator) translateComparison(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return SQLCondition{}, err
	}

	column, ok := t.columns[field]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", field)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return SQLCondition{}, err
	}

	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", column, op),
		Params: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_CallExpr:
		// Handle timestamp("...") in value position.
		if kind.CallExpr.Function == "timestamp" && len(kind.CallExpr.Args) == 1 {
			return extractTimestampValue(kind.CallExpr.Args[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.Function)
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_BoolValue:
		// SQLite stores booleans as integers.
		if kind.BoolValue {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

// extractTimestampValue normalizes timestamp literals to millisecond epoch
// values matching the persisted column encoding.
func extractTimestampValue(e *expr.Expr) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("nil timestamp argument")
	}

	constExpr, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return 0, fmt.Errorf("timestamp argument must be a constant string")
	}
	strVal, ok := constExpr.ConstExpr.ConstantKind.(*expr.Constant_StringValue)
	if !ok {
		return 0, fmt.Errorf("timestamp argument must be a string")
	}

	parsed, err := time.Parse(time.RFC3339, strVal.StringValue)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, strVal.StringValue)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp format: %s", strVal.StringValue)
		}
	}
	return parsed.UTC().UnixMilli(), nil
}
