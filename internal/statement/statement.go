// Package statement builds the staging select fragment from a list of column names.
package statement

import (
	"strings"

	"github.com/stagemodel/stage-model-builder/internal/naming"
)

// BuildAliases returns one select expression per column, in input order.
// Canonical names are emitted as-is; anything else becomes "<name> as <snake_name>".
// Duplicates are kept and no identifier validation is done.
func BuildAliases(names []string) []string {
	exprs := make([]string, len(names))
	for i, name := range names {
		exprs[i] = Alias(name)
	}
	return exprs
}

// Alias returns the select expression for a single column.
func Alias(name string) string {
	snake := naming.ToSnake(name)
	if snake == name {
		return name
	}
	return name + " as " + snake
}

// BuildTemplate joins the expressions into "select <exprs> from".
// The source clause is left for the caller; empty input yields "select  from".
func BuildTemplate(exprs []string) string {
	return "select " + strings.Join(exprs, ", ") + " from"
}

// CountAliased returns how many of the names need an alias.
func CountAliased(names []string) int {
	n := 0
	for _, name := range names {
		if !naming.IsCanonical(name) {
			n++
		}
	}
	return n
}
