// Package expression implements the plugin parameter expression language
// (spec §4.4-4.5): a `var x = expr; ...; finalExpr` statement list is
// closed over its `var` chain into one inlined expression, then compiled
// and evaluated against a bound variable environment.
package expression

import (
	"regexp"
	"strings"
	"sync"
)

var identifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Transformer inlines `var` chains into a single closed expression string
// and memoizes the result by raw input string, matching the original's
// unbounded process-lifetime cache (spec §4.4, DESIGN NOTES §9).
type Transformer struct {
	mu    sync.Mutex
	cache map[string]string
}

// NewTransformer constructs an empty Transformer.
func NewTransformer() *Transformer {
	return &Transformer{cache: make(map[string]string)}
}

// Transform closes `input` over its `var` chain and returns the final
// expression string with array-subscript syntax (`name[k]`) rewritten to
// `name_k` so vector components address as scalar slots (spec §4.4 step
// after closure resolution).
func (tr *Transformer) Transform(input string) string {
	tr.mu.Lock()
	if cached, ok := tr.cache[input]; ok {
		tr.mu.Unlock()
		return cached
	}
	tr.mu.Unlock()

	result := transform(input)

	tr.mu.Lock()
	tr.cache[input] = result
	tr.mu.Unlock()
	return result
}

func transform(input string) string {
	statements := strings.Split(input, ";")
	defMap := make(map[string]string)
	var finalExpr string

	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if strings.HasPrefix(stmt, "var ") {
			remainder := stmt[4:]
			eq := strings.IndexByte(remainder, '=')
			if eq < 0 {
				continue
			}
			name := strings.TrimSpace(remainder[:eq])
			expr := strings.TrimSpace(remainder[eq+1:])
			defMap[name] = expr
		} else {
			finalExpr = stmt
		}
	}

	validVars := make(map[string]struct{}, len(defMap))
	for name := range defMap {
		validVars[name] = struct{}{}
	}

	closure := computeClosure(finalExpr, validVars, defMap)

	memo := make(map[string]string)
	for v := range closure {
		resolveVar(v, defMap, closure, memo)
	}

	inlined := inlineFinal(finalExpr, closure, memo)
	result := removeOuterParens(inlined)
	return rewriteSubscripts(result)
}

// extractIdentifiers returns every identifier token in expr that is a
// member of candidates, in order of appearance (duplicates included, like
// the original's regex iterator).
func extractIdentifiers(expr string, candidates map[string]struct{}) []string {
	matches := identifierRe.FindAllString(expr, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := candidates[m]; ok {
			ids = append(ids, m)
		}
	}
	return ids
}

func computeClosure(expr string, validVars map[string]struct{}, defMap map[string]string) map[string]struct{} {
	closure := make(map[string]struct{})
	visited := make(map[string]struct{})
	computeClosureHelper(expr, validVars, defMap, closure, visited)
	return closure
}

func computeClosureHelper(expr string, validVars map[string]struct{}, defMap map[string]string, closure, visited map[string]struct{}) {
	for _, id := range extractIdentifiers(expr, validVars) {
		if _, ok := closure[id]; ok {
			continue
		}
		closure[id] = struct{}{}
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		if def, ok := defMap[id]; ok {
			computeClosureHelper(def, validVars, defMap, closure, visited)
		}
	}
}

// resolveVar recursively inlines var into its fully-substituted
// definition, memoizing by name. The returned string carries no
// wrapping parens of its own — a variable's value is only ever
// parenthesized once, at the point it is substituted into its final
// consumer expression by inlineFinal, not at each intermediate
// var-into-var substitution here. A variable with no definition in
// defMap (or one still being resolved — a cycle) resolves to its own
// name unchanged; well-formed input never has cycles (spec §4.4 step
// 3).
func resolveVar(v string, defMap map[string]string, closure map[string]struct{}, memo map[string]string) string {
	if r, ok := memo[v]; ok {
		return r
	}
	raw, ok := defMap[v]
	if !ok {
		return v
	}
	// Guard against recursive definitions: mark a placeholder before
	// descending so a self-referential chain degrades to the bare name
	// rather than recursing forever.
	memo[v] = v
	for _, sub := range extractIdentifiers(raw, closure) {
		resolved := resolveVar(sub, defMap, closure, memo)
		raw = replaceIdentifier(raw, sub, resolved)
	}
	memo[v] = raw
	return raw
}

func inlineFinal(expr string, closure map[string]struct{}, memo map[string]string) string {
	result := expr
	for v := range closure {
		result = replaceIdentifier(result, v, "("+memo[v]+")")
	}
	return result
}

// replaceIdentifier replaces whole-word occurrences of name in s with
// replacement, equivalent to the original's \b<name>\b regex substitution.
func replaceIdentifier(s, name, replacement string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	return re.ReplaceAllString(s, replacement)
}

// removeOuterParens strips one redundant outer parenthesis pair if it
// wraps the entire (trimmed) string and is balanced throughout.
func removeOuterParens(expr string) string {
	s := strings.TrimSpace(expr)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && i < len(s)-1 {
			return s
		}
	}
	if depth == 0 {
		return s[1 : len(s)-1]
	}
	return s
}

var subscriptRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\[(\d+)\]`)

// rewriteSubscripts rewrites `name[k]` to `name_k` so the evaluator can
// address vector components as plain scalar slots (spec §4.4 final step).
func rewriteSubscripts(expr string) string {
	return subscriptRe.ReplaceAllString(expr, "${1}_${2}")
}
