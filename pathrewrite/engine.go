// Package pathrewrite implements the ordered include/exclude rule
// engine used to remap host source paths onto image paths before an
// XDVDFS image is built. Every rule is tried against a host path, in
// order: the first Include whose glob matches supplies the rewrite,
// but any Exclude that matches -- even one appearing later in the list
// -- clears that candidate, and a later Include can still re-claim the
// path. A host path left unclaimed after all rules run is dropped.
package pathrewrite

import (
	"fmt"

	"github.com/charlesthegreat77/xdvdfs-go/xerr"
)

// Rule is one ordered map_rules entry: either an Include, which
// rewrites a matching host path through Template, or an Exclude, which
// drops any host path matching Pattern unless a later Include matches
// it again.
type Rule struct {
	Pattern  string
	Template string
	Exclude  bool
}

// compiledRule is a Rule with its glob pre-compiled to a regular
// expression.
type compiledRule struct {
	rule     Rule
	matcher  matcher
	captures int
}

type matcher interface {
	FindStringSubmatch(s string) []string
}

// Engine evaluates a compiled, ordered rule set against host paths.
type Engine struct {
	rules []compiledRule
}

// New compiles rules in the order given. Rule order is significant:
// Rewrite evaluates the rules in this order, as described on Rewrite.
func New(rules []Rule) (*Engine, error) {
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		re, captures, err := compileGlob(r.Pattern)
		if err != nil {
			return nil, err
		}
		compiled[i] = compiledRule{rule: r, matcher: re, captures: captures}
	}
	return &Engine{rules: compiled}, nil
}

// Rewrite maps a single slash-separated host path to its image path.
// Every rule is checked, in order: an Exclude match clears whatever
// candidate rewrite is in hand, even one set by an earlier Include,
// and an Include only claims the path if it isn't already claimed. ok
// is false when no candidate survives the full pass.
func (e *Engine) Rewrite(hostPath string) (imagePath string, ok bool, err error) {
	var candidate string
	var claimed bool
	for _, cr := range e.rules {
		m := cr.matcher.FindStringSubmatch(hostPath)
		if m == nil {
			continue
		}
		if cr.rule.Exclude {
			claimed = false
			candidate = ""
			continue
		}
		if claimed {
			continue
		}
		out, err := applyTemplate(cr.rule.Template, m)
		if err != nil {
			return "", false, fmt.Errorf("rewriting %q: %w", hostPath, err)
		}
		candidate = out
		claimed = true
	}
	if !claimed {
		return "", false, nil
	}
	return candidate, true, nil
}

// MappedFile is a host path together with the image path it was
// rewritten to.
type MappedFile struct {
	HostPath  string
	ImagePath string
}

// RewriteAll applies Rewrite to every host path, silently dropping
// paths that don't match any rule, and fails with a
// *xerr.CollidingMapping if two host paths rewrite to the same image
// path.
func (e *Engine) RewriteAll(hostPaths []string) ([]MappedFile, error) {
	seen := make(map[string]string, len(hostPaths))
	var out []MappedFile
	for _, hp := range hostPaths {
		imagePath, ok, err := e.Rewrite(hp)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if prior, exists := seen[imagePath]; exists && prior != hp {
			return nil, &xerr.CollidingMapping{ImagePath: imagePath}
		}
		seen[imagePath] = hp
		out = append(out, MappedFile{HostPath: hp, ImagePath: imagePath})
	}
	return out, nil
}
