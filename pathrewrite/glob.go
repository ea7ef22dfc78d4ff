package pathrewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// compileGlob translates one pattern in the map_rules glob dialect
// into an anchored regular expression. Every wildcard construct becomes
// a capturing group, numbered left to right, so templates can refer
// back to the text a wildcard matched with {1}, {2}, ....
//
// Supported syntax:
//
//	*        any run of characters except '/'
//	**       any run of characters, including '/'
//	?        exactly one character except '/'
//	{a,b,c}  alternation between literal branches
func compileGlob(pattern string) (*regexp.Regexp, int, error) {
	var b strings.Builder
	b.WriteString("^")
	captures := 0

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString("(.*)")
				i++
			} else {
				b.WriteString("([^/]*)")
			}
			captures++
		case '?':
			b.WriteString("([^/])")
			captures++
		case '{':
			end := strings.IndexRune(string(runes[i:]), '}')
			if end < 0 {
				return nil, 0, fmt.Errorf("pathrewrite: unterminated %q in pattern %q", "{", pattern)
			}
			branches := strings.Split(string(runes[i+1:i+end]), ",")
			for j, br := range branches {
				branches[j] = regexp.QuoteMeta(br)
			}
			b.WriteString("(" + strings.Join(branches, "|") + ")")
			captures++
			i += end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, 0, fmt.Errorf("pathrewrite: compiling pattern %q: %w", pattern, err)
	}
	return re, captures, nil
}
