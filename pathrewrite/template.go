package pathrewrite

import (
	"fmt"
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`\{(\d+)\}`)

// applyTemplate substitutes {0}, {1}, {2}, ... in template with the
// corresponding entries of match ({0} is the whole match, {1.. } are
// the pattern's capture groups in left-to-right order).
func applyTemplate(template string, match []string) (string, error) {
	var substErr error
	out := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		idx, err := strconv.Atoi(placeholderPattern.FindStringSubmatch(token)[1])
		if err != nil {
			substErr = fmt.Errorf("pathrewrite: bad placeholder %q", token)
			return token
		}
		if idx >= len(match) {
			substErr = fmt.Errorf("pathrewrite: template %q references {%d} but the pattern has only %d capture(s)", template, idx, len(match)-1)
			return token
		}
		return match[idx]
	})
	if substErr != nil {
		return "", substErr
	}
	return out, nil
}
