package webify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

// DefaultAliases lists the identifier substitutions §4.7 uses to shrink the
// generated decoder: each line declares a short JS identifier for a longer
// expression that recurs across the decoder fragments.
const DefaultAliases = `
Q = document
A = (e, c) => e.appendChild(c)
B = document.body
C = 'textContent'
D = 'dataset'
E = e => document.createElement(e)
F = String.fromCodePoint
G = 'width'
H = 'height'
I = setInterval
J = 'background'
K = 'color'
L = 'length'
M = (e, d) => e.setAttribute('style', d)
N = speechSynthesis
O = setTimeout
P = 'parentElement'
R = 'target'
S = 'style'
`

var (
	longStripRe = regexp.MustCompile(`[^,]+,[^=]+=>[^.]+\.|[^=]+=>|\([^,)]+\)|,.*`)
	quoteCharRe = regexp.MustCompile(`['"]`)
	wordRe      = regexp.MustCompile(`\w`)
)

// payloadLiteralPattern matches a backtick template literal (§6.3's "largest
// literal" payload chunk included), so aliasing never rewrites inside one.
const payloadLiteralPattern = "`(?:\\\\.|[^`\\\\])*`"

// splitKeepDelims mirrors Python's re.split with a single capturing group:
// the result alternates non-matching text and matched delimiter text,
// always starting and ending with (possibly empty) non-matching text.
func splitKeepDelims(s string, re *regexp.Regexp) []string {
	locs := re.FindAllStringIndex(s, -1)
	if locs == nil {
		return []string{s}
	}
	out := make([]string, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		out = append(out, s[last:loc[0]])
		out = append(out, s[loc[0]:loc[1]])
		last = loc[1]
	}
	out = append(out, s[last:])
	return out
}

// aliasPattern derives the (regex, replacement) pair a single alias line
// contributes, following webify.py's uglify() derivation from the alias's
// right-hand side: a comma anywhere in it (arrow-function bodies calling a
// method on their first argument) derives a receiver-capturing method-call
// pattern; a quoted string literal derives a bracket-indexed pattern; any
// other expression substitutes verbatim. Returns an empty pattern if long
// reduces to the empty string (stripped down to nothing), which the caller
// skips.
func aliasPattern(short, long string) (pattern, replacement string) {
	prefix := ""
	if strings.Contains(long, ",") {
		prefix = `([\w.]+?)\.`
	}
	long = longStripRe.ReplaceAllString(long, "")

	switch {
	case prefix != "":
		replacement = short + `($1`
		if !strings.Contains(long, "(") {
			long += "("
			replacement += ","
		}
		long = prefix + quoteCharRe.ReplaceAllString(regexp.QuoteMeta(long), `['"]`)
	case len(long) > 1 && long[0] == long[len(long)-1] && (long[0] == '\'' || long[0] == '"'):
		long = `\.` + long[1:len(long)-1]
		replacement = "[" + short + "]"
	default:
		replacement = short
	}
	if long == "" {
		return "", ""
	}
	if wordRe.MatchString(long[:1]) {
		long = `\b` + long
	}
	if wordRe.MatchString(long[len(long)-1:]) {
		long += `\b`
	}
	return long, replacement
}

// Uglify rewrites script, replacing each alias's long JS expression with its
// short identifier wherever it occurs at least minCnt times outside a
// template literal (§4.7). Aliases are applied in reverse declaration order
// so later lines take precedence, and a used alias's own declaration is
// prepended once so the short identifier is actually bound. When
// preventGrow is true, a substitution that makes the script longer is
// discarded.
func Uglify(script, aliases string, minCnt int, addUsedAliases, preventGrow bool, log zerolog.Logger) string {
	literalRe := regexp.MustCompile(payloadLiteralPattern)
	lines := strings.Split(strings.TrimSpace(aliases), "\n")
	seen := make(map[string]bool)

	for i := len(lines) - 1; i >= 0; i-- {
		alias := strings.ReplaceAll(lines[i], " ", "")
		if alias == "" {
			continue
		}
		parts := strings.SplitN(alias, "=", 2)
		if len(parts) != 2 {
			log.Warn().Str("alias", alias).Msg("webify: skipping malformed alias line")
			continue
		}
		short, long := parts[0], parts[1]
		if seen[short] {
			log.Warn().Str("short", short).Msg("webify: duplicate alias identifier, keeping first")
			continue
		}
		seen[short] = true

		pattern, replacement := aliasPattern(short, long)
		if pattern == "" {
			log.Debug().Str("alias", alias).Msg("webify: alias right-hand side reduced to empty pattern, skipping")
			continue
		}
		longRe := regexp.MustCompile(pattern)

		var sub strings.Builder
		count := 0
		for i, part := range splitKeepDelims(script, literalRe) {
			if i%2 == 0 {
				count += len(longRe.FindAllStringIndex(part, -1))
				sub.WriteString(longRe.ReplaceAllString(part, replacement))
			} else {
				sub.WriteString(part)
			}
		}
		if count < minCnt {
			continue
		}
		candidate := sub.String()
		if preventGrow && len(candidate) > len(script) {
			log.Warn().Str("alias", alias).Msg("webify: discarding substitution that grows the script")
			continue
		}
		script = candidate
		if addUsedAliases {
			decl := alias + "\n"
			if !strings.Contains(script, decl) {
				script = decl + strings.TrimLeftFunc(script, unicode.IsSpace)
			}
		}
	}
	return script
}
