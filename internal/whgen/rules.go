package whgen

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// themeColors are the color scheme roles that a bare color name resolves to.
var themeColors = map[string]bool{
	"primary": true, "onPrimary": true, "primaryContainer": true, "onPrimaryContainer": true,
	"secondary": true, "onSecondary": true, "secondaryContainer": true, "onSecondaryContainer": true,
	"tertiary": true, "onTertiary": true, "tertiaryContainer": true, "onTertiaryContainer": true,
	"background": true, "onBackground": true,
	"surface": true, "onSurface": true, "surfaceVariant": true, "onSurfaceVariant": true,
	"surfaceTint": true, "inverseSurface": true, "inverseOnSurface": true, "inversePrimary": true,
	"error": true, "onError": true, "errorContainer": true, "onErrorContainer": true,
	"outline": true, "outlineVariant": true, "scrim": true,
}

// unquote returns the contents of a "..." literal. ok is false when s is not
// a single string literal.
func unquote(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' || strings.HasPrefix(s, `"""`) {
		return "", false
	}
	inner := s[1 : len(s)-1]
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' {
			i++
			continue
		}
		if inner[i] == '"' {
			return "", false
		}
	}
	return inner, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// hexColor converts #RGB, #RRGGBB or #RRGGBBAA to a Color(0xAARRGGBB) call.
func hexColor(hex string) (string, error) {
	digits := strings.TrimPrefix(hex, "#")
	for _, r := range digits {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return "", fmt.Errorf("invalid hex color %q: %q is not a hex digit", hex, r)
		}
	}
	digits = strings.ToUpper(digits)
	switch len(digits) {
	case 3:
		var sb strings.Builder
		for _, r := range digits {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		return "Color(0xFF" + sb.String() + ")", nil
	case 6:
		return "Color(0xFF" + digits + ")", nil
	case 8:
		return "Color(0x" + digits[6:] + digits[:6] + ")", nil
	}
	return "", fmt.Errorf("invalid hex color %q: expected 3, 6 or 8 digits", hex)
}

var rgbRe = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*([0-9.]+)\s*)?\)$`)

// rgbColor converts rgb(r, g, b) or rgba(r, g, b, a) with a in [0, 1].
func rgbColor(s string) (string, bool) {
	m := rgbRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	if strings.HasPrefix(s, "rgba") != (m[4] != "") {
		return "", false
	}
	var channels [3]int
	for i := range channels {
		v, err := strconv.Atoi(m[i+1])
		if err != nil || v > 255 {
			return "", false
		}
		channels[i] = v
	}
	alpha := 255
	if m[4] != "" {
		a, err := strconv.ParseFloat(m[4], 64)
		if err != nil || a < 0 || a > 1 {
			return "", false
		}
		alpha = int(math.Round(a * 255))
	}
	return fmt.Sprintf("Color(0x%02X%02X%02X%02X)", alpha, channels[0], channels[1], channels[2]), true
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// colorLiteral converts the contents of a color string literal.
func colorLiteral(lit string) (string, error) {
	switch {
	case strings.HasPrefix(lit, "#"):
		return hexColor(lit)
	case strings.HasPrefix(lit, "rgb"):
		if c, ok := rgbColor(lit); ok {
			return c, nil
		}
		return "", fmt.Errorf("invalid color %q", lit)
	case themeColors[lit]:
		return "MaterialTheme.colorScheme." + lit, nil
	case identRe.MatchString(lit):
		return "Color." + capitalize(lit), nil
	}
	return "", fmt.Errorf("invalid color %q", lit)
}

var stringLitRe = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)

// colorValue converts a color prop. Literals are converted directly; in an
// expression every string literal that looks like a color is converted and
// ternaries become if/else.
func colorValue(code string) (string, error) {
	if lit, ok := unquote(code); ok {
		return colorLiteral(lit)
	}
	code = transformTernary(code)
	var firstErr error
	out := stringLitRe.ReplaceAllStringFunc(code, func(s string) string {
		lit := s[1 : len(s)-1]
		if !strings.HasPrefix(lit, "#") && !strings.HasPrefix(lit, "rgb") && !themeColors[lit] {
			return s
		}
		c, err := colorLiteral(lit)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return s
		}
		return c
	})
	return out, firstErr
}

var (
	numberRe      = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	unitNumberRe  = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*(dp|sp|px)?$`)
	simpleRefRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	percentRe     = regexp.MustCompile(`^(\d+)%$`)
	typedNumberRe = regexp.MustCompile(`^-?\d+(\.\d+)?[fFL]?$`)
)

// withUnit appends a unit to a numeric value. Quoted numbers may carry
// their own unit; values already ending in .dp or .sp are kept.
func withUnit(code, unit string) string {
	code = strings.TrimSpace(code)
	if lit, ok := unquote(code); ok {
		if m := unitNumberRe.FindStringSubmatch(strings.TrimSpace(lit)); m != nil {
			u := m[2]
			if u == "" || u == "px" {
				u = unit
			}
			return m[1] + "." + u
		}
		return code
	}
	if strings.HasSuffix(code, ".dp") || strings.HasSuffix(code, ".sp") {
		return code
	}
	if numberRe.MatchString(code) || simpleRefRe.MatchString(code) {
		return code + "." + unit
	}
	return "(" + code + ")." + unit
}

func dp(code string) string { return withUnit(code, "dp") }

func sp(code string) string { return withUnit(code, "sp") }

// sizeValue converts a width or height. Numbers become dp; a "N%" literal
// returns the fraction and isFraction.
func sizeValue(code string) (value string, isFraction bool) {
	code = strings.TrimSpace(code)
	if lit, ok := unquote(code); ok {
		if m := percentRe.FindStringSubmatch(lit); m != nil {
			n, _ := strconv.Atoi(m[1])
			if n >= 100 {
				return "1f", true
			}
			return strconv.FormatFloat(float64(n)/100, 'f', -1, 64) + "f", true
		}
		return dp(code), false
	}
	if numberRe.MatchString(code) {
		return code + ".dp", false
	}
	return code, false
}

var fontWeights = map[string]string{
	"thin":       "Thin",
	"extralight": "ExtraLight",
	"light":      "Light",
	"normal":     "Normal",
	"regular":    "Normal",
	"medium":     "Medium",
	"semibold":   "SemiBold",
	"bold":       "Bold",
	"extrabold":  "ExtraBold",
	"black":      "Black",
}

var fontFamilies = map[string]string{
	"default":   "Default",
	"serif":     "Serif",
	"sansserif": "SansSerif",
	"monospace": "Monospace",
	"cursive":   "Cursive",
}

// enumValue converts a literal to Type.Member using table, falling back to
// the capitalized literal. Expressions pass through.
func enumValue(code, typ string, table map[string]string) string {
	lit, ok := unquote(code)
	if !ok {
		return code
	}
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(lit))
	if v, ok := table[key]; ok {
		return typ + "." + v
	}
	return typ + "." + capitalize(lit)
}

var textAligns = map[string]string{
	"start": "Start", "end": "End", "center": "Center",
	"left": "Left", "right": "Right", "justify": "Justify",
}

var boxAlignments = map[string]string{
	"topstart": "TopStart", "topcenter": "TopCenter", "topend": "TopEnd",
	"centerstart": "CenterStart", "center": "Center", "centerend": "CenterEnd",
	"bottomstart": "BottomStart", "bottomcenter": "BottomCenter", "bottomend": "BottomEnd",
}

var horizontalAlignments = map[string]string{
	"start": "Start", "center": "CenterHorizontally", "end": "End",
}

var verticalAlignments = map[string]string{
	"top": "Top", "center": "CenterVertically", "bottom": "Bottom",
}

var contentScales = map[string]string{
	"cover":     "Crop",
	"crop":      "Crop",
	"contain":   "Fit",
	"fit":       "Fit",
	"fill":      "FillBounds",
	"none":      "None",
	"scaledown": "Inside",
	"inside":    "Inside",
}

// paddingPriority orders padding props: a specific side beats an axis,
// which beats all sides.
var paddingPriority = map[string]int{
	"p": 1, "padding": 1,
	"px": 2, "py": 2,
	"pt": 3, "pb": 3, "pl": 3, "pr": 3, "ps": 3, "pe": 3,
}

func isPaddingProp(name string) bool {
	_, ok := paddingPriority[name]
	return ok
}

// paddingSides resolves padding shorthands into top, bottom, start and end
// values. Props are given in source order.
type paddingSides struct {
	values [4]string // top, bottom, start, end
	prio   [4]int
}

func (s *paddingSides) set(name, code string) {
	prio := paddingPriority[name]
	value := dp(code)
	var idx []int
	switch name {
	case "p", "padding":
		idx = []int{0, 1, 2, 3}
	case "px":
		idx = []int{2, 3}
	case "py":
		idx = []int{0, 1}
	case "pt":
		idx = []int{0}
	case "pb":
		idx = []int{1}
	case "pl", "ps":
		idx = []int{2}
	case "pr", "pe":
		idx = []int{3}
	}
	for _, i := range idx {
		if prio >= s.prio[i] {
			s.values[i] = value
			s.prio[i] = prio
		}
	}
}

// modifier returns the simplest .padding(...) call for the resolved sides,
// or "" when none is set.
func (s *paddingSides) modifier() string {
	top, bottom, start, end := s.values[0], s.values[1], s.values[2], s.values[3]
	if top == "" && bottom == "" && start == "" && end == "" {
		return ""
	}
	if top != "" && top == bottom && top == start && top == end {
		return ".padding(" + top + ")"
	}
	if top == bottom && start == end {
		var parts []string
		if start != "" {
			parts = append(parts, "horizontal = "+start)
		}
		if top != "" {
			parts = append(parts, "vertical = "+top)
		}
		return ".padding(" + strings.Join(parts, ", ") + ")"
	}
	var parts []string
	for i, name := range []string{"top", "bottom", "start", "end"} {
		if s.values[i] != "" {
			parts = append(parts, name+" = "+s.values[i])
		}
	}
	return ".padding(" + strings.Join(parts, ", ") + ")"
}

// transformTernary rewrites c ? a : b into if (c) a else b. Safe calls,
// the elvis operator and string contents are left alone.
func transformTernary(expr string) string {
	q := findTernary(expr)
	if q < 0 {
		return expr
	}
	colon := findTernaryColon(expr, q+1)
	if colon < 0 {
		return expr
	}
	cond := strings.TrimSpace(expr[:q])
	then := strings.TrimSpace(expr[q+1 : colon])
	els := strings.TrimSpace(expr[colon+1:])
	if strings.HasPrefix(cond, "(") && matchParen(cond, 0) == len(cond)-1 {
		cond = strings.TrimSpace(cond[1 : len(cond)-1])
	}
	return "if (" + cond + ") " + transformTernary(then) + " else " + transformTernary(els)
}

// findTernary returns the offset of the first top-level '?' that starts a
// conditional, or -1.
func findTernary(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'':
			i = skipLiteral(s, i)
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '?':
			if depth != 0 {
				continue
			}
			if i+1 < len(s) && (s[i+1] == '.' || s[i+1] == ':') {
				continue
			}
			if i > 0 && s[i-1] != ' ' {
				continue
			}
			return i
		}
	}
	return -1
}

func findTernaryColon(s string, from int) int {
	depth, nested := 0, 0
	for i := from; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'':
			i = skipLiteral(s, i)
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '?':
			if depth == 0 && i+1 < len(s) && s[i+1] != '.' && s[i+1] != ':' && i > 0 && s[i-1] == ' ' {
				nested++
			}
		case ':':
			if depth != 0 || (i+1 < len(s) && s[i+1] == ':') || (i > 0 && (s[i-1] == ':' || s[i-1] == '?')) {
				continue
			}
			if nested > 0 {
				nested--
				continue
			}
			return i
		}
	}
	return -1
}

// skipLiteral returns the offset of the closing quote of the literal
// starting at i.
func skipLiteral(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return len(s) - 1
}

var lambdaArrowRe = regexp.MustCompile(`^\(\s*([A-Za-z_][A-Za-z0-9_]*(?:\s*,\s*[A-Za-z_][A-Za-z0-9_]*)*)?\s*\)\s*=>\s*`)

// transformLambda rewrites (a, b) => e into { a, b -> e }.
func transformLambda(code string) string {
	code = strings.TrimSpace(code)
	m := lambdaArrowRe.FindStringSubmatchIndex(code)
	if m == nil {
		return code
	}
	params := ""
	if m[2] >= 0 {
		params = strings.Join(strings.Fields(strings.ReplaceAll(code[m[2]:m[3]], ",", " ")), ", ")
	}
	body := strings.TrimSpace(code[m[1]:])
	if strings.HasPrefix(body, "{") && strings.HasSuffix(body, "}") {
		body = strings.TrimSpace(body[1 : len(body)-1])
	}
	if params == "" {
		return "{ " + body + " }"
	}
	return "{ " + params + " -> " + body + " }"
}

var routeRe = regexp.MustCompile(`\$routes((?:\.[A-Za-z_][A-Za-z0-9_]*)+)`)

// transformRoutes rewrites $routes.a.b into Routes.A.B.
func transformRoutes(s string) string {
	return routeRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := strings.Split(strings.TrimPrefix(m, "$routes."), ".")
		for i, p := range parts {
			parts[i] = capitalize(p)
		}
		return "Routes." + strings.Join(parts, ".")
	})
}

// transformFetch rewrites $fetch(url) into httpClient.get(url).body().
func transformFetch(s string) string {
	return replaceCalls(s, "$fetch(", func(args string) string {
		return "httpClient.get(" + args + ").body()"
	})
}

var logCallRe = regexp.MustCompile(`\$log(?:\.([dewiv]))?\(`)

// transformLog rewrites $log(msg) and $log.e(msg) into android Log calls
// tagged with tag.
func transformLog(s, tag string) string {
	return logCallRe.ReplaceAllStringFunc(s, func(m string) string {
		level := "d"
		if sub := logCallRe.FindStringSubmatch(m); sub[1] != "" {
			level = sub[1]
		}
		return fmt.Sprintf("Log.%s(%q, ", level, tag)
	})
}

// replaceCalls replaces every call prefix(args) with fn(args), matching the
// closing parenthesis.
func replaceCalls(s, prefix string, fn func(args string) string) string {
	var sb strings.Builder
	for {
		i := strings.Index(s, prefix)
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		open := i + len(prefix) - 1
		end := matchParen(s, open)
		if end < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:i])
		sb.WriteString(fn(strings.TrimSpace(s[open+1 : end])))
		s = s[end+1:]
	}
}

// matchParen returns the offset of the ')' matching the '(' at open.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			i = skipLiteral(s, i)
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

var dispatcherRe = regexp.MustCompile(`(^|[^A-Za-z0-9_.$])(io|cpu|main)\s*\{`)

var dispatcherNames = map[string]string{"io": "IO", "cpu": "Default", "main": "Main"}

// transformDispatchers rewrites io { }, cpu { } and main { } blocks into
// launches on scope.
func transformDispatchers(s, scope string) string {
	return dispatcherRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := dispatcherRe.FindStringSubmatch(m)
		return sub[1] + scope + ".launch(Dispatchers." + dispatcherNames[sub[2]] + ") {"
	})
}

func usesDispatchers(s string) bool {
	return dispatcherRe.MatchString(s)
}

var stringResourceRe = regexp.MustCompile(`\bR\.string\.([A-Za-z_][A-Za-z0-9_]*)`)

// transformStringResources rewrites R.string.x into stringResource calls,
// forwarding format arguments written as R.string.x(args).
func transformStringResources(s string) string {
	var sb strings.Builder
	last := 0
	for _, m := range stringResourceRe.FindAllStringIndex(s, -1) {
		if m[0] < last {
			continue
		}
		if m[0] >= len("stringResource(") && strings.HasSuffix(s[:m[0]], "stringResource(") {
			continue
		}
		sb.WriteString(s[last:m[0]])
		ref := s[m[0]:m[1]]
		if m[1] < len(s) && s[m[1]] == '(' {
			end := matchParen(s, m[1])
			if end > 0 {
				args := strings.TrimSpace(s[m[1]+1 : end])
				if args == "" {
					sb.WriteString("stringResource(" + ref + ")")
				} else {
					sb.WriteString("stringResource(" + ref + ", " + args + ")")
				}
				last = end + 1
				continue
			}
		}
		sb.WriteString("stringResource(" + ref + ")")
		last = m[1]
	}
	sb.WriteString(s[last:])
	return sb.String()
}

// transformList rewrites a [a, b] literal into listOf or mutableListOf.
// Nested literals always become listOf.
func transformList(value string, mutable bool) string {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(v, "[") || !strings.HasSuffix(v, "]") {
		return value
	}
	fn := "listOf"
	if mutable {
		fn = "mutableListOf"
	}
	elems := splitTopLevel(v[1:len(v)-1], ',')
	for i, e := range elems {
		elems[i] = transformList(strings.TrimSpace(e), false)
	}
	if len(elems) == 1 && elems[0] == "" {
		elems = nil
	}
	return fn + "(" + strings.Join(elems, ", ") + ")"
}

// splitTopLevel splits s on sep outside of brackets and literals.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"' || c == '\'':
			i = skipLiteral(s, i)
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

var rangeRe = regexp.MustCompile(`^RANGE\[(-?\d+)\.\.(-?\d+)(?::(-?\d+))?\]$`)

// transformRange expands RANGE[a..b] and RANGE[a..b:s] literals into lists.
// A negative step counts down.
func transformRange(value string) string {
	m := rangeRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return value
	}
	from, to, step := m[1], m[2], m[3]
	if step == "" || step == "1" {
		return "(" + from + ".." + to + ").toList()"
	}
	if n, err := strconv.Atoi(step); err == nil && n < 0 {
		if n == -1 {
			return "(" + from + " downTo " + to + ").toList()"
		}
		return "(" + from + " downTo " + to + " step " + strconv.Itoa(-n) + ").toList()"
	}
	return "(" + from + ".." + to + " step " + step + ").toList()"
}

// snakeToCamel converts snake_case to camelCase.
func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		parts[i] = capitalize(parts[i])
	}
	return strings.Join(parts, "")
}

var snakeCallRe = regexp.MustCompile(`\b([A-Z][A-Za-z0-9_]*)\.([a-z][a-z0-9]*(?:_[a-z0-9]+)+)\(`)

// transformFFICalls converts snake_case method calls on the given native
// binding objects to camelCase.
func transformFFICalls(s string, objects map[string]bool) string {
	if len(objects) == 0 {
		return s
	}
	return snakeCallRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := snakeCallRe.FindStringSubmatch(m)
		if !objects[sub[1]] {
			return m
		}
		return sub[1] + "." + snakeToCamel(sub[2]) + "("
	})
}

// toPascalCase converts kebab, snake or space separated words to PascalCase.
func toPascalCase(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	for i, f := range fields {
		fields[i] = capitalize(f)
	}
	return strings.Join(fields, "")
}

// ToPascalCase is exported for callers deriving unit names from file names.
func ToPascalCase(s string) string { return toPascalCase(s) }

// inferType guesses the Kotlin type of a literal initializer. ok is false
// when the value is not a recognizable literal.
func inferType(value string) (string, bool) {
	v := strings.TrimSpace(value)
	switch {
	case v == "true" || v == "false":
		return "Boolean", true
	case v == "null":
		return "", false
	case strings.HasPrefix(v, `"`):
		return "String", true
	case strings.HasPrefix(v, "RANGE["):
		return "List<Int>", true
	case strings.HasPrefix(v, "["):
		elems := splitTopLevel(v[1:len(v)-1], ',')
		if t, ok := inferType(elems[0]); ok && strings.TrimSpace(elems[0]) != "" {
			return "List<" + t + ">", true
		}
		return "", false
	case typedNumberRe.MatchString(v):
		switch {
		case strings.HasSuffix(v, "L"):
			return "Long", true
		case strings.HasSuffix(v, "f") || strings.HasSuffix(v, "F"):
			return "Float", true
		case strings.Contains(v, "."):
			return "Double", true
		}
		return "Int", true
	}
	return "", false
}

// defaultValue returns a zero value for a declared type, used when a
// property has a type but no initializer.
func defaultValue(typ string) (string, bool) {
	t := strings.TrimSpace(typ)
	if strings.HasSuffix(t, "?") {
		return "null", true
	}
	switch {
	case t == "String":
		return `""`, true
	case t == "Int" || t == "Long" || t == "Short" || t == "Byte":
		return "0", true
	case t == "Double":
		return "0.0", true
	case t == "Float":
		return "0f", true
	case t == "Boolean":
		return "false", true
	case strings.HasPrefix(t, "List<"):
		return "emptyList()", true
	case strings.HasPrefix(t, "Map<"):
		return "emptyMap()", true
	case strings.HasPrefix(t, "Set<"):
		return "emptySet()", true
	}
	return "", false
}

// numericParser returns the String-to-number conversion for a numeric type,
// or "" for other types.
func numericParser(typ string) string {
	switch strings.TrimSuffix(strings.TrimSpace(typ), "?") {
	case "Int":
		return "toIntOrNull"
	case "Long":
		return "toLongOrNull"
	case "Double":
		return "toDoubleOrNull"
	case "Float":
		return "toFloatOrNull"
	}
	return ""
}
