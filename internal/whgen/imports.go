package whgen

import (
	"regexp"
	"sort"
	"strings"
)

// importSet is an order-independent set of fully qualified imports.
type importSet map[string]struct{}

func (s importSet) add(paths ...string) {
	for _, p := range paths {
		if p != "" {
			s[p] = struct{}{}
		}
	}
}

func (s importSet) has(path string) bool {
	_, ok := s[path]
	return ok
}

// sorted returns the imports in lexical order. Concrete imports covered by
// a wildcard import of the same package are dropped.
func (s importSet) sorted() []string {
	wildcards := map[string]bool{}
	for p := range s {
		if pkg, ok := strings.CutSuffix(p, ".*"); ok {
			wildcards[pkg] = true
		}
	}
	out := make([]string, 0, len(s))
	for p := range s {
		if !strings.HasSuffix(p, ".*") {
			if i := strings.LastIndexByte(p, '.'); i > 0 && wildcards[p[:i]] {
				continue
			}
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

const (
	pkgRuntime    = "androidx.compose.runtime"
	pkgLayout     = "androidx.compose.foundation.layout"
	pkgMaterial3  = "androidx.compose.material3"
	pkgCoroutines = "kotlinx.coroutines"
	pkgFlow       = "kotlinx.coroutines.flow"
)

// elementImports maps a framework element to the imports it needs. Elements
// not listed are assumed to be user components.
var elementImports = map[string][]string{
	"Text":                      {pkgMaterial3 + ".Text"},
	"Button":                    {pkgMaterial3 + ".Button"},
	"TextButton":                {pkgMaterial3 + ".TextButton"},
	"OutlinedButton":            {pkgMaterial3 + ".OutlinedButton"},
	"ElevatedButton":            {pkgMaterial3 + ".ElevatedButton"},
	"IconButton":                {pkgMaterial3 + ".IconButton"},
	"FloatingActionButton":      {pkgMaterial3 + ".FloatingActionButton"},
	"Icon":                      {pkgMaterial3 + ".Icon"},
	"Card":                      {pkgMaterial3 + ".Card"},
	"TextField":                 {pkgMaterial3 + ".TextField"},
	"OutlinedTextField":         {pkgMaterial3 + ".OutlinedTextField"},
	"Checkbox":                  {pkgMaterial3 + ".Checkbox"},
	"Switch":                    {pkgMaterial3 + ".Switch"},
	"Slider":                    {pkgMaterial3 + ".Slider"},
	"RadioButton":               {pkgMaterial3 + ".RadioButton"},
	"Surface":                   {pkgMaterial3 + ".Surface"},
	"Scaffold":                  {pkgMaterial3 + ".Scaffold"},
	"TopAppBar":                 {pkgMaterial3 + ".TopAppBar", pkgMaterial3 + ".ExperimentalMaterial3Api"},
	"AlertDialog":               {pkgMaterial3 + ".AlertDialog"},
	"Divider":                   {pkgMaterial3 + ".HorizontalDivider"},
	"HorizontalDivider":         {pkgMaterial3 + ".HorizontalDivider"},
	"CircularProgressIndicator": {pkgMaterial3 + ".CircularProgressIndicator"},
	"LinearProgressIndicator":   {pkgMaterial3 + ".LinearProgressIndicator"},
	"TabRow":                    {pkgMaterial3 + ".TabRow"},
	"Tab":                       {pkgMaterial3 + ".Tab"},
	"FilterChip":                {pkgMaterial3 + ".FilterChip", pkgMaterial3 + ".ExperimentalMaterial3Api"},
	"DropdownMenu": {
		pkgMaterial3 + ".DropdownMenuItem",
		pkgMaterial3 + ".ExposedDropdownMenuBox",
		pkgMaterial3 + ".ExposedDropdownMenuDefaults",
		pkgMaterial3 + ".ExperimentalMaterial3Api",
		pkgMaterial3 + ".OutlinedTextField",
		pkgMaterial3 + ".Text",
	},
	"DropdownMenuItem": {pkgMaterial3 + ".DropdownMenuItem"},
	"Column":           {pkgLayout + ".Column"},
	"Row":              {pkgLayout + ".Row"},
	"Box":              {pkgLayout + ".Box"},
	"Spacer":           {pkgLayout + ".Spacer"},
	"LazyColumn":       {"androidx.compose.foundation.lazy.LazyColumn"},
	"LazyRow":          {"androidx.compose.foundation.lazy.LazyRow"},
	"Image":            {"coil.compose.AsyncImage"},
	"AsyncImage":       {"coil.compose.AsyncImage"},
}

// optInElements require @OptIn(ExperimentalMaterial3Api::class).
var optInElements = map[string]bool{
	"TopAppBar":    true,
	"FilterChip":   true,
	"DropdownMenu": true,
}

type importRule struct {
	re      *regexp.Regexp
	imports []string
}

// usageImports are imports implied by constructs found in generated code.
var usageImports = []importRule{
	{regexp.MustCompile(`\bremember \{|\bremember\(`), []string{pkgRuntime + ".remember"}},
	{regexp.MustCompile(`\bmutableStateOf[<(]`), []string{pkgRuntime + ".mutableStateOf"}},
	{regexp.MustCompile(`\bderivedStateOf \{`), []string{pkgRuntime + ".derivedStateOf"}},
	{regexp.MustCompile(`\bvar \w+(: [^=]+)? by `), []string{pkgRuntime + ".getValue", pkgRuntime + ".setValue"}},
	{regexp.MustCompile(`\bval \w+(: [^=]+)? by `), []string{pkgRuntime + ".getValue"}},
	{regexp.MustCompile(`\bLaunchedEffect\(`), []string{pkgRuntime + ".LaunchedEffect"}},
	{regexp.MustCompile(`\bDisposableEffect\(`), []string{pkgRuntime + ".DisposableEffect"}},
	{regexp.MustCompile(`\brememberCoroutineScope\(\)`), []string{pkgRuntime + ".rememberCoroutineScope"}},
	{regexp.MustCompile(`\.collectAsState\(\)`), []string{pkgRuntime + ".collectAsState"}},
	{regexp.MustCompile(`(?m)^\s*key\(`), []string{pkgRuntime + ".key"}},
	{regexp.MustCompile(`\bModifier\b`), []string{"androidx.compose.ui.Modifier"}},
	{regexp.MustCompile(`\.padding\(`), []string{pkgLayout + ".padding"}},
	{regexp.MustCompile(`\.fillMaxSize\(`), []string{pkgLayout + ".fillMaxSize"}},
	{regexp.MustCompile(`\.fillMaxWidth\(`), []string{pkgLayout + ".fillMaxWidth"}},
	{regexp.MustCompile(`\.fillMaxHeight\(`), []string{pkgLayout + ".fillMaxHeight"}},
	{regexp.MustCompile(`\.size\(`), []string{pkgLayout + ".size"}},
	{regexp.MustCompile(`\.height\(`), []string{pkgLayout + ".height"}},
	{regexp.MustCompile(`\.width\(`), []string{pkgLayout + ".width"}},
	{regexp.MustCompile(`\bPaddingValues\(`), []string{pkgLayout + ".PaddingValues"}},
	{regexp.MustCompile(`\bArrangement\.`), []string{pkgLayout + ".Arrangement"}},
	{regexp.MustCompile(`\.background\(`), []string{"androidx.compose.foundation.background"}},
	{regexp.MustCompile(`\.clickable\b`), []string{"androidx.compose.foundation.clickable"}},
	{regexp.MustCompile(`\bitems\(`), []string{"androidx.compose.foundation.lazy.items"}},
	{regexp.MustCompile(`\bitemsIndexed\(`), []string{"androidx.compose.foundation.lazy.itemsIndexed"}},
	{regexp.MustCompile(`\bAlignment\.`), []string{"androidx.compose.ui.Alignment"}},
	{regexp.MustCompile(`\.dp\b`), []string{"androidx.compose.ui.unit.dp"}},
	{regexp.MustCompile(`\.sp\b`), []string{"androidx.compose.ui.unit.sp"}},
	{regexp.MustCompile(`\bColor[.(]`), []string{"androidx.compose.ui.graphics.Color"}},
	{regexp.MustCompile(`\bMaterialTheme\.`), []string{pkgMaterial3 + ".MaterialTheme"}},
	{regexp.MustCompile(`\bCardDefaults\.`), []string{pkgMaterial3 + ".CardDefaults"}},
	{regexp.MustCompile(`\bFontWeight\.`), []string{"androidx.compose.ui.text.font.FontWeight"}},
	{regexp.MustCompile(`\bFontFamily\.`), []string{"androidx.compose.ui.text.font.FontFamily"}},
	{regexp.MustCompile(`\bTextAlign\.`), []string{"androidx.compose.ui.text.style.TextAlign"}},
	{regexp.MustCompile(`\bTextDecoration\.`), []string{"androidx.compose.ui.text.style.TextDecoration"}},
	{regexp.MustCompile(`\bContentScale\.`), []string{"androidx.compose.ui.layout.ContentScale"}},
	{regexp.MustCompile(`\bstringResource\(`), []string{"androidx.compose.ui.res.stringResource"}},
	{regexp.MustCompile(`\bPasswordVisualTransformation\(`), []string{"androidx.compose.ui.text.input.PasswordVisualTransformation"}},
	{regexp.MustCompile(`\bIcons\.(Default|Filled)\.`), []string{"androidx.compose.material.icons.Icons", "androidx.compose.material.icons.filled.*"}},
	{regexp.MustCompile(`\bIcons\.Outlined\.`), []string{"androidx.compose.material.icons.Icons", "androidx.compose.material.icons.outlined.*"}},
	{regexp.MustCompile(`\bKeyboardOptions\(`), []string{"androidx.compose.foundation.text.KeyboardOptions"}},
	{regexp.MustCompile(`\bKeyboardType\.`), []string{"androidx.compose.ui.text.input.KeyboardType"}},
	{regexp.MustCompile(`\bCoroutineScope\(`), []string{pkgCoroutines + ".CoroutineScope"}},
	{regexp.MustCompile(`\bSupervisorJob\(`), []string{pkgCoroutines + ".SupervisorJob"}},
	{regexp.MustCompile(`\bDispatchers\.`), []string{pkgCoroutines + ".Dispatchers"}},
	{regexp.MustCompile(`\blaunch \{|\.launch\(|\blaunch\(`), []string{pkgCoroutines + ".launch"}},
	{regexp.MustCompile(`\bdelay\(`), []string{pkgCoroutines + ".delay"}},
	{regexp.MustCompile(`\bLog\.[dewiv]\(`), []string{"android.util.Log"}},
	{regexp.MustCompile(`@Serializable\b`), []string{"kotlinx.serialization.Serializable"}},
	{regexp.MustCompile(`\bNavController\b`), []string{"androidx.navigation.NavController"}},
	{regexp.MustCompile(`\bviewModel<`), []string{"androidx.lifecycle.viewmodel.compose.viewModel"}},
	{regexp.MustCompile(`\bhiltViewModel<`), []string{"androidx.hilt.navigation.compose.hiltViewModel"}},
	{regexp.MustCompile(`\bExperimentalMaterial3Api\b`), []string{pkgMaterial3 + ".ExperimentalMaterial3Api"}},
	{regexp.MustCompile(`\bSavedStateHandle\b`), []string{"androidx.lifecycle.SavedStateHandle"}},
	{regexp.MustCompile(`\bviewModelScope\b`), []string{"androidx.lifecycle.viewModelScope"}},
	{regexp.MustCompile(`\bMutableStateFlow\(`), []string{pkgFlow + ".MutableStateFlow"}},
	{regexp.MustCompile(`\bStateFlow<`), []string{pkgFlow + ".StateFlow"}},
	{regexp.MustCompile(`\.asStateFlow\(\)`), []string{pkgFlow + ".asStateFlow"}},
	{regexp.MustCompile(`\.update \{`), []string{pkgFlow + ".update"}},
	{regexp.MustCompile(`\bhttpClient\.`), []string{
		"io.ktor.client.call.body",
		"io.ktor.client.request.get",
	}},
	{regexp.MustCompile(`\bHttpClient\(OkHttp\)`), []string{
		"io.ktor.client.HttpClient",
		"io.ktor.client.engine.okhttp.OkHttp",
		"io.ktor.client.plugins.contentnegotiation.ContentNegotiation",
		"io.ktor.serialization.kotlinx.json.json",
		"kotlinx.serialization.json.Json",
	}},
}

// scanImports adds the imports implied by constructs used in code.
func scanImports(set importSet, code string) {
	for _, rule := range usageImports {
		if rule.re.MatchString(code) {
			set.add(rule.imports...)
		}
	}
}

// rootPackage strips a trailing conventional source directory segment so
// that project aliases resolve against the application package.
func rootPackage(pkg string) string {
	for _, suffix := range []string{".components", ".screens", ".routes", ".lib", ".models", ".utils", ".stores"} {
		if base, ok := strings.CutSuffix(pkg, suffix); ok {
			return base
		}
	}
	return pkg
}

// resolveImport expands a $alias import against the root package. Other
// paths are returned unchanged.
func resolveImport(path, pkg string) string {
	alias, ok := strings.CutPrefix(path, "$")
	if !ok {
		return path
	}
	return rootPackage(pkg) + "." + alias
}

// writeHeader writes the package clause and the sorted import block.
func writeHeader(w *writer, pkg string, imports importSet) {
	w.linef("package %s", pkg)
	w.blank()
	sorted := imports.sorted()
	for _, imp := range sorted {
		w.linef("import %s", imp)
	}
	if len(sorted) > 0 {
		w.blank()
	}
}
