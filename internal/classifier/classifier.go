// Package classifier decides, from a filename alone, whether a file's content belongs in the listing.
package classifier

import (
	"regexp"
	"strings"
)

// Family names the source ecosystem a special-file rule belongs to.
type Family string

const (
	FamilyTypeScript Family = "typescript"
	FamilyPython     Family = "python"
	FamilyJavaScript Family = "javascript"
)

type rule struct {
	family  Family
	pattern *regexp.Regexp
}

// scriptSuffixes are the dotted conventions shared by the TypeScript and JavaScript families.
// Each becomes `\.<suffix>\.<ext>$`.
var scriptSuffixes = []string{
	"schema", "service", "controller", "route", "routes", "d", "test", "config",
	"spec", "setup", "mock", "model", "middleware", "helper", "util", "factory",
	"validator", "env", "main", "init", "web",
}

var pythonPatterns = []string{
	`_test\.py$`,
	`^test_.*\.py$`,
	`_spec\.py$`,
	`_config\.py$`,
	`_settings\.py$`,
	`_schema\.py$`,
	`_model\.py$`,
	`_views?\.py$`,
	`_forms?\.py$`,
	`_admin\.py$`,
	`_serializers?\.py$`,
	`_urls?\.py$`,
	`_tasks?\.py$`,
	`_migrations?\.py$`,
	`_factory\.py$`,
	`_cli\.py$`,
	`_command\.py$`,
	`_manage\.py$`,
	`_main\.py$`,
	`^__init__\.py$`,
}

var rules = buildRules()

func buildRules() []rule {
	var built []rule
	for _, family := range []struct {
		family    Family
		extension string
	}{
		{family: FamilyTypeScript, extension: "ts"},
		{family: FamilyJavaScript, extension: "js"},
	} {
		for _, suffix := range scriptSuffixes {
			built = append(built, rule{family: family.family, pattern: regexp.MustCompile(`\.` + suffix + `\.` + family.extension + `$`)})
		}
		// next.js route groups such as page.(marketing).ts
		built = append(built, rule{family: family.family, pattern: regexp.MustCompile(`\.\([^)]+\)\.` + family.extension + `$`)})
		built = append(built, rule{family: family.family, pattern: regexp.MustCompile(`\.config\.mjs$`)})
	}
	for _, pattern := range pythonPatterns {
		built = append(built, rule{family: FamilyPython, pattern: regexp.MustCompile(pattern)})
	}
	return built
}

// contentExtensions are suffixes whose files are always dumped.
var contentExtensions = []string{
	".py", ".js", ".java", ".c", ".cpp", ".h", ".ipynb", ".html", ".css",
	".ts", ".tsx", ".scss", ".sass", ".vue", ".dart", ".jsx", ".prisma", ".gql",
	".sql", ".db", ".sqlite", ".md", ".rst", ".sh", ".bat", ".ps1", ".cy", ".env",
	"Jenkinsfile", "Dockerfile",
}

// wellKnownNames are bare filenames whose files are always dumped.
var wellKnownNames = map[string]struct{}{
	"tsconfig.json":     {},
	"package.json":      {},
	".env":              {},
	"eslint.config.mjs": {},
	"globals.css":       {},
	".eslintrc.json":    {},
	".prettierrc":       {},
	".env.example":      {},
	"next.config.ts":    {},
	"app.json":          {},
	"settings.json":     {},
	"requirements.txt":  {},
	"netlify.toml":      {},
}

// SpecialFamily returns the family of the first rule matching name.
func SpecialFamily(name string) (Family, bool) {
	for _, candidate := range rules {
		if candidate.pattern.MatchString(name) {
			return candidate.family, true
		}
	}
	return "", false
}

// IsSpecialFile reports whether name follows a framework naming convention of any family.
func IsSpecialFile(name string) bool {
	_, matched := SpecialFamily(name)
	return matched
}

// HasContentExtension reports whether name ends with an allow-listed suffix.
func HasContentExtension(name string) bool {
	for _, extension := range contentExtensions {
		if strings.HasSuffix(name, extension) {
			return true
		}
	}
	return false
}

// IsWellKnownName reports whether name is an allow-listed bare filename.
func IsWellKnownName(name string) bool {
	_, known := wellKnownNames[name]
	return known
}

// ShouldDumpContent reports whether the listing includes the content of a file called name.
func ShouldDumpContent(name string) bool {
	return HasContentExtension(name) || IsWellKnownName(name) || IsSpecialFile(name)
}
