package generator

import (
	"fmt"
	"strings"

	"github.com/tacogips/hoppla/internal/template/directive"
)

// TemplateSuffixes mark a file as template-bearing. They are stripped from
// the output name unless a directive sets the name.
var TemplateSuffixes = []string{".hop.tmpl", ".hop.ejs"}

// generatedMarker joins the counter and the original name of a generated copy.
const generatedMarker = "_hoppla_"

// IsTemplateFile reports whether name carries a template suffix.
func IsTemplateFile(name string) bool {
	for _, suffix := range TemplateSuffixes {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return true
		}
	}
	return false
}

// StripTemplateSuffix removes a template suffix from name, if any.
func StripTemplateSuffix(name string) string {
	for _, suffix := range TemplateSuffixes {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// IsDirectiveFile reports whether name is a sibling directive file.
func IsDirectiveFile(name string) bool {
	return strings.HasSuffix(name, directive.FileSuffix)
}

// directiveKey returns the entry name a directive file applies to.
func directiveKey(name string) string {
	return strings.TrimSuffix(name, directive.FileSuffix)
}

// rawByDefault reports whether a file is copied verbatim when no directive
// or glob says otherwise. Only template files and directive files are
// processed.
func rawByDefault(name string) bool {
	if strings.HasSuffix(name, directive.RootFileName) {
		return false
	}
	return !IsTemplateFile(name)
}

// generatedName returns the name of the n-th generated copy of name.
func generatedName(n int, name string) string {
	return fmt.Sprintf("%d%s%s", n, generatedMarker, name)
}
