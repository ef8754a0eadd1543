package parser

import (
	"path/filepath"
	"strings"
)

// Language identifies the grammar family used to parse a component file.
type Language int

const (
	// LanguageTypeScript covers .ts and .tsx component files
	LanguageTypeScript Language = iota
	// LanguageJavaScript covers .js and .jsx component files
	LanguageJavaScript
	// LanguageUnknown is returned for anything the editor cannot open
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// DetectLanguage detects the grammar family from a file path.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts", ".tsx":
		return LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// IsTSXFile reports whether filePath is a .tsx file.
func IsTSXFile(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".tsx"
}

// IsPlainTSFile reports whether filePath is TypeScript without JSX support.
// Angle-bracket casts in these files conflict with JSX, so they must be parsed
// with the plain TypeScript grammar.
func IsPlainTSFile(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts":
		return true
	}
	return false
}

// ParseLanguageString converts a language name to a Language.
func ParseLanguageString(lang string) Language {
	switch strings.ToLower(lang) {
	case "typescript", "ts", "tsx":
		return LanguageTypeScript
	case "javascript", "js", "jsx":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}
