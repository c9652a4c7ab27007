// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import "strings"

// Named language tags. LanguageUnknown is the zero value so an
// undetected file never collides with a real tag.
const (
	LanguageUnknown Language = iota
	LanguageGo
	LanguageC
	LanguageCPP
	LanguageJava
	LanguagePython
	LanguageJavaScript
	LanguageTypeScript
	LanguageRust
	LanguageRuby
	LanguageShell
	LanguageMarkdown
	LanguageJSON
	LanguageYAML
	LanguageTOML
	LanguageHTML
	LanguageCSS
	LanguageSQL
)

var extLanguage = map[string]Language{
	".go":    LanguageGo,
	".c":     LanguageC,
	".h":     LanguageC,
	".cc":    LanguageCPP,
	".cpp":   LanguageCPP,
	".hpp":   LanguageCPP,
	".java":  LanguageJava,
	".py":    LanguagePython,
	".js":    LanguageJavaScript,
	".jsx":   LanguageJavaScript,
	".mjs":   LanguageJavaScript,
	".ts":    LanguageTypeScript,
	".tsx":   LanguageTypeScript,
	".rs":    LanguageRust,
	".rb":    LanguageRuby,
	".sh":    LanguageShell,
	".bash":  LanguageShell,
	".md":    LanguageMarkdown,
	".json":  LanguageJSON,
	".yaml":  LanguageYAML,
	".yml":   LanguageYAML,
	".toml":  LanguageTOML,
	".html":  LanguageHTML,
	".htm":   LanguageHTML,
	".css":   LanguageCSS,
	".sql":   LanguageSQL,
}

// LanguageFromPath guesses a Language from a path's extension, the same
// extension-keyed approach index/write.go's zip-entry naming implicitly
// relies on. Unrecognized extensions map to LanguageUnknown, never an
// error — language tagging is advisory metadata, not a build precondition.
func LanguageFromPath(path string) Language {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return LanguageUnknown
	}
	ext := strings.ToLower(path[i:])
	if lang, ok := extLanguage[ext]; ok {
		return lang
	}
	return LanguageUnknown
}

var languageNames = map[Language]string{
	LanguageGo:         "go",
	LanguageC:          "c",
	LanguageCPP:        "cpp",
	LanguageJava:       "java",
	LanguagePython:     "python",
	LanguageJavaScript: "javascript",
	LanguageTypeScript: "typescript",
	LanguageRust:       "rust",
	LanguageRuby:       "ruby",
	LanguageShell:      "shell",
	LanguageMarkdown:   "markdown",
	LanguageJSON:       "json",
	LanguageYAML:       "yaml",
	LanguageTOML:       "toml",
	LanguageHTML:       "html",
	LanguageCSS:        "css",
	LanguageSQL:        "sql",
}

var nameLanguage = func() map[string]Language {
	m := make(map[string]Language, len(languageNames))
	for l, n := range languageNames {
		m[n] = l
	}
	return m
}()

// LanguageName returns the canonical lowercase name used by "lang:"
// filters (§6.2), or "" for LanguageUnknown.
func LanguageName(l Language) string { return languageNames[l] }

// LanguageByName resolves a "lang:" filter value back into a Language tag.
func LanguageByName(name string) (Language, bool) {
	l, ok := nameLanguage[strings.ToLower(name)]
	return l, ok
}
