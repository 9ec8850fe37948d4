// Package analyzer clones a repository, detects its language and runtime,
// discovers its test files, and drives the Sandbox Executor to run them
// (spec.md §4.5).
package analyzer

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/codeready-toolchain/healer/pkg/runmodel"
)

// Language is a detected project language.
type Language string

// Supported languages, in marker-check order (spec.md §4.5). Node is the
// default when no marker matches.
const (
	LanguageNode   Language = "node"
	LanguagePython Language = "python"
	LanguageGo     Language = "go"
	LanguageRust   Language = "rust"
	LanguageJava   Language = "java"
)

// markerFiles maps each language to the top-level files that identify it.
// Checked in this slice's order so node (package.json) wins ties.
var markerFiles = []struct {
	lang     Language
	fileName []string
}{
	{LanguageNode, []string{"package.json"}},
	{LanguagePython, []string{"requirements.txt", "setup.py", "pyproject.toml"}},
	{LanguageGo, []string{"go.mod"}},
	{LanguageRust, []string{"Cargo.toml"}},
	{LanguageJava, []string{"pom.xml", "build.gradle"}},
}

// DetectLanguage inspects the top-level file set of root and returns the
// first matching language, defaulting to node.
func DetectLanguage(root string) Language {
	entries, err := os.ReadDir(root)
	if err != nil {
		return LanguageNode
	}
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e.Name()] = true
	}
	for _, m := range markerFiles {
		for _, f := range m.fileName {
			if present[f] {
				return m.lang
			}
		}
	}
	return LanguageNode
}

// RuntimeTable maps a language to its RuntimeDescriptor. Populated from
// configuration; DefaultRuntimeTable supplies sane images/commands.
type RuntimeTable map[Language]runmodel.RuntimeDescriptor

// DefaultRuntimeTable is the built-in image/installCmd/testCmd table. New
// uses it when given a nil table, and RuntimeTableFromConfig starts from it
// before applying configured entries.
func DefaultRuntimeTable() RuntimeTable {
	return RuntimeTable{
		LanguageNode:   {Image: "node:20-alpine", InstallCmd: "npm install", TestCmd: "npm test"},
		LanguagePython: {Image: "python:3.12-slim", InstallCmd: "pip install -r requirements.txt", TestCmd: "pytest"},
		LanguageGo:     {Image: "golang:1.22-alpine", InstallCmd: "", TestCmd: "go test ./..."},
		LanguageRust:   {Image: "rust:1.78-slim", InstallCmd: "", TestCmd: "cargo test"},
		LanguageJava:   {Image: "maven:3.9-eclipse-temurin-21", InstallCmd: "", TestCmd: "mvn test"},
	}
}

// RuntimeTableFromConfig converts the string-keyed runtime map loaded by
// pkg/config into a RuntimeTable, falling back to DefaultRuntimeTable for
// any language config left unset. Configuration is the single source of
// truth for these images and commands; this is the one place that maps
// its plain-string keys onto the Language type the rest of this package
// uses.
func RuntimeTableFromConfig(configured map[string]runmodel.RuntimeDescriptor) RuntimeTable {
	table := DefaultRuntimeTable()
	for key, rt := range configured {
		table[Language(key)] = rt
	}
	return table
}

// hiddenOrVendorDir reports whether dirName should be skipped while walking
// for test files (spec.md §4.5: hidden directories and common vendor dirs).
func hiddenOrVendorDir(dirName string) bool {
	if len(dirName) > 0 && dirName[0] == '.' {
		return true
	}
	switch dirName {
	case "node_modules", "__pycache__", "vendor", "target", "dist", "build":
		return true
	}
	return false
}

// testFilePatterns are the language-specific filename regexes used during
// discovery.
var testFilePatterns = map[Language]*regexp.Regexp{
	LanguageNode:   regexp.MustCompile(`(?i)(\.test\.|\.spec\.)[jt]sx?$`),
	LanguagePython: regexp.MustCompile(`(?i)(^test_.*\.py$|.*_test\.py$)`),
	LanguageGo:     regexp.MustCompile(`(?i)_test\.go$`),
	LanguageRust:   regexp.MustCompile(`(?i)_test\.rs$`),
	LanguageJava:   regexp.MustCompile(`(?i)Test\.java$`),
}

// DiscoverTestFiles walks root, skipping hidden and vendor directories, and
// returns every file matching lang's test-filename pattern.
func DiscoverTestFiles(root string, lang Language) ([]string, error) {
	pattern, ok := testFilePatterns[lang]
	if !ok {
		pattern = testFilePatterns[LanguageNode]
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && hiddenOrVendorDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if pattern.MatchString(d.Name()) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
