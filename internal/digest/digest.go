// Package digest collects a bounded snapshot of a repository's textual
// signals: readme, ecosystem manifests, docs, and a capped sample of source
// files. The digest lives for one run and is consumed by the analyzer.
package digest

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	maxDocChars    = 5000
	maxFileChars   = 2000
	maxPerExt      = 3
	maxSourceFiles = 10
)

type Digest struct {
	Name      string
	Readme    string
	Manifests map[string]string // manifest filename → raw contents
	Docs      []DocFile
	Sources   []SourceFile
}

type DocFile struct {
	Name    string
	Content string
}

type SourceFile struct {
	Name    string
	Path    string // relative to the repository root
	Content string
}

var readmeNames = []string{"README.md", "README.rst", "README.txt", "README"}

var manifestNames = []string{
	"package.json", "pyproject.toml", "setup.py", "Cargo.toml",
	"go.mod", "composer.json", "pom.xml",
}

// Extension order determines sampling priority when the total cap bites.
var sourceExtensions = []string{".py", ".js", ".ts", ".go", ".rs", ".java", ".cpp", ".c"}

var ignoreDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	"target":       true,
}

// Build walks the repository once and assembles the digest.
func Build(repoPath string) (*Digest, error) {
	d := &Digest{
		Name:      filepath.Base(repoPath),
		Manifests: map[string]string{},
	}

	for _, name := range readmeNames {
		data, err := os.ReadFile(filepath.Join(repoPath, name))
		if err == nil {
			d.Readme = string(data)
			log.Printf("[digest]   ✓ Found %s", name)
			break
		}
	}

	for _, name := range manifestNames {
		data, err := os.ReadFile(filepath.Join(repoPath, name))
		if err == nil {
			d.Manifests[name] = string(data)
			log.Printf("[digest]   ✓ Found %s", name)
		}
	}

	d.Docs = collectDocs(filepath.Join(repoPath, "docs"))
	if len(d.Docs) > 0 {
		log.Printf("[digest]   ✓ Found %d documentation files", len(d.Docs))
	}

	d.Sources = sampleSources(repoPath)
	log.Printf("[digest]   ✓ Sampled %d source files", len(d.Sources))

	return d, nil
}

func collectDocs(docsDir string) []DocFile {
	var docs []DocFile
	filepath.Walk(docsDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return nil
		}
		if !strings.HasSuffix(fi.Name(), ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		docs = append(docs, DocFile{Name: fi.Name(), Content: clip(string(data), maxDocChars)})
		return nil
	})
	return docs
}

// sampleSources buckets files by extension in one walk, then takes up to
// maxPerExt per extension in priority order, maxSourceFiles total.
func sampleSources(repoPath string) []SourceFile {
	byExt := map[string][]string{}
	filepath.Walk(repoPath, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if fi.IsDir() {
			if ignoreDirs[fi.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		byExt[ext] = append(byExt[ext], path)
		return nil
	})

	var sources []SourceFile
	for _, ext := range sourceExtensions {
		paths := byExt[ext]
		sort.Strings(paths)
		for i := 0; i < len(paths) && i < maxPerExt; i++ {
			if len(sources) >= maxSourceFiles {
				return sources
			}
			data, err := os.ReadFile(paths[i])
			if err != nil {
				continue
			}
			rel, err := filepath.Rel(repoPath, paths[i])
			if err != nil {
				rel = paths[i]
			}
			sources = append(sources, SourceFile{
				Name:    filepath.Base(paths[i]),
				Path:    rel,
				Content: clip(string(data), maxFileChars),
			})
		}
	}
	return sources
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
