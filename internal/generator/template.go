package generator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/NikitaCOEUR/autosuggest/internal/derrors"
)

func (e *Executor) runTemplate(d *Descriptor, gctx Context) ([]Suggestion, error) {
	if d.Template == nil {
		return nil, derrors.NewGeneratorError(d.Label(), "template generator without template", nil)
	}

	var out []Suggestion
	for _, name := range d.Template.Builtins {
		listed, err := listDirectory(gctx, name)
		if err != nil {
			return nil, derrors.NewGeneratorError(d.Label(), "template expansion failed", err)
		}
		out = append(out, listed...)
	}

	if d.Template.Text != "" {
		rendered, err := e.expand(d.Template.Text, gctx)
		if err != nil {
			return nil, derrors.NewGeneratorError(d.Label(), "text template failed", err)
		}
		for _, line := range strings.Split(rendered, "\n") {
			s, ok := parseLine(line)
			if !ok {
				continue
			}
			s.Type = "arg"
			s.Template = &TemplateMeta{Template: TemplateText}
			out = append(out, s)
		}
	}

	if d.TemplateFilter != nil {
		out = d.TemplateFilter(out)
	}
	return out, nil
}

// templateData exposes the context to text templates and script placeholders
func templateData(gctx Context) map[string]interface{} {
	return map[string]interface{}{
		"Tokens":      gctx.Tokens,
		"SearchTerm":  gctx.SearchTerm,
		"WorkingDir":  gctx.WorkingDir,
		"ProcessName": gctx.ProcessName,
		"Env":         gctx.Env,
	}
}

// expand renders text with sprig functions, reusing parsed templates
func (e *Executor) expand(text string, gctx Context) (string, error) {
	tmpl, ok := e.templates.Get(text)
	if !ok {
		parsed, err := template.New("generator").
			Funcs(sprig.TxtFuncMap()).
			Option("missingkey=zero").
			Parse(text)
		if err != nil {
			return "", err
		}
		e.templates.Set(text, parsed)
		tmpl = parsed
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData(gctx)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// searchDir returns the directory portion of a path-like search term ("src/ma" -> "src/")
func searchDir(term string) string {
	i := strings.LastIndex(term, "/")
	if i < 0 {
		return ""
	}
	return term[:i+1]
}

// resolveDir turns the directory portion of the search term into a path to read
func resolveDir(dir string, gctx Context) (string, error) {
	switch {
	case dir == "":
		return gctx.WorkingDir, nil
	case dir == "~/" || strings.HasPrefix(dir, "~/"):
		home := gctx.Env["HOME"]
		if home == "" {
			var err error
			if home, err = os.UserHomeDir(); err != nil {
				return "", err
			}
		}
		return filepath.Join(home, dir[2:]), nil
	case filepath.IsAbs(dir):
		return dir, nil
	default:
		return filepath.Join(gctx.WorkingDir, dir), nil
	}
}

// listDirectory expands the filepaths or folders template
func listDirectory(gctx Context, name string) ([]Suggestion, error) {
	var foldersOnly bool
	switch name {
	case TemplateFilepaths:
	case TemplateFolders:
		foldersOnly = true
	default:
		return nil, fmt.Errorf("unknown template %q", name)
	}

	dir := searchDir(gctx.SearchTerm)
	path, err := resolveDir(dir, gctx)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(entries))
	for _, entry := range entries {
		isDir := entry.IsDir()
		if !isDir && entry.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(path, entry.Name())); err == nil {
				isDir = info.IsDir()
			}
		}
		if foldersOnly && !isDir {
			continue
		}

		s := Suggestion{
			Name:     entry.Name(),
			Type:     "file",
			Template: &TemplateMeta{Template: name, Dir: dir},
		}
		if isDir {
			s.Name += "/"
			s.Type = "folder"
		}
		s.Insert = s.Name
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}
