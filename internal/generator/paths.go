package generator

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/NikitaCOEUR/autosuggest/internal/trigger"
)

// Folder visibility for FilePaths
const (
	ShowFoldersAlways = "always"
	ShowFoldersNever  = "never"
	ShowFoldersOnly   = "only"
)

// PathOptions narrows the listing produced by FilePaths
type PathOptions struct {
	// Extensions keeps files with one of these extensions ("go", ".go")
	Extensions []string
	// Equals keeps files with one of these exact names
	Equals []string
	// Matches keeps files whose name matches
	Matches *regexp.Regexp
	// ShowFolders is always (default), never or only
	ShowFolders string
	// RootDirectory lists relative to this directory instead of the working directory
	RootDirectory string
}

// FilePaths returns a custom generator listing files and folders for the path
// being typed. It re-runs whenever a new "/" is typed.
func FilePaths(opts PathOptions) *Descriptor {
	return pathGenerator(TemplateFilepaths, opts)
}

// Folders returns a custom generator listing only folders
func Folders() *Descriptor {
	return pathGenerator(TemplateFolders, PathOptions{ShowFolders: ShowFoldersOnly})
}

func pathGenerator(name string, opts PathOptions) *Descriptor {
	return &Descriptor{
		Name:    name,
		Kind:    KindCustom,
		Trigger: trigger.OnSubstring("/"),
		Custom: func(_ context.Context, gctx Context) ([]Suggestion, error) {
			if opts.RootDirectory != "" {
				gctx.WorkingDir = opts.RootDirectory
			}
			return listDirectory(gctx, name)
		},
		FilterTemplateSuggestions: true,
		TemplateFilter:            opts.filter,
	}
}

// filter applies the options to template suggestions
func (o PathOptions) filter(suggestions []Suggestion) []Suggestion {
	out := make([]Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if s.Type == "folder" {
			if o.ShowFolders != ShowFoldersNever {
				out = append(out, s)
			}
			continue
		}
		if o.ShowFolders == ShowFoldersOnly {
			continue
		}
		if o.keepFile(s.Name) {
			out = append(out, s)
		}
	}
	return out
}

func (o PathOptions) keepFile(name string) bool {
	if len(o.Extensions) == 0 && len(o.Equals) == 0 && o.Matches == nil {
		return true
	}

	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for _, want := range o.Extensions {
		if strings.TrimPrefix(want, ".") == ext && ext != "" {
			return true
		}
	}
	for _, want := range o.Equals {
		if name == want {
			return true
		}
	}
	return o.Matches != nil && o.Matches.MatchString(name)
}
