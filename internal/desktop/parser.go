// Package desktop reads freedesktop.org desktop entry files.
//
// Only the [Desktop Entry] group is interpreted. Files that cannot be
// launched (hidden, NoDisplay, non-Application types, or nameless) are
// reported with ErrInvalidEntry so callers can skip them.
package desktop

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidEntry marks a file that does not describe a launchable application.
var ErrInvalidEntry = errors.New("invalid desktop entry")

// Extension is the file suffix of candidate files.
const Extension = ".desktop"

const mainGroup = "Desktop Entry"

// File is the parsed [Desktop Entry] group of one file.
type File struct {
	Path      string
	Type      string
	Name      string
	Exec      string
	Icon      string
	Terminal  bool
	NoDisplay bool
	Hidden    bool

	// names holds localized Name[locale] values keyed by locale.
	names map[string]string
}

// IsCandidate reports whether path looks like a desktop entry file.
func IsCandidate(path string) bool {
	return strings.HasSuffix(path, Extension)
}

// Parse opens and parses the desktop entry at path.
func Parse(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEntry, filepath.Base(path), err)
	}
	defer f.Close()

	file, err := ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	file.Path = path
	return file, nil
}

// ParseReader parses desktop entry content from r.
func ParseReader(r io.Reader) (*File, error) {
	file := &File{names: make(map[string]string)}
	seenGroup := false
	inMain := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("%w: malformed group header %q", ErrInvalidEntry, line)
			}
			group := line[1 : len(line)-1]
			if inMain {
				// Everything after the main group belongs to actions.
				break
			}
			inMain = group == mainGroup
			seenGroup = seenGroup || inMain
			continue
		}

		if !inMain {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue // no "=" or empty key, skip
		}
		key := strings.TrimSpace(line[:idx])
		value := unescape(strings.TrimSpace(line[idx+1:]))
		file.set(key, value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if !seenGroup {
		return nil, fmt.Errorf("%w: missing [%s] group", ErrInvalidEntry, mainGroup)
	}

	return file, nil
}

func (f *File) set(key, value string) {
	if strings.HasPrefix(key, "Name[") && strings.HasSuffix(key, "]") {
		f.names[key[len("Name["):len(key)-1]] = value
		return
	}

	switch key {
	case "Type":
		f.Type = value
	case "Name":
		f.Name = value
	case "Exec":
		f.Exec = value
	case "Icon":
		f.Icon = value
	case "Terminal":
		f.Terminal = parseBool(value)
	case "NoDisplay":
		f.NoDisplay = parseBool(value)
	case "Hidden":
		f.Hidden = parseBool(value)
	}
}

// LocalizedName returns the first Name[locale] matching locales, trying the
// full locale, then without encoding and modifier, then the language alone.
// It falls back to the untranslated Name.
func (f *File) LocalizedName(locales ...string) string {
	for _, locale := range locales {
		for _, candidate := range localeVariants(locale) {
			if name, ok := f.names[candidate]; ok && name != "" {
				return name
			}
		}
	}
	return f.Name
}

// Launchable returns nil if the file describes a visible application.
func (f *File) Launchable() error {
	if f.Hidden {
		return fmt.Errorf("%w: hidden", ErrInvalidEntry)
	}
	if f.NoDisplay {
		return fmt.Errorf("%w: NoDisplay", ErrInvalidEntry)
	}
	if f.Type != "" && f.Type != "Application" {
		return fmt.Errorf("%w: type %q", ErrInvalidEntry, f.Type)
	}
	return nil
}

// Locales returns the user's message locales from the environment, most
// specific first.
func Locales() []string {
	var locales []string
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" && v != "C" && v != "POSIX" {
			locales = append(locales, v)
		}
	}
	return locales
}

// localeVariants expands "sr_RS.UTF-8@latin" into lookup keys in
// freedesktop matching order: lang_COUNTRY@MODIFIER, lang_COUNTRY,
// lang@MODIFIER, lang.
func localeVariants(locale string) []string {
	if i := strings.IndexByte(locale, '.'); i >= 0 {
		rest := locale[i:]
		modifier := ""
		if j := strings.IndexByte(rest, '@'); j >= 0 {
			modifier = rest[j:]
		}
		locale = locale[:i] + modifier
	}

	modifier := ""
	if i := strings.IndexByte(locale, '@'); i >= 0 {
		modifier = locale[i:]
		locale = locale[:i]
	}

	lang, country, hasCountry := strings.Cut(locale, "_")

	var variants []string
	if hasCountry && modifier != "" {
		variants = append(variants, lang+"_"+country+modifier)
	}
	if hasCountry {
		variants = append(variants, lang+"_"+country)
	}
	if modifier != "" {
		variants = append(variants, lang+modifier)
	}
	return append(variants, lang)
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

// unescape expands the escape sequences allowed in string values.
func unescape(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	var sb strings.Builder
	for i := 0; i < len(v); i++ {
		if v[i] != '\\' || i == len(v)-1 {
			sb.WriteByte(v[i])
			continue
		}
		i++
		switch v[i] {
		case 's':
			sb.WriteByte(' ')
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(v[i])
		}
	}
	return sb.String()
}
