// Package inifile reads and writes the small INI dialect used by
// sculptor.ini: [section] headers, key = value pairs, full-line and inline
// comments starting with ';' or '#', and optionally quoted values.
//
// Section and key names are case-insensitive. Order is preserved so a file
// can be rewritten without reshuffling it.
package inifile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// File is a parsed INI document.
type File struct {
	Sections []Section
}

// Section is a named group of keys, e.g. "connection.main".
type Section struct {
	Name   string
	Values []KeyValue
}

// KeyValue is one key = value line.
type KeyValue struct {
	Key   string
	Value string
}

// SyntaxError reports a malformed line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse reads an INI document.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	var current *Section

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}

		if line[0] == '[' {
			end := strings.IndexByte(line, ']')
			if end < 0 {
				return nil, &SyntaxError{Line: lineNo, Msg: "unterminated section header"}
			}
			name := strings.ToLower(strings.TrimSpace(line[1:end]))
			if name == "" {
				return nil, &SyntaxError{Line: lineNo, Msg: "empty section name"}
			}
			current = f.section(name, true)
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &SyntaxError{Line: lineNo, Msg: fmt.Sprintf("expected key = value, got %q", line)}
		}
		if current == nil {
			return nil, &SyntaxError{Line: lineNo, Msg: "key outside of any section"}
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, &SyntaxError{Line: lineNo, Msg: "empty key"}
		}

		value, err := parseValue(value)
		if err != nil {
			return nil, &SyntaxError{Line: lineNo, Msg: err.Error()}
		}
		current.Values = append(current.Values, KeyValue{Key: key, Value: value})
	}

	return f, scanner.Err()
}

// parseValue trims the raw value, unquotes double-quoted values, and strips
// inline comments from unquoted ones.
func parseValue(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, `"`) {
		quoted, err := strconv.QuotedPrefix(raw)
		if err != nil {
			return "", fmt.Errorf("malformed quoted value %s", raw)
		}
		return strconv.Unquote(quoted)
	}
	for _, marker := range []string{" ;", " #", "\t;", "\t#"} {
		if i := strings.Index(raw, marker); i >= 0 {
			raw = raw[:i]
		}
	}
	return strings.TrimSpace(raw), nil
}

// ParseFile reads and parses an INI file from disk.
func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func (f *File) section(name string, create bool) *Section {
	name = strings.ToLower(name)
	for i := range f.Sections {
		if f.Sections[i].Name == name {
			return &f.Sections[i]
		}
	}
	if !create {
		return nil
	}
	f.Sections = append(f.Sections, Section{Name: name})
	return &f.Sections[len(f.Sections)-1]
}

// Section returns the named section, or nil.
func (f *File) Section(name string) *Section {
	return f.section(name, false)
}

// Get returns the value of key in section, or "" if absent.
func (f *File) Get(section, key string) string {
	v, _ := f.Lookup(section, key)
	return v
}

// Lookup returns the value of key in section and whether it was present.
func (f *File) Lookup(section, key string) (string, bool) {
	s := f.Section(section)
	if s == nil {
		return "", false
	}
	return s.Lookup(key)
}

// Bool parses key in section as a boolean. An absent key is false.
func (f *File) Bool(section, key string) (bool, error) {
	v, ok := f.Lookup(section, key)
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("[%s] %s: %w", section, key, err)
	}
	return b, nil
}

// SectionsWithPrefix returns the sections whose names start with prefix, in
// file order.
func (f *File) SectionsWithPrefix(prefix string) []Section {
	prefix = strings.ToLower(prefix)
	var result []Section
	for _, s := range f.Sections {
		if strings.HasPrefix(s.Name, prefix) {
			result = append(result, s)
		}
	}
	return result
}

// Set replaces key in section, creating either as needed.
func (f *File) Set(section, key, value string) {
	s := f.section(section, true)
	key = strings.ToLower(key)
	for i := range s.Values {
		if s.Values[i].Key == key {
			s.Values[i].Value = value
			return
		}
	}
	s.Values = append(s.Values, KeyValue{Key: key, Value: value})
}

// Lookup returns the last value of key and whether it was present.
func (s *Section) Lookup(key string) (string, bool) {
	key = strings.ToLower(key)
	for i := len(s.Values) - 1; i >= 0; i-- {
		if s.Values[i].Key == key {
			return s.Values[i].Value, true
		}
	}
	return "", false
}

// Get returns the last value of key, or "".
func (s *Section) Get(key string) string {
	v, _ := s.Lookup(key)
	return v
}

// Suffix returns the part of the section name after prefix:
// "connection.main" with prefix "connection." is "main".
func (s *Section) Suffix(prefix string) string {
	return strings.TrimPrefix(s.Name, strings.ToLower(prefix))
}

// Write serializes the document. Values that would not survive a round trip
// unquoted are written quoted.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, s := range f.Sections {
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "[%s]\n", s.Name)
		for _, kv := range s.Values {
			fmt.Fprintf(bw, "%s = %s\n", kv.Key, formatValue(kv.Value))
		}
	}
	return bw.Flush()
}

func formatValue(v string) string {
	if v != strings.TrimSpace(v) || strings.ContainsAny(v, ";#\"") {
		return strconv.Quote(v)
	}
	return v
}

// WriteFile writes the document to path.
func (f *File) WriteFile(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Write(fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
