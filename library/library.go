// Package library ingests the zipped method-name/notation text file format
// described in spec §6: a flat, line-oriented list inside a single zip
// entry, scanned line by line with blank/comment skipping and a sentinel
// terminator.
package library

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"strings"
)

// displayNameLimit truncates a method's display name; the full name is
// kept in Name and only DisplayName is shortened.
const displayNameLimit = 24

// Entry is one method record read from a library file.
type Entry struct {
	Name        string
	DisplayName string
	Code        string
	Notation    string
}

// terminatorName ends the logical list early even if more lines follow in
// the file (spec §6: "A line whose name is Zzz terminates the logical
// list").
const terminatorName = "Zzz"

// Load opens a zip archive at path and reads the method list from its
// first file entry.
func Load(path string) ([]Entry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	defer func() { _ = r.Close() }()

	if len(r.File) == 0 {
		return nil, fmt.Errorf("library %s: zip archive is empty", path)
	}

	f, err := r.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open library entry %s: %w", r.File[0].Name, err)
	}

	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse reads the method list from r, stopping at the Zzz terminator line
// if present.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "**") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}

		name := fields[0]
		if name == terminatorName {
			break
		}

		entries = append(entries, Entry{
			Name:        name,
			DisplayName: truncate(name, displayNameLimit),
			Code:        fields[1],
			Notation:    strings.Join(fields[2:], " "),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading library: %w", err)
	}

	return entries, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
