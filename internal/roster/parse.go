/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package roster

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/nightwatch/internal/watch"
)

// Parse reads the plain text roster format:
//
//	22:00,06:00
//	SGT,Virtanen,yes
//	PVT,Korhonen,no
//
//	CPL,Nieminen,no
//
// The first line is the night's start and end. Each following line is one
// soldier as RANK,Name,yes|no where the last field marks a driver. Blank
// lines separate squads.
func Parse(r io.Reader) (*Roster, error) {
	scanner := bufio.NewScanner(r)
	ro := &Roster{}
	var current Squad
	haveInterval := false
	lineNo := 0

	flush := func() {
		if len(current.Soldiers) > 0 {
			ro.Squads = append(ro.Squads, current)
		}
		current = Squad{}
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if !haveInterval {
			if line == "" {
				continue
			}
			iv, err := parseIntervalLine(line)
			if err != nil {
				return nil, fmt.Errorf("roster line %d: %w", lineNo, err)
			}
			ro.Interval = iv
			haveInterval = true
			continue
		}

		if line == "" {
			flush()
			continue
		}

		soldier, err := parseSoldierLine(line)
		if err != nil {
			return nil, fmt.Errorf("roster line %d: %w", lineNo, err)
		}
		current.Soldiers = append(current.Soldiers, soldier)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	flush()

	if !haveInterval {
		return nil, &watch.ConfigurationError{Reason: "roster has no start,end line"}
	}
	return ro, nil
}

// ParseYAML decodes a YAML roster document.
func ParseYAML(data []byte) (*Roster, error) {
	var ro Roster
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ro); err != nil {
		return nil, fmt.Errorf("decode yaml roster: %w", err)
	}
	return &ro, nil
}

// ParseJSON decodes a JSON roster document.
func ParseJSON(data []byte) (*Roster, error) {
	var ro Roster
	if err := json.Unmarshal(data, &ro); err != nil {
		return nil, fmt.Errorf("decode json roster: %w", err)
	}
	return &ro, nil
}

// LoadFile reads a roster from disk, choosing the format by extension:
// .yaml/.yml and .json are structured documents, anything else is the
// plain text format.
func LoadFile(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return Parse(bytes.NewReader(data))
	}
}

func parseIntervalLine(line string) (watch.Interval, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return watch.Interval{}, &watch.FormatError{Input: line, Reason: "expected START,END"}
	}
	return watch.ParseInterval(parts[0], parts[1])
}

func parseSoldierLine(line string) (Soldier, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return Soldier{}, &watch.ConfigurationError{Reason: fmt.Sprintf("expected RANK,Name,yes|no, got %q", line)}
	}
	driver, err := ParseYesNo(fields[2])
	if err != nil {
		return Soldier{}, err
	}
	return Soldier{
		Rank:   strings.TrimSpace(fields[0]),
		Name:   strings.TrimSpace(fields[1]),
		Driver: driver,
	}, nil
}

// ParseYesNo accepts exactly "yes" or "no", ignoring case and surrounding space.
func ParseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, &watch.ConfigurationError{Reason: fmt.Sprintf("expected yes or no, got %q", strings.TrimSpace(s))}
}
