/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/friendsincode/nightwatch/internal/watch"
)

// Prompter collects a roster interactively, asking again whenever an
// answer is out of bounds.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Collect runs the full questionnaire.
func (p *Prompter) Collect() (*Roster, error) {
	start, err := p.askClock("When does the nightly routine begin? (HH:MM): ")
	if err != nil {
		return nil, err
	}
	end, err := p.askClock("When does the nightly routine end? (HH:MM): ")
	if err != nil {
		return nil, err
	}
	ro := &Roster{Interval: watch.Interval{Start: start, End: end}}

	squadCount, err := p.askInt(
		fmt.Sprintf("How many squads are in the platoon? (%d-%d): ", MinSquads, MaxSquads),
		MinSquads, MaxSquads,
		fmt.Sprintf("There can only be %d to %d squads in a platoon!", MinSquads, MaxSquads),
	)
	if err != nil {
		return nil, err
	}

	sizes := make([]int, squadCount)
	for i := range sizes {
		sizes[i], err = p.askInt(
			fmt.Sprintf("How many soldiers are in squad #%d? (%d-%d): ", i+1, MinSquadSize, MaxSquadSize),
			MinSquadSize, MaxSquadSize,
			fmt.Sprintf("There can only be %d to %d soldiers in a squad!", MinSquadSize, MaxSquadSize),
		)
		if err != nil {
			return nil, err
		}
	}

	for i, size := range sizes {
		fmt.Fprintf(p.out, "\nInformation about squad #%d soldiers.\n\n", i+1)
		squad, err := p.askSquad(size)
		if err != nil {
			return nil, err
		}
		ro.Squads = append(ro.Squads, squad)
	}
	return ro, nil
}

func (p *Prompter) askSquad(size int) (Squad, error) {
	var squad Squad
	drivers := 0
	for j := 0; j < size; j++ {
		rank, err := p.ask(fmt.Sprintf("Enter soldier %d's rank in short form (Private = PVT, Sergeant = SGT): ", j+1))
		if err != nil {
			return Squad{}, err
		}
		name, err := p.askNonEmpty(fmt.Sprintf("Enter soldier %d's name: ", j+1))
		if err != nil {
			return Squad{}, err
		}

		var driver bool
		for {
			answer, err := p.ask(fmt.Sprintf("Is soldier %d a driver? (yes/no): ", j+1))
			if err != nil {
				return Squad{}, err
			}
			driver, err = ParseYesNo(answer)
			if err != nil {
				fmt.Fprintln(p.out, "Input has to be either 'yes' or 'no'!")
				continue
			}
			if driver && drivers >= MaxDriversPerSquad {
				fmt.Fprintf(p.out, "There can only be a maximum of %d drivers per squad!\n", MaxDriversPerSquad)
				continue
			}
			break
		}
		if driver {
			drivers++
		}
		squad.Soldiers = append(squad.Soldiers, Soldier{Rank: rank, Name: name, Driver: driver})
	}
	return squad, nil
}

func (p *Prompter) askClock(question string) (watch.ClockTime, error) {
	for {
		answer, err := p.ask(question)
		if err != nil {
			return watch.ClockTime{}, err
		}
		c, err := watch.ParseClock(answer)
		if err == nil {
			return c, nil
		}
		fmt.Fprintf(p.out, "%v\n", err)
	}
}

func (p *Prompter) askInt(question string, lo, hi int, outOfRange string) (int, error) {
	for {
		answer, err := p.ask(question)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err != nil {
			fmt.Fprintln(p.out, "Input has to be a whole number!")
			continue
		}
		if n < lo || n > hi {
			fmt.Fprintln(p.out, outOfRange)
			continue
		}
		return n, nil
	}
}

func (p *Prompter) askNonEmpty(question string) (string, error) {
	for {
		answer, err := p.ask(question)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
}

// ErrInputClosed is returned when input ends before the roster is complete.
var ErrInputClosed = errors.New("input closed before roster was complete")

func (p *Prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
