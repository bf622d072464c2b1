package commands

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"tasker/internal/service"
	"tasker/internal/state"
)

// fieldFlags are the task field flags shared by add and edit. Only flags
// given on the command line are applied to the draft.
type fieldFlags struct {
	fs          *flag.FlagSet
	title       string
	description string
	status      string
	due         string
}

func (f *fieldFlags) register(fs *flag.FlagSet, withTitle bool) {
	f.fs = fs
	if withTitle {
		fs.StringVar(&f.title, "title", "", "")
		fs.StringVar(&f.title, "t", "", "")
	}
	fs.StringVar(&f.description, "description", "", "")
	fs.StringVar(&f.description, "d", "", "")
	fs.StringVar(&f.status, "status", "", "")
	fs.StringVar(&f.status, "s", "", "")
	fs.StringVar(&f.due, "due", "", "")
}

func (f *fieldFlags) given(names ...string) bool {
	if f.fs == nil {
		return false
	}
	found := false
	f.fs.Visit(func(fl *flag.Flag) {
		for _, n := range names {
			if fl.Name == n {
				found = true
			}
		}
	})
	return found
}

// changes validates the given flags and returns a function applying them.
func (f *fieldFlags) changes() (func(d *state.Draft), error) {
	var status service.Status
	if f.given("status", "s") {
		st, err := service.ParseStatus(f.status)
		if err != nil {
			return nil, err
		}
		status = st
	}
	due := strings.TrimSpace(f.due)
	if f.given("due") && due != "" {
		if _, err := time.Parse(service.DateLayout, due); err != nil {
			return nil, fmt.Errorf("invalid due date: %s (want YYYY-MM-DD)", f.due)
		}
	}

	return func(d *state.Draft) {
		if f.given("title", "t") {
			d.Title = f.title
		}
		if f.given("description", "d") {
			d.Description = f.description
		}
		if status != "" {
			d.Status = status
		}
		if f.given("due") {
			d.DueDate = due
		}
	}, nil
}
