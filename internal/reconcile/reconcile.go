// Package reconcile applies idempotent edits to one top-level section of a
// JSON configuration file, such as the scripts of composer.json or the
// mcpServers of a desktop client's config.
//
// Install removes superseded legacy members and adds the current ones;
// Uninstall removes members that still hold the value this tool wrote. Both
// leave every other member untouched, keep member order, and skip the write
// entirely when nothing changed. Concurrent external writers are not guarded
// against: the last writer wins.
package reconcile

import "fmt"

// Entry is one member the tool manages inside a section.
type Entry struct {
	Key   string
	Value any
	// Owned entries belong to the tool outright: Install replaces a differing
	// value instead of leaving a user's customisation alone.
	Owned bool
}

// Plan is the fixed, versioned set of members for one section.
type Plan struct {
	Section string
	Current []Entry
	// Legacy entries are superseded signatures from older releases.
	Legacy []Entry
}

// Action describes what happened to a member.
type Action string

const (
	ActionAdded   Action = "added"
	ActionUpdated Action = "updated"
	ActionRemoved Action = "removed"
)

// Change records one edit made to the section.
type Change struct {
	Action Action
	Key    string
}

// Report summarises a reconciliation.
type Report struct {
	Path string
	// Created is true when the file did not exist and was written.
	Created bool
	Changes []Change
}

// Changed reports whether the file was rewritten.
func (r *Report) Changed() bool {
	return len(r.Changes) > 0
}

// Keys returns the keys touched by the given action.
func (r *Report) Keys(action Action) []string {
	var keys []string
	for _, c := range r.Changes {
		if c.Action == action {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Install brings the section at path up to date with plan, creating the file
// when it is absent.
func Install(path string, plan Plan) (*Report, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}

	section, _, err := doc.Section(plan.Section)
	if err != nil {
		return nil, err
	}

	report := &Report{Path: path}

	for _, legacy := range plan.Legacy {
		if removeIfMatches(section, legacy) {
			report.Changes = append(report.Changes, Change{Action: ActionRemoved, Key: legacy.Key})
		}
	}

	for _, entry := range plan.Current {
		value, err := marshalValue(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", entry.Key, err)
		}

		existing, present := section.Get(entry.Key)
		switch {
		case !present:
			section.Set(entry.Key, value)
			report.Changes = append(report.Changes, Change{Action: ActionAdded, Key: entry.Key})
		case entry.Owned && !sameValue(existing, entry.Value):
			section.Set(entry.Key, value)
			report.Changes = append(report.Changes, Change{Action: ActionUpdated, Key: entry.Key})
		}
	}

	if !report.Changed() {
		return report, nil
	}
	if err := persist(doc, plan.Section, section, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Uninstall removes every current or legacy member of plan that still holds
// the expected value. Members the user has repointed are kept.
func Uninstall(path string, plan Plan) (*Report, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}

	report := &Report{Path: path}
	if !doc.Exists() {
		return report, nil
	}

	section, present, err := doc.Section(plan.Section)
	if err != nil {
		return nil, err
	}
	if !present {
		return report, nil
	}

	for _, group := range [][]Entry{plan.Current, plan.Legacy} {
		for _, entry := range group {
			if removeIfMatches(section, entry) {
				report.Changes = append(report.Changes, Change{Action: ActionRemoved, Key: entry.Key})
			}
		}
	}

	if !report.Changed() {
		return report, nil
	}
	if err := persist(doc, plan.Section, section, report); err != nil {
		return nil, err
	}
	return report, nil
}

func removeIfMatches(section *Object, entry Entry) bool {
	existing, present := section.Get(entry.Key)
	if !present || !sameValue(existing, entry.Value) {
		return false
	}
	section.Delete(entry.Key)
	return true
}

func persist(doc *Document, name string, section *Object, report *Report) error {
	created := !doc.Exists()
	if err := doc.SetSection(name, section); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, doc.Path(), err)
	}
	if err := doc.Write(); err != nil {
		return err
	}
	report.Created = created
	return nil
}
