// Package audit builds structured field-level change sets for history rows.
// Text is only produced at the presentation boundary through Render.
package audit

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Change is one modified field. Old and New are display values.
type Change struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// Diff collects changes between a stored row and an incoming patch.
type Diff struct {
	changes []Change
}

// String records a change when next is set and differs from cur.
// It returns the value the caller should store.
func (d *Diff) String(field, cur string, next *string) string {
	if next == nil || *next == cur {
		return cur
	}
	d.changes = append(d.changes, Change{Field: field, Old: cur, New: *next})
	return *next
}

// OptionalString compares nullable columns such as image paths.
func (d *Diff) OptionalString(field string, cur *string, next *string) *string {
	if next == nil || deref(cur) == *next {
		return cur
	}
	d.changes = append(d.changes, Change{Field: field, Old: deref(cur), New: *next})
	if *next == "" {
		return nil
	}
	v := *next
	return &v
}

// UUID compares nullable references. A non-nil next of uuid.Nil clears the reference.
func (d *Diff) UUID(field string, cur *uuid.UUID, next *uuid.UUID) *uuid.UUID {
	if next == nil {
		return cur
	}
	if *next == uuid.Nil {
		if cur == nil {
			return nil
		}
		d.changes = append(d.changes, Change{Field: field, Old: cur.String(), New: ""})
		return nil
	}
	if cur != nil && *cur == *next {
		return cur
	}
	d.changes = append(d.changes, Change{Field: field, Old: uuidString(cur), New: next.String()})
	v := *next
	return &v
}

// Decimal compares money values at two decimal places.
func (d *Diff) Decimal(field string, cur decimal.Decimal, next *decimal.Decimal) decimal.Decimal {
	if next == nil || next.Round(2).Equal(cur.Round(2)) {
		return cur
	}
	d.changes = append(d.changes, Change{Field: field, Old: cur.StringFixed(2), New: next.StringFixed(2)})
	return next.Round(2)
}

// Record appends a change computed by the caller.
func (d *Diff) Record(field, old, new string) {
	if old == new {
		return
	}
	d.changes = append(d.changes, Change{Field: field, Old: old, New: new})
}

func (d *Diff) Empty() bool { return len(d.changes) == 0 }

func (d *Diff) Changes() []Change {
	out := make([]Change, len(d.changes))
	copy(out, d.changes)
	return out
}

// Render produces the human readable sentence shown in history listings.
func Render(action string, changes []Change) string {
	if len(changes) == 0 {
		return action
	}
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s dari %s menjadi %s", c.Field, display(c.Old), display(c.New)))
	}
	return action + ": " + strings.Join(parts, ", ")
}

func display(v string) string {
	if v == "" {
		return "(kosong)"
	}
	return fmt.Sprintf("%q", v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func uuidString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
