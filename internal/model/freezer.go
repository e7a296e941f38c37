package model

import (
	"sort"
	"time"
)

// MinYear is the oldest model year accepted for a freezer.
const MinYear = 1999

// MaxYear is the newest accepted model year: the current one.
func MaxYear() int { return time.Now().Year() }

// ValidYear reports whether y lies in MinYear..MaxYear.
func ValidYear(y uint) bool { return int(y) >= MinYear && int(y) <= MaxYear() }

// Model is the hardware model of a freezer.
type Model struct {
	Name string `json:"name"`
	Year uint   `json:"year"`
}

// Freezer is the wire form of a freezer record.
type Freezer struct {
	Name     string          `json:"_id"`
	Model    Model           `json:"model"`
	Owner    *string         `json:"owner"`
	Products map[string]uint `json:"products"`
}

// Product is a catalog entry; Default is the quantity used for a new line.
type Product struct {
	Name    string `json:"_id"`
	Default uint   `json:"default"`
}

// Line is one product row of an editable freezer.
type Line struct {
	Product string
	Amount  uint
}

// Draft is a freezer being edited. Lines keep a stable order so rows
// don't jump around while the user types.
type Draft struct {
	Name  string
	Model Model
	Owner *string
	Lines []Line
}

// NewDraft copies f into an editable draft, product lines sorted by name.
func NewDraft(f Freezer) Draft {
	d := Draft{Name: f.Name, Model: f.Model}
	if f.Owner != nil {
		owner := *f.Owner
		d.Owner = &owner
	}
	d.Lines = make([]Line, 0, len(f.Products))
	for name, amount := range f.Products {
		d.Lines = append(d.Lines, Line{Product: name, Amount: amount})
	}
	sort.Slice(d.Lines, func(i, j int) bool { return d.Lines[i].Product < d.Lines[j].Product })
	return d
}

// Freezer converts the draft back to its wire form.
func (d Draft) Freezer() Freezer {
	f := Freezer{Name: d.Name, Model: d.Model, Products: make(map[string]uint, len(d.Lines))}
	if d.Owner != nil {
		owner := *d.Owner
		f.Owner = &owner
	}
	for _, l := range d.Lines {
		f.Products[l.Product] = l.Amount
	}
	return f
}

// IndexOf returns the index of the line for product, or -1.
func (d Draft) IndexOf(product string) int {
	for i, l := range d.Lines {
		if l.Product == product {
			return i
		}
	}
	return -1
}

// OwnerOrEmpty returns the owner or "" when unset.
func (d Draft) OwnerOrEmpty() string {
	if d.Owner == nil {
		return ""
	}
	return *d.Owner
}
