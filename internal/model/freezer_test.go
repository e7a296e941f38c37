package model

import (
	"encoding/json"
	"testing"
)

func TestFreezerJSONFieldNames(t *testing.T) {
	raw := `{"_id":"f-1","model":{"name":"Atlant","year":2010},"owner":null,"products":{"milk":3}}`

	var f Freezer
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if f.Name != "f-1" {
		t.Errorf("Name = %q, want %q", f.Name, "f-1")
	}
	if f.Owner != nil {
		t.Errorf("Owner = %v, want nil", *f.Owner)
	}
	if f.Model.Year != 2010 || f.Model.Name != "Atlant" {
		t.Errorf("Model = %+v", f.Model)
	}
	if f.Products["milk"] != 3 {
		t.Errorf("Products[milk] = %d, want 3", f.Products["milk"])
	}
}

func TestDraftSortsLinesAndRoundTrips(t *testing.T) {
	owner := "bob"
	f := Freezer{
		Name:     "f-2",
		Model:    Model{Name: "Indesit", Year: 2001},
		Owner:    &owner,
		Products: map[string]uint{"peas": 2, "fish": 1, "ice": 7},
	}

	d := NewDraft(f)
	want := []string{"fish", "ice", "peas"}
	if len(d.Lines) != len(want) {
		t.Fatalf("len(Lines) = %d, want %d", len(d.Lines), len(want))
	}
	for i, name := range want {
		if d.Lines[i].Product != name {
			t.Errorf("Lines[%d] = %q, want %q", i, d.Lines[i].Product, name)
		}
	}

	// the draft owns its owner string
	owner = "mallory"
	if d.OwnerOrEmpty() != "bob" {
		t.Errorf("OwnerOrEmpty() = %q, want bob", d.OwnerOrEmpty())
	}

	d.Lines[d.IndexOf("ice")].Amount = 9
	back := d.Freezer()
	if back.Products["ice"] != 9 || back.Products["fish"] != 1 {
		t.Errorf("Products = %v", back.Products)
	}
	if back.Owner == nil || *back.Owner != "bob" {
		t.Errorf("Owner = %v, want bob", back.Owner)
	}
	if d.IndexOf("cheese") != -1 {
		t.Error("IndexOf(cheese) should be -1")
	}
}

func TestDraftNilOwner(t *testing.T) {
	d := NewDraft(Freezer{Name: "x"})
	if d.OwnerOrEmpty() != "" {
		t.Errorf("OwnerOrEmpty() = %q", d.OwnerOrEmpty())
	}
	if got := d.Freezer(); got.Owner != nil || got.Products == nil {
		t.Errorf("Freezer() = %+v", got)
	}
}

func TestValidYear(t *testing.T) {
	tests := []struct {
		year uint
		want bool
	}{
		{1998, false},
		{MinYear, true},
		{2010, true},
		{uint(MaxYear()), true},
		{uint(MaxYear() + 1), false},
	}
	for _, tt := range tests {
		if got := ValidYear(tt.year); got != tt.want {
			t.Errorf("ValidYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}
