package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func fixedSource(items ...MenuItem) Source {
	return SourceFunc(func(context.Context) ([]MenuItem, error) {
		out := make([]MenuItem, len(items))
		copy(out, items)
		return out, nil
	})
}

func sampleItems() []MenuItem {
	return []MenuItem{
		{ID: 1, Name: "Latte", Desc: "Milky", Type: "coffee", URL: "latte.jpg"},
		{ID: 2, Name: "Burger", Desc: "Beef", Type: "burger", URL: "burger.jpg"},
		{ID: 3, Name: "Iced Latte", Desc: "Cold", Type: "coffee", URL: "iced.jpg"},
		{ID: 4, Name: "Cheese Burger", Desc: "Cheesy", Type: "burger", URL: "cheese.jpg"},
	}
}

func loadedStore(t *testing.T, items ...MenuItem) *Store {
	t.Helper()
	s := NewStore(fixedSource(items...))
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func names(items []MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestLoadAppendsWithoutDedupe(t *testing.T) {
	s := loadedStore(t, sampleItems()...)
	if s.Len() != 4 {
		t.Fatalf("expected 4 items, got %d", s.Len())
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if s.Len() != 8 {
		t.Fatalf("expected second load to double the catalog, got %d", s.Len())
	}
}

func TestLoadFailureLeavesCatalogUnchanged(t *testing.T) {
	calls := 0
	s := NewStore(SourceFunc(func(context.Context) ([]MenuItem, error) {
		calls++
		if calls == 1 {
			return sampleItems()[:1], nil
		}
		return nil, errors.New("network down")
	}))
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if err := s.Load(context.Background()); err == nil {
		t.Fatal("expected error from failing source")
	}
	if s.Len() != 1 {
		t.Fatalf("expected catalog length 1 after failed load, got %d", s.Len())
	}
	if calls != 2 {
		t.Fatalf("expected no retry, source called %d times", calls)
	}
}

func TestLoadWithoutSource(t *testing.T) {
	s := &Store{}
	if err := s.Load(context.Background()); err == nil {
		t.Fatal("expected error when no source is configured")
	}
	if len(s.FilterByCategory(CategoryAll)) != 0 {
		t.Fatal("expected empty catalog")
	}
}

func TestFilterByCategoryAllReturnsFullCatalogInOrder(t *testing.T) {
	s := loadedStore(t, sampleItems()...)
	got := s.FilterByCategory(CategoryAll)
	if !reflect.DeepEqual(got, sampleItems()) {
		t.Fatalf("unexpected projection: %v", names(got))
	}
}

func TestFilterByCategoryExactMatch(t *testing.T) {
	s := loadedStore(t, sampleItems()...)

	got := names(s.FilterByCategory("coffee"))
	want := []string{"Latte", "Iced Latte"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("coffee: got %v want %v", got, want)
	}
	if got := s.FilterByCategory("Coffee"); len(got) != 0 {
		t.Fatalf("filter must be case-sensitive, got %v", names(got))
	}
	if got := s.FilterByCategory("coff"); len(got) != 0 {
		t.Fatalf("filter must not partially match, got %v", names(got))
	}
}

func TestSearch(t *testing.T) {
	s := loadedStore(t, sampleItems()...)

	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"Latte", "Burger", "Iced Latte", "Cheese Burger"}},
		{"bur", []string{"Burger", "Cheese Burger"}},
		{"LATTE", []string{"Latte", "Iced Latte"}},
		{"ced l", []string{"Iced Latte"}},
		{"pizza", []string{}},
	}
	for _, tc := range cases {
		got := names(s.Search(tc.query))
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Search(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestSearchEmptyQueryReturnsInputUnchanged(t *testing.T) {
	in := sampleItems()
	if got := Search(in, ""); !reflect.DeepEqual(got, in) {
		t.Fatalf("Search with empty query changed input: %v", names(got))
	}
}

func TestScenarioLatteBurger(t *testing.T) {
	s := loadedStore(t,
		MenuItem{Name: "Latte", Type: "coffee"},
		MenuItem{Name: "Burger", Type: "burger"},
	)
	if got := names(s.FilterByCategory("coffee")); !reflect.DeepEqual(got, []string{"Latte"}) {
		t.Fatalf("filter coffee: %v", got)
	}
	if got := names(s.Search("bur")); !reflect.DeepEqual(got, []string{"Burger"}) {
		t.Fatalf("search bur: %v", got)
	}
}

func TestAddRejectsIncompleteCandidates(t *testing.T) {
	valid := MenuItem{Name: "Mocha", URL: "mocha.jpg", Desc: "Chocolate", Type: "coffee"}
	cases := map[string]func(*MenuItem){
		"name":          func(m *MenuItem) { m.Name = "" },
		"url":           func(m *MenuItem) { m.URL = "  " },
		"desc":          func(m *MenuItem) { m.Desc = "" },
		"type sentinel": func(m *MenuItem) { m.Type = CategoryInvalid },
		"type empty":    func(m *MenuItem) { m.Type = "" },
		"type all":      func(m *MenuItem) { m.Type = CategoryAll },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := loadedStore(t, sampleItems()...)
			c := valid
			mutate(&c)

			view, err := s.Add(c)
			if !errors.Is(err, ErrInvalidItem) {
				t.Fatalf("expected ErrInvalidItem, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || len(verr.Fields) != 1 {
				t.Fatalf("expected one failing field, got %v", err)
			}
			if view != nil {
				t.Fatalf("expected no view on failure")
			}
			if s.Len() != 4 {
				t.Fatalf("catalog mutated on failure: len %d", s.Len())
			}
		})
	}
}

func TestAddAppendsWithNextID(t *testing.T) {
	s := loadedStore(t, sampleItems()...)
	view, err := s.Add(MenuItem{Name: " Mocha ", URL: "mocha.jpg", Desc: "Chocolate", Type: "coffee"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if s.Len() != 5 || len(view) != 5 {
		t.Fatalf("expected 5 items, store %d view %d", s.Len(), len(view))
	}
	last := view[len(view)-1]
	if last.ID != 5 || last.Name != "Mocha" {
		t.Fatalf("unexpected new item %+v", last)
	}
	if !reflect.DeepEqual(view[:4], sampleItems()) {
		t.Fatal("existing items reordered")
	}
}

func TestAddOnEmptyCatalogStartsAtOne(t *testing.T) {
	s := NewStore(nil)
	view, err := s.Add(MenuItem{Name: "Tea", URL: "tea.jpg", Desc: "Green", Type: "tea"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if view[0].ID != 1 {
		t.Fatalf("expected id 1, got %d", view[0].ID)
	}
}

func TestProjectionsDoNotMutateCatalog(t *testing.T) {
	s := loadedStore(t, sampleItems()...)
	got := s.FilterByCategory(CategoryAll)
	got[0].Name = "changed"
	if s.Items()[0].Name != "Latte" {
		t.Fatal("projection aliases catalog storage")
	}
}

func TestCategories(t *testing.T) {
	s := loadedStore(t, append(sampleItems(), MenuItem{Name: "Donut", Type: "dessert"})...)
	want := []string{"coffee", "burger", "dessert"}
	if got := s.Categories(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Categories() = %v, want %v", got, want)
	}
}
