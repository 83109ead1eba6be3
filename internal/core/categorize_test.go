package core

import "testing"

func TestCategorizeDefaultTable(t *testing.T) {
	c := NewCategorizer()
	cases := map[string]string{
		"Paid for Uber ride":      "Transport",
		"Monthly Netflix":         "Entertainment",
		"":                        "Other",
		"bus to restaurant":       "Transport",
		"uberous":                 "Transport",
		"GROCERY run":             "Food",
		"March salary":            "Salary",
		"Water bill":              "Utilities",
		"birthday gift for mum":   "Gifts",
		"pharmacy":                "Health",
		"something unclassified":  "Other",
		"Freelance invoice #12":   "Freelance",
		"rent and internet split": "Rent",
	}
	for in, want := range cases {
		if got := c.Categorize(in); got != want {
			t.Fatalf("Categorize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCategorizeCustomTable(t *testing.T) {
	c := NewCategorizer(
		KeywordRule{Keyword: "Vet", Category: "Pets"},
		KeywordRule{Keyword: "", Category: "Everything"},
		KeywordRule{Keyword: "food", Category: "Pets food"},
	)
	if got := c.Categorize("vet visit and dog food"); got != "Pets" {
		t.Fatalf("expected first rule to win, got %q", got)
	}
	if got := c.Categorize("uber"); got != DefaultCategory {
		t.Fatalf("custom table must not fall back to defaults, got %q", got)
	}
	if n := len(c.rules); n != 2 {
		t.Fatalf("expected empty keyword to be dropped, got %d rules", n)
	}
}
