package oracle

import "testing"

func TestNormalizeSymbolTokens(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"foo.bar", []string{"foo", "bar"}},
		{"Foo::Bar", []string{"foobar"}},
		{"pkg/mod.Func()", []string{"pkg", "mod", "func"}},
		{"", nil},
		{"***", nil},
	}
	for _, tc := range cases {
		got := NormalizeSymbolTokens(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("NormalizeSymbolTokens(%q) = %v, want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("NormalizeSymbolTokens(%q) = %v, want %v", tc.in, got, tc.want)
			}
		}
	}
}

func TestSymbolNameToPath(t *testing.T) {
	if got := SymbolNameToPath("Foo.Bar"); got != "foo.bar" {
		t.Fatalf("got %q", got)
	}
	if got := SymbolNameToPath("***"); got != "unknown" {
		t.Fatalf("got %q, want unknown", got)
	}
}

func TestIsOrderedSubset(t *testing.T) {
	cases := []struct {
		superset, subset []string
		want             bool
	}{
		{[]string{"pkg", "mod", "func"}, []string{"mod", "func"}, true},
		{[]string{"pkg", "mod", "func"}, []string{"func", "mod"}, false},
		{[]string{"pkg", "mod", "func"}, nil, true},
		{[]string{"a"}, []string{"a", "b"}, false},
		{[]string{"a", "b", "c"}, []string{"a", "c"}, true},
	}
	for _, tc := range cases {
		if got := IsOrderedSubset(tc.superset, tc.subset); got != tc.want {
			t.Fatalf("IsOrderedSubset(%v, %v) = %v, want %v", tc.superset, tc.subset, got, tc.want)
		}
	}
}

func TestMatchesPathGlob(t *testing.T) {
	if !MatchesPathGlob("pkg.mod.func", "mod.func") {
		t.Fatal("expected ordered-subset match")
	}
	if MatchesPathGlob("pkg.mod.func", "func.mod") {
		t.Fatal("expected mismatch for reversed order")
	}
	if !MatchesPathGlob("anything", "") {
		t.Fatal("expected empty query to match everything")
	}
}

func TestPackageMatches(t *testing.T) {
	if !PackageMatches("foo.bar.Baz", "foo.bar") {
		t.Fatal("expected prefix match")
	}
	if PackageMatches("foo.bar.Baz", "foo.qux") {
		t.Fatal("expected mismatch")
	}
	if PackageMatches("foo", "foo") {
		t.Fatal("package prefix must exclude the symbol's own last segment")
	}
}

func TestMatchesPackageGlob(t *testing.T) {
	if !MatchesPackageGlob("foo.bar.Baz", "foo.bar") {
		t.Fatal("expected glob match under package prefix")
	}
	if MatchesPackageGlob("foo.qux.Baz", "foo.bar") {
		t.Fatal("expected glob mismatch")
	}
}
