package domain

import "testing"

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "full https URL with mixed case and trailing slash",
			raw:  "HTTPS://example.com/Foo/Bar/",
			want: "/foo/bar",
		},
		{
			name: "bare segment gains leading slash",
			raw:  "foo",
			want: "/foo",
		},
		{
			name: "root keeps its slash",
			raw:  "/",
			want: "/",
		},
		{
			name: "http URL reduced to path",
			raw:  "http://brewery.example/beers/ipa",
			want: "/beers/ipa",
		},
		{
			name: "URL with no path becomes root",
			raw:  "https://brewery.example",
			want: "/",
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  "  /Pubs/The-Crown  ",
			want: "/pubs/the-crown",
		},
		{
			name: "query and fragment dropped with the rest of the URL",
			raw:  "https://brewery.example/beers?sort=abv#top",
			want: "/beers",
		},
		{
			name: "unparseable URL falls back to raw string",
			raw:  "http://bad host/IPA",
			want: "/http://bad host/ipa",
		},
		{
			name: "already normalized",
			raw:  "/beers/ipa",
			want: "/beers/ipa",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizePath(tc.raw)
			if got != tc.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizePathIdempotent(t *testing.T) {
	inputs := []string{
		"HTTPS://example.com/Foo/Bar/",
		"foo",
		"/",
		"",
		"  /A/B/C/  ",
		"http://brewery.example",
		"/beers/ipa",
		"no-slash/trailing/",
	}

	for _, in := range inputs {
		once := NormalizePath(in)
		twice := NormalizePath(once)
		if once != twice {
			t.Errorf("NormalizePath not idempotent for %q: first=%q, second=%q", in, once, twice)
		}
	}
}

func TestNormalizePathAlwaysRooted(t *testing.T) {
	inputs := []string{"foo", "Foo/Bar", "https://x.example/y", "a/", "/a/"}

	for _, in := range inputs {
		got := NormalizePath(in)
		if len(got) == 0 || got[0] != '/' {
			t.Errorf("NormalizePath(%q) = %q, expected leading slash", in, got)
		}
		if len(got) > 1 && got[len(got)-1] == '/' {
			t.Errorf("NormalizePath(%q) = %q, unexpected trailing slash", in, got)
		}
	}
}
