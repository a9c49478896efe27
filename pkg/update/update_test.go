package update

import "testing"

func TestSemverRegexExtractsVersionFromTagNames(t *testing.T) {
	cases := map[string]string{
		"v1.2.3":        "1.2.3",
		"release-2.0.0": "2.0.0",
		"1.0.0-beta.1":  "1.0.0-beta.1",
		"no-version":    "",
	}
	for tag, want := range cases {
		match := semverRe.FindString(tag)
		got := match
		if want != "" && got != "v"+want && got != want {
			t.Errorf("semverRe.FindString(%q) = %q, want to contain %q", tag, got, want)
		}
		if want == "" && got != "" {
			t.Errorf("semverRe.FindString(%q) = %q, want no match", tag, got)
		}
	}
}

func TestRepoIsOwnerSlashName(t *testing.T) {
	if Repo == "" {
		t.Fatal("Repo must not be empty")
	}
	slashes := 0
	for _, r := range Repo {
		if r == '/' {
			slashes++
		}
	}
	if slashes != 1 {
		t.Fatalf("Repo %q should contain exactly one '/', got %d", Repo, slashes)
	}
}
