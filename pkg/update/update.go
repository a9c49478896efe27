// Package update implements the -check-update flag: a GitHub releases
// lookup adapted from the teacher's pkg/cli/update.go. The generator
// never replaces its own binary — spec.md's Non-goals keep self-update
// out of scope — so CheckForUpdates keeps detectLatestFallback's release
// discovery verbatim in spirit and drops the download/exec tail of the
// teacher's version.
package update

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Repo is the GitHub "owner/name" this build checks releases against.
const Repo = "kdforest/kdforest"

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// detectLatestFallback queries the GitHub Releases API directly (rather
// than through selfupdate's own tag-matching, which is pickier about
// naming) and returns the highest semver-tagged non-draft, non-prerelease
// release it can find.
func detectLatestFallback(repo string) (*selfupdate.Release, bool, error) {
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/releases", repo)
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(apiURL)
	if err != nil {
		return nil, false, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed reading github response: %w", err)
	}

	var releases []struct {
		TagName    string `json:"tag_name"`
		Name       string `json:"name"`
		Draft      bool   `json:"draft"`
		Prerelease bool   `json:"prerelease"`
	}
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, false, fmt.Errorf("failed to decode github releases: %w", err)
	}

	type candidate struct {
		ver semver.Version
		tag string
	}
	var candidates []candidate
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
			if match == "" {
				continue
			}
		}
		v, perr := semver.Parse(match)
		if perr != nil {
			v, perr = semver.Parse(strings.TrimPrefix(match, "v"))
			if perr != nil {
				continue
			}
		}
		candidates = append(candidates, candidate{ver: v, tag: r.TagName})
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ver.GT(candidates[j].ver) })
	best := candidates[0]
	return &selfupdate.Release{Version: best.ver}, true, nil
}

// CheckForUpdates prints the current and latest known version of
// currentVersion and reports whether a newer release exists. It never
// downloads or replaces the running binary.
func CheckForUpdates(currentVersion string) error {
	fmt.Printf("Current version: %s\n", currentVersion)

	latest, found, err := detectLatestFallback(Repo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if !found || latest == nil {
		fmt.Printf("No releases found for %s.\n", Repo)
		return nil
	}
	fmt.Printf("Latest version: %s\n", latest.Version)

	current, perr := semver.Parse(currentVersion)
	if perr != nil {
		fmt.Printf("warning: could not parse current version %q: %v\n", currentVersion, perr)
		return nil
	}
	if latest.Version.Equals(current) || current.GT(latest.Version) {
		fmt.Println("You are already running the latest version.")
		return nil
	}
	fmt.Printf("A new version (%s) is available: https://github.com/%s/releases\n", latest.Version, Repo)
	return nil
}
