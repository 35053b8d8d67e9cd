// Package updater checks GitHub Releases for a newer labos version.
package updater

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultEndpoint is the latest-release API of the labos repository.
const DefaultEndpoint = "https://api.github.com/repos/HendryAvila/labos/releases/latest"

const checkTimeout = 10 * time.Second

// Release holds the fields of a GitHub release that matter here.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Result is the outcome of a version check.
type Result struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// Checker queries a releases endpoint.
type Checker struct {
	http     *resty.Client
	endpoint string
}

// New creates a Checker for endpoint; empty uses DefaultEndpoint.
func New(endpoint string) *Checker {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Checker{
		http: resty.New().
			SetTimeout(checkTimeout).
			SetHeader("Accept", "application/vnd.github.v3+json"),
		endpoint: endpoint,
	}
}

// Check compares current against the latest release. It is best effort:
// any failure yields a Result without a latest version.
func (c *Checker) Check(ctx context.Context, current string) Result {
	res := Result{CurrentVersion: normalizeVersion(current)}

	var release Release
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", "labos/"+current).
		SetResult(&release).
		Get(c.endpoint)
	if err != nil || resp.IsError() {
		return res
	}

	res.LatestVersion = normalizeVersion(release.TagName)
	res.ReleaseURL = release.HTMLURL
	res.UpdateAvailable = isNewer(res.CurrentVersion, res.LatestVersion)
	return res
}

// normalizeVersion strips the leading "v" from version strings.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// isNewer reports whether latest is a higher major.minor.patch than
// current. Development builds never report updates.
func isNewer(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}
	cur, lat := versionParts(current), versionParts(latest)
	for i := range cur {
		if lat[i] != cur[i] {
			return lat[i] > cur[i]
		}
	}
	return false
}

// versionParts parses the leading digits of up to three dot-separated
// parts; missing or malformed parts count as zero.
func versionParts(v string) [3]int {
	var out [3]int
	for i, part := range strings.SplitN(v, ".", 3) {
		end := strings.IndexFunc(part, func(r rune) bool { return r < '0' || r > '9' })
		if end >= 0 {
			part = part[:end]
		}
		out[i], _ = strconv.Atoi(part)
	}
	return out
}
