// Package version checks GitHub for newer brdgen releases and greets
// first-time users.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhabedank/brdgen/internal/tui"
)

const (
	// GitHubRepo is the repository polled for releases.
	GitHubRepo = "dhabedank/brdgen"

	// CheckInterval is how often to check for updates.
	CheckInterval = 24 * time.Hour

	defaultAPIBase = "https://api.github.com"
)

// Release is the subset of the GitHub release payload we read.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Notice describes an available upgrade.
type Notice struct {
	Current string
	Latest  string
	URL     string
}

// Checker polls the latest release at most once per CheckInterval,
// remembering the last poll through a marker file's mtime.
type Checker struct {
	APIBase string
	Repo    string
	Marker  string
	Client  *http.Client
	Now     func() time.Time
}

// NewChecker returns a Checker against GitHub with the marker under
// ~/.brdgen.
func NewChecker() *Checker {
	return &Checker{
		APIBase: defaultAPIBase,
		Repo:    GitHubRepo,
		Marker:  filepath.Join(stateDir(), ".last-update-check"),
		Client:  &http.Client{Timeout: 5 * time.Second},
		Now:     time.Now,
	}
}

// Check returns a Notice when a newer release exists. Dev builds, recent
// checks and any network failure all yield nil.
func (c *Checker) Check(ctx context.Context, current string) *Notice {
	if current == "dev" || current == "" {
		return nil
	}
	if c.checkedRecently() {
		return nil
	}
	c.markChecked()

	latest, err := c.latest(ctx)
	if err != nil {
		return nil
	}
	if !isNewerVersion(strings.TrimPrefix(latest.TagName, "v"), strings.TrimPrefix(current, "v")) {
		return nil
	}
	return &Notice{Current: current, Latest: latest.TagName, URL: latest.HTMLURL}
}

// PrintNotice writes the upgrade hint to w. A nil notice prints nothing.
func PrintNotice(w io.Writer, n *Notice) {
	if n == nil {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s A new version of brdgen is available: %s (you have %s)\n",
		tui.WarningStyle.Render("!"),
		tui.SuccessStyle.Render(n.Latest),
		n.Current,
	)
	if n.URL != "" {
		fmt.Fprintf(w, "  Release: %s\n", tui.HelpStyle.Render(n.URL))
	}
	fmt.Fprintf(w, "  Update: %s\n", tui.HelpStyle.Render("go install github.com/dhabedank/brdgen@latest"))
	fmt.Fprintln(w)
}

func (c *Checker) latest(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", strings.TrimRight(c.APIBase, "/"), c.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned %d", resp.StatusCode)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	return &rel, nil
}

func (c *Checker) checkedRecently() bool {
	if c.Marker == "" {
		return false
	}
	info, err := os.Stat(c.Marker)
	if err != nil {
		return false
	}
	return c.Now().Sub(info.ModTime()) < CheckInterval
}

func (c *Checker) markChecked() {
	if c.Marker == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.Marker), 0o755); err != nil {
		return
	}
	now := c.Now()
	if _, err := os.Stat(c.Marker); os.IsNotExist(err) {
		_ = os.WriteFile(c.Marker, nil, 0o644)
	}
	_ = os.Chtimes(c.Marker, now, now)
}

func stateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".brdgen"
	}
	return filepath.Join(home, ".brdgen")
}

// isNewerVersion compares dotted versions part by part; with equal
// prefixes the longer version wins.
func isNewerVersion(latest, current string) bool {
	l := strings.Split(latest, ".")
	c := strings.Split(current, ".")
	for i := 0; i < len(l) && i < len(c); i++ {
		lp, cp := parseVersionPart(l[i]), parseVersionPart(c[i])
		if lp != cp {
			return lp > cp
		}
	}
	return len(l) > len(c)
}

// parseVersionPart reads the leading number of a part ("1" from "1-beta").
func parseVersionPart(s string) int {
	var n int
	_, _ = fmt.Sscanf(s, "%d", &n)
	return n
}
