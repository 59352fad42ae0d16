// Package remote derives display information from a git origin URL.
package remote

import (
	"net/url"
	"strings"
)

// Icon names the hosting service a remote belongs to.
type Icon string

const (
	IconGitHub    Icon = "github"
	IconGitLab    Icon = "gitlab"
	IconBitbucket Icon = "bitbucket"
	IconGit       Icon = "git"
)

// Remote describes the origin of a repository.
type Remote struct {
	Host string `json:"host" yaml:"host"`
	Name string `json:"name" yaml:"name"` // owner/repo
	URL  string `json:"url" yaml:"url"`   // https form for browsing
	Icon Icon   `json:"icon" yaml:"icon"`
}

// Parse parses scp-style (git@host:owner/repo.git), ssh:// and http(s)://
// remote URLs. hostMap maps exact hostnames to an icon and wins over
// pattern matching. ok is false when no host or path can be extracted.
func Parse(rawURL string, hostMap map[string]string) (Remote, bool) {
	host, path := split(strings.TrimSpace(rawURL))
	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	if host == "" || path == "" {
		return Remote{}, false
	}

	return Remote{
		Host: host,
		Name: path,
		URL:  "https://" + host + "/" + path,
		Icon: detectIcon(host, hostMap),
	}, true
}

// split extracts host and path from a remote URL.
func split(rawURL string) (host, path string) {
	switch {
	case strings.HasPrefix(rawURL, "http://"),
		strings.HasPrefix(rawURL, "https://"),
		strings.HasPrefix(rawURL, "ssh://"),
		strings.HasPrefix(rawURL, "git://"):
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return "", ""
		}
		return parsed.Hostname(), parsed.Path
	}
	if strings.Contains(rawURL, "://") {
		return "", ""
	}

	// scp-like syntax: [user@]host:path
	at := strings.Index(rawURL, "@")
	colon := strings.Index(rawURL, ":")
	if colon <= 0 || strings.Contains(rawURL[:colon], "/") {
		return "", ""
	}
	return rawURL[at+1 : colon], rawURL[colon+1:]
}

func detectIcon(host string, hostMap map[string]string) Icon {
	if icon, ok := hostMap[host]; ok {
		return Icon(strings.ToLower(icon))
	}

	h := strings.ToLower(host)
	switch {
	case strings.Contains(h, "github"):
		return IconGitHub
	case strings.Contains(h, "gitlab"):
		return IconGitLab
	case strings.Contains(h, "bitbucket"):
		return IconBitbucket
	default:
		return IconGit
	}
}
