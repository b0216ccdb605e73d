package query

import (
	"net/url"
	"regexp"
	"strings"
)

var jobURLPattern = regexp.MustCompile(`^https?://.*?/job/(.+?)/?#?$`)

// JobFromURL extracts the job name from a Jenkins job URL such as
// https://ci.example.com/job/team/job/deploy/. Folder segments are joined
// with "/".
func JobFromURL(raw string) (string, bool) {
	m := jobURLPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	segments := strings.Split(m[1], "/job/")
	for i, seg := range segments {
		if strings.Contains(seg, "/") {
			return "", false
		}
		name, err := url.PathUnescape(seg)
		if err != nil || name == "" {
			return "", false
		}
		segments[i] = name
	}
	return strings.Join(segments, "/"), true
}
