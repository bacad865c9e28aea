package court

import (
	"net/url"
	"regexp"
	"strings"
)

// GovDelivery tracking wrapper: https://links-X.govdelivery.com/CL0/<encoded-target>
var wrapperExpr = regexp.MustCompile(`(?i)https?://links[^\s]*?\.govdelivery\.com/CL0/(https?[^\s<>"')/]*)`)

// Direct court links that bypass the tracking wrapper.
var directExpr = regexp.MustCompile(`(?i)https?://(?:www\.)?[a-z0-9]+\.uscourts\.gov/[^\s<>"')]*`)

// ExtractLinks recovers landing-page URLs from a notification body. Wrapped
// links are percent-decoded and kept only when the target is on the court
// domain; direct links are collected independently. The union is
// deduplicated and direct PDF URLs are excluded, since those are final
// targets rather than landing pages.
func (s *CAFCSite) ExtractLinks(body string) []string {
	var links []string
	seen := map[string]struct{}{}

	add := func(u string) {
		if strings.HasSuffix(strings.ToLower(u), ".pdf") {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		links = append(links, u)
	}

	for _, match := range wrapperExpr.FindAllStringSubmatch(body, -1) {
		decoded, err := url.PathUnescape(match[1])
		if err != nil {
			// Malformed percent-encoding: skip the match, keep scanning.
			continue
		}
		if strings.Contains(strings.ToLower(decoded), courtDomain) {
			add(decoded)
		}
	}

	for _, match := range directExpr.FindAllString(body, -1) {
		add(match)
	}

	return links
}
