package app

import (
	"regexp"

	"app_analyser/internal/domain"
)

var (
	playLinkRe     = regexp.MustCompile(`^https://play\.google\.com/store/apps/details\?id=([a-zA-Z0-9._]+)$`)
	appStoreLinkRe = regexp.MustCompile(`^https://apps\.apple\.com/([a-z]{2})/app/([^/]+)/id(\d+)$`)
)

// ValidatePlayStoreLink returns the package id of a Google Play details link.
func ValidatePlayStoreLink(link string) (domain.PlayStoreApp, bool) {
	m := playLinkRe.FindStringSubmatch(link)
	if m == nil {
		return domain.PlayStoreApp{}, false
	}
	return domain.PlayStoreApp{Package: m[1]}, true
}

// ValidateAppStoreLink returns country, slug and numeric id of an App Store link.
func ValidateAppStoreLink(link string) (domain.AppStoreApp, bool) {
	m := appStoreLinkRe.FindStringSubmatch(link)
	if m == nil {
		return domain.AppStoreApp{}, false
	}
	return domain.AppStoreApp{Country: m[1], Name: m[2], ID: m[3]}, true
}

// ParseLink identifies the store app behind link. App Store links are tried first;
// anything matching neither form yields domain.ErrInvalidLink. The link is not trimmed.
func ParseLink(link string) (domain.AppIdentity, error) {
	if a, ok := ValidateAppStoreLink(link); ok {
		return a, nil
	}
	if p, ok := ValidatePlayStoreLink(link); ok {
		return p, nil
	}
	return nil, domain.ErrInvalidLink
}
