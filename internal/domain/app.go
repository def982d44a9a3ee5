package domain

import "fmt"

// AppIdentity is the result of a successful link parse: AppStoreApp or PlayStoreApp.
type AppIdentity interface {
	Source() Source
	// Key identifies the app for session caching.
	Key() string
	DisplayName() string
}

type AppStoreApp struct {
	Country string // two-letter storefront code, e.g. "ie"
	Name    string // URL slug
	ID      string // numeric track id
}

func (a AppStoreApp) Source() Source { return SourceAppStore }
func (a AppStoreApp) Key() string    { return fmt.Sprintf("appstore:%s:%s", a.Country, a.ID) }
func (a AppStoreApp) DisplayName() string {
	return titleName(a.Name)
}

type PlayStoreApp struct {
	Package string
}

func (p PlayStoreApp) Source() Source { return SourcePlayStore }
func (p PlayStoreApp) Key() string    { return "playstore:" + p.Package }
func (p PlayStoreApp) DisplayName() string {
	return titleName(trimComPrefix(p.Package))
}
