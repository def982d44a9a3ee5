package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"app_analyser/internal/domain"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		app  domain.AppIdentity
		want string
	}{
		{"appstore slug", domain.AppStoreApp{Country: "ie", Name: "1password-password-manager", ID: "1511601750"}, "1Password-Password-Manager"},
		{"play com package", domain.PlayStoreApp{Package: "com.artemchep.keyguard"}, "Artemchep.Keyguard"},
		{"play non-com package", domain.PlayStoreApp{Package: "org.mozilla.firefox"}, "Org.Mozilla.Firefox"},
		{"play bare com", domain.PlayStoreApp{Package: "com."}, "Com."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.app.DisplayName())
		})
	}
}

func TestKeysAreDistinctPerStore(t *testing.T) {
	a := domain.AppStoreApp{Country: "us", Name: "x", ID: "1"}
	p := domain.PlayStoreApp{Package: "com.x"}

	assert.Equal(t, "appstore:us:1", a.Key())
	assert.Equal(t, "playstore:com.x", p.Key())
	assert.Equal(t, domain.SourceAppStore, a.Source())
	assert.Equal(t, domain.SourcePlayStore, p.Source())
}
