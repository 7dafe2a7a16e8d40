// Package templates holds the shared layout and form components of the site.
package templates

import vm "github.com/ericfisherdev/authorsite/internal/adapter/driving/web/viewmodel"

func pageTitle(page vm.Page) string {
	if page.Title == "" {
		return page.SiteTitle
	}
	return page.Title + " | " + page.SiteTitle
}
