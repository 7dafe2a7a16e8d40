package web

import (
	"fmt"

	"gopkg.in/yaml.v3"

	vm "github.com/ericfisherdev/authorsite/internal/adapter/driving/web/viewmodel"
)

// Site is the static site metadata loaded from site.yaml.
type Site struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Tagline     string    `yaml:"tagline"`
	Nav         []NavLink `yaml:"nav"`
	Media       struct {
		Banners []string `yaml:"banners"`
	} `yaml:"media"`
	Contact struct {
		Kinds []ContactKind `yaml:"kinds"`
	} `yaml:"contact"`
}

// NavLink is one navigation entry.
type NavLink struct {
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
}

// ContactKind is one selectable contact form.
type ContactKind struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// LoadSite parses the embedded site.yaml.
func LoadSite() (Site, error) {
	data, err := contentFS.ReadFile("content/site.yaml")
	if err != nil {
		return Site{}, fmt.Errorf("reading site.yaml: %w", err)
	}
	return ParseSite(data)
}

// ParseSite parses site metadata from YAML. A title is required.
func ParseSite(data []byte) (Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return Site{}, fmt.Errorf("parsing site.yaml: %w", err)
	}
	if site.Title == "" {
		return Site{}, fmt.Errorf("parsing site.yaml: title is required")
	}
	return site, nil
}

// navFor returns the navigation with the entry for active marked.
func (s Site) navFor(active string) []vm.NavItem {
	items := make([]vm.NavItem, 0, len(s.Nav))
	for _, n := range s.Nav {
		items = append(items, vm.NavItem{Label: n.Label, Path: n.Path, Active: n.Path == active})
	}
	return items
}

// contactKinds returns the configured contact forms in display order.
func (s Site) contactKinds() []vm.ContactKind {
	kinds := make([]vm.ContactKind, 0, len(s.Contact.Kinds))
	for _, k := range s.Contact.Kinds {
		kinds = append(kinds, vm.ContactKind{Value: k.Value, Label: k.Label})
	}
	return kinds
}
