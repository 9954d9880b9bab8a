package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/findexa/finharvest/internal/model"
)

// Builtins returns the built-in source registry: the authoritative Indian
// regulators and industry bodies the harvester ships with. The returned
// sources are compiled and ready to use.
//
// Seed URLs point at investor-education and circular index pages rather
// than portal front pages, so depth 2 reaches the documents directly.
func Builtins() ([]Source, error) {
	sources := []Source{
		{
			Name:   "sebi",
			Domain: model.DomainStockEquity,
			Org:    "SEBI",
			Seeds: []string{
				"https://www.sebi.gov.in/investors.html",
				"https://www.sebi.gov.in/investors/educational-booklets.html",
				"https://www.sebi.gov.in/legal/circulars/",
			},
			Allow: []string{
				`sebi\.gov\.in/.+\.(pdf|csv|xlsx)$`,
			},
			Deny: []string{
				`login|careers`,
			},
			MaxDepth: 2,
			MaxPages: 250,
		},
		{
			Name:   "nse",
			Domain: model.DomainStockEquity,
			Org:    "NSE",
			Seeds: []string{
				"https://www.nseindia.com/invest",
				"https://www.nseindia.com/education/ncfm",
			},
			Allow: []string{
				`nseindia\.com/.+\.(pdf|csv|xlsx)$`,
			},
			Deny: []string{
				`live market`,
			},
			MaxDepth: 2,
			MaxPages: 200,
		},
		{
			Name:   "amfi",
			Domain: model.DomainMutualFundETF,
			Org:    "AMFI",
			Seeds: []string{
				"https://www.amfiindia.com/investor-corner",
				"https://www.amfiindia.com/investor-awareness",
			},
			Allow: []string{
				`amfiindia\.com/.+\.(pdf|csv|xlsx)$`,
			},
			MaxDepth: 2,
			MaxPages: 200,
		},
		{
			Name:   "rbi_sgb",
			Domain: model.DomainGold,
			Org:    "RBI",
			Seeds: []string{
				"https://www.rbi.org.in/Scripts/FAQsView.aspx?Id=138",
				"https://www.rbi.org.in/Scripts/BS_ViewMasCirculardetails.aspx?Id=5223",
			},
			Allow: []string{
				`rbi\.org\.in/.+\.(pdf|csv|xlsx)$`,
			},
			MaxDepth: 2,
			MaxPages: 200,
		},
		{
			Name:   "income_tax",
			Domain: model.DomainTaxation,
			Org:    "CBDT",
			Seeds: []string{
				"https://incometaxindia.gov.in/Pages/communications/circulars.aspx",
				"https://incometaxindia.gov.in/Pages/communications/notifications.aspx",
				"https://www.incometax.gov.in/iec/foportal/help/income-tax-slabs",
			},
			Allow: []string{
				`(incometax|incometaxindia)\.(gov)\.in/.+\.(pdf|csv|xlsx)$`,
			},
			MaxDepth: 2,
			MaxPages: 200,
		},
	}

	for i := range sources {
		if err := sources[i].Compile(); err != nil {
			return nil, err
		}
	}
	return sources, nil
}

// SourceNames returns the names in a source list, sorted.
func SourceNames(sources []Source) []string {
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Name)
	}
	sort.Strings(names)
	return names
}

// SelectSources resolves a comma-separated selection ("sebi,amfi" or "all")
// against a registry. Unknown names fail with ErrUnknownSource so a typo
// does not silently harvest nothing.
func SelectSources(registry []Source, selection string) ([]Source, error) {
	if strings.EqualFold(strings.TrimSpace(selection), "all") {
		return registry, nil
	}

	byName := make(map[string]Source, len(registry))
	for _, src := range registry {
		byName[src.Name] = src
	}

	var selected []Source
	for _, raw := range strings.Split(selection, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		src, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q (available: %s)",
				ErrUnknownSource, name, strings.Join(SourceNames(registry), ", "))
		}
		selected = append(selected, src)
	}

	if len(selected) == 0 {
		return nil, ErrNoSources
	}
	return selected, nil
}
