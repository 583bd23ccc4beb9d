package europarl

// ISO 3166-1 alpha-2 codes keyed by how the site spells member states
// out. GB is kept for pre-2020 rosters.
var countryCodesByName = map[string]string{
	"Austria":        "AT",
	"Belgium":        "BE",
	"Bulgaria":       "BG",
	"Croatia":        "HR",
	"Cyprus":         "CY",
	"Czechia":        "CZ",
	"Czech Republic": "CZ",
	"Denmark":        "DK",
	"Estonia":        "EE",
	"Finland":        "FI",
	"France":         "FR",
	"Germany":        "DE",
	"Greece":         "GR",
	"Hungary":        "HU",
	"Ireland":        "IE",
	"Italy":          "IT",
	"Latvia":         "LV",
	"Lithuania":      "LT",
	"Luxembourg":     "LU",
	"Malta":          "MT",
	"Netherlands":    "NL",
	"Poland":         "PL",
	"Portugal":       "PT",
	"Romania":        "RO",
	"Slovakia":       "SK",
	"Slovenia":       "SI",
	"Spain":          "ES",
	"Sweden":         "SE",
	"United Kingdom": "GB",
}

// CountryCode maps a country name from the site to its ISO code.
func CountryCode(name string) (string, bool) {
	code, ok := countryCodesByName[name]
	return code, ok
}
