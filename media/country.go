package media

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Country codes use the slugs of the Vietnamese catalog sites.
const (
	CountryKorea    = "han-quoc"
	CountryJapan    = "nhat-ban"
	CountryChina    = "trung-quoc"
	CountryThailand = "thai-lan"
	CountryIndia    = "an-do"
)

var scripts = []struct {
	tables  []*unicode.RangeTable
	country string
}{
	{[]*unicode.RangeTable{unicode.Hangul}, CountryKorea},
	// kana before han: Japanese text mixes both
	{[]*unicode.RangeTable{unicode.Hiragana, unicode.Katakana}, CountryJapan},
	{[]*unicode.RangeTable{unicode.Han}, CountryChina},
	{[]*unicode.RangeTable{unicode.Thai}, CountryThailand},
	{[]*unicode.RangeTable{unicode.Devanagari}, CountryIndia},
}

// InferCountry maps the first script found, in priority order, to a country code.
// It returns "" for text with none of the scripts. The result is a heuristic.
func InferCountry(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)

	for _, script := range scripts {
		for _, r := range text {
			if unicode.In(r, script.tables...) {
				return script.country
			}
		}
	}
	return ""
}

// InferCountryFromZones tries each text zone in order and returns the first non-empty inference.
func InferCountryFromZones(zones ...string) string {
	for _, zone := range zones {
		if country := InferCountry(zone); country != "" {
			return country
		}
	}
	return ""
}
