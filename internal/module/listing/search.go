package listing

import (
	"maps"
	"slices"
	"strings"
)

// brandSynonyms maps a car brand onto its spelling in the other script.
// Not every entry has a reverse.
var brandSynonyms = map[string]string{
	"bmw": "бмв", "бмв": "bmw",
	"mercedes": "мерседес", "мерседес": "mercedes",
	"benz": "бенц",
	"audi": "ауди", "ауди": "audi",
	"vw": "фольксваген", "volkswagen": "фольксваген", "фольксваген": "vw",
	"toyota": "тойота", "тойота": "toyota",
	"lexus": "лексус", "лексус": "lexus",
	"kia": "киа", "киа": "kia",
	"hyundai": "хендай", "хендай": "hyundai",
	"ford": "форд", "форд": "ford",
	"mazda": "мазда", "мазда": "mazda",
	"honda": "хонда", "хонда": "honda",
	"nissan": "ниссан", "ниссан": "nissan",
	"tesla": "тесла", "тесла": "tesla",
	"chevrolet": "шевроле", "шевроле": "chevrolet",
	"porsche": "порш", "порш": "porsche",
	"skoda": "шкода", "шкода": "skoda",
	"volvo": "вольво", "вольво": "volvo",
}

// lookalikes replaces Latin letters with the Cyrillic letters they resemble.
var lookalikes = strings.NewReplacer(
	"a", "а", "b", "в", "c", "с", "e", "е", "h", "н", "k", "к",
	"m", "м", "o", "о", "p", "р", "t", "т", "x", "х", "y", "у",
)

// ExpandQuery returns the search variants of query: the normalized query, the
// query with every word substituted, and each substituted word on its own.
// A word is substituted by its brand synonym when it has one and is
// transliterated letter by letter otherwise.
//
// The result is sorted and free of duplicates. ExpandQuery("") returns [""].
func ExpandQuery(query string) []string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	set := map[string]struct{}{normalized: {}}

	words := strings.Fields(normalized)
	substituted := make([]string, 0, len(words))
	for _, w := range words {
		if syn, ok := brandSynonyms[w]; ok {
			substituted = append(substituted, syn)
		} else {
			substituted = append(substituted, lookalikes.Replace(w))
		}
	}

	set[strings.Join(substituted, " ")] = struct{}{}
	for _, w := range substituted {
		set[w] = struct{}{}
	}

	return slices.Sorted(maps.Keys(set))
}
