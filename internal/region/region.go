// Package region holds the static directory of South African provinces and
// the towns searched within them.
package region

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jobscout-za/jobscout/internal/model"
)

// Region is a province and its ordered towns.
type Region struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Towns []string `json:"towns"`
}

// directory is built once at init and never mutated, so concurrent reads
// need no locking.
var (
	directory = []Region{
		{ID: "gauteng", Name: "Gauteng", Towns: []string{
			"johannesburg", "pretoria", "sandton", "randburg", "roodepoort",
			"centurion", "midrand", "alberton", "kempton-park", "boksburg",
			"benoni", "springs", "vereeniging", "vanderbijlpark",
		}},
		{ID: "western_cape", Name: "Western Cape", Towns: []string{
			"cape-town", "stellenbosch", "paarl", "wellington", "george",
			"mossel-bay", "worcester", "malmesbury", "bellville", "parow",
			"somerset-west", "constantia",
		}},
		{ID: "eastern_cape", Name: "Eastern Cape", Towns: []string{
			"port-elizabeth", "east-london", "grahamstown", "queenstown",
			"bisho", "butterworth", "uitenhage", "graaff-reinet",
		}},
		{ID: "kwazulu_natal", Name: "KwaZulu-Natal", Towns: []string{
			"durban", "pietermaritzburg", "richards-bay", "newcastle",
			"ladysmith", "ballito", "umhlanga", "pinetown",
		}},
		{ID: "free_state", Name: "Free State", Towns: []string{
			"bloemfontein", "welkom", "bethlehem", "kroonstad", "sasolburg",
			"phuthaditjhaba", "botshabelo",
		}},
		{ID: "limpopo", Name: "Limpopo", Towns: []string{
			"polokwane", "lebowakgomo", "tzaneen", "phalaborwa", "modimolle",
			"bela-bela", "mokopane",
		}},
		{ID: "mpumalanga", Name: "Mpumalanga", Towns: []string{
			"nelspruit", "witbank", "middelburg", "standerton", "ermelo",
			"bushbuckridge", "mbombela",
		}},
		{ID: "north_west", Name: "North West", Towns: []string{
			"rustenburg", "potchefstroom", "klerksdorp", "mahikeng", "zeerust",
			"lichtenburg", "stilfontein",
		}},
		{ID: "northern_cape", Name: "Northern Cape", Towns: []string{
			"kimberley", "upington", "springbok", "de-aar", "kuruman",
			"postmasburg", "kathu",
		}},
	}

	byID   = make(map[string]int, len(directory))
	townOf = make(map[string]string)
)

func init() {
	for i, r := range directory {
		if _, dup := byID[r.ID]; dup {
			panic("region: duplicate region id " + r.ID)
		}
		byID[r.ID] = i
		for _, t := range r.Towns {
			if owner, dup := townOf[t]; dup {
				panic("region: town " + t + " listed under " + owner + " and " + r.ID)
			}
			townOf[t] = r.ID
		}
	}
}

// Normalize lowercases and trims an identifier.
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// normalizeTown also accepts spaces in place of hyphens ("Cape Town" -> "cape-town").
func normalizeTown(town string) string {
	return strings.Join(strings.Fields(Normalize(town)), "-")
}

// Lookup returns the region with the given identifier.
func Lookup(id string) (Region, bool) {
	i, ok := byID[Normalize(id)]
	if !ok {
		return Region{}, false
	}
	return clone(directory[i]), true
}

// ListTowns returns the ordered towns of a region, or an
// *model.UnknownRegionError.
func ListTowns(regionID string) ([]string, error) {
	r, ok := Lookup(regionID)
	if !ok {
		return nil, &model.UnknownRegionError{Region: regionID}
	}
	return r.Towns, nil
}

// ListRegions returns every region identifier mapped to its towns.
func ListRegions() map[string][]string {
	out := make(map[string][]string, len(directory))
	for _, r := range directory {
		out[r.ID] = append([]string(nil), r.Towns...)
	}
	return out
}

// Regions returns all regions in display order.
func Regions() []Region {
	out := make([]Region, len(directory))
	for i, r := range directory {
		out[i] = clone(r)
	}
	return out
}

// Resolve validates a region and optional town and returns the effective
// location to search: the town slug if one was given, else the region id.
func Resolve(regionID, town string) (string, error) {
	r, ok := Lookup(regionID)
	if !ok {
		return "", &model.UnknownRegionError{Region: regionID}
	}
	if strings.TrimSpace(town) == "" {
		return r.ID, nil
	}
	t := normalizeTown(town)
	if townOf[t] != r.ID {
		return "", &model.UnknownTownError{Region: r.ID, Town: town}
	}
	return t, nil
}

// RegionOf returns the region a town belongs to.
func RegionOf(town string) (string, bool) {
	id, ok := townOf[normalizeTown(town)]
	return id, ok
}

// DisplayName turns a slug such as "kempton-park" into "Kempton Park".
func DisplayName(slug string) string {
	if r, ok := Lookup(slug); ok {
		return r.Name
	}
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func clone(r Region) Region {
	r.Towns = append([]string(nil), r.Towns...)
	return r
}
