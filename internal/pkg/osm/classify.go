// Package osm derives a category, display name, and relevance score from raw
// OpenStreetMap tags. The Overpass provider and the poimport command both
// classify elements, so the rules live here once.
package osm

import (
	"fmt"
	"strconv"
	"strings"
)

// Categories a POI can be classified into. The set is closed; anything
// unrecognized is CategoryOther.
const (
	CategoryFood          = "food"
	CategoryWater         = "water"
	CategoryParking       = "parking"
	CategoryHealth        = "health"
	CategoryViewpoint     = "viewpoint"
	CategoryPicnic        = "picnic"
	CategoryCulture       = "culture"
	CategoryCamping       = "camping"
	CategoryShelter       = "shelter"
	CategoryAccommodation = "accommodation"
	CategoryPeak          = "peak"
	CategoryOther         = "other"
)

// Categories lists every known category.
var Categories = []string{
	CategoryFood, CategoryWater, CategoryParking, CategoryHealth,
	CategoryViewpoint, CategoryPicnic, CategoryCulture, CategoryCamping,
	CategoryShelter, CategoryAccommodation, CategoryPeak, CategoryOther,
}

// Category maps OSM tags onto the closed category set. Rules are checked in
// order (amenity, tourism, natural); the first match wins.
func Category(tags map[string]string) string {
	switch a := tags["amenity"]; a {
	case "restaurant", "cafe", "bar", "pub", "fast_food":
		return CategoryFood
	case "pharmacy", "hospital", "clinic", "doctors":
		return CategoryHealth
	case "drinking_water":
		return CategoryWater
	case "parking":
		return CategoryParking
	}
	switch t := tags["tourism"]; t {
	case "viewpoint":
		return CategoryViewpoint
	case "picnic_site":
		return CategoryPicnic
	case "museum":
		return CategoryCulture
	case "camp_site", "caravan_site":
		return CategoryCamping
	case "alpine_hut", "wilderness_hut":
		return CategoryShelter
	case "hotel", "hostel", "guest_house", "chalet", "apartment", "motel":
		return CategoryAccommodation
	}
	if tags["natural"] == "peak" {
		return CategoryPeak
	}
	return CategoryOther
}

// nameTags in priority order.
var nameTags = []string{
	"name", "alt_name", "loc_name", "short_name",
	"old_name", "int_name", "official_name",
}

// Name picks a display name: explicit name-like tags first, then a
// category-specific synthesis, then the title-cased specific tag value,
// then the title-cased category.
func Name(tags map[string]string, category string) string {
	for _, key := range nameTags {
		if v := tags[key]; v != "" {
			return v
		}
	}

	switch category {
	case CategoryPeak:
		if ele := tags["ele"]; ele != "" {
			return fmt.Sprintf("Cima (%sm)", ele)
		}
	case CategoryViewpoint:
		if v := tags["description"]; v != "" {
			return v
		}
		if v := tags["note"]; v != "" {
			return v
		}
		return "Mirador"
	}

	for _, key := range []string{"amenity", "tourism", "natural", "shop"} {
		if v := tags[key]; v != "" && v != "yes" {
			return titleCase(v)
		}
	}
	return titleCase(category)
}

// Relevance scores a POI by data richness. The score is additive, stable,
// and non-negative; callers rank and cap per category with it.
func Relevance(tags map[string]string) int {
	score := 0
	if tags["name"] != "" {
		score += 10
	}
	if tags["wikidata"] != "" || tags["wikipedia"] != "" {
		score += 20
	}
	if stars, err := strconv.Atoi(tags["stars"]); err == nil {
		score += stars * 5
	}
	if tags["award:michelin"] != "" {
		score += 30
	}
	if tags["website"] != "" || tags["contact:website"] != "" {
		score += 5
	}
	if tags["phone"] != "" || tags["contact:phone"] != "" {
		score += 5
	}
	if tags["opening_hours"] != "" {
		score += 2
	}
	return score
}

// titleCase uppercases the first letter and replaces underscores with
// spaces: "picnic_site" -> "Picnic site".
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
