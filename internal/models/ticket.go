package models

import (
	"time"
)

// Category is the ticket tier. It fixes the price at creation time.
type Category string

const (
	CategoryRegular Category = "regular"
	CategoryVIP     Category = "vip"
)

// Categories lists every accepted category in display order.
var Categories = []Category{CategoryRegular, CategoryVIP}

func (c Category) Valid() bool {
	switch c {
	case CategoryRegular, CategoryVIP:
		return true
	}
	return false
}

// ParseCategory converts raw input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

type DietaryNeed string

const (
	DietaryVegetarian     DietaryNeed = "vegetarian"
	DietaryVegan          DietaryNeed = "vegan"
	DietaryGlutenFree     DietaryNeed = "gluten-free"
	DietaryDairyFree      DietaryNeed = "dairy-free"
	DietaryNutAllergies   DietaryNeed = "nut-allergies"
	DietaryNoRestrictions DietaryNeed = "no-restrictions"
)

var DietaryNeeds = []DietaryNeed{
	DietaryVegetarian,
	DietaryVegan,
	DietaryGlutenFree,
	DietaryDairyFree,
	DietaryNutAllergies,
	DietaryNoRestrictions,
}

func (d DietaryNeed) Valid() bool {
	for _, known := range DietaryNeeds {
		if d == known {
			return true
		}
	}
	return false
}

type MealChoice string

const (
	MealChicken    MealChoice = "chicken"
	MealBeef       MealChoice = "beef"
	MealFish       MealChoice = "fish"
	MealVegetarian MealChoice = "vegetarian"
)

var MealChoices = []MealChoice{MealChicken, MealBeef, MealFish, MealVegetarian}

func (m MealChoice) Valid() bool {
	switch m {
	case MealChicken, MealBeef, MealFish, MealVegetarian:
		return true
	}
	return false
}

// Ticket is one admission slot. Preferences stay empty until the attendee
// submits them; SubmittedAt is nil until then.
type Ticket struct {
	ID           int64         `json:"id"`
	Code         string        `json:"code"`
	Category     Category      `json:"type"`
	Price        int64         `json:"price"`
	DietaryNeeds []DietaryNeed `json:"dietary_needs"`
	MealChoice   *MealChoice   `json:"meal_choice"`
	SubmittedAt  *time.Time    `json:"submitted_at"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Submitted reports whether preferences were recorded at least once.
func (t *Ticket) Submitted() bool {
	return t.SubmittedAt != nil
}

// Preferences is the pair an attendee submits against their ticket.
type Preferences struct {
	DietaryNeeds []DietaryNeed `json:"dietary_needs"`
	MealChoice   MealChoice    `json:"meal_choice"`
}

// Validate checks the closed enumerations and that dietary needs form a
// non-empty set.
func (p Preferences) Validate() error {
	if len(p.DietaryNeeds) == 0 {
		return ErrInvalidPreferences
	}
	seen := make(map[DietaryNeed]bool, len(p.DietaryNeeds))
	for _, need := range p.DietaryNeeds {
		if !need.Valid() || seen[need] {
			return ErrInvalidPreferences
		}
		seen[need] = true
	}
	if !p.MealChoice.Valid() {
		return ErrInvalidPreferences
	}
	return nil
}
