package models_test

import (
	"testing"

	"ms-rsvp/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	c, err := models.ParseCategory("regular")
	assert.NoError(t, err)
	assert.Equal(t, models.CategoryRegular, c)

	c, err = models.ParseCategory("vip")
	assert.NoError(t, err)
	assert.Equal(t, models.CategoryVIP, c)

	_, err = models.ParseCategory("student")
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
}

func TestPreferencesValidate(t *testing.T) {
	valid := models.Preferences{
		DietaryNeeds: []models.DietaryNeed{models.DietaryVegan, models.DietaryNutAllergies},
		MealChoice:   models.MealFish,
	}
	assert.NoError(t, valid.Validate())

	empty := models.Preferences{MealChoice: models.MealFish}
	assert.ErrorIs(t, empty.Validate(), models.ErrInvalidPreferences)

	unknownTag := models.Preferences{
		DietaryNeeds: []models.DietaryNeed{"paleo"},
		MealChoice:   models.MealFish,
	}
	assert.ErrorIs(t, unknownTag.Validate(), models.ErrInvalidPreferences)

	unknownMeal := models.Preferences{
		DietaryNeeds: []models.DietaryNeed{models.DietaryVegan},
		MealChoice:   "tofu",
	}
	assert.ErrorIs(t, unknownMeal.Validate(), models.ErrInvalidPreferences)

	repeated := models.Preferences{
		DietaryNeeds: []models.DietaryNeed{models.DietaryVegan, models.DietaryVegan},
		MealChoice:   models.MealFish,
	}
	assert.ErrorIs(t, repeated.Validate(), models.ErrInvalidPreferences)
}

func TestNewAttendeeStatsHasAllKeys(t *testing.T) {
	stats := models.NewAttendeeStats()

	assert.Len(t, stats.DietaryCounts, 6)
	assert.Len(t, stats.MealCounts, 4)
	for _, need := range models.DietaryNeeds {
		assert.Contains(t, stats.DietaryCounts, need)
	}
	for _, meal := range models.MealChoices {
		assert.Contains(t, stats.MealCounts, meal)
	}
}

func TestIsValidation(t *testing.T) {
	assert.True(t, models.IsValidation(models.ErrInvalidQuantity))
	assert.True(t, models.IsValidation(models.ErrInvalidCode))
	assert.False(t, models.IsValidation(models.ErrTicketNotFound))
	assert.False(t, models.IsValidation(models.ErrStoreUnavailable))
}
