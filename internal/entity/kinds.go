// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/go-nutri-sync/models"
)

const dateLayout = "2006-01-02"

type nutritionLogKind struct{}

func (nutritionLogKind) Type() models.EntityType { return models.EntityNutritionLog }

func (nutritionLogKind) Validate(payload json.RawMessage) error {
	var l NutritionLog
	if err := json.Unmarshal(payload, &l); err != nil {
		return fmt.Errorf("nutrition_log: %w", err)
	}
	if err := validateDate(l.Date); err != nil {
		return fmt.Errorf("nutrition_log: %w", err)
	}
	for meal, entries := range l.Meals {
		for _, e := range entries {
			if e.Quantity < 0 || negativeNutrients(e.Nutrients) {
				return fmt.Errorf("nutrition_log: meal %q entry %q: %w", meal, e.ID, ErrNegative)
			}
		}
	}
	return nil
}

func (nutritionLogKind) Priority(json.RawMessage) int { return PriorityLog }

func (nutritionLogKind) IndexFields(payload json.RawMessage) models.IndexFields {
	return extractIndexFields(payload)
}

func (nutritionLogKind) Merge(local, remote json.RawMessage) (json.RawMessage, bool, error) {
	return mergeObjects(local, remote, map[string]fieldMerge{
		"tags":  unionStrings,
		"meals": mergeMeals,
	}, deriveNutritionTotals)
}

type activityLogKind struct{}

func (activityLogKind) Type() models.EntityType { return models.EntityActivityLog }

func (activityLogKind) Validate(payload json.RawMessage) error {
	var l ActivityLog
	if err := json.Unmarshal(payload, &l); err != nil {
		return fmt.Errorf("activity_log: %w", err)
	}
	if err := validateDate(l.Date); err != nil {
		return fmt.Errorf("activity_log: %w", err)
	}
	for _, a := range l.Activities {
		if a.Minutes < 0 || a.CaloriesBurned < 0 {
			return fmt.Errorf("activity_log: activity %q: %w", a.ID, ErrNegative)
		}
	}
	return nil
}

func (activityLogKind) Priority(json.RawMessage) int { return PriorityLog }

func (activityLogKind) IndexFields(payload json.RawMessage) models.IndexFields {
	return extractIndexFields(payload)
}

func (activityLogKind) Merge(local, remote json.RawMessage) (json.RawMessage, bool, error) {
	return mergeObjects(local, remote, map[string]fieldMerge{
		"tags":       unionStrings,
		"activities": concatByID,
	}, deriveActivityTotals)
}

type recipeKind struct{}

func (recipeKind) Type() models.EntityType { return models.EntityRecipe }

func (recipeKind) Validate(payload json.RawMessage) error {
	var r Recipe
	if err := json.Unmarshal(payload, &r); err != nil {
		return fmt.Errorf("recipe: %w", err)
	}
	if r.Name == "" {
		return fmt.Errorf("recipe: %w", ErrMissingName)
	}
	if r.Servings < 0 {
		return fmt.Errorf("recipe: servings: %w", ErrNegative)
	}
	for _, ing := range r.Ingredients {
		if ing.Quantity < 0 || negativeNutrients(ing.Nutrients) {
			return fmt.Errorf("recipe: ingredient %q: %w", ing.ID, ErrNegative)
		}
	}
	return nil
}

func (recipeKind) Priority(payload json.RawMessage) int {
	var r struct {
		Favorite bool `json:"favorite"`
	}
	if err := json.Unmarshal(payload, &r); err == nil && r.Favorite {
		return PriorityFavoriteRecipe
	}
	return PriorityRecipe
}

func (recipeKind) IndexFields(payload json.RawMessage) models.IndexFields {
	return extractIndexFields(payload)
}

func (recipeKind) Merge(local, remote json.RawMessage) (json.RawMessage, bool, error) {
	return mergeObjects(local, remote, map[string]fieldMerge{
		"tags":        unionStrings,
		"ingredients": concatByID,
	}, deriveRecipeNutrition)
}

type ingredientKind struct{}

func (ingredientKind) Type() models.EntityType { return models.EntityIngredient }

func (ingredientKind) Validate(payload json.RawMessage) error {
	var i Ingredient
	if err := json.Unmarshal(payload, &i); err != nil {
		return fmt.Errorf("ingredient: %w", err)
	}
	if i.Name == "" {
		return fmt.Errorf("ingredient: %w", ErrMissingName)
	}
	if negativeNutrients(i.Per100g) {
		return fmt.Errorf("ingredient: per100g: %w", ErrNegative)
	}
	return nil
}

func (ingredientKind) Priority(json.RawMessage) int { return PriorityReference }

func (ingredientKind) IndexFields(payload json.RawMessage) models.IndexFields {
	return extractIndexFields(payload)
}

func (ingredientKind) Merge(json.RawMessage, json.RawMessage) (json.RawMessage, bool, error) {
	return nil, false, nil
}

type genericKind struct {
	t models.EntityType
}

func (g genericKind) Type() models.EntityType { return g.t }

func (genericKind) Validate(json.RawMessage) error { return nil }

func (genericKind) Priority(json.RawMessage) int { return PriorityDefault }

func (genericKind) IndexFields(payload json.RawMessage) models.IndexFields {
	return extractIndexFields(payload)
}

func (genericKind) Merge(json.RawMessage, json.RawMessage) (json.RawMessage, bool, error) {
	return nil, false, nil
}

func validateDate(date string) error {
	if date == "" {
		return ErrMissingDate
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func negativeNutrients(n Nutrients) bool {
	return n.Calories < 0 || n.Protein < 0 || n.Carbs < 0 || n.Fat < 0 || n.Fiber < 0
}
