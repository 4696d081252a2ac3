// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// EntityType names a logical table of the store. The well-known kinds below
// carry their own validation, priority and merge rules; any other non-empty
// value is stored as a generic entity.
type EntityType string

const (
	EntityNutritionLog EntityType = "nutrition_log"
	EntityActivityLog  EntityType = "activity_log"
	EntityRecipe       EntityType = "recipe"
	EntityIngredient   EntityType = "ingredient"
)

func (t EntityType) String() string {
	return string(t)
}
