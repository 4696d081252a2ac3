// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package entity

import (
	"encoding/json"

	"github.com/MKhiriev/go-nutri-sync/models"
)

// Sync priorities. Lower values are synced sooner.
const (
	PriorityLog            = 1
	PriorityFavoriteRecipe = 2
	PriorityRecipe         = 3
	PriorityReference      = 4
	PriorityDefault        = 5
)

// Kind holds the per-entity-type behaviour of the store.
type Kind interface {
	// Type is the entity type this kind serves.
	Type() models.EntityType
	// Validate reports a kind-specific problem with payload, or nil.
	Validate(payload json.RawMessage) error
	// Priority classifies payload for the sync queue.
	Priority(payload json.RawMessage) int
	// IndexFields extracts the secondary index fields of payload.
	IndexFields(payload json.RawMessage) models.IndexFields
	// Merge combines two divergent payloads. ok is false when the kind has
	// no semantic merge.
	Merge(local, remote json.RawMessage) (merged json.RawMessage, ok bool, err error)
}

// KindOf returns the kind for t. Unknown types get the generic kind.
func KindOf(t models.EntityType) Kind {
	switch t {
	case models.EntityNutritionLog:
		return nutritionLogKind{}
	case models.EntityActivityLog:
		return activityLogKind{}
	case models.EntityRecipe:
		return recipeKind{}
	case models.EntityIngredient:
		return ingredientKind{}
	default:
		return genericKind{t: t}
	}
}

// Classify is shorthand for KindOf(t).Priority(payload).
func Classify(t models.EntityType, payload json.RawMessage) int {
	return KindOf(t).Priority(payload)
}

// indexSource is the common shape of the top-level fields every kind indexes.
type indexSource struct {
	Category *string `json:"category"`
	Favorite *bool   `json:"favorite"`
	Date     *string `json:"date"`
	UserID   *string `json:"userId"`
}

func extractIndexFields(payload json.RawMessage) models.IndexFields {
	var src indexSource
	if err := json.Unmarshal(payload, &src); err == nil {
		return models.IndexFields{
			Category: src.Category,
			Favorite: src.Favorite,
			Date:     src.Date,
			UserID:   src.UserID,
		}
	}

	// fields with an unexpected JSON type are simply not indexed
	var loose map[string]json.RawMessage
	if err := json.Unmarshal(payload, &loose); err != nil {
		return models.IndexFields{}
	}
	return models.IndexFields{
		Category: looseField[string](loose, "category"),
		Favorite: looseField[bool](loose, "favorite"),
		Date:     looseField[string](loose, "date"),
		UserID:   looseField[string](loose, "userId"),
	}
}

func looseField[T any](obj map[string]json.RawMessage, key string) *T {
	v, ok := obj[key]
	if !ok {
		return nil
	}
	var out T
	if err := json.Unmarshal(v, &out); err != nil {
		return nil
	}
	return &out
}
