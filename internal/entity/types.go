// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package entity

import "math"

// Nutrients is the macro-nutrient breakdown shared by recipes, log entries
// and ingredients.
type Nutrients struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber,omitempty"`
}

// Add returns the element-wise sum of n and o.
func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
		Fiber:    n.Fiber + o.Fiber,
	}
}

// Rounded rounds every field to two decimals so recomputed totals are stable.
func (n Nutrients) Rounded() Nutrients {
	return Nutrients{
		Calories: round2(n.Calories),
		Protein:  round2(n.Protein),
		Carbs:    round2(n.Carbs),
		Fat:      round2(n.Fat),
		Fiber:    round2(n.Fiber),
	}
}

// FoodEntry is one line of a nutrition log meal.
type FoodEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity,omitempty"`
	Unit      string    `json:"unit,omitempty"`
	Nutrients Nutrients `json:"nutrients"`
}

// NutritionLog is a user's food diary for one day. Meals are keyed by
// category (breakfast, lunch, dinner, snacks); Totals is derived from them.
type NutritionLog struct {
	UserID string                 `json:"userId"`
	Date   string                 `json:"date"`
	Meals  map[string][]FoodEntry `json:"meals,omitempty"`
	Totals Nutrients              `json:"totals"`
	Tags   []string               `json:"tags,omitempty"`
	Notes  string                 `json:"notes,omitempty"`
}

// Activity is one exercise session of an activity log.
type Activity struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Minutes        float64 `json:"minutes"`
	CaloriesBurned float64 `json:"caloriesBurned"`
}

// ActivityLog is a user's exercise diary for one day. The totals are derived
// from Activities.
type ActivityLog struct {
	UserID              string     `json:"userId"`
	Date                string     `json:"date"`
	Activities          []Activity `json:"activities,omitempty"`
	TotalMinutes        float64    `json:"totalMinutes"`
	TotalCaloriesBurned float64    `json:"totalCaloriesBurned"`
	Tags                []string   `json:"tags,omitempty"`
}

// RecipeIngredient is a line of a recipe.
type RecipeIngredient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity,omitempty"`
	Unit      string    `json:"unit,omitempty"`
	Nutrients Nutrients `json:"nutrients"`
}

// Recipe is a user recipe. Nutrition is derived from Ingredients.
type Recipe struct {
	Name        string             `json:"name"`
	Category    string             `json:"category,omitempty"`
	Favorite    bool               `json:"favorite,omitempty"`
	Servings    float64            `json:"servings,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	Ingredients []RecipeIngredient `json:"ingredients,omitempty"`
	Nutrition   Nutrients          `json:"nutrition"`
	UserID      string             `json:"userId,omitempty"`
}

// Ingredient is reference data: nutrients per 100g of a food.
type Ingredient struct {
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Barcode  string    `json:"barcode,omitempty"`
	Per100g  Nutrients `json:"per100g"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
