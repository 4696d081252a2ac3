// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package entity

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-nutri-sync/internal/utils"
)

// fieldMerge combines one top-level field of two payloads. Either side may be
// nil when the field is absent.
type fieldMerge func(local, remote json.RawMessage) (json.RawMessage, error)

// deriveFunc recomputes derived fields of a merged object in place.
type deriveFunc func(obj map[string]json.RawMessage) error

// mergeObjects merges two JSON objects field by field. Fields with a rule are
// combined by it; every other field keeps the local value, falling back to the
// remote one when local lacks it. derive then recomputes totals.
func mergeObjects(local, remote json.RawMessage, rules map[string]fieldMerge, derive deriveFunc) (json.RawMessage, bool, error) {
	var l, r map[string]json.RawMessage
	if err := json.Unmarshal(local, &l); err != nil {
		return nil, false, fmt.Errorf("merge: decode local: %w", err)
	}
	if err := json.Unmarshal(remote, &r); err != nil {
		return nil, false, fmt.Errorf("merge: decode remote: %w", err)
	}

	merged := make(map[string]json.RawMessage, len(l)+len(r))
	for k, v := range r {
		merged[k] = v
	}
	for k, v := range l {
		merged[k] = v
	}
	for field, rule := range rules {
		lv, rv := l[field], r[field]
		if lv == nil && rv == nil {
			continue
		}
		v, err := rule(lv, rv)
		if err != nil {
			return nil, false, fmt.Errorf("merge field %q: %w", field, err)
		}
		merged[field] = v
	}
	if derive != nil {
		if err := derive(merged); err != nil {
			return nil, false, err
		}
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, false, fmt.Errorf("merge: encode: %w", err)
	}
	canonical, err := utils.CanonicalObject(raw)
	if err != nil {
		return nil, false, err
	}
	return canonical, true, nil
}

// unionStrings keeps local order and appends remote values not seen yet.
func unionStrings(local, remote json.RawMessage) (json.RawMessage, error) {
	var l, r []string
	if err := unmarshalOptional(local, &l); err != nil {
		return nil, err
	}
	if err := unmarshalOptional(remote, &r); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(l)+len(r))
	for _, s := range append(l, r...) {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return json.Marshal(out)
}

// concatByID concatenates two arrays of objects, dropping remote elements
// whose id (or name, when id is empty) already appears.
func concatByID(local, remote json.RawMessage) (json.RawMessage, error) {
	var l, r []json.RawMessage
	if err := unmarshalOptional(local, &l); err != nil {
		return nil, err
	}
	if err := unmarshalOptional(remote, &r); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(l)+len(r))
	out := make([]json.RawMessage, 0, len(l)+len(r))
	for _, item := range append(l, r...) {
		key, err := itemKey(item)
		if err != nil {
			return nil, err
		}
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, item)
	}
	return json.Marshal(out)
}

// mergeMeals merges meal maps category by category with concatByID.
func mergeMeals(local, remote json.RawMessage) (json.RawMessage, error) {
	var l, r map[string]json.RawMessage
	if err := unmarshalOptional(local, &l); err != nil {
		return nil, err
	}
	if err := unmarshalOptional(remote, &r); err != nil {
		return nil, err
	}

	out := make(map[string]json.RawMessage, len(l)+len(r))
	for meal := range l {
		out[meal] = nil
	}
	for meal := range r {
		out[meal] = nil
	}
	for meal := range out {
		v, err := concatByID(l[meal], r[meal])
		if err != nil {
			return nil, fmt.Errorf("meal %q: %w", meal, err)
		}
		out[meal] = v
	}
	return json.Marshal(out)
}

func itemKey(item json.RawMessage) (string, error) {
	var k struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(item, &k); err != nil {
		return "", err
	}
	if k.ID != "" {
		return "id:" + k.ID, nil
	}
	if k.Name != "" {
		return "name:" + k.Name, nil
	}
	return "", nil
}

func unmarshalOptional(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func deriveRecipeNutrition(obj map[string]json.RawMessage) error {
	var ings []RecipeIngredient
	if err := unmarshalOptional(obj["ingredients"], &ings); err != nil {
		return fmt.Errorf("recompute nutrition: %w", err)
	}
	if len(ings) == 0 {
		return nil
	}
	var total Nutrients
	for _, ing := range ings {
		total = total.Add(ing.Nutrients)
	}
	return setField(obj, "nutrition", total.Rounded())
}

func deriveNutritionTotals(obj map[string]json.RawMessage) error {
	var meals map[string][]FoodEntry
	if err := unmarshalOptional(obj["meals"], &meals); err != nil {
		return fmt.Errorf("recompute totals: %w", err)
	}
	if len(meals) == 0 {
		return nil
	}
	var total Nutrients
	for _, entries := range meals {
		for _, e := range entries {
			total = total.Add(e.Nutrients)
		}
	}
	return setField(obj, "totals", total.Rounded())
}

func deriveActivityTotals(obj map[string]json.RawMessage) error {
	var acts []Activity
	if err := unmarshalOptional(obj["activities"], &acts); err != nil {
		return fmt.Errorf("recompute activity totals: %w", err)
	}
	if len(acts) == 0 {
		return nil
	}
	var minutes, calories float64
	for _, a := range acts {
		minutes += a.Minutes
		calories += a.CaloriesBurned
	}
	if err := setField(obj, "totalMinutes", round2(minutes)); err != nil {
		return err
	}
	return setField(obj, "totalCaloriesBurned", round2(calories))
}

func setField(obj map[string]json.RawMessage, field string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}
	obj[field] = raw
	return nil
}
