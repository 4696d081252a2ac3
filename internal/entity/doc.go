// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package entity describes the entity kinds the store knows about.
//
// Every [models.EntityType] maps to exactly one [Kind] through [KindOf]. A
// kind validates payloads before they are persisted, classifies their sync
// priority, extracts the secondary index fields used by filtered progressive
// loads and, for the kinds that support it, merges two divergent payloads
// written at the same instant.
//
// Payloads are plain JSON objects. Typed views ([Recipe], [NutritionLog],
// [ActivityLog], [Ingredient]) are available through [Decode].
package entity
