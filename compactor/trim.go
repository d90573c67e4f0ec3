package compactor

import (
	"github.com/giygas/drugdb-prep/compactor/entities"
)

// essentialPropertyKinds is the closed set of experimental property kinds
// kept in the compact database. Everything else is dropped.
var essentialPropertyKinds = map[string]struct{}{
	"Melting Point":    {},
	"Water Solubility": {},
	"Molecular Weight": {},
	"logP":             {},
	"pKa":              {},
}

// TrimDrug reduces a raw drug record to the allowlisted fields. Values are
// copied verbatim, never computed. Null scalars are dropped so they end up
// absent in the output instead of serialized as null.
func TrimDrug(drug map[string]any) entities.Drug {
	ids, _ := asMap(drug["drugbank_ids"])

	return entities.Drug{
		Name: drug["name"],
		DrugbankIDs: entities.DrugbankIDs{
			Primary:   ids["primary"],
			Secondary: orEmptyList(ids["secondary"]),
		},
		Description:            drug["description"],
		Type:                   drug["type"],
		Groups:                 orEmptyList(drug["groups"]),
		Categories:             trimCategories(drug["categories"]),
		MechanismOfAction:      drug["mechanism_of_action"],
		HalfLife:               drug["half_life"],
		Absorption:             drug["absorption"],
		Metabolism:             drug["metabolism"],
		FoodInteractions:       orEmptyList(drug["food_interactions"]),
		DrugInteractions:       trimInteractions(drug["drug_interactions"]),
		ExperimentalProperties: trimProperties(drug["experimental_properties"]),
		Dosages:                trimDosages(drug["dosages"]),
		DosingInfo:             trimDosing(drug["dosing_info"]),
	}
}

// trimCategories flattens category entries to a list of labels. Plain strings
// pass through; mappings contribute the first non-empty of category, mesh_id
// or name; anything else is skipped.
func trimCategories(value any) []any {
	labels := make([]any, 0)
	list, ok := asList(value)
	if !ok {
		return labels
	}
	for _, entry := range list {
		switch v := entry.(type) {
		case map[string]any:
			if label := categoryLabel(v); label != nil {
				labels = append(labels, label)
			}
		case string:
			labels = append(labels, v)
		}
	}
	return labels
}

func categoryLabel(category map[string]any) any {
	for _, key := range []string{"category", "mesh_id", "name"} {
		v := category[key]
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		return v
	}
	return nil
}

func trimInteractions(value any) []entities.Interaction {
	trimmed := make([]entities.Interaction, 0)
	list, ok := asList(value)
	if !ok {
		return trimmed
	}
	for _, entry := range list {
		interaction, ok := asMap(entry)
		if !ok {
			continue
		}
		trimmed = append(trimmed, entities.Interaction{
			DrugbankID:  interaction["drugbank_id"],
			Name:        interaction["name"],
			Description: interaction["description"],
		})
	}
	return trimmed
}

func trimProperties(value any) []entities.Property {
	trimmed := make([]entities.Property, 0)
	list, ok := asList(value)
	if !ok {
		return trimmed
	}
	for _, entry := range list {
		property, ok := asMap(entry)
		if !ok {
			continue
		}
		kind, ok := property["kind"].(string)
		if !ok {
			continue
		}
		if _, essential := essentialPropertyKinds[kind]; !essential {
			continue
		}
		trimmed = append(trimmed, entities.Property{
			Kind:  kind,
			Value: property["value"],
			Unit:  property["unit"],
		})
	}
	return trimmed
}

func trimDosages(value any) []entities.Dosage {
	trimmed := make([]entities.Dosage, 0)
	list, ok := asList(value)
	if !ok {
		return trimmed
	}
	for _, entry := range list {
		dosage, ok := asMap(entry)
		if !ok {
			continue
		}
		trimmed = append(trimmed, entities.Dosage{
			Form:     dosage["form"],
			Route:    dosage["route"],
			Strength: dosage["strength"],
		})
	}
	return trimmed
}

// trimDosing reduces dosing_info to its allowlist. A non-mapping value trims
// to the zero DosingInfo, which serializes as an empty object.
func trimDosing(value any) entities.DosingInfo {
	dosing, ok := asMap(value)
	if !ok {
		return entities.DosingInfo{}
	}

	trimmed := entities.DosingInfo{
		HasDosing:    dosing["has_dosing"],
		Source:       dosing["source"],
		Frequency:    dosing["frequency"],
		TimesPerDay:  dosing["times_per_day"],
		Routes:       dosing["routes"],
		Instructions: dosing["instructions"],
	}

	if openFDA, ok := asMap(dosing["openfda_full"]); ok {
		trimmed.OpenFDAFull = &entities.OpenFDADosing{
			Frequency:        openFDA["frequency"],
			TimesPerDay:      openFDA["times_per_day"],
			TimesPerDayRange: openFDA["times_per_day_range"],
			Route:            openFDA["route"],
			Routes:           openFDA["routes"],
			Instructions:     openFDA["instructions"],
		}
	}

	return trimmed
}

func asMap(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)
	return m, ok
}

func asList(value any) ([]any, bool) {
	l, ok := value.([]any)
	return l, ok
}

// orEmptyList substitutes an empty list for missing or null pass-through
// sequence fields. Any other value is kept verbatim.
func orEmptyList(value any) any {
	if value == nil {
		return []any{}
	}
	return value
}
