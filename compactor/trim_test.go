package compactor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allowedDrugKeys is every key a trimmed record may carry.
var allowedDrugKeys = map[string]bool{
	"name":                    true,
	"drugbank_ids":            true,
	"description":             true,
	"type":                    true,
	"groups":                  true,
	"categories":              true,
	"mechanism_of_action":     true,
	"half_life":               true,
	"absorption":              true,
	"metabolism":              true,
	"food_interactions":       true,
	"drug_interactions":       true,
	"experimental_properties": true,
	"dosages":                 true,
	"dosing_info":             true,
}

func marshalToMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestTrimDrugKeepsOnlyAllowlistedFields(t *testing.T) {
	drug := map[string]any{
		"name":                "Aspirin",
		"description":         "An NSAID",
		"type":                "small molecule",
		"cas_number":          "50-78-2",
		"synthesis_reference": "should be dropped",
		"patents":             []any{map[string]any{"number": "X"}},
		"drugbank_ids":        map[string]any{"primary": "DB00945", "secondary": []any{"APRD00264"}, "other": "dropped"},
		"dosing_info":         map[string]any{"has_dosing": true, "internal_notes": "dropped"},
	}

	out := marshalToMap(t, TrimDrug(drug))

	for key := range out {
		assert.True(t, allowedDrugKeys[key], "unexpected field %q in trimmed drug", key)
	}
	assert.Equal(t, "Aspirin", out["name"])
	assert.Equal(t, map[string]any{"primary": "DB00945", "secondary": []any{"APRD00264"}}, out["drugbank_ids"])
	assert.Equal(t, map[string]any{"has_dosing": true}, out["dosing_info"])
}

func TestTrimDrugMissingScalarsAreAbsent(t *testing.T) {
	out := marshalToMap(t, TrimDrug(map[string]any{"name": "Minimal"}))

	for _, key := range []string{"description", "type", "mechanism_of_action", "half_life", "absorption", "metabolism"} {
		_, present := out[key]
		assert.False(t, present, "expected %q to be absent, not null", key)
	}

	// Null values are treated the same as missing ones
	out = marshalToMap(t, TrimDrug(map[string]any{"name": "Minimal", "description": nil}))
	_, present := out["description"]
	assert.False(t, present)
}

func TestTrimDrugSequenceDefaults(t *testing.T) {
	out := marshalToMap(t, TrimDrug(map[string]any{}))

	assert.Equal(t, []any{}, out["groups"])
	assert.Equal(t, []any{}, out["food_interactions"])
	assert.Equal(t, []any{}, out["categories"])
	assert.Equal(t, []any{}, out["drug_interactions"])
	assert.Equal(t, []any{}, out["experimental_properties"])
	assert.Equal(t, []any{}, out["dosages"])
	assert.Equal(t, map[string]any{}, out["dosing_info"])
	assert.Equal(t, map[string]any{"secondary": []any{}}, out["drugbank_ids"])
}

func TestTrimCategories(t *testing.T) {
	categories := []any{
		"A",
		map[string]any{"category": "B"},
		map[string]any{"mesh_id": "C"},
		map[string]any{},
	}

	got := trimCategories(categories)
	assert.Equal(t, []any{"A", "B", "C"}, got)
}

func TestTrimCategoriesLabelPrecedence(t *testing.T) {
	cases := []struct {
		name  string
		entry map[string]any
		want  any
	}{
		{"category wins", map[string]any{"category": "X", "mesh_id": "Y", "name": "Z"}, "X"},
		{"empty category falls through", map[string]any{"category": "", "mesh_id": "Y"}, "Y"},
		{"null category falls through", map[string]any{"category": nil, "name": "Z"}, "Z"},
		{"all empty contributes nothing", map[string]any{"category": "", "mesh_id": nil}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := trimCategories([]any{tc.entry})
			if tc.want == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, []any{tc.want}, got)
			}
		})
	}
}

func TestTrimCategoriesNonSequence(t *testing.T) {
	assert.Equal(t, []any{}, trimCategories("not a list"))
	assert.Equal(t, []any{}, trimCategories(nil))
	// Non-string, non-mapping entries are silently skipped
	assert.Equal(t, []any{"A"}, trimCategories([]any{42, "A", []any{"nested"}}))
}

func TestTrimProperties(t *testing.T) {
	properties := []any{
		map[string]any{"kind": "Melting Point", "value": "135", "unit": "C", "source": "dropped"},
		map[string]any{"kind": "Boiling Point", "value": "nope"},
		map[string]any{"kind": "logP", "value": "1.19"},
		map[string]any{"value": "no kind"},
		"not a mapping",
	}

	got := trimProperties(properties)
	require.Len(t, got, 2)
	assert.Equal(t, "Melting Point", got[0].Kind)
	assert.Equal(t, "135", got[0].Value)
	assert.Equal(t, "C", got[0].Unit)
	assert.Equal(t, "logP", got[1].Kind)
}

func TestTrimInteractions(t *testing.T) {
	interactions := []any{
		map[string]any{"drugbank_id": "DB01", "name": "Warfarin", "description": "risk", "severity": "dropped"},
		"skipped",
		map[string]any{"name": "Partial"},
	}

	got := trimInteractions(interactions)
	require.Len(t, got, 2)
	assert.Equal(t, "DB01", got[0].DrugbankID)
	assert.Equal(t, "Warfarin", got[0].Name)
	assert.Nil(t, got[1].DrugbankID)

	assert.Empty(t, trimInteractions("not a list"))
}

func TestTrimDosages(t *testing.T) {
	dosages := []any{
		map[string]any{"form": "tablet", "route": "oral", "strength": "100 mg", "ndc": "dropped"},
		42,
	}

	got := trimDosages(dosages)
	require.Len(t, got, 1)
	assert.Equal(t, "tablet", got[0].Form)
	assert.Equal(t, "oral", got[0].Route)
	assert.Equal(t, "100 mg", got[0].Strength)
}

func TestTrimDosing(t *testing.T) {
	dosing := map[string]any{
		"has_dosing":    true,
		"source":        "openfda",
		"frequency":     "daily",
		"times_per_day": json.Number("2"),
		"routes":        []any{"oral"},
		"instructions":  "with food",
		"label_text":    "dropped",
		"openfda_full": map[string]any{
			"frequency":           "daily",
			"times_per_day_range": []any{json.Number("1"), json.Number("2")},
			"brand_name":          "dropped",
		},
	}

	got := trimDosing(dosing)
	assert.Equal(t, true, got.HasDosing)
	assert.Equal(t, "openfda", got.Source)
	require.NotNil(t, got.OpenFDAFull)
	assert.Equal(t, "daily", got.OpenFDAFull.Frequency)
	assert.Nil(t, got.OpenFDAFull.Route)

	out := marshalToMap(t, got)
	assert.NotContains(t, out, "label_text")
	assert.NotContains(t, out["openfda_full"], "brand_name")
}

func TestTrimDosingNonMapping(t *testing.T) {
	for _, value := range []any{nil, "text", []any{"list"}, json.Number("3")} {
		got := trimDosing(value)
		data, err := json.Marshal(got)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(data))
	}
}

func TestTrimDrugHasDosingFalseIsKept(t *testing.T) {
	out := marshalToMap(t, TrimDrug(map[string]any{
		"dosing_info": map[string]any{"has_dosing": false},
	}))

	dosing, ok := out["dosing_info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, dosing["has_dosing"])
}

func TestTrimDrugPassThroughIsVerbatim(t *testing.T) {
	// groups and food_interactions are not inspected, whatever value is
	// there passes through
	out := marshalToMap(t, TrimDrug(map[string]any{
		"groups":            []any{"approved", "investigational"},
		"food_interactions": []any{"Avoid alcohol"},
	}))

	assert.Equal(t, []any{"approved", "investigational"}, out["groups"])
	assert.Equal(t, []any{"Avoid alcohol"}, out["food_interactions"])
}
