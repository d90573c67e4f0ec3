package entities

// Drug is a trimmed record of the compact database. Retained fields are
// copied verbatim from the source document; scalar fields use `any` because
// the source schema does not guarantee value types and the compactor never
// transforms what it keeps. Fields that are missing or null in the source are
// omitted from the output rather than serialized as null.
type Drug struct {
	Name                   any           `json:"name,omitempty"`
	DrugbankIDs            DrugbankIDs   `json:"drugbank_ids"`
	Description            any           `json:"description,omitempty"`
	Type                   any           `json:"type,omitempty"`
	Groups                 any           `json:"groups"`
	Categories             []any         `json:"categories"`
	MechanismOfAction      any           `json:"mechanism_of_action,omitempty"`
	HalfLife               any           `json:"half_life,omitempty"`
	Absorption             any           `json:"absorption,omitempty"`
	Metabolism             any           `json:"metabolism,omitempty"`
	FoodInteractions       any           `json:"food_interactions"`
	DrugInteractions       []Interaction `json:"drug_interactions"`
	ExperimentalProperties []Property    `json:"experimental_properties"`
	Dosages                []Dosage      `json:"dosages"`
	DosingInfo             DosingInfo    `json:"dosing_info"`
}

// DrugbankIDs keeps the primary identifier plus any secondary ones.
type DrugbankIDs struct {
	Primary   any `json:"primary,omitempty"`
	Secondary any `json:"secondary"`
}

// Interaction is a drug interaction entry reduced to the three fields the
// downstream application displays.
type Interaction struct {
	DrugbankID  any `json:"drugbank_id,omitempty"`
	Name        any `json:"name,omitempty"`
	Description any `json:"description,omitempty"`
}

// Property is an experimental property entry. Only entries whose kind is in
// the essential set survive trimming, so Kind is always populated.
type Property struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
	Unit  any    `json:"unit,omitempty"`
}

// Dosage is a dosage entry reduced to form, route and strength.
type Dosage struct {
	Form     any `json:"form,omitempty"`
	Route    any `json:"route,omitempty"`
	Strength any `json:"strength,omitempty"`
}

// DosingInfo keeps a fixed set of dosing keys plus a reduced openfda_full
// sub-mapping. A source value that is not a mapping trims to the zero value,
// which serializes as an empty object.
type DosingInfo struct {
	HasDosing    any            `json:"has_dosing,omitempty"`
	Source       any            `json:"source,omitempty"`
	Frequency    any            `json:"frequency,omitempty"`
	TimesPerDay  any            `json:"times_per_day,omitempty"`
	Routes       any            `json:"routes,omitempty"`
	Instructions any            `json:"instructions,omitempty"`
	OpenFDAFull  *OpenFDADosing `json:"openfda_full,omitempty"`
}

// OpenFDADosing is the reduced openfda_full sub-mapping of DosingInfo.
type OpenFDADosing struct {
	Frequency        any `json:"frequency,omitempty"`
	TimesPerDay      any `json:"times_per_day,omitempty"`
	TimesPerDayRange any `json:"times_per_day_range,omitempty"`
	Route            any `json:"route,omitempty"`
	Routes           any `json:"routes,omitempty"`
	Instructions     any `json:"instructions,omitempty"`
}
