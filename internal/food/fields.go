package food

import "strings"

// allowedFields is the allow-list of selectable columns on food_items.
// Anything not listed here is silently dropped from a field selection so
// user input never reaches the SQL text.
var allowedFields = []string{
	"id", "food_name", "energy_kcal", "energy_kj", "carbohydrate_g", "protein_g",
	"total_fat_g", "dietary_fiber_g", "total_sugars_g", "free_sugars_g", "water_g",
	"sfa_g", "mufa_g", "pufa_g", "cholesterol_mg", "vit_a_mcug_ug", "retinol_mcug",
	"lutein_zeaxanthin_mcug", "carotene_alpha_mcug", "carotene_beta_mcug", "carotenoids_ug",
	"vit_d_mcug", "vit_d2_mcug", "vit_d3_mcug", "vit_k_mcug", "vit_k1_mcug", "vit_k2_mcug",
	"vit_e_mg", "vit_e_added_mg", "vit_c_mg", "thiamin_mg", "riboflavin_mg", "niacin_mg",
	"vit_b6_mg", "vit_b5_mg", "vit_b7_mcug", "folate_dfe_mcug", "folate_food_mcug",
	"folate_total_mcug", "folic_acid_mcug", "vit_b12_mcug", "vit_b12_added_mcug",
	"choline_mg", "calcium_mg", "phosphorus_mg", "magnesium_mg", "sodium_mg",
	"potassium_mg", "iron_mg", "zinc_mg", "copper_mg", "selenium_mcug",
	"chromium_mg", "manganese_mg", "molybdenum_mg", "theobromine_mg",
	"lycopene_mcug", "cryptoxanthin_beta_mcug", "alcohol_g", "caffeine_mg",
}

var allowedFieldSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(allowedFields))
	for _, f := range allowedFields {
		set[f] = struct{}{}
	}
	return set
}()

// validateFields filters a field selection down to allow-listed columns.
func validateFields(fields []string) []string {
	var valid []string
	for _, f := range fields {
		if _, ok := allowedFieldSet[f]; ok {
			valid = append(valid, f)
		}
	}
	return valid
}

// formatColumns renders a validated field selection as SQL columns.
// food_name is aliased to name for the frontend; an empty selection
// selects everything.
func formatColumns(fields []string) string {
	if len(fields) == 0 {
		return "*"
	}
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "food_name" {
			cols = append(cols, `"food_name" AS "name"`)
			continue
		}
		cols = append(cols, `"`+f+`"`)
	}
	return strings.Join(cols, ", ")
}
