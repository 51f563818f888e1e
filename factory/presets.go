package factory

import (
	"encoding/json"
)

// =============================================================================
// PRESET POLICIES
// =============================================================================
//
// Presets build JSON the same way an admin UI would, so they go through the
// exact parsing and validation path of hand-written policies:
//
//   jsonStr := factory.StandardDayShiftJSON("office", "Office hours", "08:00", "17:00", 8, "friday")
//   policy, err := factory.NewPolicyFactory().ParsePolicy(jsonStr)

// StandardDayShiftJSON returns JSON for a fixed daytime shift with weekly
// holidays paid after 4 attended days in the trailing week.
func StandardDayShiftJSON(id, name, start, end string, expectedHours float64, holidays ...string) string {
	pj := map[string]interface{}{
		"id":                                   id,
		"name":                                 name,
		"shift_type":                           "fixed",
		"start_time":                           start,
		"end_time":                             end,
		"expected_hours":                       expectedHours,
		"grace_period_in_minutes":              15,
		"grace_period_out_minutes":             15,
		"ot_threshold_minutes":                 30,
		"multiplier_normal":                    1.5,
		"multiplier_holiday":                   2,
		"holiday_weekdays":                     holidays,
		"is_holiday_paid":                      len(holidays) > 0,
		"min_attendance_days_for_paid_holiday": 4,
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}

// NightShiftJSON returns JSON for a fixed shift that ends the next morning.
func NightShiftJSON(id, name, start, end string, expectedHours float64) string {
	pj := map[string]interface{}{
		"id":                       id,
		"name":                     name,
		"shift_type":               "fixed",
		"start_time":               start,
		"end_time":                 end,
		"end_day_offset":           1,
		"expected_hours":           expectedHours,
		"grace_period_in_minutes":  10,
		"grace_period_out_minutes": 10,
		"ot_threshold_minutes":     15,
		"multiplier_normal":        1.5,
		"multiplier_holiday":       2,
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}

// ThreeCrewRotationJSON returns JSON for the classic three-crew cycle:
// a day shift, then evening plus night back to back, then a rest day.
// Staggering three crews by one day covers every hour of the clock.
// Holiday pay is spread across the work steps.
func ThreeCrewRotationJSON(id, name string) string {
	pj := map[string]interface{}{
		"id":                       id,
		"name":                     name,
		"shift_type":               "rotational",
		"expected_hours":           8,
		"grace_period_in_minutes":  10,
		"grace_period_out_minutes": 10,
		"ot_threshold_minutes":     0,
		"multiplier_normal":        1.25,
		"multiplier_holiday":       2,
		"distribute_holiday_bonus": true,
		"rotation": map[string]interface{}{
			"slots": []map[string]interface{}{
				{"label": "A", "start": "08:00", "end": "16:00"},
				{"label": "B", "start": "16:00", "end": "00:00"},
				{"label": "C", "start": "00:00", "end": "08:00"},
			},
			"sequence": []map[string]interface{}{
				{"labels": []string{"A"}},
				{"labels": []string{"B", "C"}},
				{"off": true},
			},
		},
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}

// FourOnFourOffJSON returns JSON for a 12-hour days/nights pattern:
// two days, two nights, four days off.
func FourOnFourOffJSON(id, name string) string {
	pj := map[string]interface{}{
		"id":                       id,
		"name":                     name,
		"shift_type":               "rotational",
		"expected_hours":           12,
		"grace_period_in_minutes":  10,
		"grace_period_out_minutes": 10,
		"ot_threshold_minutes":     15,
		"multiplier_normal":        1.5,
		"multiplier_holiday":       2,
		"holiday_weekdays":         []string{"sunday"},
		"is_holiday_paid":          true,
		"rotation": map[string]interface{}{
			"slots": []map[string]interface{}{
				{"label": "D", "start": "07:00", "end": "19:00"},
				{"label": "N", "start": "19:00", "end": "07:00"},
			},
			"sequence": []map[string]interface{}{
				{"labels": []string{"D"}},
				{"labels": []string{"D"}},
				{"labels": []string{"N"}},
				{"labels": []string{"N"}},
				{"off": true},
				{"off": true},
				{"off": true},
				{"off": true},
			},
		},
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}
