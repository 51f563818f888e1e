/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for demos. Each scenario creates policies, assignments and clock
	records that exercise specific engine features.

AVAILABLE SCENARIOS:

	office-week:    Fixed office hours, Friday holiday paid after 4 attended days
	three-crew:     Three crews staggered on [A, B+C, OFF] covering every hour
	policy-change:  Office hours replaced by a 12-hour rotation mid-period
	night-shift:    Fixed 22:00-06:00 shift ending the next morning

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Create policies via factory presets
 3. Assign policies to employees
 4. Record clock pairs

	Dates are relative to the Monday two weeks before "now", so every
	scenario has history and a future.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "three-crew"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Reset and resolution handlers
  - factory/presets.go: Policy JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/shift"
	"github.com/warp/shift-engine/store"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "office-week",
		Name:        "Office Week",
		Description: "Fixed 08:00-17:00, Friday holiday paid after 4 attended days",
	},
	{
		ID:          "three-crew",
		Name:        "Three Crews",
		Description: "Three crews staggered one day apart on [A, B+C, OFF]",
	},
	{
		ID:          "policy-change",
		Name:        "Policy Change",
		Description: "Office hours replaced by a 2 days / 2 nights / 4 off rotation",
	},
	{
		ID:          "night-shift",
		Name:        "Night Shift",
		Description: "Fixed 22:00-06:00 shift ending the next morning",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	loaders := map[string]func(context.Context, shift.Date) error{
		"office-week":   h.loadOfficeWeekScenario,
		"three-crew":    h.loadThreeCrewScenario,
		"policy-change": h.loadPolicyChangeScenario,
		"night-shift":   h.loadNightShiftScenario,
	}
	load, ok := loaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err := h.reset(r); err != nil {
		h.internalError(w, r, "Failed to reset database", err)
		return
	}

	anchor := scenarioAnchor(h.Now())
	if err := load(r.Context(), anchor); err != nil {
		h.internalError(w, r, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.setScenario(req.ScenarioID)

	h.Logger.Info().Str("scenario", req.ScenarioID).Str("anchor", anchor.String()).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"anchor":   anchor.String(),
	})
}

// scenarioAnchor is the Monday two weeks before now.
func scenarioAnchor(now time.Time) shift.Date {
	d := shift.DateOf(now)
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-back - 14)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadOfficeWeekScenario(ctx context.Context, anchor shift.Date) error {
	if err := h.createPolicyFromJSON(ctx, factory.StandardDayShiftJSON(
		"office", "Office Hours", "08:00", "17:00", 8, "friday")); err != nil {
		return err
	}
	for _, emp := range []string{"alice", "bob"} {
		if err := h.assign(ctx, emp, "office", anchor, nil); err != nil {
			return err
		}
	}

	// Alice attends Monday-Thursday (late on Tuesday, overtime on
	// Wednesday) and earns the paid Friday; Bob attends only three days.
	alice := []struct {
		day     int
		in, out string
	}{
		{0, "08:00", "17:00"},
		{1, "08:25", "17:00"},
		{2, "08:00", "18:00"},
		{3, "07:55", "17:05"},
	}
	for _, c := range alice {
		if err := h.clock(ctx, "alice", anchor.AddDays(c.day), c.in, c.out, 0); err != nil {
			return err
		}
	}
	for day := 0; day < 3; day++ {
		if err := h.clock(ctx, "bob", anchor.AddDays(day), "08:00", "17:00", 0); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadThreeCrewScenario(ctx context.Context, anchor shift.Date) error {
	if err := h.createPolicyFromJSON(ctx, factory.ThreeCrewRotationJSON("three-crew", "Three Crew Rotation")); err != nil {
		return err
	}
	for i, crew := range []string{"crew-a", "crew-b", "crew-c"} {
		if err := h.assign(ctx, crew, "three-crew", anchor.AddDays(i), nil); err != nil {
			return err
		}
	}

	// crew-a: A, then B+C running into the next morning.
	if err := h.clock(ctx, "crew-a", anchor, "07:58", "16:10", 0); err != nil {
		return err
	}
	return h.clock(ctx, "crew-a", anchor.AddDays(1), "16:00", "08:30", 1)
}

func (h *Handler) loadPolicyChangeScenario(ctx context.Context, anchor shift.Date) error {
	if err := h.createPolicyFromJSON(ctx, factory.StandardDayShiftJSON(
		"office", "Office Hours", "08:00", "17:00", 8, "friday")); err != nil {
		return err
	}
	if err := h.createPolicyFromJSON(ctx, factory.FourOnFourOffJSON("twelve-hour", "12-Hour Days/Nights")); err != nil {
		return err
	}

	// The second assignment closes the first the day before it starts.
	if err := h.assign(ctx, "carol", "office", anchor, nil); err != nil {
		return err
	}
	if err := h.assign(ctx, "carol", "twelve-hour", anchor.AddDays(7), nil); err != nil {
		return err
	}
	for day := 0; day < 4; day++ {
		if err := h.clock(ctx, "carol", anchor.AddDays(day), "08:00", "17:00", 0); err != nil {
			return err
		}
	}
	return h.clock(ctx, "carol", anchor.AddDays(7), "07:00", "19:20", 0)
}

func (h *Handler) loadNightShiftScenario(ctx context.Context, anchor shift.Date) error {
	if err := h.createPolicyFromJSON(ctx, factory.NightShiftJSON("nights", "Night Shift", "22:00", "06:00", 8)); err != nil {
		return err
	}
	end := anchor.AddDays(27)
	if err := h.assign(ctx, "dave", "nights", anchor, &end); err != nil {
		return err
	}
	for day := 0; day < 5; day++ {
		if err := h.clock(ctx, "dave", anchor.AddDays(day), "21:55", "06:40", 1); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) createPolicyFromJSON(ctx context.Context, jsonStr string) error {
	policy, err := h.Factory.ParsePolicy(jsonStr)
	if err != nil {
		return err
	}
	if err := h.Store.SavePolicy(ctx, policy); err != nil {
		return err
	}
	if h.Engine.Memo != nil {
		h.Engine.Memo.Invalidate(policy.ID)
	}
	return nil
}

func (h *Handler) assign(ctx context.Context, employee string, policy shift.PolicyID, start shift.Date, end *shift.Date) error {
	_, err := h.Store.Assign(ctx, shift.ShiftAssignment{
		EmployeeID: shift.EmployeeID(employee),
		PolicyID:   policy,
		StartDate:  start,
		EndDate:    end,
	})
	return err
}

// clock records a pair on schedule date d; outDays moves clock-out to a
// later calendar day.
func (h *Handler) clock(ctx context.Context, employee string, d shift.Date, in, out string, outDays int) error {
	_, err := h.Store.RecordClock(ctx, store.ClockRecord{
		EmployeeID: shift.EmployeeID(employee),
		Date:       d,
		In:         d.At(shift.MustParseClockTime(in), h.Engine.Location),
		Out:        d.AddDays(outDays).At(shift.MustParseClockTime(out), h.Engine.Location),
	})
	return err
}
