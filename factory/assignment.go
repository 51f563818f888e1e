package factory

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/warp/shift-engine/shift"
)

// AssignmentJSON is the JSON representation of a shift assignment.
// Dates are "YYYY-MM-DD"; an empty end_date means open-ended.
type AssignmentJSON struct {
	ID         string `json:"id,omitempty"`
	EmployeeID string `json:"employee_id"`
	PolicyID   string `json:"policy_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date,omitempty"`
}

// ParseAssignment parses a JSON assignment.
func (f *PolicyFactory) ParseAssignment(jsonStr string) (shift.ShiftAssignment, error) {
	var aj AssignmentJSON
	if err := json.Unmarshal([]byte(jsonStr), &aj); err != nil {
		return shift.ShiftAssignment{}, fmt.Errorf("failed to parse assignment JSON: %w", err)
	}
	return f.AssignmentFromJSON(aj)
}

// AssignmentFromJSON converts AssignmentJSON to a ShiftAssignment. A random
// ID is generated when none is given.
func (f *PolicyFactory) AssignmentFromJSON(aj AssignmentJSON) (shift.ShiftAssignment, error) {
	if aj.EmployeeID == "" || aj.PolicyID == "" {
		return shift.ShiftAssignment{}, fmt.Errorf("%w: employee_id and policy_id are required", shift.ErrInvalidPeriod)
	}
	start, err := shift.ParseDate(aj.StartDate)
	if err != nil {
		return shift.ShiftAssignment{}, fmt.Errorf("%w: start_date: %v", shift.ErrInvalidPeriod, err)
	}

	a := shift.ShiftAssignment{
		ID:         shift.AssignmentID(aj.ID),
		EmployeeID: shift.EmployeeID(aj.EmployeeID),
		PolicyID:   shift.PolicyID(aj.PolicyID),
		StartDate:  start,
	}
	if a.ID == "" {
		a.ID = shift.AssignmentID(uuid.NewString())
	}
	if aj.EndDate != "" {
		end, err := shift.ParseDate(aj.EndDate)
		if err != nil {
			return shift.ShiftAssignment{}, fmt.Errorf("%w: end_date: %v", shift.ErrInvalidPeriod, err)
		}
		if end.Before(start) {
			return shift.ShiftAssignment{}, fmt.Errorf("%w: end_date %s before start_date %s", shift.ErrInvalidPeriod, end, start)
		}
		a.EndDate = &end
	}
	return a, nil
}

// AssignmentToJSON converts a ShiftAssignment to AssignmentJSON.
func (f *PolicyFactory) AssignmentToJSON(a shift.ShiftAssignment) AssignmentJSON {
	aj := AssignmentJSON{
		ID:         string(a.ID),
		EmployeeID: string(a.EmployeeID),
		PolicyID:   string(a.PolicyID),
		StartDate:  a.StartDate.String(),
	}
	if a.EndDate != nil {
		aj.EndDate = a.EndDate.String()
	}
	return aj
}
