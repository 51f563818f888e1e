/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request types carry go-playground/validator tags for shape checks
  (required fields, date formats). Domain rules (overlaps, policy
  consistency) are enforced by the shift package, not here.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PolicyJSON, AssignmentJSON
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/shift"
	"github.com/warp/shift-engine/store"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateAssignmentRequest attaches a policy to the employee in the URL.
type CreateAssignmentRequest struct {
	ID        string `json:"id"`
	PolicyID  string `json:"policy_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// ClockRequest records one clock-in/clock-out pair. Date defaults to the
// clock-in date.
type ClockRequest struct {
	Date string    `json:"date" validate:"omitempty,datetime=2006-01-02"`
	In   time.Time `json:"in" validate:"required"`
	Out  time.Time `json:"out" validate:"required,gtefield=In"`
}

// OvertimeRequest computes overtime for ad-hoc clock instants without
// storing them.
type OvertimeRequest struct {
	Date string    `json:"date" validate:"required,datetime=2006-01-02"`
	In   time.Time `json:"in" validate:"required"`
	Out  time.Time `json:"out" validate:"required"`
}

// LoadScenarioRequest selects a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error      string            `json:"error"`
	Details    string            `json:"details,omitempty"`
	Violations []shift.Violation `json:"violations,omitempty"`
}

// ValidationResultDTO is returned by the dry-run validation endpoint.
type ValidationResultDTO struct {
	Valid      bool              `json:"valid"`
	Violations []shift.Violation `json:"violations"`
}

// AssignmentChangeDTO shows both halves of an assignment change.
type AssignmentChangeDTO struct {
	Closed *factory.AssignmentJSON `json:"closed,omitempty"`
	Opened factory.AssignmentJSON  `json:"opened"`
}

// WindowDTO is a concrete shift window.
type WindowDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ResolvedDayDTO is one resolved calendar day.
type ResolvedDayDTO struct {
	EmployeeID      string          `json:"employee_id"`
	PolicyID        string          `json:"policy_id"`
	Date            string          `json:"date"`
	Weekday         string          `json:"weekday"`
	IsWorking       bool            `json:"is_working"`
	Window          *WindowDTO      `json:"window,omitempty"`
	ExpectedHours   decimal.Decimal `json:"expected_hours"`
	ContractHours   decimal.Decimal `json:"contract_hours"`
	IsHoliday       bool            `json:"is_holiday"`
	IsPaidHoliday   bool            `json:"is_paid_holiday"`
	HolidayPayShare decimal.Decimal `json:"holiday_pay_share"`
	StepIndex       *int            `json:"step_index,omitempty"`
	Step            string          `json:"step,omitempty"`
}

// ScheduleResponse is an employee's resolved days over a range.
type ScheduleResponse struct {
	EmployeeID string           `json:"employee_id"`
	From       string           `json:"from"`
	To         string           `json:"to"`
	Days       []ResolvedDayDTO `json:"days"`
}

// ClockRecordDTO is a stored clock pair.
type ClockRecordDTO struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Date       string    `json:"date"`
	In         time.Time `json:"in"`
	Out        time.Time `json:"out"`
}

// OvertimeDTO is the overtime breakdown for one day.
type OvertimeDTO struct {
	EmployeeID        string          `json:"employee_id"`
	Date              string          `json:"date"`
	WorkedMinutes     int             `json:"worked_minutes"`
	ExpectedMinutes   int             `json:"expected_minutes"`
	LateMinutes       int             `json:"late_minutes"`
	EarlyMinutes      int             `json:"early_minutes"`
	OvertimeMinutes   int             `json:"overtime_minutes"`
	ShortfallMinutes  int             `json:"shortfall_minutes"`
	MultiplierApplied decimal.Decimal `json:"multiplier_applied"`
	WeightedOvertime  decimal.Decimal `json:"weighted_overtime"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toResolvedDayDTO(d shift.ResolvedDay) ResolvedDayDTO {
	dto := ResolvedDayDTO{
		EmployeeID:      string(d.EmployeeID),
		PolicyID:        string(d.PolicyID),
		Date:            d.Date.String(),
		Weekday:         d.Date.Weekday().String(),
		IsWorking:       d.IsWorking,
		ExpectedHours:   d.ExpectedHours,
		ContractHours:   d.ContractHours,
		IsHoliday:       d.IsHoliday,
		IsPaidHoliday:   d.IsPaidHoliday,
		HolidayPayShare: d.HolidayPayShare,
	}
	if d.Window != nil {
		dto.Window = &WindowDTO{Start: d.Window.Start, End: d.Window.End}
	}
	if d.Step != nil {
		idx := d.StepIndex
		dto.StepIndex = &idx
		dto.Step = d.Step.String()
	}
	return dto
}

func toClockRecordDTO(r store.ClockRecord) ClockRecordDTO {
	return ClockRecordDTO{
		ID:         r.ID,
		EmployeeID: string(r.EmployeeID),
		Date:       r.Date.String(),
		In:         r.In,
		Out:        r.Out,
	}
}

func toOvertimeDTO(day shift.ResolvedDay, res shift.OvertimeResult) OvertimeDTO {
	return OvertimeDTO{
		EmployeeID:        string(day.EmployeeID),
		Date:              day.Date.String(),
		WorkedMinutes:     res.WorkedMinutes,
		ExpectedMinutes:   res.ExpectedMinutes,
		LateMinutes:       res.LateMinutes,
		EarlyMinutes:      res.EarlyMinutes,
		OvertimeMinutes:   res.OvertimeMinutes,
		ShortfallMinutes:  res.ShortfallMinutes,
		MultiplierApplied: res.MultiplierApplied,
		WeightedOvertime:  res.WeightedOvertime,
	}
}

// HolidayShareDTO is one work step's share of a holiday-pay unit.
type HolidayShareDTO struct {
	StepIndex int             `json:"step_index"`
	Step      string          `json:"step"`
	Share     decimal.Decimal `json:"share"`
}

// AttendanceDTO counts attended days over a range.
type AttendanceDTO struct {
	EmployeeID  string `json:"employee_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	PresentDays int    `json:"present_days"`
}
