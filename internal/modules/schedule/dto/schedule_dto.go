package dto

import (
	"anoa.com/boardinghouse/internal/entity"
	commonDto "anoa.com/boardinghouse/pkg/dto"
)

type ScheduleRequest struct {
	TaskType    string `json:"task_type" binding:"required,oneof=Water Food Cleaning"`
	Description string `json:"description"`
	AssignedTo  *uint  `json:"assigned_to"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Completed   bool   `json:"completed"`
}

type PatchScheduleRequest struct {
	TaskType    *string `json:"task_type" binding:"omitempty,oneof=Water Food Cleaning"`
	Description *string `json:"description"`
	// AssignedTo 0 clears the assignment.
	AssignedTo *uint   `json:"assigned_to"`
	Date       *string `json:"date"`
	Time       *string `json:"time"`
	Completed  *bool   `json:"completed"`
}

// AsPatch turns a full update into a patch. A null assigned_to clears the
// assignment.
func (r ScheduleRequest) AsPatch() PatchScheduleRequest {
	assigned := r.AssignedTo
	if assigned == nil {
		none := uint(0)
		assigned = &none
	}
	return PatchScheduleRequest{
		TaskType:    &r.TaskType,
		Description: &r.Description,
		AssignedTo:  assigned,
		Date:        &r.Date,
		Time:        &r.Time,
		Completed:   &r.Completed,
	}
}

type ScheduleResponse struct {
	ID          uint    `json:"id"`
	TaskType    string  `json:"task_type"`
	Description string  `json:"description"`
	AssignedTo  *uint   `json:"assigned_to"`
	MemberName  *string `json:"member_name"`
	MemberRoom  *string `json:"member_room"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Completed   bool    `json:"completed"`
}

// NewScheduleResponse expects AssignedTo to be preloaded when set.
func NewScheduleResponse(s *entity.Schedule) ScheduleResponse {
	resp := ScheduleResponse{
		ID:          s.ID,
		TaskType:    string(s.TaskType),
		Description: s.Description,
		AssignedTo:  s.AssignedToID,
		Date:        commonDto.FormatDate(s.Date),
		Time:        s.Time,
		Completed:   s.Completed,
	}
	if s.AssignedToID != nil && s.AssignedTo != nil {
		resp.MemberName = &s.AssignedTo.Name
		resp.MemberRoom = &s.AssignedTo.RoomNumber
	}
	return resp
}

func NewScheduleResponses(schedules []entity.Schedule) []ScheduleResponse {
	out := make([]ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		out = append(out, NewScheduleResponse(&schedules[i]))
	}
	return out
}
