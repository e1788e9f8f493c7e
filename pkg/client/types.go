package client

import (
	"github.com/hyperengineering/carelog/internal/types"
)

// Entities and payloads exchanged with the server.
type (
	Elder               = types.Elder
	NewElder            = types.NewElder
	Gender              = types.Gender
	Question            = types.Question
	NewQuestion         = types.NewQuestion
	Answer              = types.Answer
	NewAnswer           = types.NewAnswer
	Record              = types.Record
	CreateRecordRequest = types.CreateRecordRequest
	ActivityGuide       = types.ActivityGuide
	CreateGuideRequest  = types.CreateGuideRequest
	KeywordPreference   = types.KeywordPreference
	Task                = types.Task
	TaskStatus          = types.TaskStatus
	Report              = types.Report
	AnalysisDetail      = types.AnalysisDetail
	FollowUpRequest     = types.FollowUpRequest
	FollowUpResponse    = types.FollowUpResponse
	HealthResponse      = types.HealthResponse
)

const (
	GenderMale   = types.GenderMale
	GenderFemale = types.GenderFemale

	TaskIdle         = types.TaskIdle
	TaskRecorded     = types.TaskRecorded
	TaskGuided       = types.TaskGuided
	TaskAccomplished = types.TaskAccomplished
)
