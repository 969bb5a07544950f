package models

// Requests for the analysis HTTP endpoints.

type SummariesRequest struct {
	RunID string `query:"run_id" json:"run_id"`
	Limit int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type SummaryRequest struct {
	RunID  string `query:"run_id" json:"run_id"`
	Window string `param:"window" json:"window" validate:"required"`
}
