package handler

import "github.com/pavelanni/classroom/internal/model"

type failureResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type questionResponse struct {
	Question int `json:"question"`
}

type progressResponse struct {
	OK       bool `json:"ok"`
	Question int  `json:"question"`
}

type urlResponse struct {
	URL string `json:"url"`
}

type nextFileResponse struct {
	OK    bool   `json:"ok"`
	Index int    `json:"index"`
	URL   string `json:"url"`
}

type submissionResponse struct {
	OK         bool             `json:"ok"`
	Submission model.Submission `json:"submission"`
}

type submissionsResponse struct {
	OK          bool               `json:"ok"`
	Submissions []model.Submission `json:"submissions"`
}
