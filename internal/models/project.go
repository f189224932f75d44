package models

import "time"

type Project struct {
	ID                  int64     `json:"id"`
	UserID              string    `json:"user_id"`
	ProjectName         string    `json:"project_name"`
	ProgrammingLanguage string    `json:"programming_language"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type CreateProjectRequest struct {
	ProjectName         string `json:"project_name"`
	ProgrammingLanguage string `json:"programming_language"`
}
