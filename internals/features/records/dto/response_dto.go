package dto

import (
	"archive_backend/internals/features/records/model"
)

type SubjectDetail struct {
	Record       model.Subject `json:"record"`
	PrimaryMedia *model.Media  `json:"primary_media"`
	Media        []model.Media `json:"media"`
	Links        []model.Link  `json:"links"`
}

type SubjectListItem struct {
	Record model.Subject        `json:"record"`
	Media  []model.MediaSummary `json:"media"`
}

type PresignRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"omitempty,max=120"`
}

type CleanRequest struct {
	Secret string `json:"secret"`
}
