package dto

import "strconv"

type FieldUpdateRequest struct {
	RecordType         string  `json:"record_type" validate:"required"`
	RecordID           uint    `json:"record_id" validate:"required,gt=0"`
	FieldName          string  `json:"field_name" validate:"required"`
	Value              string  `json:"value" validate:"required,max=2000"`
	SubmitterTwitterID *string `json:"submitter_twitter_id" validate:"omitempty,max=100"`
}

func BindFieldUpdate(in *FormInput) (*FieldUpdateRequest, error) {
	errs := map[string]string{}
	req := &FieldUpdateRequest{
		RecordType:         in.Str("record_type", "recordType"),
		FieldName:          in.Str("field_name", "fieldName"),
		Value:              in.Str("value"),
		SubmitterTwitterID: in.StrPtr("submitter_twitter_id", "submitterTwitterId"),
	}
	if raw := in.Str("record_id", "recordId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			errs["record_id"] = "must be a positive integer"
		} else {
			req.RecordID = uint(id)
		}
	}
	if err := finish(req, errs); err != nil {
		return nil, err
	}
	return req, nil
}

type FieldUpdateResponse struct {
	RecordType string `json:"record_type"`
	RecordID   uint   `json:"record_id"`
	FieldName  string `json:"field_name"`
	Value      string `json:"value"`
	Remaining  int    `json:"remaining_today"`
}
