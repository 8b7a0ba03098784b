package dto

import (
	"mime/multipart"

	helper "archive_backend/internals/helpers"
	helperOSS "archive_backend/internals/helpers/oss"
)

// FileInput carries both upload paths: metadata for objects the browser
// already PUT, and raw parts the server still has to upload.
type FileInput struct {
	Uploaded   []helperOSS.UploadedFile
	Profile    []*multipart.FileHeader
	Supporting []*multipart.FileHeader
}

func (f FileInput) Count() int {
	return len(f.Uploaded) + len(f.Profile) + len(f.Supporting)
}

// BindFiles reads `uploaded_files` and the raw file fields.
func BindFiles(in *FormInput) (FileInput, error) {
	var out FileInput
	uploaded, err := helperOSS.ParseUploadedFiles(in.Str("uploaded_files", "uploadedFiles"))
	if err != nil {
		return out, &helper.ValidationError{
			Message: "invalid uploaded_files",
			Fields:  map[string]string{"uploaded_files": "must be a JSON array of {key, file_name, file_size, content_type, role}"},
		}
	}
	out.Uploaded = uploaded
	if in.Form != nil {
		out.Profile = helperOSS.CollectUploadFiles(in.Form, helperOSS.ProfileFileFields)
		out.Supporting = helperOSS.CollectUploadFiles(in.Form, helperOSS.SupportingFileFields)
	}
	return out, nil
}
