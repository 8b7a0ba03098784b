package dto

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture runs ReadInput inside a real fiber handler.
func capture(t *testing.T, contentType string, body io.Reader) (*FormInput, error) {
	t.Helper()
	var (
		in      *FormInput
		bindErr error
	)
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		in, bindErr = ReadInput(c)
		return c.SendStatus(fiber.StatusNoContent)
	})
	req := httptest.NewRequest(fiber.MethodPost, "/", body)
	req.Header.Set(fiber.HeaderContentType, contentType)
	_, err := app.Test(req)
	require.NoError(t, err)
	return in, bindErr
}

func TestReadInput_JSON(t *testing.T) {
	body := `{"location":"Tehran","birth_year":1990,"twitter_links":["a","b"],` +
		`"uploaded_files":[{"key":"uploads/images/x.jpg","role":"profile"}]}`
	in, err := capture(t, fiber.MIMEApplicationJSON, bytes.NewBufferString(body))
	require.NoError(t, err)

	assert.Equal(t, "Tehran", in.Str("location"))
	assert.Equal(t, "1990", in.Str("birth_year"))
	assert.Equal(t, []string{"a", "b"}, in.List("twitter_links"))

	files, err := BindFiles(in)
	require.NoError(t, err)
	require.Len(t, files.Uploaded, 1)
	assert.Equal(t, "profile", files.Uploaded[0].Role)
}

func TestReadInput_InvalidJSON(t *testing.T) {
	_, err := capture(t, fiber.MIMEApplicationJSON, bytes.NewBufferString(`{"location":`))
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestReadInput_Multipart(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("location", "Zahedan"))
	fw, err := w.CreateFormFile("supporting_files", "doc.pdf")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.4"))
	_, err = w.CreateFormFile("profile_file", "empty.jpg")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	in, err := capture(t, w.FormDataContentType(), &buf)
	require.NoError(t, err)
	assert.Equal(t, "Zahedan", in.Str("location"))

	files, err := BindFiles(in)
	require.NoError(t, err)
	assert.Empty(t, files.Profile, "zero-byte parts are ignored")
	require.Len(t, files.Supporting, 1)
	assert.Equal(t, 1, files.Count())
}

func TestReadInput_URLEncoded(t *testing.T) {
	in, err := capture(t, fiber.MIMEApplicationForm, bytes.NewBufferString("city=Tehran&links=a&links=b"))
	require.NoError(t, err)
	assert.Equal(t, "Tehran", in.Str("city"))
	assert.Equal(t, []string{"a", "b"}, in.List("links"))
}

func TestBindFiles_BadMetadata(t *testing.T) {
	_, err := BindFiles(form("uploaded_files", "not json"))
	assert.Contains(t, validationErr(t, err).Fields, "uploaded_files")
}

func TestBindFieldUpdate(t *testing.T) {
	req, err := BindFieldUpdate(form(
		"recordType", "victim",
		"record_id", "12",
		"fieldName", "father_name",
		"value", "Reza",
	))
	require.NoError(t, err)
	assert.Equal(t, uint(12), req.RecordID)
	assert.Equal(t, "father_name", req.FieldName)

	_, err = BindFieldUpdate(form("record_type", "victim", "record_id", "-1", "field_name", "age", "value", "3"))
	assert.Equal(t, "must be a positive integer", validationErr(t, err).Fields["record_id"])

	_, err = BindFieldUpdate(form("record_type", "victim", "record_id", "1", "field_name", "age"))
	assert.Equal(t, "missing required fields: value", validationErr(t, err).Message)
}
