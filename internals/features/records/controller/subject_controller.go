package controller

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"archive_backend/internals/features/records/model"
	"archive_backend/internals/features/records/service"
	helper "archive_backend/internals/helpers"
)

type SubjectController struct {
	Query *service.QueryService
}

func NewSubjectController(q *service.QueryService) *SubjectController {
	return &SubjectController{Query: q}
}

// GET /api/subjects/:kind/:id
func (ctrl *SubjectController) Get(c *fiber.Ctx) error {
	spec, id, err := kindAndID(c)
	if err != nil {
		return err
	}
	detail, err := ctrl.Query.Get(c.UserContext(), spec, id)
	if err != nil {
		return err
	}
	if detail == nil {
		return helper.JsonError(c, fiber.StatusNotFound, "record not found")
	}
	return helper.JsonOK(c, detail)
}

// GET /api/subjects/:kind?limit=&offset=
func (ctrl *SubjectController) List(c *fiber.Ctx) error {
	spec, err := kindParam(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, helper.DefaultListLimit, helper.MaxListLimit)
	items, err := ctrl.Query.List(c.UserContext(), spec, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return helper.JsonList(c, items, len(items))
}

// GET /api/search?q=&kind=
func (ctrl *SubjectController) Search(c *fiber.Ctx) error {
	kind := c.Query("kind", string(model.KindVictim))
	spec, ok := model.LookupKind(kind)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "unknown subject kind")
	}
	items, err := ctrl.Query.Search(c.UserContext(), spec, c.Query("q"))
	if err != nil {
		return err
	}
	return helper.JsonRecords(c, items, len(items))
}

// GET /api/search/advanced?name=&location=&birth_year=
func (ctrl *SubjectController) AdvancedSearch(c *fiber.Ctx) error {
	f := service.VictimFilter{
		Name:     c.Query("name"),
		Location: c.Query("location"),
	}
	if raw := strings.TrimSpace(c.Query("birth_year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return helper.JsonValidationError(c, "invalid input", map[string]string{"birth_year": "must be an integer"})
		}
		f.BirthYear = &year
	}
	items, err := ctrl.Query.AdvancedSearch(c.UserContext(), f)
	if err != nil {
		return err
	}
	return helper.JsonRecords(c, items, len(items))
}
