package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"dogschool_backend/internals/features/dogschool/courses/dto"
	model "dogschool_backend/internals/features/dogschool/courses/model"
	"dogschool_backend/internals/features/dogschool/courses/service"
	helper "dogschool_backend/internals/helpers"
	osshelper "dogschool_backend/internals/helpers/oss"
)

const imageURLExpiry = 15 * time.Minute

var validate = validator.New()

type CourseController struct {
	svc *service.CourseService
	oss *osshelper.OSSService
}

func NewCourseController(svc *service.CourseService, oss *osshelper.OSSService) *CourseController {
	return &CourseController{svc: svc, oss: oss}
}

func (ctl *CourseController) decorate(resp *dto.CourseResponse, imageKey *string) {
	if imageKey == nil || *imageKey == "" {
		return
	}
	url := ctl.oss.PresignGet(*imageKey, imageURLExpiry)
	resp.ImageURL = &url
}

// POST /api/t/courses
func (ctl *CourseController) Create(c *fiber.Ctx) error {
	trainerID, err := helper.RequireTrainer(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	course := model.TrainingCourse{
		TrainingCourseTitle:       req.Title,
		TrainingCourseDescription: req.Description,
		TrainingCourseType:        model.TrainingCourseType(req.Type),
		TrainingCourseLessonForm:  model.TrainingCourseLessonForm(req.LessonForm),
		TrainingCourseSchedule:    req.Schedule,
		TrainingCourseImageKey:    req.ImageKey,
	}
	sessions := make([]service.SessionInput, 0, len(req.Sessions))
	for _, s := range req.Sessions {
		sessions = append(sessions, service.SessionInput{
			SessionNo:   s.SessionNo,
			StartAt:     s.StartAt,
			EndAt:       s.EndAt,
			MaxStudents: s.MaxStudents,
			Price:       s.Price,
		})
	}

	if err := ctl.svc.Create(c.Context(), trainerID, &course, sessions); err != nil {
		return helper.FromError(c, err)
	}

	resp := dto.FromCourse(&course, nil)
	ctl.decorate(&resp, course.TrainingCourseImageKey)
	return helper.SuccessWithCode(c, fiber.StatusCreated, "course created", resp)
}

// PATCH /api/t/courses/:id
func (ctl *CourseController) Update(c *fiber.Ctx) error {
	trainerID, err := helper.RequireTrainer(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid course id")
	}

	var req dto.UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	if err := ctl.svc.Update(c.Context(), trainerID, courseID, req.Patch()); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "course updated", nil)
}

// DELETE /api/t/courses/:id
func (ctl *CourseController) Delete(c *fiber.Ctx) error {
	trainerID, err := helper.RequireTrainer(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid course id")
	}

	if err := ctl.svc.SoftDelete(c.Context(), trainerID, courseID); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "course deleted", nil)
}

// GET /api/courses
func (ctl *CourseController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	f := service.ListFilter{
		Type:       c.Query("type"),
		LessonForm: c.Query("lesson_form"),
		Status:     c.Query("status"),
		Search:     c.Query("q"),
	}
	if raw := c.Query("trainer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "invalid trainer id")
		}
		f.TrainerID = &id
	}

	courses, total, err := ctl.svc.List(c.Context(), f, paging.Offset, paging.Limit)
	if err != nil {
		return helper.FromError(c, err)
	}

	items := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		resp := dto.FromCourse(&courses[i], nil)
		ctl.decorate(&resp, courses[i].TrainingCourseImageKey)
		items = append(items, resp)
	}

	return helper.Success(c, "courses", fiber.Map{
		"items":      items,
		"pagination": helper.BuildPagination(paging, total, len(items)),
	})
}

// GET /api/courses/:tag
func (ctl *CourseController) Detail(c *fiber.Ctx) error {
	course, sessions, err := ctl.svc.GetByTag(c.Context(), c.Params("tag"))
	if err != nil {
		return helper.FromError(c, err)
	}

	resp := dto.FromCourse(course, sessions)
	ctl.decorate(&resp, course.TrainingCourseImageKey)
	return helper.Success(c, "course", resp)
}
