package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/pathwise/internal/application/store"
	"github.com/khoahotran/pathwise/internal/domain/course"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

type CourseHandler struct {
	sessions *store.Manager
	logger   logger.Logger
}

func NewCourseHandler(sessions *store.Manager, log logger.Logger) *CourseHandler {
	return &CourseHandler{sessions: sessions, logger: log}
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if c.Query("refresh") == "true" {
		sess.Courses.Load(c.Request.Context())
	}
	respond(c, http.StatusOK, toCoursesDTO(sess.Courses))
}

func (h *CourseHandler) ToggleBookmark(c *gin.Context) {
	var req course.Course
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for course", err))
		return
	}
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if err := sess.Courses.Toggle(c.Request.Context(), req); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, toCoursesDTO(sess.Courses))
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req updateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for course update", err))
		return
	}
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if err := sess.Courses.Update(c.Request.Context(), c.Param("id"), course.Patch{Completed: req.Completed}); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, toCoursesDTO(sess.Courses))
}

func (h *CourseHandler) RemoveCourse(c *gin.Context) {
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if err := sess.Courses.Remove(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, toCoursesDTO(sess.Courses))
}

func (h *CourseHandler) IsBookmarked(c *gin.Context) {
	sess, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	respond(c, http.StatusOK, gin.H{"bookmarked": sess.Courses.IsBookmarked(c.Param("id"))})
}
