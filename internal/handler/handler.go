// Package handler serves the catalog REST API on echo.
package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"catalog-service/internal/apperror"
	"catalog-service/internal/catalog"
	"catalog-service/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Validator adapts validator/v10 to echo. Field names in errors are the
// json names of the request body.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate implements echo.Validator
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		// drop the struct name
		_, field, _ := strings.Cut(first.Namespace(), ".")
		return apperror.Invalid(field, first.Tag())
	}
	return apperror.Invalid("body", err.Error())
}

// bind decodes and validates the request body into req
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return &apperror.ValidationError{Field: "body", Reason: "malformed request body"}
	}
	return c.Validate(req)
}

// fail renders err with the status matching its kind
func fail(c echo.Context, err error) error {
	status := apperror.HTTPStatus(err)
	log := logger.FromContext(c)

	if status == http.StatusInternalServerError {
		log.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(status, echo.Map{
			"error": "internal server error",
			"kind":  apperror.KindInternal,
		})
	}

	log.Warn("Request rejected", zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
	return c.JSON(status, echo.Map{
		"error": err.Error(),
		"kind":  apperror.KindOf(err),
	})
}

// pathID parses the path parameter called name
func pathID(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &apperror.MalformedReferenceError{Reference: raw, Cause: err}
	}
	return id, nil
}

// hrefID resolves the href query parameter to an id
func hrefID(c echo.Context) (int64, error) {
	href := c.QueryParam("href")
	if href == "" {
		return 0, apperror.Invalid("href", "required")
	}
	return catalog.IDFromResourceURL(href)
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Invalid(name, "must be an integer")
	}
	return v, nil
}

func queryBool(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperror.Invalid(name, "must be a boolean")
	}
	return v, nil
}

type page struct {
	offset int
	limit  int
}

func pageParams(c echo.Context, defaultLimit int) (page, error) {
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return page{}, err
	}
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil {
		return page{}, err
	}
	return page{offset: offset, limit: limit}, nil
}

func paginate[T any](items []T, p page) []T {
	return catalog.Paginate(items, p.offset, p.limit)
}
