package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"catalog-service/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	_, parseErr := strconv.ParseInt("abc", 10, 64)

	tests := []struct {
		name   string
		err    error
		status int
		kind   Kind
	}{
		{"not found", NotFound(model.KindCategory, 4), http.StatusNotFound, KindNotFound},
		{"conflict", Conflict(model.KindCategoryXref, 1, 2, ReasonDuplicate), http.StatusConflict, KindConflict},
		{"malformed", &MalformedReferenceError{Reference: "/x/abc", Cause: parseErr}, http.StatusBadRequest, KindMalformedReference},
		{"validation", Invalid("name", "required"), http.StatusBadRequest, KindValidation},
		{"wrapped", fmt.Errorf("add child: %w", NotFound(model.KindProduct, 9)), http.StatusNotFound, KindNotFound},
		{"storage", errors.New("connection reset"), http.StatusInternalServerError, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}

func TestErrorsCarryContext(t *testing.T) {
	err := Conflict(model.KindCategoryXref, 3, 8, ReasonCycle)
	var conflict *ConflictError
	assert.True(t, errors.As(err, &conflict))
	assert.Equal(t, int64(3), conflict.ID)
	assert.Equal(t, int64(8), conflict.OtherID)
	assert.Contains(t, err.Error(), "cycle")

	assert.Equal(t, `attribute "color" not found`, (&NotFoundError{Kind: model.KindAttribute, Name: "color"}).Error())
	assert.True(t, IsNotFound(NotFound(model.KindSku, 1)))
	assert.True(t, IsConflict(Conflict(model.KindCategory, 1, 1, ReasonSelfReference)))
}

func TestMalformedReferenceUnwraps(t *testing.T) {
	_, cause := strconv.ParseInt("x", 10, 64)
	err := &MalformedReferenceError{Reference: "x", Cause: cause}
	assert.ErrorIs(t, err, strconv.ErrSyntax)
}
