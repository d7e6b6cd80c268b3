package handlers

import (
	"errors"
	"net/http"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"github.com/gin-gonic/gin"
)

const (
	msgInternal          = "Internal Server Error"
	msgInvalidJSON       = "Invalid JSON body"
	msgValidation        = "Validation failed"
	msgInvalidForeignKey = "Invalid foreign key: Ensure item, unit, or market exists."
)

var errInvalidBody = errors.New("invalid request body")

// errorMessages overrides the client-facing text per route.
type errorMessages struct {
	invalidId  string
	notFound   string
	validation string
}

type errorResponse struct {
	Error   string                 `json:"error"`
	Details []utils.FieldViolation `json:"details,omitempty"`
}

// respondError maps err onto the error taxonomy. Client errors are attached to the gin
// context for the error logger; anything unexpected is logged once and hidden behind a 500.
func respondError(c *gin.Context, funcName string, err error, msgs errorMessages) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		_ = c.Error(err).SetType(gin.ErrorTypePublic)
		c.JSON(http.StatusBadRequest, errorResponse{Error: orDefault(msgs.validation, msgValidation), Details: verr.Violations})
	case errors.Is(err, errInvalidBody):
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidJSON})
	case errors.Is(err, utils.ErrInvalidId):
		_ = c.Error(err).SetType(gin.ErrorTypePublic)
		c.JSON(http.StatusBadRequest, errorResponse{Error: orDefault(msgs.invalidId, "Invalid ID format")})
	case errors.Is(err, utils.ErrorRecordNotFound):
		_ = c.Error(err).SetType(gin.ErrorTypePublic)
		c.JSON(http.StatusNotFound, errorResponse{Error: orDefault(msgs.notFound, "Not found")})
	case errors.Is(err, utils.ErrInvalidForeignKey):
		_ = c.Error(err).SetType(gin.ErrorTypePublic)
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidForeignKey})
	default:
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), "handlers", funcName, c.Request.Method+" "+c.FullPath(), cid, err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgInternal})
	}
}

func orDefault(msg string, def string) string {
	if msg == "" {
		return def
	}
	return msg
}

// bindJSON decodes and validates a request body. Decoding failures of any kind become
// errInvalidBody; binding-tag failures become a *utils.ValidationError.
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}
	processed := utils.ProcessValidationErrors(err)
	var verr *utils.ValidationError
	if errors.As(processed, &verr) {
		return verr
	}

	// malformed JSON, wrong types and custom decoder failures (ids, prices) alike
	return errors.Join(errInvalidBody, err)
}
