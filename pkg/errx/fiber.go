package errx

import (
	"errors"

	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// Response is the JSON body written for every failed request.
type Response struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Code      string         `json:"error"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// ToResponse converts an Error to its wire form. Server-side errors keep only
// the registered message so causes never reach the caller.
func (e *Error) ToResponse() Response {
	resp := Response{
		Success: false,
		Message: e.Message,
		Code:    e.Code,
	}
	if !e.Type.IsServerSide() && len(e.Details) > 0 {
		resp.Details = e.Details
	}
	return resp
}

// FiberErrorHandler is the fiber.Config ErrorHandler shared by the server and
// the handler tests.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	requestID := c.GetRespHeader(fiber.HeaderXRequestID, c.Get(fiber.HeaderXRequestID))

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(Response{
			Success:   false,
			Message:   fe.Message,
			Code:      "HTTP_ERROR",
			RequestID: requestID,
		})
	}

	var e *Error
	if !errors.As(err, &e) {
		e = Wrap(err, "An unexpected error occurred", TypeInternal)
		e.Code = "INTERNAL_ERROR"
	}

	fields := logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"code":       e.Code,
		"status":     e.HTTPStatus,
		"request_id": requestID,
	}
	if e.HTTPStatus >= fiber.StatusInternalServerError {
		logx.WithFields(fields).WithError(err).Error("request failed")
	} else {
		logx.WithFields(fields).Debug("request rejected")
	}

	resp := e.ToResponse()
	resp.RequestID = requestID
	return c.Status(e.HTTPStatus).JSON(resp)
}
