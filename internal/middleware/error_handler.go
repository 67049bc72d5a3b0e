package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
)

type errorBody struct {
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ErrorHandler renders every failure as {error, detail?}. Unexpected errors
// are logged with their cause; production responses omit the cause.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if _, classified := apperror.As(err); !classified && errors.As(err, &fe) {
			err = fromFiber(fe)
		}
		e := apperror.Normalize(err)

		body := errorBody{Error: e.Message, Code: e.Code, Details: e.Details}
		if e.Status >= fiber.StatusInternalServerError {
			log.Error().
				Str("request_id", RequestID(c)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Err(e.Cause).
				Msg("unhandled error")
			if !production {
				body.Detail = e.Detail()
			}
		} else {
			log.Warn().
				Str("request_id", RequestID(c)).
				Str("path", c.Path()).
				Int("status", e.Status).
				Str("code", e.Code).
				AnErr("cause", e.Cause).
				Msg(e.Message)
			body.Detail = e.Detail()
		}
		return c.Status(e.Status).JSON(body)
	}
}

func fromFiber(fe *fiber.Error) error {
	switch fe.Code {
	case fiber.StatusNotFound:
		return apperror.NotFound("Endpoint tidak ditemukan")
	case fiber.StatusMethodNotAllowed:
		return apperror.New(fe.Code, apperror.KindNotFound, "METHOD_NOT_ALLOWED", "Metode tidak diizinkan")
	case fiber.StatusUnprocessableEntity, fiber.StatusBadRequest:
		return apperror.Validation("Format data tidak valid").WithCause(fe)
	case fiber.StatusRequestEntityTooLarge:
		return apperror.Validation("Ukuran data terlalu besar")
	case fiber.StatusTooManyRequests:
		return apperror.New(fe.Code, apperror.KindAuthorization, "RATE_LIMITED", "Terlalu banyak percobaan, coba lagi nanti")
	}
	if fe.Code < fiber.StatusInternalServerError {
		return apperror.New(fe.Code, apperror.KindValidation, "HTTP_ERROR", fe.Message)
	}
	return apperror.Internal(fe)
}
