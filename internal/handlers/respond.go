package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/entitlement"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/payments"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// MaxImageBytes caps uploaded photos after base64 decoding.
const MaxImageBytes = 8 << 20

const (
	msgInternal    = "Something went wrong. Please try again."
	msgUnavailable = "Our plant expert is unavailable right now. Please try again in a moment."
	msgRejected    = "Our plant expert could not process this request. Try a smaller or clearer photo."
)

var validate = validator.New()

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

// parseBody decodes and validates the request body into req. On failure it
// has already written the 400 response and returns false.
func parseBody(c *fiber.Ctx, req any) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return false, errorJSON(c, fiber.StatusBadRequest, validationMessage(verrs))
		}
		return false, errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	return true, nil
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		field := strings.ToLower(err.Field())
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", field))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, err.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, err.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is not valid", field))
		}
	}
	return strings.Join(msgs, ", ")
}

// respondError maps service errors onto status codes. 5xx bodies never
// carry the underlying error.
func respondError(c *fiber.Ctx, err error) error {
	var deniedErr *entitlement.DeniedError
	if errors.As(err, &deniedErr) {
		return c.Status(fiber.StatusPaymentRequired).JSON(dto.UpsellResponse{
			Error:    true,
			Message:  deniedErr.Decision.Message(),
			Upgrade:  true,
			Decision: deniedErr.Decision,
		})
	}

	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, ai.ErrInvalidImage),
		errors.Is(err, moderation.ErrEmpty),
		errors.Is(err, moderation.ErrTooLong),
		errors.Is(err, moderation.ErrBlocked),
		errors.Is(err, payments.ErrUnknownTier):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return errorJSON(c, fiber.StatusUnauthorized, err.Error())

	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPlantNotFound),
		errors.Is(err, services.ErrUserPlantNotFound),
		errors.Is(err, gamification.ErrUserNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrDuplicatePlant):
		return errorJSON(c, fiber.StatusConflict, err.Error())

	case errors.Is(err, ai.ErrRejected):
		slog.Warn("inference rejected", "path", c.Path(), "user_id", userIDAttr(c), "error", err)
		return errorJSON(c, fiber.StatusUnprocessableEntity, msgRejected)

	case errors.Is(err, ai.ErrUnavailable),
		errors.Is(err, ai.ErrMalformedResponse):
		slog.Warn("inference failed", "path", c.Path(), "user_id", userIDAttr(c), "error", err)
		return errorJSON(c, fiber.StatusBadGateway, msgUnavailable)

	case errors.Is(err, payments.ErrNotConfigured):
		return errorJSON(c, fiber.StatusServiceUnavailable, "Billing is not available right now")
	}

	slog.Error("request failed",
		"path", c.Path(),
		"method", c.Method(),
		"user_id", userIDAttr(c),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"error", err,
	)
	return errorJSON(c, fiber.StatusInternalServerError, msgInternal)
}

func userIDAttr(c *fiber.Ctx) string {
	id, err := middleware.UserID(c)
	if err != nil {
		return ""
	}
	return id.String()
}

// currentUser returns the authenticated user id or writes a 401.
func currentUser(c *fiber.Ctx) (uuid.UUID, bool, error) {
	id, err := middleware.UserID(c)
	if err != nil {
		return uuid.Nil, false, errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return id, true, nil
}

// paramID parses a UUID route parameter or writes a 400.
func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false, errorJSON(c, fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, true, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return fallback
}

func paging(c *fiber.Ctx) (int, int) {
	page := max(queryInt(c, "page", 1), 1)
	perPage := queryInt(c, "per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

var errNoImage = fmt.Errorf("%w: an image is required", services.ErrInvalidInput)

// readImage accepts a multipart "image" file or a JSON body with a base64
// "image" field, optionally a data URL.
func readImage(c *fiber.Ctx) ([]byte, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("image")
		if err != nil {
			return nil, errNoImage
		}
		if fh.Size > MaxImageBytes {
			return nil, fmt.Errorf("%w: image is larger than %d MB", services.ErrInvalidInput, MaxImageBytes>>20)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, MaxImageBytes))
	}

	var req dto.IdentifyRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fmt.Errorf("%w: invalid request body", services.ErrInvalidInput)
	}
	return decodeImage(req.Image)
}

func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errNoImage
	}
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	if base64.StdEncoding.DecodedLen(len(s)) > MaxImageBytes {
		return nil, fmt.Errorf("%w: image is larger than %d MB", services.ErrInvalidInput, MaxImageBytes>>20)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64", services.ErrInvalidInput)
	}
	return data, nil
}
