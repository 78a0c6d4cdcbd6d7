package workingcopy

import (
	"errors"
	"fmt"

	"github.com/apiarycd/svndesk/internal/server/validation"
	"github.com/apiarycd/svndesk/internal/svn"
	"github.com/go-core-fx/fiberfx/handler"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	svnSvc *svn.Service

	validator *validator.Validate
	logger    *zap.Logger
}

func NewHandler(svnSvc *svn.Service, validator *validator.Validate, logger *zap.Logger) handler.Handler {
	return &Handler{
		svnSvc: svnSvc,

		validator: validator,
		logger:    logger,
	}
}

// Register implements handler.Handler.
func (h *Handler) Register(r fiber.Router) {
	r.Post("/project", validation.DecorateWithBodyEx(h.validator, h.project))

	r = r.Group("/workingcopy")

	r.Use(h.errorsHandler)
	r.Post("/status", validation.DecorateWithBodyEx(h.validator, h.status))
	r.Post("/checkout", validation.DecorateWithBodyEx(h.validator, h.checkout))
	r.Post("/commit", validation.DecorateWithBodyEx(h.validator, h.commit))
	r.Post("/revert", validation.DecorateWithBodyEx(h.validator, h.revert))
	r.Post("/log", validation.DecorateWithBodyEx(h.validator, h.log))
}

func (h *Handler) status(c *fiber.Ctx, req *StatusRequest) error {
	entries, err := h.svnSvc.Status(c.Context(), req.Root)
	if err != nil {
		return fmt.Errorf("failed to query status: %w", err)
	}

	return c.JSON(entries)
}

func (h *Handler) checkout(c *fiber.Ctx, req *CheckoutRequest) error {
	entries, err := h.svnSvc.Checkout(c.Context(), req.Root, req.URL, req.toCredentials())
	if err != nil {
		return fmt.Errorf("failed to check out: %w", err)
	}

	return c.JSON(entries)
}

func (h *Handler) commit(c *fiber.Ctx, req *CommitRequest) error {
	entries, err := h.svnSvc.Commit(c.Context(), req.Root, req.Message, req.toPendingChanges(), req.toCredentials())
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return c.JSON(entries)
}

func (h *Handler) revert(c *fiber.Ctx, req *RevertRequest) error {
	entries, err := h.svnSvc.Revert(c.Context(), req.Root, req.Paths)
	if err != nil {
		return fmt.Errorf("failed to revert: %w", err)
	}

	return c.JSON(entries)
}

func (h *Handler) log(c *fiber.Ctx, req *LogRequest) error {
	revisions, err := h.svnSvc.History(c.Context(), req.Root, req.toCredentials())
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}

	return c.JSON(revisions)
}

func (h *Handler) project(c *fiber.Ctx, req *ProjectRequest) error {
	return c.JSON(h.svnSvc.Locate(c.Context(), req.Path))
}

func (h *Handler) errorsHandler(c *fiber.Ctx) error {
	err := c.Next()
	if err == nil {
		return nil
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return err
	}

	switch {
	case errors.Is(err, svn.ErrInvalidRoot), errors.Is(err, svn.ErrNoChanges):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, svn.ErrHistoryFailed):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	h.logger.Error("working copy operation failed", zap.String("path", c.Path()), zap.Error(err))

	return err //nolint:wrapcheck //already wrapped
}
