package http

import (
	"context"
	"strings"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/cosmos/usecase"
	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/filter"
	"cosmos-admin/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the admin operations over HTTP. Check, when set, backs the
// health route.
type Handler struct {
	Admin *usecase.AdminUsecase
	Log   logger.Logger
	Check func(ctx context.Context) error
}

// NewHandler creates a handler over admin.
func NewHandler(admin *usecase.AdminUsecase, log logger.Logger) *Handler {
	return &Handler{Admin: admin, Log: log.WithComponent("http")}
}

type createRequest struct {
	ID string `json:"id"`
}

// RegisterRoutes mounts the resource routes on router.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	dbs := router.Group("/dbs")
	dbs.Get("/", h.ListDatabases)
	dbs.Post("/", h.CreateDatabase)
	dbs.Get("/:db", h.GetDatabase)
	dbs.Delete("/:db", h.DeleteDatabase)

	colls := dbs.Group("/:db/colls")
	colls.Get("/", h.ListCollections)
	colls.Post("/", h.CreateCollection)
	colls.Get("/:coll", h.GetCollection)
	colls.Delete("/:coll", h.DeleteCollection)
	colls.Post("/:coll/offer", h.ChangeThroughput)
	colls.Get("/:coll/docs", h.ListDocuments)
	colls.Post("/:coll/docs", h.CreateDocument)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if h.Check != nil {
		if err := h.Check(c.UserContext()); err != nil {
			h.Log.WithContext(c.UserContext()).Warnf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  err.Error(),
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// Databases

func (h *Handler) ListDatabases(c *fiber.Ctx) error {
	where, err := filter.Compile(c.Query("where"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	dbs, err := h.Admin.Databases.ListAll(c.UserContext())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if dbs, err = filter.Apply(where, dbs); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"databases": dbs, "count": len(dbs)})
}

func (h *Handler) CreateDatabase(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": "Failed to parse request body",
		})
	}
	db, err := h.Admin.Databases.Create(c.UserContext(), req.ID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(db)
}

func (h *Handler) GetDatabase(c *fiber.Ctx) error {
	db, err := h.Admin.Databases.Read(c.UserContext(), c.Params("db"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(db)
}

func (h *Handler) DeleteDatabase(c *fiber.Ctx) error {
	if err := h.Admin.Databases.Delete(c.UserContext(), c.Params("db")); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Collections

func (h *Handler) ListCollections(c *fiber.Ctx) error {
	where, err := filter.Compile(c.Query("where"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	colls, err := h.Admin.Collections.ListAll(c.UserContext(), c.Params("db"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if colls, err = filter.Apply(where, colls); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"collections": colls, "count": len(colls)})
}

func (h *Handler) CreateCollection(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": "Failed to parse request body",
		})
	}
	db := c.Params("db")
	coll, err := h.Admin.Collections.Create(c.UserContext(), db, req.ID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if coll == nil {
		return writeError(c, h.Log, errors.NewNotFoundError("database '"+db+"'"))
	}
	return c.Status(fiber.StatusCreated).JSON(coll)
}

func (h *Handler) GetCollection(c *fiber.Ctx) error {
	coll, err := h.Admin.Collections.Read(c.UserContext(), c.Params("db"), c.Params("coll"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(coll)
}

func (h *Handler) DeleteCollection(c *fiber.Ctx) error {
	db, id := c.Params("db"), c.Params("coll")
	deleted, err := h.Admin.Collections.Delete(c.UserContext(), db, id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if !deleted {
		return writeError(c, h.Log, errors.NewNotFoundError("collection '"+id+"' in database '"+db+"'"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ChangeThroughput(c *fiber.Ctx) error {
	change, err := h.Admin.Collections.ManageThroughput(c.UserContext(), c.Params("db"), c.Params("coll"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{
		"offer":  change.Offer,
		"before": change.Before,
		"after":  change.After,
	})
}

// Documents

func (h *Handler) ListDocuments(c *fiber.Ctx) error {
	where, err := filter.Compile(c.Query("where"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	docs, err := h.Admin.Documents.ReadAll(c.UserContext(), c.Params("db"), c.Params("coll"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if docs, err = filter.Apply(where, docs); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"documents": docs, "count": len(docs)})
}

func (h *Handler) CreateDocument(c *fiber.Ctx) error {
	doc, err := model.ParseDocument(string(c.Body()))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": err.Error(),
		})
	}
	created, err := h.Admin.Documents.Create(c.UserContext(), c.Params("db"), c.Params("coll"), doc)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// writeError maps the error kind onto a status code.
func writeError(c *fiber.Ctx, log logger.Logger, err error) error {
	status := fiber.StatusInternalServerError
	switch errors.TypeOf(err) {
	case errors.ErrorTypeNotFound, errors.ErrorTypeOfferNotFound:
		status = fiber.StatusNotFound
	case errors.ErrorTypeConflict:
		status = fiber.StatusConflict
	case errors.ErrorTypeValidation:
		status = fiber.StatusBadRequest
	case errors.ErrorTypeAuthentication:
		status = fiber.StatusUnauthorized
	case errors.ErrorTypeService:
		status = fiber.StatusBadGateway
	}

	reqLog := log.WithContext(c.UserContext())
	if status >= fiber.StatusInternalServerError {
		reqLog.Errorf("%s %s failed: %v", c.Method(), c.Path(), err)
	} else {
		reqLog.Debugf("%s %s: %v", c.Method(), c.Path(), err)
	}

	code := strings.ToLower(string(errors.TypeOf(err)))
	if code == "" {
		code = "internal_error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": err.Error(),
	})
}
