package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/gnana997/compedit/pkg/store"
)

func (s *Server) listArtifacts(c fiber.Ctx) error {
	artifacts, err := s.store.List(c.Context())
	if err != nil {
		s.logger.Error("list artifacts failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to fetch artifacts")
	}
	return c.JSON(fiber.Map{"artifacts": artifacts})
}

func (s *Server) createArtifact(c fiber.Ctx) error {
	var req store.NewArtifact
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return fail(c, http.StatusBadRequest, "invalid json")
		}
	}
	if req.Validate() != nil {
		return fail(c, http.StatusBadRequest, "Missing required fields: type, name, code")
	}

	a, err := s.store.Create(c.Context(), req)
	if err != nil {
		s.logger.Error("create artifact failed", "name", req.Name, "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to create artifact")
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"artifact": a})
}

func (s *Server) getArtifact(c fiber.Ctx) error {
	a, err := s.store.Get(c.Context(), c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Artifact not found")
	}
	if err != nil {
		s.logger.Error("get artifact failed", "id", c.Params("id"), "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to fetch artifact")
	}
	return c.JSON(fiber.Map{"artifact": a})
}

func (s *Server) updateArtifact(c fiber.Ctx) error {
	var req store.ArtifactUpdate
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return fail(c, http.StatusBadRequest, "invalid json")
		}
	}

	a, err := s.store.Update(c.Context(), c.Params("id"), req)
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Artifact not found")
	}
	if err != nil {
		s.logger.Error("update artifact failed", "id", c.Params("id"), "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to update artifact")
	}
	return c.JSON(fiber.Map{"artifact": a})
}

func (s *Server) deleteArtifact(c fiber.Ctx) error {
	err := s.store.Delete(c.Context(), c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Artifact not found")
	}
	if err != nil {
		s.logger.Error("delete artifact failed", "id", c.Params("id"), "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to delete artifact")
	}
	return c.JSON(fiber.Map{"message": "Artifact deleted successfully"})
}

func (s *Server) listVersions(c fiber.Ctx) error {
	versions, err := s.store.Versions(c.Context(), c.Params("id"))
	if err != nil {
		s.logger.Error("list versions failed", "id", c.Params("id"), "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to fetch artifact versions")
	}
	return c.JSON(fiber.Map{"versions": versions})
}

func (s *Server) getVersion(c fiber.Ctx) error {
	n, err := strconv.Atoi(c.Params("version"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid version number")
	}

	v, err := s.store.Version(c.Context(), c.Params("id"), n)
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Artifact version not found")
	}
	if err != nil {
		s.logger.Error("get version failed", "id", c.Params("id"), "version", n, "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to fetch artifact version")
	}
	return c.JSON(fiber.Map{"version": v})
}
