package api

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/gnana997/compedit/pkg/editor"
	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/properties"
	"github.com/gnana997/compedit/pkg/store"
)

type selectRequest struct {
	ElementID string `json:"elementId"`
}

type updateElementRequest struct {
	Key   string            `json:"key"`
	Value element.Value     `json:"value"`
	Sides *properties.Sides `json:"sides,omitempty"`
}

type saveAsRequest struct {
	Name string `json:"name"`
}

type openArtifactRequest struct {
	ArtifactID string `json:"artifactId"`
	Version    int    `json:"version,omitempty"`
}

// session resolves the :id parameter to a live session.
func (s *Server) session(c fiber.Ctx) (*editor.Session, error) {
	sess, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return nil, fiber.NewError(http.StatusNotFound, "Session not found")
	}
	return sess, nil
}

// sessionError maps editor and store errors onto HTTP statuses.
func sessionError(err error) error {
	switch {
	case errors.Is(err, editor.ErrNoComponent), errors.Is(err, editor.ErrNoSelection):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, editor.ErrUnknownElement), errors.Is(err, store.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalid):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, editor.ErrNoStore):
		return fiber.NewError(http.StatusNotImplemented, err.Error())
	default:
		return err
	}
}

func (s *Server) openSession(c fiber.Ctx) error {
	var req parseRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	sess := s.sessions.Open()
	if req.Code != "" {
		if _, err := sess.Load(c.Context(), req.Code); err != nil {
			s.sessions.Close(sess.ID())
			return err
		}
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"session": sess.State()})
}

func (s *Server) getSession(c fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"session": sess.State()})
}

func (s *Server) closeSession(c fiber.Ctx) error {
	if !s.sessions.Close(c.Params("id")) {
		return fail(c, http.StatusNotFound, "Session not found")
	}
	return c.JSON(fiber.Map{"message": "Session closed"})
}

func (s *Server) loadSession(c fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var req parseRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	if req.Code == "" {
		return fail(c, http.StatusBadRequest, "Missing required field: code")
	}
	if _, err := sess.Load(c.Context(), req.Code); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"session": sess.State()})
}

func (s *Server) selectElement(c fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var req selectRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	if req.ElementID == "" {
		sess.ClearSelection()
	} else if err := sess.Select(req.ElementID); err != nil {
		return sessionError(err)
	}
	return c.JSON(fiber.Map{"session": sess.State()})
}

func (s *Server) sessionProperties(c fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	props, err := sess.Properties(c.Query("elementId"))
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(fiber.Map{
		"properties": s.views(props),
		"groups":     properties.Group(props),
	})
}

func (s *Server) updateElement(c fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var req updateElementRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	if req.Key == "" {
		return fail(c, http.StatusBadRequest, "Missing required field: key")
	}

	var changed bool
	if req.Sides != nil {
		changed, err = sess.UpdateDirectional(c.Params("elementId"), req.Key, *req.Sides)
	} else {
		changed, err = sess.UpdateProperty(c.Params("elementId"), req.Key, req.Value)
	}
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(fiber.Map{"changed": changed, "session": sess.State()})
}

func (s *Server) updatePosition(c fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var pos element.Position
	if err := decode(c, &pos); err != nil {
		return err
	}
	changed, err := sess.UpdatePosition(c.Params("elementId"), pos)
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(fiber.Map{"changed": changed, "session": sess.State()})
}

func (s *Server) resetSession(c fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	sess.Reset()
	return c.JSON(fiber.Map{"session": sess.State()})
}

func (s *Server) saveSession(c fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	a, err := sess.Save(c.Context())
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(fiber.Map{"artifact": a, "session": sess.State()})
}

func (s *Server) saveSessionAs(c fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var req saveAsRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	a, err := sess.SaveAs(c.Context(), req.Name)
	if err != nil {
		return sessionError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"artifact": a, "session": sess.State()})
}

func (s *Server) openArtifact(c fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var req openArtifactRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	if req.ArtifactID == "" {
		return fail(c, http.StatusBadRequest, "Missing required field: artifactId")
	}

	if req.Version > 0 {
		_, err = sess.LoadVersion(c.Context(), req.ArtifactID, req.Version)
	} else {
		_, err = sess.LoadArtifact(c.Context(), req.ArtifactID)
	}
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(fiber.Map{"session": sess.State()})
}

func (s *Server) sessionHistory(c fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	history, err := sess.History(c.Context(), c.Params("artifactId"))
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(fiber.Map{"versions": history})
}
