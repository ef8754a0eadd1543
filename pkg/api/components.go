package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/gnana997/compedit/pkg/codegen"
	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/properties"
	"github.com/gnana997/compedit/pkg/samples"
)

type parseRequest struct {
	Code string `json:"code"`
}

type generateRequest struct {
	Name     string          `json:"name"`
	Elements []*element.Node `json:"elements"`
}

type propertiesRequest struct {
	Element   *element.Node `json:"element,omitempty"`
	Code      string        `json:"code,omitempty"`
	ElementID string        `json:"elementId,omitempty"`
}

type editRequest struct {
	Code      string            `json:"code"`
	ElementID string            `json:"elementId"`
	Key       string            `json:"key"`
	Value     element.Value     `json:"value"`
	Sides     *properties.Sides `json:"sides,omitempty"`
}

// propertyView pairs a property with its rendered control.
type propertyView struct {
	properties.EditableProperty
	Control properties.Control `json:"control"`
}

// decode reads an optional JSON body into dst.
func decode(c fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid json")
	}
	return nil
}

func (s *Server) parseComponent(c fiber.Ctx) error {
	var req parseRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Code) == "" {
		return fail(c, http.StatusBadRequest, "Missing required field: code")
	}

	pc, err := s.sessions.Parser().Parse(c.Context(), req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"component": pc})
}

func (s *Server) generateCode(c fiber.Ctx) error {
	var req generateRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"code": codegen.Generate(req.Elements, req.Name)})
}

func (s *Server) listProperties(c fiber.Ctx) error {
	var req propertiesRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	n := req.Element
	if n == nil {
		if req.Code == "" || req.ElementID == "" {
			return fail(c, http.StatusBadRequest, "Provide element, or code and elementId")
		}
		pc, err := s.sessions.Parser().Parse(c.Context(), req.Code)
		if err != nil {
			return err
		}
		if n = element.Find(pc.Elements, req.ElementID); n == nil {
			return fail(c, http.StatusNotFound, "Element not found")
		}
	}

	props := s.sessions.Engine().Properties(n)
	return c.JSON(fiber.Map{
		"properties": s.views(props),
		"groups":     properties.Group(props),
	})
}

func (s *Server) views(props []properties.EditableProperty) []propertyView {
	out := make([]propertyView, 0, len(props))
	for _, p := range props {
		out = append(out, propertyView{EditableProperty: p, Control: s.sessions.Engine().Render(p)})
	}
	return out
}

func (s *Server) editComponent(c fiber.Ctx) error {
	var req editRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	if req.Code == "" || req.ElementID == "" || req.Key == "" {
		return fail(c, http.StatusBadRequest, "Missing required fields: code, elementId, key")
	}

	pc, err := s.sessions.Parser().Parse(c.Context(), req.Code)
	if err != nil {
		return err
	}
	before := element.Find(pc.Elements, req.ElementID)
	if before == nil {
		return fail(c, http.StatusNotFound, "Element not found")
	}

	engine := s.sessions.Engine()
	var roots []*element.Node
	if req.Sides != nil {
		roots, _ = engine.ApplyDirectionalTo(pc.Elements, req.ElementID, req.Key, *req.Sides)
	} else {
		roots, _ = engine.ApplyTo(pc.Elements, req.ElementID, req.Key, req.Value)
	}
	changed := element.Find(roots, req.ElementID) != before

	code := req.Code
	if changed {
		code = codegen.Generate(roots, pc.Name)
	}
	return c.JSON(fiber.Map{
		"changed":  changed,
		"code":     code,
		"elements": roots,
	})
}

func (s *Server) listPlugins(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"plugins": s.sessions.Engine().Registry().Plugins()})
}

func (s *Server) listSamples(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"samples": samples.Names()})
}

func (s *Server) getSample(c fiber.Ctx) error {
	sample, ok := samples.Get(c.Params("name"))
	if !ok {
		return fail(c, http.StatusNotFound, "Sample not found")
	}
	return c.JSON(fiber.Map{"sample": sample})
}
