package editor

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/extractor"
	"github.com/gnana997/compedit/pkg/parser"
	"github.com/gnana997/compedit/pkg/parser/queries"
	"github.com/gnana997/compedit/pkg/properties"
	"github.com/gnana997/compedit/pkg/properties/plugins"
	"github.com/gnana997/compedit/pkg/store"
)

const badge = `import React from "react";

export default function Badge() {
  return <span style={{color:"red"}}>Hi</span>;
}
`

const card = `import React from "react";

export default function Card() {
  return (
    <div style={{ padding: "16px" }}>
      <h2>Title</h2>
    </div>
  );
}
`

type fixture struct {
	parser *extractor.Parser
	engine *properties.Engine
	store  store.Store
	logger *slog.Logger
}

func newFixture(t *testing.T, withStore bool) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pm := parser.NewParserManager(logger)
	qm := queries.NewQueryManager(pm, logger)
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})

	reg := properties.NewRegistry(logger)
	require.NoError(t, plugins.Install(context.Background(), reg))

	f := fixture{
		parser: extractor.New(pm, qm, logger),
		engine: properties.NewEngine(reg, logger),
		logger: logger,
	}
	if withStore {
		s, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "artifacts.db"), logger)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		f.store = s
	}
	return f
}

func (f fixture) session(t *testing.T, code string) *Session {
	t.Helper()
	s := NewSession("test", f.parser, f.engine, f.store, f.logger)
	if code != "" {
		_, err := s.Load(context.Background(), code)
		require.NoError(t, err)
	}
	return s
}

func TestLoad(t *testing.T) {
	s := newFixture(t, false).session(t, badge)

	st := s.State()
	assert.True(t, st.Loaded)
	assert.Equal(t, "Badge", st.Name)
	assert.Equal(t, badge, st.Code)
	assert.Equal(t, []string{"react"}, st.Dependencies)
	assert.False(t, st.Dirty)
	assert.Empty(t, st.SelectedID)
	require.Len(t, st.Elements, 1)
}

func TestLoadSyntaxErrorKeepsState(t *testing.T) {
	s := newFixture(t, false).session(t, badge)
	require.NoError(t, s.Select("element-0"))

	_, err := s.Load(context.Background(), "export default function () { return <div </span>; }")
	var syntaxErr *parser.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)

	st := s.State()
	assert.Equal(t, "Badge", st.Name)
	assert.Equal(t, "element-0", st.SelectedID)
}

func TestEditsBeforeLoad(t *testing.T) {
	s := newFixture(t, false).session(t, "")

	_, err := s.UpdateProperty("element-0", "color", element.String("blue"))
	assert.ErrorIs(t, err, ErrNoComponent)
	assert.ErrorIs(t, s.Select("element-0"), ErrNoComponent)
	_, err = s.Properties("element-0")
	assert.ErrorIs(t, err, ErrNoComponent)
	_, err = s.Code()
	assert.ErrorIs(t, err, ErrNoComponent)
	assert.False(t, s.State().Loaded)
}

func TestSelect(t *testing.T) {
	s := newFixture(t, false).session(t, card)

	require.NoError(t, s.Select("element-0"))
	require.NotNil(t, s.Selected())
	assert.Equal(t, "h2", s.Selected().TagName)

	assert.ErrorIs(t, s.Select("element-42"), ErrUnknownElement)
	assert.Equal(t, "element-0", s.State().SelectedID)

	s.ClearSelection()
	assert.Nil(t, s.Selected())
	_, err := s.Properties("")
	assert.ErrorIs(t, err, ErrNoSelection)
	_, err = s.UpdateProperty("", "color", element.String("blue"))
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestUpdatePropertyRegeneratesCode(t *testing.T) {
	s := newFixture(t, false).session(t, badge)

	changed, err := s.UpdateProperty("element-0", "color", element.String("blue"))
	require.NoError(t, err)
	assert.True(t, changed)

	st := s.State()
	assert.True(t, st.Dirty)
	assert.Contains(t, st.Code, `style={{ "color": "blue" }}`)
	assert.NotContains(t, st.Code, `"red"`)
	assert.Contains(t, st.Code, "export default function Badge()")
}

func TestUpdatePropertyRejected(t *testing.T) {
	s := newFixture(t, false).session(t, badge)

	changed, err := s.UpdateProperty("element-0", "color", element.String("not a colour"))
	require.NoError(t, err)
	assert.False(t, changed)

	st := s.State()
	assert.False(t, st.Dirty)
	assert.Equal(t, badge, st.Code)
}

func TestUpdatePropertyUnknownElement(t *testing.T) {
	s := newFixture(t, false).session(t, badge)

	_, err := s.UpdateProperty("element-9", "color", element.String("blue"))
	assert.ErrorIs(t, err, ErrUnknownElement)
}

func TestUpdateSelectedText(t *testing.T) {
	s := newFixture(t, false).session(t, card)
	require.NoError(t, s.Select("element-0"))

	changed, err := s.UpdateProperty("", properties.TextContentKey, element.String("Hello"))
	require.NoError(t, err)
	assert.True(t, changed)

	code, err := s.Code()
	require.NoError(t, err)
	assert.Contains(t, code, "Hello")
	assert.NotContains(t, code, "Title")
	assert.Equal(t, "Hello", s.Selected().TextContent)
}

func TestUpdateDirectional(t *testing.T) {
	s := newFixture(t, false).session(t, card)

	changed, err := s.UpdateDirectional("element-1", "padding", properties.Sides{Top: 2, Right: 4, Bottom: 6, Left: 8})
	require.NoError(t, err)
	assert.True(t, changed)

	props, err := s.Properties("element-1")
	require.NoError(t, err)
	var padding properties.EditableProperty
	for _, p := range props {
		if p.Key == "padding" {
			padding = p
		}
	}
	require.NotNil(t, padding.Sides)
	assert.Equal(t, properties.Sides{Top: 2, Right: 4, Bottom: 6, Left: 8}, *padding.Sides)

	div := element.Find(s.State().Elements, "element-1")
	v, ok := div.StyleValue("padding")
	require.True(t, ok)
	assert.Equal(t, float64(5), v.Float())
	assert.Contains(t, s.State().Code, `"paddingLeft": 8`)
}

func TestUpdatePosition(t *testing.T) {
	s := newFixture(t, false).session(t, card)
	pos := element.Position{X: 10, Y: 20, Width: 300, Height: 120}

	changed, err := s.UpdatePosition("element-1", pos)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, pos, element.Find(s.State().Elements, "element-1").Position)

	changed, err = s.UpdatePosition("element-1", pos)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestGroupedProperties(t *testing.T) {
	s := newFixture(t, false).session(t, badge)
	require.NoError(t, s.Select("element-0"))

	groups, err := s.GroupedProperties("")
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	assert.Equal(t, properties.PrimaryCategory, groups[0].Category)
}

func TestStateIsolation(t *testing.T) {
	s := newFixture(t, false).session(t, badge)
	before := s.State()

	_, err := s.UpdateProperty("element-0", "color", element.String("blue"))
	require.NoError(t, err)

	v, ok := before.Elements[0].StyleValue("color")
	require.True(t, ok)
	assert.Equal(t, "red", v.String())
}

func TestReset(t *testing.T) {
	s := newFixture(t, false).session(t, badge)
	require.NoError(t, s.Select("element-0"))
	s.Reset()

	st := s.State()
	assert.False(t, st.Loaded)
	assert.Empty(t, st.SelectedID)
	assert.Empty(t, st.Elements)
}

func TestPersistenceWithoutStore(t *testing.T) {
	s := newFixture(t, false).session(t, badge)
	ctx := context.Background()

	_, err := s.Save(ctx)
	assert.ErrorIs(t, err, ErrNoStore)
	_, err = s.SaveAs(ctx, "Other")
	assert.ErrorIs(t, err, ErrNoStore)
	_, err = s.History(ctx, "x")
	assert.ErrorIs(t, err, ErrNoStore)
	assert.ErrorIs(t, s.Delete(ctx, "x"), ErrNoStore)
}
