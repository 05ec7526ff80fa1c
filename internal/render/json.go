package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jmylchreest/glazecat/internal/config"
)

// JSONFile is the filename written by the json renderer.
const JSONFile = "colors.json"

type jsonGlaze struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type jsonUnderglaze struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Left string `json:"left"`
	Top  string `json:"top"`
}

// ColorsDocument is the structure of colors.json.
type ColorsDocument struct {
	Glazes      []jsonGlaze      `json:"glazes"`
	Underglazes []jsonUnderglaze `json:"underglazes"`
}

// JSON renders colors.json. Glazes carry their left sample as the colour.
type JSON struct{}

// NewJSON creates the json renderer.
func NewJSON() *JSON {
	return &JSON{}
}

// Name returns the renderer name.
func (j *JSON) Name() string {
	return "json"
}

// Description returns the renderer description.
func (j *JSON) Description() string {
	return "Combined glaze and underglaze colours as " + JSONFile
}

// Render builds colors.json.
func (j *JSON) Render(cat *Catalog) (map[string][]byte, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}

	doc := ColorsDocument{
		Glazes:      []jsonGlaze{},
		Underglazes: []jsonUnderglaze{},
	}
	for _, r := range cat.ByKind(config.KindGlaze) {
		doc.Glazes = append(doc.Glazes, jsonGlaze{ID: r.Code, Name: r.Name, Color: r.Left.Hex()})
	}
	for _, r := range cat.ByKind(config.KindUnderglaze) {
		doc.Underglazes = append(doc.Underglazes, jsonUnderglaze{ID: r.Code, Name: r.Name, Left: r.Left.Hex(), Top: r.Top.Hex()})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", JSONFile, err)
	}

	return map[string][]byte{JSONFile: buf.Bytes()}, nil
}
