package sheetnorm

import (
	"fmt"
	"os"
	"sort"

	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/parser"
	"gopkg.in/yaml.v2"
)

// Layout names one of the supported sheet layouts.
type Layout string

const (
	// LayoutRegionYear is one header row of years, one data row per region.
	LayoutRegionYear Layout = "region_year"
	// LayoutYearCategoryByRegion is a year row over a category row, with a
	// region column.
	LayoutYearCategoryByRegion Layout = "year_category_by_region"
	// LayoutYearCategoryNational is a year row over a category row, without
	// a region column.
	LayoutYearCategoryNational Layout = "year_category_national"
)

// Handler is an explicit parsing recipe for one sheet. Row and column
// positions are 0-based.
type Handler struct {
	Layout      Layout `yaml:"layout" json:"layout"`
	Metric      string `yaml:"metric" json:"metric"`
	DimName     string `yaml:"dim_name,omitempty" json:"dim_name,omitempty"`
	HeaderRow   int    `yaml:"header_row" json:"header_row"`
	YearRow     int    `yaml:"year_row" json:"year_row"`
	CategoryRow int    `yaml:"category_row" json:"category_row"`
	StartRow    int    `yaml:"start_row" json:"start_row"`
	RegionCol   int    `yaml:"region_col" json:"region_col"`
}

// NewHandler returns a handler with the positions used by the known
// workbook: years in row 1, categories in row 2, data from row 3, regions
// in column 0, and the single header of region × year sheets in row 2.
func NewHandler(layout Layout, metric, dimName string) Handler {
	return Handler{
		Layout:      layout,
		Metric:      metric,
		DimName:     dimName,
		HeaderRow:   2,
		YearRow:     1,
		CategoryRow: 2,
		StartRow:    3,
		RegionCol:   0,
	}
}

// UnmarshalYAML fills unspecified positions with the NewHandler defaults.
func (h *Handler) UnmarshalYAML(unmarshal func(interface{}) error) error {
	*h = NewHandler("", "", "")
	type plain Handler
	return unmarshal((*plain)(h))
}

// Validate checks that the handler can run.
func (h Handler) Validate() error {
	switch h.Layout {
	case LayoutRegionYear, LayoutYearCategoryByRegion, LayoutYearCategoryNational:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLayout, h.Layout)
	}
	if h.Metric == "" {
		return fmt.Errorf("%w: metric", parser.ErrMissingLabel)
	}
	if h.Layout != LayoutRegionYear && h.DimName == "" {
		return fmt.Errorf("%w: dim_name", parser.ErrMissingLabel)
	}
	return nil
}

// Parse runs the handler's layout parser over a grid.
func (h Handler) Parse(g models.Grid, years parser.YearRange, defaultRegion string) ([]models.LongRecord, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	cat := parser.YearCategoryParams{
		YearRow:       h.YearRow,
		CategoryRow:   h.CategoryRow,
		StartRow:      h.StartRow,
		RegionCol:     h.RegionCol,
		DimName:       h.DimName,
		Metric:        h.Metric,
		DefaultRegion: defaultRegion,
		Years:         years,
	}
	switch h.Layout {
	case LayoutRegionYear:
		return parser.ParseRegionYearSimple(g, parser.RegionYearParams{
			HeaderRow: h.HeaderRow,
			RegionCol: h.RegionCol,
			Metric:    h.Metric,
			Years:     years,
		})
	case LayoutYearCategoryByRegion:
		return parser.ParseYearCategoryByRegion(g, cat)
	default:
		return parser.ParseYearCategoryNational(g, cat)
	}
}

// Registry maps sheet names to explicit handlers.
type Registry map[string]Handler

// Lookup returns the handler registered for a sheet.
func (r Registry) Lookup(sheet string) (Handler, bool) {
	h, ok := r[sheet]
	return h, ok
}

// Merge returns a new registry with the entries of o layered over r.
func (r Registry) Merge(o Registry) Registry {
	out := make(Registry, len(r)+len(o))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Sheets returns the registered sheet names in sorted order.
func (r Registry) Sheets() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultHandlers returns the handlers of the road-accident workbook.
func DefaultHandlers() Registry {
	byRegion := func(metric, dimName string) Handler {
		return NewHandler(LayoutYearCategoryByRegion, metric, dimName)
	}
	return Registry{
		"SINIESTROS AÑO REGIÓN":          NewHandler(LayoutRegionYear, "siniestros_total", ""),
		"SINIESTROS POR TIPO":            byRegion("siniestros_por_tipo", "tipo_accidente"),
		"CAUSAS POR REGIÓN":              byRegion("siniestros_por_causa", "causa"),
		"CONDUCTORES INVOLUCRADOS":       byRegion("conductores_involucrados", "condicion_conductor"),
		"VEHICULOS INVOLUCRADOS":         byRegion("vehiculos_involucrados", "tipo_vehiculo"),
		"VEHICULOS POR TIPO Y REGIÓN":    byRegion("vehiculos_por_tipo_region", "tipo_vehiculo"),
		"FRANJA HORARIA":                 byRegion("siniestros_por_franja_horaria", "franja_horaria"),
		"DÍA":                            byRegion("siniestros_por_dia", "dia_semana"),
		"SINIESTROS RURALES POR TIPO":    byRegion("siniestros_rurales_por_tipo", "tipo_accidente_rural"),
		"SINIES. RURAL HERIDO FALLECIDO": byRegion("siniestros_rurales_victimas", "condicion_victima"),
		"FALLECIDOS":                     byRegion("fallecidos", "grupo_edad_o_categoria"),
		"HERIDOS":                        byRegion("heridos", "grupo_edad_o_categoria"),
	}
}

// LoadHandlers reads a YAML document mapping sheet names to handlers.
// Omitted positions take the NewHandler defaults.
//
//	"SINIESTROS POR TIPO":
//	  layout: year_category_by_region
//	  metric: siniestros_por_tipo
//	  dim_name: tipo_accidente
func LoadHandlers(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read handlers: %w", err)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse handlers %s: %w", path, err)
	}
	for sheet, h := range reg {
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("handler for sheet %q: %w", sheet, err)
		}
	}
	return reg, nil
}
