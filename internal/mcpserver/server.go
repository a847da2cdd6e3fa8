// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the garden record for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/catalog"
	"github.com/starford/rosarium/internal/gardenservice"
	"github.com/starford/rosarium/internal/models"
)

// Server wraps the MCP server with the garden tools.
type Server struct {
	mcp *server.MCPServer
	svc *gardenservice.Service
}

// New creates a new MCP server with all garden tools registered.
func New(svc *gardenservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Rosarium",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_specimens",
		mcp.WithDescription("List every tracked plant with its id, name and brand."),
	), s.listSpecimens)

	s.mcp.AddTool(mcp.NewTool("search_varieties",
		mcp.WithDescription("Search the variety catalog by name substring. Use it to pre-fill a new specimen."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Part of the variety name")),
	), s.searchVarieties)

	s.mcp.AddTool(mcp.NewTool("add_specimen",
		mcp.WithDescription("Add a plant to the garden."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name")),
		mcp.WithString("brand", mcp.Description("Origin key from the catalog, e.g. \"David Austin (UK)\"")),
		mcp.WithString("acquisition_date", mcp.Description("YYYY-MM-DD, defaults to today")),
		mcp.WithString("description", mcp.Description("Free text")),
	), s.addSpecimen)

	s.mcp.AddTool(mcp.NewTool("list_care_types",
		mcp.WithDescription("List care types with their products and the soil components usable in soil changes."),
	), s.listCareTypes)

	s.mcp.AddTool(mcp.NewTool("cell_history",
		mcp.WithDescription("List the care events of one plant in one month, latest first."),
		mcp.WithString("specimen_id", mcp.Required(), mcp.Description("Specimen id")),
		mcp.WithNumber("year", mcp.Required(), mcp.Description("Calendar year")),
		mcp.WithNumber("month", mcp.Required(), mcp.Description("Month 1-12")),
	), s.cellHistory)

	s.mcp.AddTool(mcp.NewTool("record_care",
		mcp.WithDescription("Record one care event. Read the record format first via get_record_format."),
		mcp.WithString("specimen_id", mcp.Required(), mcp.Description("Specimen id")),
		mcp.WithString("date", mcp.Required(), mcp.Description("YYYY-MM-DD")),
		mcp.WithString("type_id", mcp.Required(), mcp.Description("Care type id from list_care_types")),
		mcp.WithString("product_id", mcp.Description("Product id matching the care type")),
		mcp.WithString("soil_id", mcp.Description("Soil component for soil changes")),
		mcp.WithString("note", mcp.Description("Free text")),
	), s.recordCare)

	s.mcp.AddTool(mcp.NewTool("record_batch",
		mcp.WithDescription("Record the same care for several plants on one date."),
		mcp.WithArray("specimen_ids", mcp.Required(), mcp.Description("Specimen ids, in order"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("date", mcp.Required(), mcp.Description("YYYY-MM-DD")),
		mcp.WithString("type_id", mcp.Required(), mcp.Description("Care type id")),
		mcp.WithString("product_id", mcp.Description("Product id matching the care type")),
		mcp.WithString("soil_id", mcp.Description("Soil component for soil changes")),
		mcp.WithString("note", mcp.Description("Free text")),
	), s.recordBatch)

	s.mcp.AddTool(mcp.NewTool("activity_summary",
		mcp.WithDescription("Count care events per type overall and per month for a year."),
		mcp.WithNumber("year", mcp.Description("Year for the monthly counts, defaults to the current year")),
	), s.activitySummary)

	s.mcp.AddTool(mcp.NewTool("attach_photo",
		mcp.WithDescription("Attach a before or after photo to a pruning event. Accepts a data: URI or an http(s) URL."),
		mcp.WithString("event_id", mcp.Required(), mcp.Description("Pruning event id")),
		mcp.WithString("slot", mcp.Required(), mcp.Enum(gardenservice.PhotoBefore, gardenservice.PhotoAfter)),
		mcp.WithString("url", mcp.Required(), mcp.Description("data: URI or http(s) URL of a png, jpeg, gif or webp image")),
	), s.attachPhoto)

	s.mcp.AddTool(mcp.NewTool("get_record_format",
		mcp.WithDescription("Returns the garden record format: care types, date rules and the snapshot document layout."),
	), s.getRecordFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Garden Record Format",
			mcp.WithResourceDescription("How care events and snapshot documents are structured."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found: " + err.Error())
	case errors.Is(err, apperr.ErrInvalid):
		return mcp.NewToolResultError("invalid input: " + err.Error())
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listSpecimens(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Specimens(ctx))
}

func (s *Server) searchVarieties(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits := catalog.SearchVarieties(query)
	if len(hits) == 0 {
		return mcp.NewToolResultText("no matching varieties"), nil
	}
	return jsonResult(hits)
}

func (s *Server) addSpecimen(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec, err := s.svc.SaveSpecimen(ctx, models.Specimen{
		Name:            name,
		Brand:           req.GetString("brand", ""),
		AcquisitionDate: req.GetString("acquisition_date", ""),
		Description:     req.GetString("description", ""),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(spec)
}

type careTypeInfo struct {
	catalog.CareType
	Products []catalog.Product `json:"products"`
}

func (s *Server) listCareTypes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	types := catalog.CareTypes()
	out := struct {
		CareTypes []careTypeInfo          `json:"careTypes"`
		Soils     []catalog.SoilComponent `json:"soils"`
	}{Soils: catalog.SoilComponents()}
	for _, t := range types {
		out.CareTypes = append(out.CareTypes, careTypeInfo{CareType: t, Products: catalog.ProductsFor(t.ID)})
	}
	return jsonResult(out)
}

func (s *Server) cellHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("specimen_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	year, err := req.RequireInt("year")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	month, err := req.RequireInt("month")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	events, err := s.svc.History(ctx, id, year, month)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(events)
}

func (s *Server) recordCare(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("specimen_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typeID, err := req.RequireString("type_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, m, d, ok := models.SplitDate(date)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date)), nil
	}
	in := gardenservice.CareInput{
		SpecimenID: id,
		Year:       y,
		Month:      m,
		Day:        d,
		TypeID:     models.CareTypeID(typeID),
		ProductID:  req.GetString("product_id", ""),
		Note:       req.GetString("note", ""),
	}
	if soil := req.GetString("soil_id", ""); soil != "" {
		in.SoilMix = models.SoilMix{{SoilID: soil, Value: 1}}
	}
	e, err := s.svc.RecordCare(ctx, in)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(e)
}

func (s *Server) recordBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := req.RequireStringSlice("specimen_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typeID, err := req.RequireString("type_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.RecordBatch(ctx, gardenservice.BatchInput{
		SpecimenIDs: ids,
		Date:        date,
		TypeID:      models.CareTypeID(typeID),
		ProductID:   req.GetString("product_id", ""),
		SoilID:      req.GetString("soil_id", ""),
		Note:        req.GetString("note", ""),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(res)
}

func (s *Server) activitySummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Summary(ctx, req.GetInt("year", 0)))
}

func (s *Server) getRecordFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}
