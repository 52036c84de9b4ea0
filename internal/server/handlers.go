package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/inkscale/marksheet/internal/annotate"
	"github.com/inkscale/marksheet/internal/catalog"
	"github.com/inkscale/marksheet/internal/grade"
	"github.com/inkscale/marksheet/internal/layout"
	"github.com/inkscale/marksheet/internal/logging"
	"github.com/inkscale/marksheet/internal/mark"
	"github.com/inkscale/marksheet/internal/ocr"
	"github.com/inkscale/marksheet/internal/sheet"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "sheet_grade", "catalog_load").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads sheets from cache and catalogs from disk as needed
//  4. Calls the appropriate catalog/mark/grade/annotate function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Sheet Information
	case "sheet_info":
		return s.handleSheetInfo(args)

	// Catalog Operations
	case "catalog_load":
		return s.handleCatalogLoad(args)
	case "catalog_lint":
		return s.handleCatalogLint(args)
	case "catalog_discover":
		return s.handleCatalogDiscover(args)

	// Mark Measurement
	case "region_density":
		return s.handleRegionDensity(args)
	case "sheet_densities":
		return s.handleSheetDensities(args)

	// Grading
	case "sheet_answers":
		return s.handleSheetAnswers(args)
	case "sheet_grade":
		return s.handleSheetGrade(args)
	case "batch_grade":
		return s.handleBatchGrade(args)

	// Review Output
	case "sheet_annotate":
		return s.handleSheetAnnotate(args)
	case "sheet_crop_region":
		return s.handleSheetCropRegion(args)
	case "sheet_ink_mask":
		return s.handleSheetInkMask(args)

	// Identification
	case "sheet_read_id":
		return s.handleSheetReadID(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// studentIDFor resolves the identity to put on a report: the OCR strip when
// this build can read it, the file stem otherwise.
func studentIDFor(path string, img image.Image) string {
	if identity, err := ocr.ReadStudentID(img, ocr.DefaultStrip()); err == nil {
		return identity.StudentID
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// === Sheet Information Handlers ===

type sheetInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleSheetInfo(args json.RawMessage) (interface{}, error) {
	var a sheetInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return sheet.LoadInfo(s.cache, a.Path)
}

// === Catalog Operation Handlers ===

type catalogLoadArgs struct {
	Path string `json:"path"`
}

// catalogSummary is the catalog_load result: enough to confirm the file
// parsed and the key covers what the caller expects.
type catalogSummary struct {
	Path      string `json:"path"`
	Regions   int    `json:"regions"`
	Questions int    `json:"questions"`
	Keyed     int    `json:"keyed"`
}

func (s *Server) handleCatalogLoad(args json.RawMessage) (interface{}, error) {
	var a catalogLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := catalog.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return &catalogSummary{
		Path:      a.Path,
		Regions:   len(c.Regions),
		Questions: len(c.Questions()),
		Keyed:     len(c.CorrectAnswers),
	}, nil
}

type catalogLintArgs struct {
	Path      string  `json:"path"`
	Tolerance float64 `json:"tolerance"`
}

type lintResult struct {
	Warnings []string `json:"warnings"`
	Count    int      `json:"count"`
}

func (s *Server) handleCatalogLint(args json.RawMessage) (interface{}, error) {
	var a catalogLintArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Tolerance == 0 {
		a.Tolerance = catalog.DefaultLintTolerance
	}
	c, err := catalog.Load(a.Path)
	if err != nil {
		return nil, err
	}

	warnings := c.Lint(a.Tolerance)
	if warnings == nil {
		warnings = []string{}
	}
	return &lintResult{Warnings: warnings, Count: len(warnings)}, nil
}

type catalogDiscoverArgs struct {
	Path      string `json:"path"`
	Questions int    `json:"questions"`
	Options   int    `json:"options"`
	KeySheet  bool   `json:"key_sheet"`
	Output    string `json:"output"`
}

type discoverResult struct {
	Catalog *catalog.Catalog `json:"catalog"`
	SavedTo string           `json:"saved_to,omitempty"`
}

func (s *Server) handleCatalogDiscover(args json.RawMessage) (interface{}, error) {
	var a catalogDiscoverArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.layout == nil {
		return nil, fmt.Errorf("catalog discovery is not configured: set GEMINI_API_KEY")
	}

	c, err := s.layout.Discover(context.Background(), layout.Request{
		ImagePath: a.Path,
		Questions: a.Questions,
		Options:   a.Options,
		KeySheet:  a.KeySheet,
	})
	if err != nil {
		return nil, err
	}

	result := &discoverResult{Catalog: c}
	if a.Output != "" {
		if err := c.Save(a.Output); err != nil {
			return nil, err
		}
		result.SavedTo = a.Output
	}
	return result, nil
}

// === Mark Measurement Handlers ===

type regionDensityArgs struct {
	Path     string `json:"path"`
	Catalog  string `json:"catalog"`
	RegionID string `json:"region_id"`
}

func (s *Server) handleRegionDensity(args json.RawMessage) (interface{}, error) {
	var a regionDensityArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, c, err := s.loadSheetAndCatalog(a.Path, a.Catalog)
	if err != nil {
		return nil, err
	}

	r, ok := c.FindRegion(a.RegionID)
	if !ok {
		return nil, fmt.Errorf("no region %q in catalog", a.RegionID)
	}

	density := s.policy.Density(img, r)
	return &mark.Signal{
		RegionID: r.ID,
		Density:  density,
		Marked:   s.policy.Marked(density),
	}, nil
}

type sheetDensitiesArgs struct {
	Path    string `json:"path"`
	Catalog string `json:"catalog"`
}

func (s *Server) handleSheetDensities(args json.RawMessage) (interface{}, error) {
	var a sheetDensitiesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, c, err := s.loadSheetAndCatalog(a.Path, a.Catalog)
	if err != nil {
		return nil, err
	}
	return s.policy.Measure(img, c.Regions), nil
}

// === Grading Handlers ===

type sheetAnswersArgs struct {
	Path    string `json:"path"`
	Catalog string `json:"catalog"`
}

func (s *Server) handleSheetAnswers(args json.RawMessage) (interface{}, error) {
	var a sheetAnswersArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, c, err := s.loadSheetAndCatalog(a.Path, a.Catalog)
	if err != nil {
		return nil, err
	}
	return grade.Resolve(img, c, s.policy), nil
}

type sheetGradeArgs struct {
	Path      string `json:"path"`
	Catalog   string `json:"catalog"`
	StudentID string `json:"student_id"`
}

func (s *Server) handleSheetGrade(args json.RawMessage) (interface{}, error) {
	var a sheetGradeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, c, err := s.loadSheetAndCatalog(a.Path, a.Catalog)
	if err != nil {
		return nil, err
	}
	warnUnkeyed(c, a.Catalog)

	if a.StudentID == "" {
		a.StudentID = studentIDFor(a.Path, img)
	}
	return grade.GradeSheet(img, c, s.policy, a.StudentID), nil
}

type batchGradeArgs struct {
	Catalog string `json:"catalog"`
	Sheets  []struct {
		Path      string `json:"path"`
		StudentID string `json:"student_id"`
	} `json:"sheets"`
	Workers int `json:"workers"`
}

type batchSheetResult struct {
	StudentID string        `json:"studentId"`
	Path      string        `json:"path"`
	Report    *grade.Report `json:"report,omitempty"`
	Error     string        `json:"error,omitempty"`
}

type batchResult struct {
	Graded  int                `json:"graded"`
	Failed  int                `json:"failed"`
	Results []batchSheetResult `json:"results"`
}

func (s *Server) handleBatchGrade(args json.RawMessage) (interface{}, error) {
	var a batchGradeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets to grade")
	}
	if a.Workers == 0 {
		a.Workers = grade.DefaultWorkers
	}
	c, err := catalog.Load(a.Catalog)
	if err != nil {
		return nil, err
	}
	warnUnkeyed(c, a.Catalog)

	sheets := make([]grade.Sheet, len(a.Sheets))
	for i, in := range a.Sheets {
		id := in.StudentID
		if id == "" {
			base := filepath.Base(in.Path)
			id = strings.TrimSuffix(base, filepath.Ext(base))
		}
		sheets[i] = grade.Sheet{StudentID: id, Path: in.Path}
	}

	results := grade.GradeBatch(context.Background(), s.cache, sheets, c, s.policy, a.Workers)

	out := &batchResult{Results: make([]batchSheetResult, len(results))}
	for i, r := range results {
		out.Results[i] = batchSheetResult{
			StudentID: r.Sheet.StudentID,
			Path:      r.Sheet.Path,
			Report:    r.Report,
		}
		if r.Err != nil {
			out.Results[i].Error = r.Err.Error()
			out.Failed++
		} else {
			out.Graded++
		}
	}
	return out, nil
}

// === Review Output Handlers ===

type sheetAnnotateArgs struct {
	Path      string `json:"path"`
	Catalog   string `json:"catalog"`
	StudentID string `json:"student_id"`
	Output    string `json:"output"`
}

type annotateResult struct {
	OutputPath string        `json:"output_path"`
	Report     *grade.Report `json:"report"`
}

func (s *Server) handleSheetAnnotate(args json.RawMessage) (interface{}, error) {
	var a sheetAnnotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, c, err := s.loadSheetAndCatalog(a.Path, a.Catalog)
	if err != nil {
		return nil, err
	}
	warnUnkeyed(c, a.Catalog)

	if a.StudentID == "" {
		a.StudentID = studentIDFor(a.Path, img)
	}
	if a.Output == "" {
		a.Output = annotate.DefaultOutputPath(a.Path)
	}

	report := grade.GradeSheet(img, c, s.policy, a.StudentID)
	overlay := annotate.Overlay(img, c, report, s.policy, annotate.DefaultStyle())
	if err := annotate.Save(overlay, a.Output); err != nil {
		return nil, err
	}

	return &annotateResult{OutputPath: a.Output, Report: report}, nil
}

type sheetCropRegionArgs struct {
	Path     string `json:"path"`
	Catalog  string `json:"catalog"`
	RegionID string `json:"region_id"`
}

type cropRegionResult struct {
	Region  catalog.Region     `json:"region"`
	Density float64            `json:"density"`
	Marked  bool               `json:"marked"`
	Image   *annotate.Snapshot `json:"image"`
}

func (s *Server) handleSheetCropRegion(args json.RawMessage) (interface{}, error) {
	var a sheetCropRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, c, err := s.loadSheetAndCatalog(a.Path, a.Catalog)
	if err != nil {
		return nil, err
	}

	r, ok := c.FindRegion(a.RegionID)
	if !ok {
		return nil, fmt.Errorf("no region %q in catalog", a.RegionID)
	}

	rect := annotate.RegionRect(img.Bounds(), r)
	if rect.Empty() {
		return nil, fmt.Errorf("region %q lies outside the sheet", a.RegionID)
	}

	snap, err := annotate.NewSnapshot(imaging.Crop(img, rect))
	if err != nil {
		return nil, err
	}

	density := s.policy.Density(img, r)
	return &cropRegionResult{
		Region:  r,
		Density: density,
		Marked:  s.policy.Marked(density),
		Image:   snap,
	}, nil
}

type sheetInkMaskArgs struct {
	Path   string `json:"path"`
	Output string `json:"output"`
}

type inkMaskResult struct {
	OutputPath string             `json:"output_path,omitempty"`
	Image      *annotate.Snapshot `json:"image,omitempty"`
}

func (s *Server) handleSheetInkMask(args json.RawMessage) (interface{}, error) {
	var a sheetInkMaskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	mask := annotate.InkMask(img, s.policy)
	if a.Output != "" {
		if err := annotate.Save(mask, a.Output); err != nil {
			return nil, err
		}
		return &inkMaskResult{OutputPath: a.Output}, nil
	}

	snap, err := annotate.NewSnapshot(mask)
	if err != nil {
		return nil, err
	}
	return &inkMaskResult{Image: snap}, nil
}

// === Identification Handlers ===

type sheetReadIDArgs struct {
	Path  string     `json:"path"`
	Strip *ocr.Strip `json:"strip"`
}

func (s *Server) handleSheetReadID(args json.RawMessage) (interface{}, error) {
	var a sheetReadIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	strip := ocr.DefaultStrip()
	if a.Strip != nil {
		strip = *a.Strip
	}
	return ocr.ReadStudentID(img, strip)
}

// loadSheetAndCatalog resolves the two inputs most tools share.
func (s *Server) loadSheetAndCatalog(sheetPath, catalogPath string) (image.Image, *catalog.Catalog, error) {
	img, err := s.cache.Load(sheetPath)
	if err != nil {
		return nil, nil, err
	}
	c, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, nil, err
	}
	return img, c, nil
}

// warnUnkeyed logs the questions a grading call will skip for lack of a
// correct-answer entry. Stderr only; the tool result stays clean.
func warnUnkeyed(c *catalog.Catalog, catalogPath string) {
	if unkeyed := c.UnkeyedQuestions(); len(unkeyed) > 0 {
		logging.Log.Warn("questions without a correct-answer entry are excluded from scoring",
			zap.String("catalog", catalogPath),
			zap.Ints("questions", unkeyed))
	}
}
