package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Sheet Information
		{
			Name:        "sheet_info",
			Description: "Load an answer-sheet image and return its dimensions, format and orientation. The sheet stays cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the sheet image",
					},
				},
				"required": []string{"path"},
			},
		},

		// Catalog Operations
		{
			Name:        "catalog_load",
			Description: "Parse and validate a region catalog file. Returns counts of regions, questions and keyed answers, or the validation failure.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the catalog JSON file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "catalog_lint",
			Description: "Check a catalog for suspicious geometry: options of one question that line up on neither axis, single-option questions, questions without a key entry.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the catalog JSON file",
					},
					"tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Alignment tolerance as percent of sheet dimension (default 2.0)",
						"default":     2.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "catalog_discover",
			Description: "Derive a region catalog from a blank or key sheet image using the vision model. Requires a configured Gemini API key.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the template sheet image",
					},
					"questions": map[string]interface{}{
						"type":        "integer",
						"description": "Number of questions printed on the sheet",
					},
					"options": map[string]interface{}{
						"type":        "integer",
						"description": "Options per question (2-5)",
					},
					"key_sheet": map[string]interface{}{
						"type":        "boolean",
						"description": "Whether the sheet has the correct answers marked; when true the reply must include the answer key",
						"default":     false,
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to save the discovered catalog JSON",
					},
				},
				"required": []string{"path", "questions", "options"},
			},
		},

		// Mark Measurement
		{
			Name:        "region_density",
			Description: "Measure the dark-pixel density of a single catalog region on a sheet. Returns the density in 0-1 and whether it counts as marked.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the sheet image",
					},
					"catalog": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the catalog JSON file",
					},
					"region_id": map[string]interface{}{
						"type":        "string",
						"description": "ID of the region to measure",
					},
				},
				"required": []string{"path", "catalog", "region_id"},
			},
		},
		{
			Name:        "sheet_densities",
			Description: "Measure dark-pixel densities for every region in the catalog. Useful for tuning thresholds against a reference sheet.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the sheet image",
					},
					"catalog": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the catalog JSON file",
					},
				},
				"required": []string{"path", "catalog"},
			},
		},

		// Grading
		{
			Name:        "sheet_answers",
			Description: "Resolve the selected answer for every question on a sheet without scoring: one marked option selects it, none leaves it blank, several flag it ambiguous.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the sheet image",
					},
					"catalog": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the catalog JSON file",
					},
				},
				"required": []string{"path", "catalog"},
			},
		},
		{
			Name:        "sheet_grade",
			Description: "Grade one sheet against the catalog's answer key and return the full report with per-question details.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the sheet image",
					},
					"catalog": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the catalog JSON file",
					},
					"student_id": map[string]interface{}{
						"type":        "string",
						"description": "Student identifier for the report. When omitted, the identifier strip is read via OCR if available, falling back to the file name.",
					},
				},
				"required": []string{"path", "catalog"},
			},
		},
		{
			Name:        "batch_grade",
			Description: "Grade a batch of sheets concurrently. One unreadable sheet fails alone; results keep submission order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"catalog": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the catalog JSON file",
					},
					"sheets": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"path":       map[string]interface{}{"type": "string"},
								"student_id": map[string]interface{}{"type": "string", "description": "Optional; defaults to the file name"},
							},
							"required": []string{"path"},
						},
						"description": "Sheets to grade, in the order results should come back",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Concurrent graders (default 4)",
						"default":     4,
					},
				},
				"required": []string{"catalog", "sheets"},
			},
		},

		// Review Output
		{
			Name:        "sheet_annotate",
			Description: "Grade a sheet and save a review overlay: each region outlined by outcome (correct, wrong, ambiguous, unkeyed) with density labels on marked options.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the sheet image",
					},
					"catalog": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the catalog JSON file",
					},
					"student_id": map[string]interface{}{
						"type":        "string",
						"description": "Optional student identifier for the report",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Output path for the overlay PNG (default: input path with -graded suffix)",
					},
				},
				"required": []string{"path", "catalog"},
			},
		},
		{
			Name:        "sheet_crop_region",
			Description: "Crop a single catalog region from the sheet and return it as base64 PNG together with its measured density. Use this to inspect disputed marks.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the sheet image",
					},
					"catalog": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the catalog JSON file",
					},
					"region_id": map[string]interface{}{
						"type":        "string",
						"description": "ID of the region to crop",
					},
				},
				"required": []string{"path", "catalog", "region_id"},
			},
		},
		{
			Name:        "sheet_ink_mask",
			Description: "Binarize the sheet at the dark-pixel cutoff: ink black, paper white. Returns base64 PNG, or saves to a file when output is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the sheet image",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to save the mask instead of returning it inline",
					},
				},
				"required": []string{"path"},
			},
		},

		// Identification
		{
			Name:        "sheet_read_id",
			Description: "Read the printed student identifier from the strip at the top of the sheet via OCR. Requires a build with Tesseract support.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the sheet image",
					},
					"strip": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"x": map[string]interface{}{"type": "number"},
							"y": map[string]interface{}{"type": "number"},
							"w": map[string]interface{}{"type": "number"},
							"h": map[string]interface{}{"type": "number"},
						},
						"description": "Identifier strip in percent coordinates. Defaults to the top band of the sheet.",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
