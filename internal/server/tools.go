package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "digits_candidates",
			Description: "Run preprocessing and candidate generation on an image and return every candidate bounding box, before any filtering. Boxes are in working-resolution coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "digits_locate",
			Description: "Locate the rectangular region containing the run of digits in an image. Returns the region in working and source coordinates, the surviving digit boxes, and how many boxes survived each filter stage.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "digits_extract",
			Description: "Locate the digit region, crop and pad it, and cut it into individual digit images ordered left to right.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"include_images": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the region and digit crops as base64 PNG. Default true",
						"default":     true,
					},
					"save": map[string]interface{}{
						"type":        "boolean",
						"description": "Also write DetectedArea, BoundingBox and Digit files to the configured output directory. Default false",
						"default":     false,
					},
					"id": map[string]interface{}{
						"type":        "integer",
						"description": "Identifier used in saved file names. Default 0",
						"default":     0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "digits_overlay",
			Description: "Draw the boxes that survive a given pipeline stage onto the working image and return it as base64 PNG. Useful for seeing why a region was or was not found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"stage": map[string]interface{}{
						"type":        "string",
						"enum":        stageNames(),
						"description": "Stage whose survivors are drawn. Default region",
						"default":     "region",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Box color as hex. Default #0000FF",
						"default":     "#0000FF",
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
