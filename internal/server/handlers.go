package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/digit-roi/internal/geometry"
	"github.com/ironsheep/digit-roi/internal/imaging"
	"github.com/ironsheep/digit-roi/internal/segment"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "digits_locate").
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
		s.logger.Warn("Tool failed", "tool", params.Name, "error", err)
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "digits_candidates":
		return s.handleDigitsCandidates(args)
	case "digits_locate":
		return s.handleDigitsLocate(args)
	case "digits_extract":
		return s.handleDigitsExtract(args)
	case "digits_overlay":
		return s.handleDigitsOverlay(args)
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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path string `json:"path"`
}

// loadArgs unmarshals args into a and loads the image named by path.
func (s *Server) loadArgs(args json.RawMessage, a interface{}, path *string) (image.Image, error) {
	if err := json.Unmarshal(args, a); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, errors.New("path is required")
	}
	return s.cache.Load(*path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Pipeline Handlers ===

type candidatesResult struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	ScaleX float64        `json:"scale_x"`
	ScaleY float64        `json:"scale_y"`
	Count  int            `json:"count"`
	Boxes  []geometry.Box `json:"boxes"`
}

func (s *Server) handleDigitsCandidates(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	img, err := s.loadArgs(args, &a, &a.Path)
	if err != nil {
		return nil, err
	}

	p, err := s.newPipeline()
	if err != nil {
		return nil, err
	}
	c, err := p.Candidates(img)
	if err != nil {
		return nil, err
	}

	boxes := geometry.Compact(c.Boxes)
	return &candidatesResult{
		Width:  c.Working.Bounds().Dx(),
		Height: c.Working.Bounds().Dy(),
		ScaleX: c.ScaleX,
		ScaleY: c.ScaleY,
		Count:  len(boxes),
		Boxes:  boxes,
	}, nil
}

type locateResult struct {
	*segment.Location
	SourceRegion geometry.Box `json:"source_region"`
}

func (s *Server) handleDigitsLocate(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	img, err := s.loadArgs(args, &a, &a.Path)
	if err != nil {
		return nil, err
	}

	p, err := s.newPipeline()
	if err != nil {
		return nil, err
	}
	loc, err := p.Locate(img)
	if err != nil {
		return nil, err
	}
	return &locateResult{Location: loc, SourceRegion: loc.SourceRegion()}, nil
}

type digitsExtractArgs struct {
	Path          string `json:"path"`
	IncludeImages *bool  `json:"include_images"`
	Save          bool   `json:"save"`
	ID            int    `json:"id"`
}

type digitResult struct {
	Index int                   `json:"index"`
	Box   geometry.Box          `json:"box"`
	Image *imaging.EncodedImage `json:"image,omitempty"`
}

type extractResult struct {
	Region       geometry.Box          `json:"region"`
	SourceRegion geometry.Box          `json:"source_region"`
	Plate        segment.Plate         `json:"plate"`
	Stages       []segment.StageCount  `json:"stages"`
	RegionImage  *imaging.EncodedImage `json:"region_image,omitempty"`
	Digits       []digitResult         `json:"digits"`
	Artifacts    *segment.Artifacts    `json:"artifacts,omitempty"`
}

func (s *Server) handleDigitsExtract(args json.RawMessage) (interface{}, error) {
	var a digitsExtractArgs
	img, err := s.loadArgs(args, &a, &a.Path)
	if err != nil {
		return nil, err
	}
	include := a.IncludeImages == nil || *a.IncludeImages

	p, err := s.newPipeline()
	if err != nil {
		return nil, err
	}
	res, err := p.Run(img)
	if err != nil {
		return nil, err
	}

	out := &extractResult{
		Region:       res.Region,
		SourceRegion: res.SourceRegion(),
		Plate:        res.Plate,
		Stages:       res.Stages,
		Digits:       make([]digitResult, 0, len(res.Digits)),
	}

	if include {
		if out.RegionImage, err = imaging.Encode(res.ROI); err != nil {
			return nil, err
		}
	}
	for i, d := range res.Digits {
		dr := digitResult{Index: i, Box: d.Box}
		if include {
			if dr.Image, err = imaging.Encode(d.Image); err != nil {
				return nil, err
			}
		}
		out.Digits = append(out.Digits, dr)
	}

	if a.Save {
		if out.Artifacts, err = segment.WriteArtifacts(s.cfg.OutputDir, a.ID, res, true); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type digitsOverlayArgs struct {
	Path  string `json:"path"`
	Stage string `json:"stage"`
	Color string `json:"color"`
}

type overlayResult struct {
	Stage segment.Stage  `json:"stage"`
	Boxes []geometry.Box `json:"boxes"`
	*imaging.EncodedImage

	// Error is set when the pipeline stopped after the requested stage.
	Error string `json:"error,omitempty"`
}

var allStages = []segment.Stage{
	segment.StageCandidates,
	segment.StageShape,
	segment.StageArea,
	segment.StageClusters,
	segment.StageMergedArea,
	segment.StageContainment,
	segment.StageHeight,
	segment.StageSpread,
	segment.StageColor,
	segment.StageRegion,
	segment.StageDigits,
}

func stageNames() []string {
	names := make([]string, len(allStages))
	for i, st := range allStages {
		names[i] = string(st)
	}
	return names
}

func parseStage(name string) (segment.Stage, error) {
	if name == "" {
		return segment.StageRegion, nil
	}
	for _, st := range allStages {
		if string(st) == name {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage: %s", name)
}

func (s *Server) handleDigitsOverlay(args json.RawMessage) (interface{}, error) {
	var a digitsOverlayArgs
	img, err := s.loadArgs(args, &a, &a.Path)
	if err != nil {
		return nil, err
	}

	stage, err := parseStage(a.Stage)
	if err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#0000FF"
	}
	outline, err := imaging.ParseHexColor(a.Color)
	if err != nil {
		return nil, err
	}

	var snapshot image.Image
	var boxes []geometry.Box
	p, err := s.newPipeline(segment.WithObserver(func(st segment.Stage, frame image.Image, b []geometry.Box) {
		if st == stage {
			snapshot = imaging.DrawBoxes(frame, b, outline)
			boxes = b
		}
	}))
	if err != nil {
		return nil, err
	}

	if stage == segment.StageDigits {
		_, err = p.Run(img)
	} else {
		_, err = p.Locate(img)
	}
	if snapshot == nil {
		if err == nil {
			err = fmt.Errorf("stage %s was not reached", stage)
		}
		return nil, err
	}

	encoded, encErr := imaging.Encode(snapshot)
	if encErr != nil {
		return nil, encErr
	}
	res := &overlayResult{Stage: stage, Boxes: boxes, EncodedImage: encoded}
	if err != nil {
		res.Error = err.Error()
	}
	return res, nil
}

// newPipeline builds a pipeline from the server configuration.
func (s *Server) newPipeline(opts ...segment.Option) (*segment.Pipeline, error) {
	opts = append([]segment.Option{segment.WithLogger(s.logger)}, opts...)
	return s.build(opts...)
}
