// Package validation checks analysis requests and server configuration
// before they reach the engine.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation limits
	MaxNodes        = 50000
	MaxEdges        = 500000
	MaxNodeIDLength = 200
	MaxIterations   = 10000
	MaxResolution   = 10.0

	nodeIDPattern = regexp.MustCompile(`^[^\x00-\x1f]+$`)
)

func init() {
	validate = validator.New()
}

// GraphPayload is the wire form of a graph in an analysis request.
type GraphPayload struct {
	Nodes    []string      `json:"nodes" validate:"required,min=1"`
	Edges    []EdgePayload `json:"edges" validate:"dive"`
	Directed bool          `json:"directed"`
}

// EdgePayload is the wire form of one weighted edge.
type EdgePayload struct {
	From   string   `json:"from" validate:"required"`
	To     string   `json:"to" validate:"required"`
	Weight *float64 `json:"weight" validate:"omitempty,gte=0"`
}

// AnalyzeRequest asks for one detector run over an inline graph.
type AnalyzeRequest struct {
	Graph      GraphPayload   `json:"graph" validate:"required"`
	Algorithm  string         `json:"algorithm" validate:"required,oneof=louvain girvan_newman label_propagation hierarchical components similarity betweenness"`
	Parameters map[string]any `json:"parameters" validate:"omitempty"`
}

// ValidateAnalyzeRequest validates an analysis request.
func ValidateAnalyzeRequest(req *AnalyzeRequest) error {
	if req == nil {
		return errors.New("analyze request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return validateGraphPayload(&req.Graph)
}

// ValidateGraphPayload validates an inline graph on its own, for endpoints
// that accept a bare graph.
func ValidateGraphPayload(g *GraphPayload) error {
	if g == nil {
		return errors.New("graph cannot be nil")
	}
	if err := validate.Struct(g); err != nil {
		return formatValidationError(err)
	}
	return validateGraphPayload(g)
}

func validateGraphPayload(g *GraphPayload) error {
	if len(g.Nodes) > MaxNodes {
		return fmt.Errorf("Nodes: maximum %d nodes allowed, got %d", MaxNodes, len(g.Nodes))
	}
	if len(g.Edges) > MaxEdges {
		return fmt.Errorf("Edges: maximum %d edges allowed, got %d", MaxEdges, len(g.Edges))
	}
	for i, id := range g.Nodes {
		if err := validateNodeID(id); err != nil {
			return fmt.Errorf("Nodes: node at index %d: %w", i, err)
		}
	}
	for i, e := range g.Edges {
		if err := validateNodeID(e.From); err != nil {
			return fmt.Errorf("Edges: edge at index %d: from: %w", i, err)
		}
		if err := validateNodeID(e.To); err != nil {
			return fmt.Errorf("Edges: edge at index %d: to: %w", i, err)
		}
	}
	return nil
}

func validateNodeID(id string) error {
	if id == "" {
		return errors.New("node id cannot be empty")
	}
	if len(id) > MaxNodeIDLength {
		return fmt.Errorf("node id exceeds maximum length of %d characters", MaxNodeIDLength)
	}
	if !nodeIDPattern.MatchString(id) {
		return fmt.Errorf("node id %q contains control characters", id)
	}
	return nil
}

// ValidateIterations bounds an iteration-cap parameter.
func ValidateIterations(iterations int) error {
	if iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", iterations)
	}
	if iterations > MaxIterations {
		return fmt.Errorf("iterations must not exceed %d, got %d", MaxIterations, iterations)
	}
	return nil
}

// ValidateResolution bounds the Louvain resolution parameter.
func ValidateResolution(resolution float64) error {
	if resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %g", resolution)
	}
	if resolution > MaxResolution {
		return fmt.Errorf("resolution must not exceed %g, got %g", MaxResolution, resolution)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
