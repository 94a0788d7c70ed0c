package client

import (
	"context"
	"errors"
	"strings"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
)

var errIncompleteDose = errors.New("dose parser returned a dose without a unit")

type parseRequest struct {
	Text string `json:"text"`
}

// DoseParserClient parses free-text dosing instructions through a remote
// service.
type DoseParserClient struct {
	*jsonClient
}

// NewDoseParserClient creates a dose parser client.
func NewDoseParserClient(cfg Config) *DoseParserClient {
	return &DoseParserClient{jsonClient: newJSONClient("dose-parser", cfg)}
}

// Parse posts freeText to /v1/parse and returns the structured dose.
func (c *DoseParserClient) Parse(ctx context.Context, freeText string) (model.DoseSpecification, error) {
	var dose model.DoseSpecification
	if err := c.post(ctx, "/v1/parse", parseRequest{Text: freeText}, &dose); err != nil {
		return model.DoseSpecification{}, err
	}
	if strings.TrimSpace(dose.DoseUnit) == "" {
		return model.DoseSpecification{}, errIncompleteDose
	}
	return dose, nil
}
