package client

import (
	"context"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
)

type adviseRequest struct {
	Requirement model.QuantityRequirement `json:"requirement"`
	Candidates  []model.PackageCandidate  `json:"candidates"`
}

// AdvisorClient asks a remote advisory service for an alternative package
// selection. Validation of the proposal is left to the caller.
type AdvisorClient struct {
	*jsonClient
}

// NewAdvisorClient creates an advisory client.
func NewAdvisorClient(cfg Config) *AdvisorClient {
	return &AdvisorClient{jsonClient: newJSONClient("advisor", cfg)}
}

// Advise posts the requirement and candidates to /v1/advise.
func (c *AdvisorClient) Advise(ctx context.Context, req model.QuantityRequirement, candidates []model.PackageCandidate) (*model.AdvisoryOverride, error) {
	var override model.AdvisoryOverride
	if err := c.post(ctx, "/v1/advise", adviseRequest{Requirement: req, Candidates: candidates}, &override); err != nil {
		return nil, err
	}
	return &override, nil
}
