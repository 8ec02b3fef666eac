package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/ports"
)

// ListContracts retrieves every contract, following pagination.
func (c *Client) ListContracts(ctx context.Context) ([]*game.Contract, error) {
	var contracts []*game.Contract
	page := 1
	limit := 20

	for {
		path := fmt.Sprintf("/my/contracts?page=%d&limit=%d", page, limit)

		var response struct {
			Data []contractJSON `json:"data"`
			Meta struct {
				Total int `json:"total"`
			} `json:"meta"`
		}
		if err := c.request(ctx, http.MethodGet, path, nil, &response); err != nil {
			return nil, fmt.Errorf("failed to list contracts (page %d): %w", page, err)
		}
		if len(response.Data) == 0 {
			break
		}

		for _, contract := range response.Data {
			contracts = append(contracts, contract.toDomain())
		}
		if len(contracts) >= response.Meta.Total {
			break
		}
		page++
	}

	return contracts, nil
}

// AcceptContract accepts a contract, collecting the advance payment.
func (c *Client) AcceptContract(ctx context.Context, contractID string) (*ports.ContractResult, error) {
	path := fmt.Sprintf("/my/contracts/%s/accept", contractID)

	var response struct {
		Data struct {
			Agent    *agentJSON   `json:"agent"`
			Contract contractJSON `json:"contract"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, emptyBody, &response); err != nil {
		return nil, fmt.Errorf("failed to accept contract: %w", err)
	}

	result := &ports.ContractResult{Contract: response.Data.Contract.toDomain()}
	if response.Data.Agent != nil {
		agent := response.Data.Agent.toDomain()
		result.Agent = &agent
	}
	return result, nil
}

// DeliverContract turns in cargo against a contract delivery line.
func (c *Client) DeliverContract(ctx context.Context, contractID, shipSymbol, tradeSymbol string, units int) (*ports.DeliverResult, error) {
	path := fmt.Sprintf("/my/contracts/%s/deliver", contractID)
	body := map[string]any{
		"shipSymbol":  shipSymbol,
		"tradeSymbol": tradeSymbol,
		"units":       units,
	}

	var response struct {
		Data struct {
			Contract contractJSON `json:"contract"`
			Cargo    cargoJSON    `json:"cargo"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, body, &response); err != nil {
		return nil, fmt.Errorf("failed to deliver contract: %w", err)
	}

	return &ports.DeliverResult{
		Contract: response.Data.Contract.toDomain(),
		Cargo:    response.Data.Cargo.toDomain(),
	}, nil
}

// FulfillContract closes out a completed contract, collecting the payout.
func (c *Client) FulfillContract(ctx context.Context, contractID string) (*ports.ContractResult, error) {
	path := fmt.Sprintf("/my/contracts/%s/fulfill", contractID)

	var response struct {
		Data struct {
			Agent    *agentJSON   `json:"agent"`
			Contract contractJSON `json:"contract"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, emptyBody, &response); err != nil {
		return nil, fmt.Errorf("failed to fulfill contract: %w", err)
	}

	result := &ports.ContractResult{Contract: response.Data.Contract.toDomain()}
	if response.Data.Agent != nil {
		agent := response.Data.Agent.toDomain()
		result.Agent = &agent
	}
	return result, nil
}
