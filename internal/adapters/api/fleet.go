package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/ports"
)

// emptyBody satisfies endpoints that reject a missing JSON body.
var emptyBody = map[string]any{}

// ListShips retrieves the whole fleet, following pagination.
func (c *Client) ListShips(ctx context.Context) ([]*game.Ship, error) {
	var ships []*game.Ship
	page := 1
	limit := 20

	for {
		path := fmt.Sprintf("/my/ships?page=%d&limit=%d", page, limit)

		var response struct {
			Data []shipJSON `json:"data"`
			Meta struct {
				Total int `json:"total"`
			} `json:"meta"`
		}
		if err := c.request(ctx, http.MethodGet, path, nil, &response); err != nil {
			return nil, fmt.Errorf("failed to list ships (page %d): %w", page, err)
		}
		if len(response.Data) == 0 {
			break
		}

		for _, ship := range response.Data {
			ships = append(ships, ship.toDomain())
		}
		if len(ships) >= response.Meta.Total {
			break
		}
		page++
	}

	return ships, nil
}

// PurchaseShip buys a ship at a shipyard waypoint.
func (c *Client) PurchaseShip(ctx context.Context, waypointSymbol, shipType string) (*ports.PurchaseShipResult, error) {
	body := map[string]any{
		"shipType":       shipType,
		"waypointSymbol": waypointSymbol,
	}

	var response struct {
		Data struct {
			Agent       agentJSON `json:"agent"`
			Ship        shipJSON  `json:"ship"`
			Transaction struct {
				Price int `json:"price"`
			} `json:"transaction"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, "/my/ships", body, &response); err != nil {
		return nil, fmt.Errorf("failed to purchase ship: %w", err)
	}

	return &ports.PurchaseShipResult{
		Ship:  response.Data.Ship.toDomain(),
		Agent: response.Data.Agent.toDomain(),
		Price: response.Data.Transaction.Price,
	}, nil
}

// Dock docks a ship.
func (c *Client) Dock(ctx context.Context, shipSymbol string) (*game.Nav, error) {
	path := fmt.Sprintf("/my/ships/%s/dock", shipSymbol)

	var response struct {
		Data struct {
			Nav navJSON `json:"nav"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, emptyBody, &response); err != nil {
		return nil, fmt.Errorf("failed to dock ship: %w", err)
	}

	nav := response.Data.Nav.toDomain()
	return &nav, nil
}

// Orbit puts a ship into orbit.
func (c *Client) Orbit(ctx context.Context, shipSymbol string) (*game.Nav, error) {
	path := fmt.Sprintf("/my/ships/%s/orbit", shipSymbol)

	var response struct {
		Data struct {
			Nav navJSON `json:"nav"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, emptyBody, &response); err != nil {
		return nil, fmt.Errorf("failed to orbit ship: %w", err)
	}

	nav := response.Data.Nav.toDomain()
	return &nav, nil
}

// Navigate sends a ship to a waypoint.
func (c *Client) Navigate(ctx context.Context, shipSymbol, waypointSymbol string) (*ports.NavigateResult, error) {
	path := fmt.Sprintf("/my/ships/%s/navigate", shipSymbol)
	body := map[string]string{"waypointSymbol": waypointSymbol}

	var response struct {
		Data struct {
			Nav  navJSON  `json:"nav"`
			Fuel fuelJSON `json:"fuel"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, body, &response); err != nil {
		return nil, fmt.Errorf("failed to navigate ship: %w", err)
	}

	return &ports.NavigateResult{
		Nav:  response.Data.Nav.toDomain(),
		Fuel: response.Data.Fuel.toDomain(),
	}, nil
}

// PatchFlightMode switches a ship's flight mode.
func (c *Client) PatchFlightMode(ctx context.Context, shipSymbol, mode string) (*game.Nav, error) {
	path := fmt.Sprintf("/my/ships/%s/nav", shipSymbol)
	body := map[string]string{"flightMode": mode}

	var response struct {
		Data navJSON `json:"data"`
	}
	if err := c.request(ctx, http.MethodPatch, path, body, &response); err != nil {
		return nil, fmt.Errorf("failed to set flight mode: %w", err)
	}

	nav := response.Data.toDomain()
	return &nav, nil
}

// Jump jumps a ship to another system.
func (c *Client) Jump(ctx context.Context, shipSymbol, systemSymbol string) (*ports.JumpResult, error) {
	path := fmt.Sprintf("/my/ships/%s/jump", shipSymbol)
	body := map[string]string{"systemSymbol": systemSymbol}

	var response struct {
		Data struct {
			Nav      navJSON      `json:"nav"`
			Cooldown cooldownJSON `json:"cooldown"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, body, &response); err != nil {
		return nil, fmt.Errorf("failed to jump ship: %w", err)
	}

	return &ports.JumpResult{
		Nav:      response.Data.Nav.toDomain(),
		Cooldown: response.Data.Cooldown.toDomain(),
	}, nil
}

// Refuel fills a ship's tank at the docked marketplace.
func (c *Client) Refuel(ctx context.Context, shipSymbol string) (*ports.RefuelResult, error) {
	path := fmt.Sprintf("/my/ships/%s/refuel", shipSymbol)

	var response struct {
		Data struct {
			Agent       agentJSON `json:"agent"`
			Fuel        fuelJSON  `json:"fuel"`
			Transaction struct {
				Units      int `json:"units"`
				TotalPrice int `json:"totalPrice"`
			} `json:"transaction"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, emptyBody, &response); err != nil {
		return nil, fmt.Errorf("failed to refuel ship: %w", err)
	}

	return &ports.RefuelResult{
		Fuel:       response.Data.Fuel.toDomain(),
		Agent:      response.Data.Agent.toDomain(),
		FuelAdded:  response.Data.Transaction.Units,
		TotalPrice: response.Data.Transaction.TotalPrice,
	}, nil
}

// Extract mines at the current waypoint, targeted when a survey is given.
func (c *Client) Extract(ctx context.Context, shipSymbol string, survey *game.Survey) (*ports.ExtractResult, error) {
	path := fmt.Sprintf("/my/ships/%s/extract", shipSymbol)

	body := emptyBody
	if survey != nil {
		body = map[string]any{"survey": surveyBody(survey)}
	}

	var response struct {
		Data struct {
			Extraction struct {
				Yield struct {
					Symbol string `json:"symbol"`
					Units  int    `json:"units"`
				} `json:"yield"`
			} `json:"extraction"`
			Cargo    cargoJSON    `json:"cargo"`
			Cooldown cooldownJSON `json:"cooldown"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, body, &response); err != nil {
		return nil, fmt.Errorf("failed to extract: %w", err)
	}

	return &ports.ExtractResult{
		YieldSymbol: response.Data.Extraction.Yield.Symbol,
		YieldUnits:  response.Data.Extraction.Yield.Units,
		Cargo:       response.Data.Cargo.toDomain(),
		Cooldown:    response.Data.Cooldown.toDomain(),
	}, nil
}

// Survey creates surveys of the current asteroid.
func (c *Client) Survey(ctx context.Context, shipSymbol string) (*ports.SurveyResult, error) {
	path := fmt.Sprintf("/my/ships/%s/survey", shipSymbol)

	var response struct {
		Data struct {
			Surveys  []surveyJSON `json:"surveys"`
			Cooldown cooldownJSON `json:"cooldown"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, emptyBody, &response); err != nil {
		return nil, fmt.Errorf("failed to survey: %w", err)
	}

	surveys := make([]*game.Survey, len(response.Data.Surveys))
	for i, survey := range response.Data.Surveys {
		surveys[i] = survey.toDomain()
	}
	return &ports.SurveyResult{
		Surveys:  surveys,
		Cooldown: response.Data.Cooldown.toDomain(),
	}, nil
}

// Sell sells cargo at the docked marketplace.
func (c *Client) Sell(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*ports.TradeResult, error) {
	path := fmt.Sprintf("/my/ships/%s/sell", shipSymbol)
	return c.trade(ctx, path, tradeSymbol, units)
}

// Buy purchases cargo at the docked marketplace.
func (c *Client) Buy(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*ports.TradeResult, error) {
	path := fmt.Sprintf("/my/ships/%s/purchase", shipSymbol)
	return c.trade(ctx, path, tradeSymbol, units)
}

func (c *Client) trade(ctx context.Context, path, tradeSymbol string, units int) (*ports.TradeResult, error) {
	body := map[string]any{
		"symbol": tradeSymbol,
		"units":  units,
	}

	var response struct {
		Data struct {
			Agent       agentJSON       `json:"agent"`
			Cargo       cargoJSON       `json:"cargo"`
			Transaction transactionJSON `json:"transaction"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, body, &response); err != nil {
		return nil, fmt.Errorf("trade failed: %w", err)
	}

	return response.Data.Transaction.toTradeResult(response.Data.Cargo, response.Data.Agent), nil
}

// Jettison dumps cargo overboard.
func (c *Client) Jettison(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*game.Cargo, error) {
	path := fmt.Sprintf("/my/ships/%s/jettison", shipSymbol)
	body := map[string]any{
		"symbol": tradeSymbol,
		"units":  units,
	}

	var response struct {
		Data struct {
			Cargo cargoJSON `json:"cargo"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, body, &response); err != nil {
		return nil, fmt.Errorf("failed to jettison cargo: %w", err)
	}

	cargo := response.Data.Cargo.toDomain()
	return &cargo, nil
}

// Chart charts the current waypoint.
func (c *Client) Chart(ctx context.Context, shipSymbol string) (*ports.ChartResult, error) {
	path := fmt.Sprintf("/my/ships/%s/chart", shipSymbol)

	var response struct {
		Data struct {
			Waypoint waypointJSON `json:"waypoint"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, emptyBody, &response); err != nil {
		return nil, fmt.Errorf("failed to chart waypoint: %w", err)
	}

	return &ports.ChartResult{Waypoint: response.Data.Waypoint.toDomain()}, nil
}

// ScanWaypoints scans the system's waypoints from the ship's position.
func (c *Client) ScanWaypoints(ctx context.Context, shipSymbol string) (*ports.ScanResult, error) {
	path := fmt.Sprintf("/my/ships/%s/scan/waypoints", shipSymbol)

	var response struct {
		Data struct {
			Waypoints []waypointJSON `json:"waypoints"`
			Cooldown  cooldownJSON   `json:"cooldown"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, path, emptyBody, &response); err != nil {
		return nil, fmt.Errorf("failed to scan waypoints: %w", err)
	}

	waypoints := make([]*game.Waypoint, len(response.Data.Waypoints))
	for i, waypoint := range response.Data.Waypoints {
		waypoints[i] = waypoint.toDomain()
	}
	return &ports.ScanResult{
		Waypoints: waypoints,
		Cooldown:  response.Data.Cooldown.toDomain(),
	}, nil
}
