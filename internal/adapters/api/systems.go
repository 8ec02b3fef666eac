package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/ports"
)

// GetSystem retrieves a system record with its waypoint stubs.
func (c *Client) GetSystem(ctx context.Context, systemSymbol string) (*ports.SystemInfo, error) {
	path := fmt.Sprintf("/systems/%s", systemSymbol)

	var response struct {
		Data struct {
			Symbol    string         `json:"symbol"`
			Type      string         `json:"type"`
			X         float64        `json:"x"`
			Y         float64        `json:"y"`
			Waypoints []waypointJSON `json:"waypoints"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get system: %w", err)
	}

	waypoints := make([]*game.Waypoint, len(response.Data.Waypoints))
	for i, waypoint := range response.Data.Waypoints {
		waypoints[i] = waypoint.toDomain()
	}
	return &ports.SystemInfo{
		Symbol:    response.Data.Symbol,
		Type:      response.Data.Type,
		X:         response.Data.X,
		Y:         response.Data.Y,
		Waypoints: waypoints,
	}, nil
}

// ListWaypoints retrieves every waypoint of a system, following
// pagination.
func (c *Client) ListWaypoints(ctx context.Context, systemSymbol string) ([]*game.Waypoint, error) {
	var waypoints []*game.Waypoint
	page := 1
	limit := 20

	for {
		path := fmt.Sprintf("/systems/%s/waypoints?page=%d&limit=%d", systemSymbol, page, limit)

		var response struct {
			Data []waypointJSON `json:"data"`
			Meta struct {
				Total int `json:"total"`
			} `json:"meta"`
		}
		if err := c.request(ctx, http.MethodGet, path, nil, &response); err != nil {
			return nil, fmt.Errorf("failed to list waypoints (page %d): %w", page, err)
		}
		if len(response.Data) == 0 {
			break
		}

		for _, waypoint := range response.Data {
			waypoints = append(waypoints, waypoint.toDomain())
		}
		if len(waypoints) >= response.Meta.Total {
			break
		}
		page++
	}

	return waypoints, nil
}

// GetWaypoint retrieves one waypoint record.
func (c *Client) GetWaypoint(ctx context.Context, waypointSymbol string) (*game.Waypoint, error) {
	path := fmt.Sprintf("/systems/%s/waypoints/%s", game.SystemOf(waypointSymbol), waypointSymbol)

	var response struct {
		Data waypointJSON `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get waypoint: %w", err)
	}

	return response.Data.toDomain(), nil
}

// GetMarket retrieves the price sheet of a marketplace waypoint.
func (c *Client) GetMarket(ctx context.Context, waypointSymbol string) (*game.Market, error) {
	path := fmt.Sprintf("/systems/%s/waypoints/%s/market", game.SystemOf(waypointSymbol), waypointSymbol)

	var response struct {
		Data marketJSON `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get market: %w", err)
	}

	return response.Data.toDomain(), nil
}

// GetShipyard retrieves the purchase listings of a shipyard waypoint.
func (c *Client) GetShipyard(ctx context.Context, waypointSymbol string) (*ports.Shipyard, error) {
	path := fmt.Sprintf("/systems/%s/waypoints/%s/shipyard", game.SystemOf(waypointSymbol), waypointSymbol)

	var response struct {
		Data struct {
			Symbol    string `json:"symbol"`
			ShipTypes []struct {
				Type string `json:"type"`
			} `json:"shipTypes"`
			Ships []struct {
				Type          string `json:"type"`
				Name          string `json:"name"`
				PurchasePrice int    `json:"purchasePrice"`
			} `json:"ships"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get shipyard: %w", err)
	}

	shipTypes := make([]string, len(response.Data.ShipTypes))
	for i, st := range response.Data.ShipTypes {
		shipTypes[i] = st.Type
	}
	listings := make([]ports.ShipyardListing, len(response.Data.Ships))
	for i, listing := range response.Data.Ships {
		listings[i] = ports.ShipyardListing{
			Type:          listing.Type,
			Name:          listing.Name,
			PurchasePrice: listing.PurchasePrice,
		}
	}
	return &ports.Shipyard{
		WaypointSymbol: response.Data.Symbol,
		ShipTypes:      shipTypes,
		Listings:       listings,
	}, nil
}

// GetJumpGate retrieves the systems reachable from a gate.
func (c *Client) GetJumpGate(ctx context.Context, systemSymbol string) (*ports.JumpGate, error) {
	path := fmt.Sprintf("/systems/%s/jump-gate", systemSymbol)

	var response struct {
		Data struct {
			JumpRange        int    `json:"jumpRange"`
			FactionSymbol    string `json:"factionSymbol"`
			ConnectedSystems []struct {
				Symbol string `json:"symbol"`
			} `json:"connectedSystems"`
		} `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get jump gate: %w", err)
	}

	connected := make([]string, len(response.Data.ConnectedSystems))
	for i, system := range response.Data.ConnectedSystems {
		connected[i] = system.Symbol
	}
	return &ports.JumpGate{
		Range:            response.Data.JumpRange,
		FactionSymbol:    response.Data.FactionSymbol,
		ConnectedSystems: connected,
	}, nil
}
