package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/ports"
)

// GormStore implements ports.Store on a GORM connection (SQLite or
// PostgreSQL).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates the store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// SaveSnapshot upserts a JSON blob keyed by (kind, key).
func (s *GormStore) SaveSnapshot(ctx context.Context, kind, key string, blob []byte) error {
	model := SnapshotModel{Kind: kind, Key: key, Blob: string(blob)}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"blob", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to save snapshot %s/%s: %w", kind, key, result.Error)
	}
	return nil
}

// LoadSnapshot reads a JSON blob back; gorm.ErrRecordNotFound when the
// key was never written.
func (s *GormStore) LoadSnapshot(ctx context.Context, kind, key string) ([]byte, error) {
	var model SnapshotModel
	result := s.db.WithContext(ctx).
		Where("kind = ? AND key = ?", kind, key).
		First(&model)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load snapshot %s/%s: %w", kind, key, result.Error)
	}
	return []byte(model.Blob), nil
}

// SaveWaypoints upserts a batch of waypoints.
func (s *GormStore) SaveWaypoints(ctx context.Context, waypoints []*game.Waypoint) error {
	if len(waypoints) == 0 {
		return nil
	}

	models := make([]WaypointModel, len(waypoints))
	for i, wp := range waypoints {
		traits, err := json.Marshal(wp.Traits)
		if err != nil {
			return fmt.Errorf("failed to marshal traits for %s: %w", wp.Symbol, err)
		}
		models[i] = WaypointModel{
			WaypointSymbol: wp.Symbol,
			SystemSymbol:   wp.SystemSymbol,
			Type:           wp.Type,
			X:              wp.X,
			Y:              wp.Y,
			Traits:         string(traits),
		}
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "waypoint_symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"system_symbol", "type", "x", "y", "traits", "synced_at"}),
	}).Create(&models)
	if result.Error != nil {
		return fmt.Errorf("failed to save waypoints: %w", result.Error)
	}
	return nil
}

// LoadWaypoints lists the persisted waypoints of a system.
func (s *GormStore) LoadWaypoints(ctx context.Context, systemSymbol string) ([]*game.Waypoint, error) {
	var models []WaypointModel
	result := s.db.WithContext(ctx).
		Where("system_symbol = ?", systemSymbol).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load waypoints: %w", result.Error)
	}

	waypoints := make([]*game.Waypoint, 0, len(models))
	for _, model := range models {
		var traits []string
		if model.Traits != "" {
			if err := json.Unmarshal([]byte(model.Traits), &traits); err != nil {
				return nil, fmt.Errorf("failed to unmarshal traits for %s: %w", model.WaypointSymbol, err)
			}
		}
		waypoints = append(waypoints, &game.Waypoint{
			Symbol:       model.WaypointSymbol,
			SystemSymbol: model.SystemSymbol,
			Type:         model.Type,
			X:            model.X,
			Y:            model.Y,
			Traits:       traits,
		})
	}
	return waypoints, nil
}

// SaveSurvey upserts one survey row.
func (s *GormStore) SaveSurvey(ctx context.Context, survey *game.Survey) error {
	deposits, err := json.Marshal(survey.Deposits)
	if err != nil {
		return fmt.Errorf("failed to marshal deposits: %w", err)
	}

	model := SurveyModel{
		Signature:      survey.Signature,
		WaypointSymbol: survey.WaypointSymbol,
		Deposits:       string(deposits),
		Size:           survey.Size,
		Expiration:     survey.Expiration,
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "signature"}},
		DoUpdates: clause.AssignmentColumns([]string{"waypoint_symbol", "deposits", "size", "expiration"}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to save survey %s: %w", survey.Signature, result.Error)
	}
	return nil
}

// LoadSurvey reads one survey back by signature.
func (s *GormStore) LoadSurvey(ctx context.Context, signature string) (*game.Survey, error) {
	var model SurveyModel
	result := s.db.WithContext(ctx).
		Where("signature = ?", signature).
		First(&model)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load survey %s: %w", signature, result.Error)
	}

	var deposits []string
	if err := json.Unmarshal([]byte(model.Deposits), &deposits); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deposits for %s: %w", signature, err)
	}
	return &game.Survey{
		Signature:      model.Signature,
		WaypointSymbol: model.WaypointSymbol,
		Deposits:       deposits,
		Size:           model.Size,
		Expiration:     model.Expiration,
	}, nil
}

// RecordTradeTransaction appends one buy or sell to the ledger.
func (s *GormStore) RecordTradeTransaction(ctx context.Context, tx *ports.TradeTransaction) error {
	model := TradeTransactionModel{
		ID:           tx.ID,
		ShipSymbol:   tx.ShipSymbol,
		Waypoint:     tx.Waypoint,
		TradeSymbol:  tx.TradeSymbol,
		Side:         tx.Side,
		Units:        tx.Units,
		PricePerUnit: tx.PricePerUnit,
		TotalPrice:   tx.TotalPrice,
		Timestamp:    tx.Timestamp,
	}
	result := s.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to record trade transaction: %w", result.Error)
	}
	return nil
}
