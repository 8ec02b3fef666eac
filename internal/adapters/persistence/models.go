package persistence

import (
	"time"
)

// SnapshotModel represents the snapshots table: raw JSON blobs keyed by
// (kind, key) for the caching handlers.
type SnapshotModel struct {
	Kind      string    `gorm:"column:kind;primaryKey;size:50;not null"`
	Key       string    `gorm:"column:key;primaryKey;size:255;not null"`
	Blob      string    `gorm:"column:blob;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (SnapshotModel) TableName() string {
	return "snapshots"
}

// WaypointModel represents the waypoints table
type WaypointModel struct {
	WaypointSymbol string    `gorm:"column:waypoint_symbol;primaryKey;size:255"`
	SystemSymbol   string    `gorm:"column:system_symbol;index;not null"`
	Type           string    `gorm:"column:type;not null"`
	X              float64   `gorm:"column:x;not null"`
	Y              float64   `gorm:"column:y;not null"`
	Traits         string    `gorm:"column:traits;type:text"` // JSON array as text
	SyncedAt       time.Time `gorm:"column:synced_at;not null;autoUpdateTime"`
}

func (WaypointModel) TableName() string {
	return "waypoints"
}

// SurveyModel represents the surveys table
type SurveyModel struct {
	Signature      string    `gorm:"column:signature;primaryKey;size:255"`
	WaypointSymbol string    `gorm:"column:waypoint_symbol;index;not null"`
	Deposits       string    `gorm:"column:deposits;type:text;not null"` // JSON array as text
	Size           string    `gorm:"column:size;size:50"`
	Expiration     time.Time `gorm:"column:expiration;index;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (SurveyModel) TableName() string {
	return "surveys"
}

// TradeTransactionModel represents the trade_transactions table
type TradeTransactionModel struct {
	ID           string    `gorm:"column:id;primaryKey;size:36"`
	ShipSymbol   string    `gorm:"column:ship_symbol;index;not null"`
	Waypoint     string    `gorm:"column:waypoint;not null"`
	TradeSymbol  string    `gorm:"column:trade_symbol;not null"`
	Side         string    `gorm:"column:side;size:10;not null"`
	Units        int       `gorm:"column:units;not null"`
	PricePerUnit int       `gorm:"column:price_per_unit;not null"`
	TotalPrice   int       `gorm:"column:total_price;not null"`
	Timestamp    time.Time `gorm:"column:timestamp;index;not null"`
}

func (TradeTransactionModel) TableName() string {
	return "trade_transactions"
}
