package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gebeyalink/storefront/pkg/db"
	"github.com/gebeyalink/storefront/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartSnapshot is the SQL row backing one session's cart.
type CartSnapshot struct {
	SessionID string    `gorm:"column:session_id;primaryKey"`
	Payload   []byte    `gorm:"column:payload;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}

// SQLStore persists cart snapshots in the relational snapshot store for
// deployments without Redis.
type SQLStore struct {
	client *db.Client
	logger *logger.Logger
}

func NewSQLStore(client *db.Client, logg *logger.Logger) (*SQLStore, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &SQLStore{client: client, logger: logg}, nil
}

// Migrate creates the snapshot table when auto-migration is enabled.
func (s *SQLStore) Migrate() error {
	return s.client.DB().AutoMigrate(&CartSnapshot{})
}

func (s *SQLStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	var row CartSnapshot
	err := s.client.DB().WithContext(ctx).First(&row, "session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Cart{}, nil
		}
		return nil, fmt.Errorf("loading cart snapshot: %w", err)
	}

	cart, ok := decodeCart(row.Payload)
	if !ok {
		s.logger.Warn(s.logger.WithSessionID(ctx, sessionID), "discarding unreadable cart snapshot")
		return &Cart{}, nil
	}
	return cart, nil
}

func (s *SQLStore) Save(ctx context.Context, sessionID string, cart *Cart) error {
	payload, err := encodeCart(cart)
	if err != nil {
		return err
	}
	row := CartSnapshot{SessionID: sessionID, Payload: payload}
	err = s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving cart snapshot: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, sessionID string) error {
	err := s.client.DB().WithContext(ctx).
		Delete(&CartSnapshot{}, "session_id = ?", sessionID).Error
	if err != nil {
		return fmt.Errorf("deleting cart snapshot: %w", err)
	}
	return nil
}
