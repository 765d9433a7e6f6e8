package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gebeyalink/storefront/pkg/db"
	"github.com/gebeyalink/storefront/pkg/redis"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists scalar per-session preference values.
type Store interface {
	// Get returns the stored value, or ok=false when the preference was
	// never set.
	Get(ctx context.Context, sessionID, name string) (value string, ok bool, err error)
	Set(ctx context.Context, sessionID, name, value string) error
}

// RedisStore keeps preferences under namespaced keys alongside the cart.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID, name string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.client.PreferenceKey(sessionID, name))
	if err != nil {
		if redis.IsMissing(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("loading preference %s: %w", name, err)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, name, value string) error {
	if err := s.client.Set(ctx, s.client.PreferenceKey(sessionID, name), value, s.ttl); err != nil {
		return fmt.Errorf("saving preference %s: %w", name, err)
	}
	return nil
}

// Preference is the SQL row for one session preference.
type Preference struct {
	SessionID string    `gorm:"column:session_id;primaryKey"`
	Name      string    `gorm:"column:name;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Preference) TableName() string {
	return "session_preferences"
}

// SQLStore persists preferences in the relational snapshot store.
type SQLStore struct {
	client *db.Client
}

func NewSQLStore(client *db.Client) (*SQLStore, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &SQLStore{client: client}, nil
}

func (s *SQLStore) Migrate() error {
	return s.client.DB().AutoMigrate(&Preference{})
}

func (s *SQLStore) Get(ctx context.Context, sessionID, name string) (string, bool, error) {
	var row Preference
	err := s.client.DB().WithContext(ctx).
		First(&row, "session_id = ? AND name = ?", sessionID, name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("loading preference %s: %w", name, err)
	}
	return row.Value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, sessionID, name, value string) error {
	row := Preference{SessionID: sessionID, Name: name, Value: value}
	err := s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving preference %s: %w", name, err)
	}
	return nil
}
