package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/maisonlabs/courtier/pkg/db"
	"gorm.io/gorm"
)

// Prefixes for the human-readable reference numbers. All of them, contracts
// included, count per agency.
const (
	PrefixContract = "CTR"
	PrefixMandate  = "MAND"
	PrefixOffer    = "OFF"
	PrefixPayment  = "PAY"
	PrefixProperty = "PROP"
)

var ErrInvalidScope = errors.New("invalid_sequence_scope")

// Counter is the backing row for one per-agency sequence.
type Counter struct {
	AgencyID  snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	Prefix    string       `gorm:"primaryKey"`
	Value     int64        `gorm:"not null;default:0"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Counter) TableName() string {
	return "sequence_counters"
}

// Next assigns the next number in the (agency, prefix) sequence and formats
// it as PREFIX-NNNNNN. It must run inside the caller's transaction so the
// increment commits or rolls back together with the row that consumes it.
func Next(ctx context.Context, tx *gorm.DB, prefix string, agencyID snowflake.ID) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" || agencyID == 0 {
		return "", ErrInvalidScope
	}

	value, err := increment(ctx, tx, prefix, agencyID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", prefix, value), nil
}

func increment(ctx context.Context, tx *gorm.DB, prefix string, agencyID snowflake.ID) (int64, error) {
	now := time.Now().UTC()

	res := tx.WithContext(ctx).
		Model(&Counter{}).
		Where("agency_id = ? AND prefix = ?", agencyID, prefix).
		Updates(map[string]any{
			"value":      gorm.Expr("value + 1"),
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		counter := Counter{AgencyID: agencyID, Prefix: prefix, Value: 1, UpdatedAt: now}
		err := tx.WithContext(ctx).Create(&counter).Error
		if err == nil {
			return 1, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return 0, err
		}
		// Lost the insert race; the row exists now, increment it.
		res = tx.WithContext(ctx).
			Model(&Counter{}).
			Where("agency_id = ? AND prefix = ?", agencyID, prefix).
			Updates(map[string]any{
				"value":      gorm.Expr("value + 1"),
				"updated_at": now,
			})
		if res.Error != nil {
			return 0, res.Error
		}
	}

	var counter Counter
	if err := tx.WithContext(ctx).
		Where("agency_id = ? AND prefix = ?", agencyID, prefix).
		First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}
