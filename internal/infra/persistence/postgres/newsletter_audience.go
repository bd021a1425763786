package postgres

import (
	"time"

	"fireworks/internal/domain/entity"
	"fireworks/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// audienceQuery composes the eligible-user selection. Every predicate is
// ANDed; the tag predicate is an OR of purchase and favorite history.
func audienceQuery(db *gorm.DB, criteria entity.AudienceCriteria, now time.Time) *gorm.DB {
	return db.Model(&model.UserModel{}).Scopes(
		ageVerifiedScope(criteria.AgeVerified),
		accountAgeScope(criteria.AccountAge, now),
		minOrdersScope(criteria.NumberOfOrders),
		relatedTagsScope(criteria),
	)
}

func ageVerifiedScope(required bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !required {
			return db
		}

		return db.Where("users.age_verified = ?", true)
	}
}

func accountAgeScope(bucket *entity.AccountAge, now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if bucket == nil {
			return db
		}

		after, notAfter := bucket.CreatedBetween(now)
		if after != nil {
			db = db.Where("users.created_at > ?", *after)
		}
		if notAfter != nil {
			db = db.Where("users.created_at <= ?", *notAfter)
		}

		return db
	}
}

func minOrdersScope(minOrders int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if minOrders <= 0 {
			return db
		}

		return db.Where("(SELECT COUNT(*) FROM orders WHERE orders.user_id = users.id) >= ?", minOrders)
	}
}

func relatedTagsScope(criteria entity.AudienceCriteria) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !criteria.UsersRelatedToTag || len(criteria.TagIDs) == 0 {
			return db
		}

		return db.Where(`(EXISTS (
			SELECT 1 FROM order_line_items oli
			JOIN orders o ON o.id = oli.order_id
			JOIN product_tags pt ON pt.product_id = oli.product_id
			WHERE o.user_id = users.id AND pt.tag_id IN ?
		) OR EXISTS (
			SELECT 1 FROM favorites f
			JOIN product_tags pt ON pt.product_id = f.product_id
			WHERE f.user_id = users.id AND pt.tag_id IN ?
		))`, criteria.TagIDs, criteria.TagIDs)
	}
}
