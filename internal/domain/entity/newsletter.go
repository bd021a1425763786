package entity

import (
	"time"

	"github.com/google/uuid"
)

// AccountAge is a coarse bucket of user tenure used for newsletter targeting.
type AccountAge string

const (
	AccountAgeLessThan3Months AccountAge = "LESS_THAN_3_MONTHS"
	AccountAgeFrom3To12Months AccountAge = "FROM_3_TO_12_MONTHS"
	AccountAgeFrom1To3Years   AccountAge = "FROM_1_TO_3_YEARS"
	AccountAgeMoreThan3Years  AccountAge = "MORE_THAN_3_YEARS"
)

// IsValid checks if the bucket is known.
func (a AccountAge) IsValid() bool {
	switch a {
	case AccountAgeLessThan3Months, AccountAgeFrom3To12Months, AccountAgeFrom1To3Years, AccountAgeMoreThan3Years:
		return true
	default:
		return false
	}
}

// CreatedBetween returns the creation-time window of the bucket relative to now.
// A nil bound is open. The lower bound is exclusive, the upper bound inclusive.
func (a AccountAge) CreatedBetween(now time.Time) (after, notAfter *time.Time) {
	threeMonths := now.AddDate(0, -3, 0)
	oneYear := now.AddDate(-1, 0, 0)
	threeYears := now.AddDate(-3, 0, 0)

	switch a {
	case AccountAgeLessThan3Months:
		return &threeMonths, nil
	case AccountAgeFrom3To12Months:
		return &oneYear, &threeMonths
	case AccountAgeFrom1To3Years:
		return &threeYears, &oneYear
	case AccountAgeMoreThan3Years:
		return nil, &threeYears
	default:
		return nil, nil
	}
}

// Newsletter is a scheduled broadcast with audience criteria.
type Newsletter struct {
	ID                uuid.UUID
	Title             string
	Content           string
	ImageKey          *string
	AgeVerified       bool        // Only users with confirmed age.
	AccountAge        *AccountAge // Only users whose tenure falls into the bucket.
	NumberOfOrders    int         // Minimum number of placed orders.
	UsersRelatedToTag bool        // Only users who bought or favorited a product with one of Tags.
	Tags              []*Tag
	SendAt            time.Time
	IsSent            bool
	IsCanceled        bool
	ClaimedAt         *time.Time // Set by the scheduler instance dispatching it.
	SentAt            *time.Time
	SentCount         int
	FailedCount       int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TagIDs returns the ids of the targeted tags.
func (n *Newsletter) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(n.Tags))
	for _, tag := range n.Tags {
		ids = append(ids, tag.ID)
	}

	return ids
}

// AudienceCriteria is the targeting part of a newsletter.
type AudienceCriteria struct {
	AgeVerified       bool
	AccountAge        *AccountAge
	NumberOfOrders    int
	UsersRelatedToTag bool
	TagIDs            []uuid.UUID
}

// Criteria extracts the targeting criteria.
func (n *Newsletter) Criteria() AudienceCriteria {
	return AudienceCriteria{
		AgeVerified:       n.AgeVerified,
		AccountAge:        n.AccountAge,
		NumberOfOrders:    n.NumberOfOrders,
		UsersRelatedToTag: n.UsersRelatedToTag,
		TagIDs:            n.TagIDs(),
	}
}
