package model

import "time"

// Client represents a paying customer of the gaming room as stored in
// the `clients` table.  Loyalty points accumulate from paid play time
// and never go negative.
//
// Fields:
//  ID            – primary key identifier.
//  FullName      – client display name.
//  Phone         – contact phone number.
//  Email         – contact email address (may be empty).
//  LoyaltyPoints – accumulated loyalty points (>= 0).
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Client struct {
	ID            uint64    // clients.id
	FullName      string    // clients.full_name
	Phone         string    // clients.phone
	Email         string    // clients.email
	LoyaltyPoints uint32    // clients.loyalty_points
	CreatedAt     time.Time // clients.created_at
	UpdatedAt     time.Time // clients.updated_at
}

// Referrer represents a sponsor identified by a unique referral code,
// stored in the `referrers` table.  When a reservation carries a
// referral code, the matching referrer earns points from the referred
// client's paid minutes.
//
// Fields:
//  ID             – primary key identifier.
//  FullName       – sponsor display name.
//  Code           – unique referral code handed out to clients.
//  ReferralPoints – accumulated referral points (>= 0).
//  CreatedAt      – timestamp of creation.
type Referrer struct {
	ID             uint64    // referrers.id
	FullName       string    // referrers.full_name
	Code           string    // referrers.code
	ReferralPoints uint32    // referrers.referral_points
	CreatedAt      time.Time // referrers.created_at
}
