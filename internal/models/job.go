package models

import "time"

// Job lifecycle states. Paid postings start in payment_pending and move to
// published when the checkout completes; free postings start in pending and
// are published by an administrator.
const (
	JobStatusPaymentPending = "payment_pending"
	JobStatusPending        = "pending"
	JobStatusPublished      = "published"
)

// Job listing types accepted by the paid checkout flow.
const (
	JobListingStandard = "standard"
	JobListingFeatured = "featured"
)

// Job is a job posting directory entry.
type Job struct {
	ID             string   `bson:"_id,omitempty" json:"id,omitempty"`
	Slug           string   `bson:"slug" json:"slug"`
	JobTitle       string   `bson:"job_title" json:"jobTitle"`
	CompanyName    string   `bson:"company_name" json:"companyName"`
	CompanyLogoURL string   `bson:"company_logo_url,omitempty" json:"companyLogoUrl,omitempty"`
	CompanyWebsite string   `bson:"company_website,omitempty" json:"companyWebsite,omitempty"`
	Location       string   `bson:"location,omitempty" json:"location,omitempty"`
	WorkLocation   string   `bson:"work_location" json:"workLocation"` // On-site / Remote / Hybrid
	JobType        string   `bson:"job_type" json:"jobType"`           // Full Time, Part Time, ...
	SalaryRange    string   `bson:"salary_range,omitempty" json:"salaryRange,omitempty"`
	ApplicationURL string   `bson:"application_url" json:"applicationUrl"`
	Description    string   `bson:"description" json:"description"`
	Requirements   string   `bson:"requirements,omitempty" json:"requirements,omitempty"`
	Benefits       string   `bson:"benefits,omitempty" json:"benefits,omitempty"`
	ContactEmail   string   `bson:"contact_email" json:"contactEmail"`
	Tags           []string `bson:"tags" json:"tags"`

	Status      string `bson:"status" json:"status"`
	ListingType string `bson:"listing_type" json:"listingType"`
	Tier        Tier   `bson:"tier" json:"tier"`
	TierRank    int    `bson:"tier_rank" json:"-"`
	Featured    bool   `bson:"featured" json:"featured"`
	Verified    bool   `bson:"verified" json:"verified"`
	Urgent      bool   `bson:"urgent" json:"urgent"`
	Highlighted bool   `bson:"highlighted" json:"highlighted"`

	PaymentStatus   string `bson:"payment_status,omitempty" json:"paymentStatus,omitempty"`
	PaymentAmount   int64  `bson:"payment_amount,omitempty" json:"paymentAmount,omitempty"` // cents
	StripeSessionID string `bson:"stripe_session_id,omitempty" json:"-"`
	StripePaymentID string `bson:"stripe_payment_id,omitempty" json:"-"`

	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"publishedAt,omitempty"`
	ExpiresAt   *time.Time `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
}
