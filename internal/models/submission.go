package models

import "time"

// Submission lifecycle states. A paid submission becomes approved when its
// subscription checkout completes; a free submission stays pending for manual
// moderation of the listing it already created.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
)

// Submission is a prospective ACP server listing awaiting payment and/or
// approval. It owns at most one resulting Server, linked by ServerID once the
// listing record exists.
type Submission struct {
	ID               string   `bson:"_id,omitempty" json:"id,omitempty"`
	SubmitterName    string   `bson:"submitter_name" json:"submitterName"`
	SubmitterEmail   string   `bson:"submitter_email" json:"submitterEmail"`
	SubmitterCompany string   `bson:"submitter_company,omitempty" json:"submitterCompany,omitempty"`
	Name             string   `bson:"name" json:"name"`
	Description      string   `bson:"description" json:"description"`
	Website          string   `bson:"website,omitempty" json:"website,omitempty"`
	GithubURL        string   `bson:"github_url" json:"githubUrl"`
	LogoURL          string   `bson:"logo_url,omitempty" json:"logoUrl,omitempty"`
	CategoryID       string   `bson:"category_id" json:"categoryId"`
	Tags             []string `bson:"tags" json:"tags"`
	ProtocolSupport  []string `bson:"protocol_support" json:"protocolSupport"`
	APIEndpoint      string   `bson:"api_endpoint,omitempty" json:"apiEndpoint,omitempty"`
	APIKeyRequired   bool     `bson:"api_key_required" json:"apiKeyRequired"`
	SelectedTier     Tier     `bson:"selected_tier" json:"selectedTier"`

	Status          string `bson:"status" json:"status"`
	PaymentStatus   string `bson:"payment_status,omitempty" json:"paymentStatus,omitempty"`
	Amount          int64  `bson:"amount,omitempty" json:"amount,omitempty"` // cents
	StripeSessionID string `bson:"stripe_session_id,omitempty" json:"-"`
	StripePaymentID string `bson:"stripe_payment_id,omitempty" json:"-"`

	ServerID string `bson:"server_id,omitempty" json:"acpServerId,omitempty"`

	CreatedAt  time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updatedAt"`
	ReviewedAt *time.Time `bson:"reviewed_at,omitempty" json:"reviewedAt,omitempty"`
}
